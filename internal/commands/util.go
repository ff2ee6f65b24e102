package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/nhle/todolist/internal/store"
)

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// errWriter returns the writer for warnings and diagnostics.
func errWriter(c *cli.Command) io.Writer {
	if w := c.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// Describe formats err for the terminal. A locked database gets a hint
// since the usual cause is a second todolist process writing.
func Describe(err error) string {
	if store.IsBusyError(err) {
		return fmt.Sprintf("database is locked by another todolist process, try again: %v", err)
	}
	return err.Error()
}
