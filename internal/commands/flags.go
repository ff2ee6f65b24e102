package commands

import (
	"github.com/nhle/todolist/internal/model"
)

// Flags holds the global command line options shared by every command.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	return model.DefaultConfigPath()
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	return model.DefaultDataDir()
}
