package source

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewFetchError("dummyjson", ErrNetwork, cause)

	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrDecode)
	assert.True(t, IsNetworkError(err))
	assert.Equal(t, "fetch from dummyjson: network error: connection reset", err.Error())

	wrapped := fmt.Errorf("refresh: %w", err)
	var fe *FetchError
	require.ErrorAs(t, wrapped, &fe)
	assert.Equal(t, "dummyjson", fe.Source)
	assert.True(t, IsNetworkError(wrapped))
}

func TestIsNetworkError(t *testing.T) {
	assert.False(t, IsNetworkError(nil))
	assert.False(t, IsNetworkError(errors.New("other")))
	assert.False(t, IsNetworkError(NewFetchError("x", ErrInvalidResponse, errors.New("status 500"))))
}
