package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeExtractor(t *testing.T) {
	err := New(ErrConflict, "already borrowed")
	require.Equal(t, ErrConflict, Code(err))
	require.Equal(t, "already borrowed", err.Error())

	// wrapped errors keep their code
	wrapped := fmt.Errorf("borrow: %w", err)
	require.Equal(t, ErrConflict, Code(wrapped))

	require.Equal(t, ErrCode(""), Code(errors.New("plain")))
	require.Equal(t, ErrCode(""), Code(nil))
}

func TestDefaultMessage(t *testing.T) {
	err := New(ErrNotFound, "")
	require.Equal(t, string(ErrNotFound), err.Error())
}
