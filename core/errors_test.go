package core

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	err := Error(EINVALID, "bad %s", "input")
	assert.Equal(t, EINVALID, Code(err))
	assert.Equal(t, "bad input", UserMessage(err))
	assert.Equal(t, NOERROR, Code(nil))
	assert.Equal(t, EINTERNAL, Code(io.EOF))
	assert.Equal(t, "internal error", UserMessage(io.EOF))
	wrapped := fmt.Errorf("context: %w", WrapError(io.EOF, EMISSING, "gone"))
	assert.Equal(t, EMISSING, Code(wrapped))
	assert.True(t, errors.Is(wrapped, io.EOF))
	assert.Equal(t, ECONNECTION, Code(ErrorWithCode(nil, ECONNECTION)))
}

func TestFontErrors(t *testing.T) {
	perr := &ParseError{Err: io.ErrUnexpectedEOF}
	derr := fmt.Errorf("loading: %w", &DecompressionError{Container: "WOFF2", Err: io.EOF})
	assert.True(t, IsFontError(perr))
	assert.True(t, IsFontError(derr))
	assert.False(t, IsFontError(Error(EPARSE, "no font")))
	assert.Equal(t, EPARSE, Code(perr))
	assert.Equal(t, EDECOMPRESS, Code(derr))
	assert.Equal(t, "Can't load font file: broken WOFF2 data", UserMessage(derr))
	assert.True(t, errors.Is(perr, io.ErrUnexpectedEOF))
}
