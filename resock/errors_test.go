package resock

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsByCode(t *testing.T) {
	err := NewError(ErrorNotConnected, "send requires an open connection")

	assert.True(t, errors.Is(err, NewError(ErrorNotConnected, "anything")))
	assert.False(t, errors.Is(err, NewError(ErrorClosed, "anything")))
	assert.True(t, IsNotConnected(err))
}

func TestErrorUnwrap(t *testing.T) {
	err := WrapError(ErrorTransport, "send failed", io.ErrClosedPipe)

	assert.True(t, errors.Is(err, io.ErrClosedPipe))
	assert.Contains(t, err.Error(), "transport_error")
	assert.Contains(t, err.Error(), io.ErrClosedPipe.Error())
}

func TestErrorCodeStrings(t *testing.T) {
	assert.Equal(t, "not_connected", ErrorNotConnected.String())
	assert.Equal(t, "closed", ErrorClosed.String())
	assert.Equal(t, "invalid_config", ErrorInvalidConfig.String())
	assert.Equal(t, "unknown_code_99", ErrorCode(99).String())
}
