package errs

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError_DefaultsStatusToOK(t *testing.T) {
	err := NewError(ErrMessageEmpty)

	assert.Equal(t, ErrMessageEmpty, err.Code)
	assert.Equal(t, http.StatusOK, err.Status)
	assert.Equal(t, "Message is empty.", err.Message)
}

func TestNewError_FormatsDetails(t *testing.T) {
	err := NewError(ErrPaymentFailed, "card declined")

	assert.Equal(t, "Payment failed: card declined", err.Message)
}

func TestNewError_UnknownCodeFallsBack(t *testing.T) {
	err := NewError(424242)

	assert.Equal(t, ErrUnknown, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestNewError_DoesNotMutateTemplate(t *testing.T) {
	_ = NewError(ErrMessageContentTooLong, 10)
	err := NewError(ErrMessageContentTooLong, 20)

	assert.Equal(t, "Message is too long (max 20 bytes).", err.Message)
}

func TestCustomError_Error(t *testing.T) {
	err := NewError(ErrPaymentInvalidState)

	assert.Equal(t, "Error Code 3003 (HTTP 409): This payment action is not available right now.", err.Error())
}
