package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, ErrUnauthorized.HTTPStatus)
	assert.Equal(t, http.StatusTooManyRequests, ErrQuotaExhausted.HTTPStatus)
	assert.Equal(t, http.StatusBadRequest, ErrUnknownProvider.HTTPStatus)
	assert.Equal(t, http.StatusUnprocessableEntity, New(CodeGenerationRejected, "rejected").HTTPStatus)
	assert.Equal(t, http.StatusBadGateway, New(CodeProviderUnreachable, "unreachable").HTTPStatus)
	assert.Equal(t, http.StatusInternalServerError, ErrPersistenceFailed.HTTPStatus)
}

func TestWithDetailDoesNotMutatePredefined(t *testing.T) {
	detailed := ErrUnknownProvider.WithDetail("unknown provider: foo")

	assert.Equal(t, "unknown provider: foo", detailed.Detail)
	assert.Empty(t, ErrUnknownProvider.Detail)
	assert.Equal(t, ErrUnknownProvider.Code, detailed.Code)
}

func TestWithErrorDoesNotMutatePredefined(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	wrapped := ErrQuotaExhausted.WithError(cause)

	assert.Equal(t, cause, wrapped.Err)
	assert.Nil(t, ErrQuotaExhausted.Err)
}

func TestWrapUnwrap(t *testing.T) {
	cause := fmt.Errorf("duplicate key")
	err := Wrap(cause, CodeDatabaseError, "insert failed")

	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Error(), "insert failed")
	assert.Contains(t, err.Error(), "duplicate key")
}

func TestAsAppError(t *testing.T) {
	appErr := AsAppError(ErrQuotaExhausted)
	assert.Equal(t, CodeQuotaExhausted, appErr.Code)

	plain := AsAppError(fmt.Errorf("boom"))
	assert.Equal(t, CodeUnknown, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.HTTPStatus)
}
