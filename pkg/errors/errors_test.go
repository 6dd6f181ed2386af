package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDetailReturnsCopy(t *testing.T) {
	withDetail := ErrValidationFailed.WithDetail("Attach a photo of the damage.")

	assert.Empty(t, ErrValidationFailed.Detail)
	assert.Equal(t, "Attach a photo of the damage.", withDetail.Detail)
	assert.True(t, stderrors.Is(withDetail, ErrValidationFailed))
	assert.False(t, stderrors.Is(withDetail, ErrFileTooLarge))
}

func TestWrappedAppErrorIsFound(t *testing.T) {
	cause := fmt.Errorf("dial: refused")
	err := fmt.Errorf("generate: %w", ErrLLMCallFailed.WithError(cause))

	assert.True(t, IsAppError(err))
	assert.True(t, stderrors.Is(err, ErrLLMCallFailed))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Equal(t, CodeLLMCallFailed, AsAppError(err).Code)
}

func TestAsAppErrorWrapsUnknown(t *testing.T) {
	appErr := AsAppError(stderrors.New("boom"))
	assert.Equal(t, CodeUnknown, appErr.Code)
	assert.Equal(t, KindInternal, appErr.Kind())
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestKindAndStatusMapping(t *testing.T) {
	tests := []struct {
		err    *AppError
		kind   Kind
		status int
	}{
		{ErrValidationFailed, KindValidation, http.StatusBadRequest},
		{ErrFileTooLarge, KindValidation, http.StatusBadRequest},
		{ErrLLMCallFailed, KindTransport, http.StatusBadGateway},
		{ErrEmptyResponse, KindFormat, http.StatusBadGateway},
		{ErrMalformedPlan, KindFormat, http.StatusBadGateway},
		{ErrGenerationInFlight, KindConflict, http.StatusConflict},
		{ErrGenerationReset, KindConflict, http.StatusConflict},
		{ErrTokenExpired, KindAuth, http.StatusUnauthorized},
		{ErrIdentityMissing, KindUnavailable, http.StatusServiceUnavailable},
		{ErrInternalError, KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind())
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}
