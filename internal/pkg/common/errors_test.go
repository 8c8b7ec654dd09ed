package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomErrorChain(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := ErrServiceFailure.WithCause(cause)

	assert.True(t, HasCode(err, ErrCodeServiceFailure))
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
	assert.Equal(t, ErrCodeServiceFailure, CodeOf(err))
	assert.True(t, errors.Is(errors.Unwrap(err), cause))
}

func TestWithCauseDoesNotMutateTemplate(t *testing.T) {
	_ = ErrInvalidInput.WithCause(fmt.Errorf("boom"))
	assert.Nil(t, ErrInvalidInput.Err)
}

func TestStatusOfPlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(fmt.Errorf("plain")))
	assert.Equal(t, ErrCodeInternalError, CodeOf(fmt.Errorf("plain")))
}

func TestMalformedAIError(t *testing.T) {
	raw := `Sure! Here is broken JSON: {"a":`
	err := NewMalformedAIError(raw, fmt.Errorf("unexpected EOF"))

	require.Error(t, err)
	assert.True(t, IsMalformedAIResponse(err))
	assert.Equal(t, raw, RawAIResponse(err))
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))

	// 一般錯誤取不出原始回應
	assert.Empty(t, RawAIResponse(fmt.Errorf("other")))
}

func TestIsInvalidInput(t *testing.T) {
	assert.True(t, IsInvalidInput(ErrInvalidInput.WithCause(fmt.Errorf("x"))))
	assert.True(t, IsInvalidInput(ErrInvalidImageFormat))
	assert.True(t, IsInvalidInput(ErrInvalidImageSize))
	assert.False(t, IsInvalidInput(ErrServiceFailure))
}
