package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var allErrors = []error{
	ErrNotFound,
	ErrInvalidInput,
	ErrNotImplemented,
	ErrUnsupportedType,
	ErrBackendUnavailable,
	ErrBackendRejected,
	ErrRateLimited,
	ErrPartialDelete,
	ErrEmptyGroup,
	ErrStaleResponse,
	ErrLLMUnavailable,
}

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	for _, err := range allErrors {
		t.Run(err.Error(), func(t *testing.T) {
			assert.NotNil(t, err)
			assert.NotEmpty(t, err.Error())
		})
	}
}

// TestErrors_Unique tests that no sentinel matches another
func TestErrors_Unique(t *testing.T) {
	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j {
				assert.False(t, errors.Is(err1, err2),
					"Error %v should not match error %v", err1, err2)
			}
		}
	}
}

// TestErrors_WithWrapping tests error wrapping behavior
func TestErrors_WithWrapping(t *testing.T) {
	wrapped := fmt.Errorf("delete group %q: %w", "k", ErrPartialDelete)
	assert.True(t, errors.Is(wrapped, ErrPartialDelete))
	assert.False(t, errors.Is(wrapped, ErrEmptyGroup))

	joined := errors.Join(ErrBackendUnavailable, errors.New("dial tcp: refused"))
	assert.True(t, errors.Is(joined, ErrBackendUnavailable))
	assert.Contains(t, joined.Error(), "backend unavailable")
}

// TestErrors_ErrorMessages tests that error messages are descriptive
func TestErrors_ErrorMessages(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		shouldHave []string
	}{
		{"ErrNotFound", ErrNotFound, []string{"not", "found"}},
		{"ErrInvalidInput", ErrInvalidInput, []string{"invalid", "input"}},
		{"ErrBackendUnavailable", ErrBackendUnavailable, []string{"backend", "unavailable"}},
		{"ErrBackendRejected", ErrBackendRejected, []string{"rejected"}},
		{"ErrPartialDelete", ErrPartialDelete, []string{"partial", "delete"}},
		{"ErrLLMUnavailable", ErrLLMUnavailable, []string{"LLM", "unavailable"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, word := range tt.shouldHave {
				assert.Contains(t, msg, word)
			}
		})
	}
}
