package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"direct", Forbidden("not your plan"), KindForbidden},
		{"wrapped with fmt", fmt.Errorf("load: %w", NotFound("plan not found")), KindNotFound},
		{"plain error", errors.New("boom"), KindInternal},
		{"nil", nil, KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessageOf_HidesInternalDetail(t *testing.T) {
	err := Internal(errors.New("pq: connection reset"))
	assert.Equal(t, "internal error", MessageOf(err))
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, "email already in use", MessageOf(Conflict("email already in use")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindInvalidInput))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(KindUnauthorized))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(KindForbidden))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(KindNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(KindConflict))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(KindUnavailable))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindInternal))
}

func TestWrap_Unwraps(t *testing.T) {
	cause := errors.New("cause")
	err := Wrap(KindConflict, "dup", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "conflict", KindConflict.String())
}
