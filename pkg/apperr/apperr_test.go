package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validationf("bad input")))
	assert.Equal(t, KindNotFound, KindOf(NotFoundf("missing")))
	assert.Equal(t, KindInsufficientStock, KindOf(InsufficientStockf("too few")))
	assert.Equal(t, KindConflict, KindOf(Conflictf("duplicate")))
	assert.Equal(t, KindInternal, KindOf(Internal("db down", errors.New("dial failed"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("untagged")))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("placing order: %w", InsufficientStockf("no stock"))
	assert.Equal(t, KindInsufficientStock, KindOf(err))
	assert.True(t, Is(err, KindInsufficientStock))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validationf("bad"), http.StatusBadRequest},
		{NotFoundf("absent"), http.StatusNotFound},
		{InsufficientStockf("few"), http.StatusConflict},
		{Conflictf("dup"), http.StatusConflict},
		{Internal("broken", nil), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestErrorMessage(t *testing.T) {
	err := Internal("query failed", errors.New("timeout"))
	assert.Equal(t, "query failed: timeout", err.Error())

	var appErr *Error
	assert.True(t, errors.As(err, &appErr))
	assert.EqualError(t, errors.Unwrap(appErr), "timeout")
}
