package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "campus-market.backend/internal/domain/errors"
)

func record(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestError_AppErrorStatusWins(t *testing.T) {
	// A usecase that chose 400 for an invalid-state precondition keeps it.
	w, body := record(t, domainerrors.PreconditionFailed("order not yet delivered", domainerrors.ErrInvalidState))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "order not yet delivered", body["message"])
}

func TestError_MapsBareSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domainerrors.ErrNotFound, http.StatusNotFound},
		{domainerrors.ErrForbidden, http.StatusForbidden},
		{domainerrors.ErrPinNotSet, http.StatusBadRequest},
		{domainerrors.ErrInvalidPin, http.StatusUnauthorized},
		{domainerrors.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{domainerrors.ErrInsufficientStock, http.StatusUnprocessableEntity},
		{domainerrors.ErrInvalidState, http.StatusConflict},
		{domainerrors.ErrAlreadySigned, http.StatusConflict},
		{domainerrors.ErrInvalidSignature, http.StatusUnauthorized},
		{domainerrors.ErrGatewayFailure, http.StatusBadGateway},
	}
	for _, tc := range cases {
		w, _ := record(t, tc.err)
		assert.Equal(t, tc.status, w.Code, "sentinel %v", tc.err)
	}

	// Wrapped sentinels map the same way.
	w, _ := record(t, fmt.Errorf("debit wallet: %w", domainerrors.ErrInsufficientFunds))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestError_UnknownErrorHidesDetail(t *testing.T) {
	w, body := record(t, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", body["message"])
	assert.NotContains(t, w.Body.String(), "pq:")
}
