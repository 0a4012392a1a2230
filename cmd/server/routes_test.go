package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-market.backend/internal/interfaces/http/handlers"
	"campus-market.backend/internal/interfaces/http/middleware"
	"campus-market.backend/pkg/jwt"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	jwtService := jwt.NewJWTService("test-secret", time.Minute, time.Hour)

	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		walletHandler:       handlers.NewWalletHandler(nil),
		escrowHandler:       handlers.NewEscrowHandler(nil, nil),
		orderHandler:        handlers.NewOrderHandler(nil),
		withdrawalHandler:   handlers.NewWithdrawalHandler(nil),
		paymentHandler:      handlers.NewPaymentHandler(nil),
		contractHandler:     handlers.NewContractHandler(nil),
		notificationHandler: handlers.NewNotificationHandler(nil),
		adminHandler:        handlers.NewAdminHandler(nil, nil, nil),
		authMiddleware:      middleware.AuthMiddleware(jwtService),
	})
	return r
}

func TestRegisterAPIV1Routes_Table(t *testing.T) {
	r := testRouter()

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"GET /api/v1/wallet/balance",
		"GET /api/v1/wallet/transactions",
		"GET /api/v1/wallet/transactions/:id",
		"POST /api/v1/wallet/pin",
		"PUT /api/v1/wallet/pin",
		"POST /api/v1/wallet/pin/verify",
		"GET /api/v1/wallet/pin/status",
		"POST /api/v1/escrow/checkout",
		"POST /api/v1/escrow/purchase",
		"POST /api/v1/escrow/transactions/:id/confirm",
		"POST /api/v1/escrow/transactions/:id/dispute",
		"GET /api/v1/orders/buying",
		"GET /api/v1/orders/selling",
		"POST /api/v1/orders/:id/delivered",
		"POST /api/v1/withdrawals",
		"GET /api/v1/withdrawals",
		"GET /api/v1/withdrawals/:id",
		"POST /api/v1/payments/webhook/paystack",
		"POST /api/v1/payments/deposit",
		"GET /api/v1/payments/verify/:reference",
		"POST /api/v1/contracts",
		"GET /api/v1/contracts/:id",
		"POST /api/v1/contracts/:id/sign",
		"POST /api/v1/contracts/:id/release",
		"POST /api/v1/contracts/:id/dispute",
		"GET /api/v1/notifications",
		"POST /api/v1/notifications/:id/read",
		"GET /api/v1/admin/escrow/dashboard",
		"GET /api/v1/admin/disputes",
		"POST /api/v1/admin/disputes/:id/resolve",
		"PUT /api/v1/admin/withdrawals/:id/status",
		"GET /health",
		"GET /metrics",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "missing route %s", route)
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	r := testRouter()

	for _, path := range []string{
		"/api/v1/wallet/balance",
		"/api/v1/orders/buying",
		"/api/v1/admin/disputes",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "path %s", path)
	}
}

func TestWebhookRouteIsPublic(t *testing.T) {
	r := testRouter()

	// No Authorization header; the handler itself rejects the missing
	// signature, so anything but a 401 from auth middleware proves the
	// route is public. The nil usecase panics before that, which gin's
	// recovery would turn into a 500 in production; route wiring is what
	// is under test here, so only assert the middleware behavior.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook/paystack", nil)
	w := httptest.NewRecorder()
	func() {
		defer func() { _ = recover() }()
		r.ServeHTTP(w, req)
	}()

	assert.NotEqual(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterHealthRoute(t *testing.T) {
	r := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "campus-market-backend", body["service"])
}

func TestApplyCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	applyCORSMiddleware(r)
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
