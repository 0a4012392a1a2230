package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"campus-market.backend/internal/interfaces/http/handlers"
	"campus-market.backend/internal/interfaces/http/middleware"
	"campus-market.backend/internal/realtime"
	"campus-market.backend/pkg/jwt"
)

type routeDeps struct {
	walletHandler       *handlers.WalletHandler
	escrowHandler       *handlers.EscrowHandler
	orderHandler        *handlers.OrderHandler
	withdrawalHandler   *handlers.WithdrawalHandler
	paymentHandler      *handlers.PaymentHandler
	contractHandler     *handlers.ContractHandler
	notificationHandler *handlers.NotificationHandler
	adminHandler        *handlers.AdminHandler
	authMiddleware      gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Wallet and PIN routes (protected)
		wallet := v1.Group("/wallet")
		wallet.Use(d.authMiddleware)
		{
			wallet.GET("/balance", d.walletHandler.GetBalance)
			wallet.GET("/transactions", d.walletHandler.ListTransactions)
			wallet.GET("/transactions/:id", d.walletHandler.GetTransaction)
			wallet.POST("/pin", d.walletHandler.SetupPin)
			wallet.PUT("/pin", d.walletHandler.UpdatePin)
			wallet.POST("/pin/verify", d.walletHandler.VerifyPin)
			wallet.GET("/pin/status", d.walletHandler.PinStatus)
		}

		// Escrow routes (protected; money-moving POSTs are idempotent)
		escrow := v1.Group("/escrow")
		escrow.Use(d.authMiddleware)
		{
			escrow.POST("/checkout", middleware.IdempotencyMiddleware(), d.escrowHandler.Checkout)
			escrow.POST("/purchase", middleware.IdempotencyMiddleware(), d.escrowHandler.InitiatePurchase)
			escrow.POST("/transactions/:id/confirm", d.escrowHandler.ConfirmReceipt)
			escrow.POST("/transactions/:id/dispute", d.escrowHandler.Dispute)
		}

		// Order views (protected)
		orders := v1.Group("/orders")
		orders.Use(d.authMiddleware)
		{
			orders.GET("/buying", d.orderHandler.ListBuying)
			orders.GET("/selling", d.orderHandler.ListSelling)
			orders.POST("/:id/delivered", d.orderHandler.MarkDelivered)
		}

		// Withdrawal routes (protected)
		withdrawals := v1.Group("/withdrawals")
		withdrawals.Use(d.authMiddleware)
		{
			withdrawals.POST("", middleware.IdempotencyMiddleware(), d.withdrawalHandler.RequestWithdrawal)
			withdrawals.GET("", d.withdrawalHandler.ListWithdrawals)
			withdrawals.GET("/:id", d.withdrawalHandler.GetWithdrawal)
		}

		// Payment routes; the webhook is public and gated by its signature
		payments := v1.Group("/payments")
		{
			payments.POST("/webhook/paystack", d.paymentHandler.PaystackWebhook)
			payments.POST("/deposit", d.authMiddleware, d.paymentHandler.InitializeDeposit)
			payments.GET("/verify/:reference", d.authMiddleware, d.paymentHandler.VerifyDeposit)
		}

		// Contract routes (protected)
		contracts := v1.Group("/contracts")
		contracts.Use(d.authMiddleware)
		{
			contracts.POST("", d.contractHandler.Create)
			contracts.GET("/:id", d.contractHandler.Get)
			contracts.POST("/:id/sign", d.contractHandler.Sign)
			contracts.POST("/:id/release", d.contractHandler.Release)
			contracts.POST("/:id/dispute", d.contractHandler.MarkDisputed)
		}

		// Notification inbox (protected)
		notificationsGroup := v1.Group("/notifications")
		notificationsGroup.Use(d.authMiddleware)
		{
			notificationsGroup.GET("", d.notificationHandler.List)
			notificationsGroup.POST("/:id/read", d.notificationHandler.MarkRead)
		}

		// Admin routes (protected, admin only)
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.GET("/escrow/dashboard", d.adminHandler.EscrowDashboard)
			admin.GET("/disputes", d.adminHandler.ListDisputes)
			admin.POST("/disputes/:id/resolve", d.adminHandler.ResolveDispute)
			admin.PUT("/withdrawals/:id/status", d.adminHandler.UpdateWithdrawalStatus)
		}
	}
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "campus-market-backend",
			"version": "0.1.0",
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", middleware.MetricsHandler())
}

// registerWebSocketRoute authenticates and joins the caller's private room.
// Browsers cannot set headers on WebSocket dials, so the token may arrive as
// a query parameter instead.
func registerWebSocketRoute(r *gin.Engine, hub *realtime.Hub, jwtService *jwt.JWTService) {
	r.GET("/ws", func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader(middleware.AuthorizationHeader), middleware.BearerPrefix)
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}

		hub.HandleWebSocket(c.Writer, c.Request, claims.UserID)
	})
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key, X-Request-ID")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})
}
