package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// RouterDeps agrupa los handlers y middlewares que necesita el router.
type RouterDeps struct {
	Auth      TokenParser
	Users     *UserHandler
	Friends   *FriendHandler
	Messages  *MessageHandler
	Referrals *ReferralHandler
	Vault     *VaultHandler
	Health    *HealthHandler
	// Metrics es opcional; si es nil no se instrumenta ni se expone /metrics.
	Metrics MetricsProvider
}

// MetricsProvider lo implementa metrics.Metrics.
type MetricsProvider interface {
	GinMiddleware() gin.HandlerFunc
	Handler() http.Handler
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(logger *zap.Logger, deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(requestIDMiddleware(), zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())
	if deps.Metrics != nil {
		r.Use(deps.Metrics.GinMiddleware())
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	if deps.Health != nil {
		r.GET("/health", deps.Health.Health)
	}

	requireAuth := JWTAuthMiddleware(deps.Auth)

	auth := r.Group("/auth")
	auth.POST("/send-otp", deps.Users.SendOTP)
	auth.POST("/verify-otp", deps.Users.VerifyOTP)
	auth.POST("/signup", deps.Users.Signup)
	auth.POST("/login", deps.Users.Login)
	auth.GET("/me", requireAuth, deps.Users.Me)

	users := r.Group("/users")
	users.GET("/:ref", deps.Users.Profile)
	users.PUT("/profile", requireAuth, deps.Users.UpdateProfile)
	users.PUT("/handle", requireAuth, deps.Users.UpdateHandle)
	users.PUT("/user-id", requireAuth, deps.Users.UpdateHandle)
	users.GET("/settings/me", requireAuth, deps.Users.GetSettings)
	users.PUT("/settings", requireAuth, deps.Users.UpdateSettings)

	friends := r.Group("/friends", requireAuth)
	friends.GET("", deps.Friends.List)
	friends.GET("/pending", deps.Friends.Pending)
	friends.GET("/suggestions", deps.Friends.Suggestions)
	friends.GET("/status/:ref", deps.Friends.Status)
	friends.POST("/request/:ref", deps.Friends.Request)
	friends.PUT("/accept/:id", deps.Friends.Accept)
	friends.PUT("/reject/:id", deps.Friends.Reject)

	messages := r.Group("/messages", requireAuth)
	messages.POST("/start", deps.Messages.Start)
	messages.GET("/conversations", deps.Messages.Conversations)
	messages.GET("/conversations/:id", deps.Messages.Messages)
	messages.POST("/conversations/:id", deps.Messages.Send)

	referrals := r.Group("/referrals")
	referrals.GET("/validate/:code", deps.Referrals.Validate)
	referrals.GET("/leaderboard", deps.Referrals.Leaderboard)
	referrals.GET("/my-code", requireAuth, deps.Referrals.MyCode)
	referrals.GET("/my-referrals", requireAuth, deps.Referrals.MyReferrals)
	referrals.POST("/apply", requireAuth, deps.Referrals.Apply)

	vault := r.Group("/vault", requireAuth)
	vault.GET("", deps.Vault.List)
	vault.POST("/save/:postId", deps.Vault.Save)
	vault.DELETE("/unsave/:postId", deps.Vault.Unsave)
	vault.GET("/check/:postId", deps.Vault.Check)
	vault.PUT("/:id/note", deps.Vault.UpdateNote)

	return r
}

// requestIDMiddleware reutiliza el X-Request-ID entrante o genera uno nuevo.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDHeader)
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", requestID(c)),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
