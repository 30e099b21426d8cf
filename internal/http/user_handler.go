package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"unitex/internal/domain"
	"unitex/internal/service"
)

// OTPService emite y verifica codigos. Lo implementa service.OTPService.
type OTPService interface {
	Issue(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) error
}

// UserService lo implementa service.UserService.
type UserService interface {
	Signup(ctx context.Context, input service.SignupInput) (service.AuthResult, error)
	Login(ctx context.Context, email, password string) (service.AuthResult, error)
	Me(ctx context.Context, userID int64) (domain.User, error)
	Profile(ctx context.Context, ref string) (service.Profile, error)
	UpdateHandle(ctx context.Context, userID int64, handle string) (string, error)
	UpdateProfile(ctx context.Context, userID int64, input service.ProfileInput) (domain.User, error)
	GetSettings(ctx context.Context, userID int64) (domain.Settings, error)
	UpdateSettings(ctx context.Context, userID int64, input service.SettingsInput) (domain.Settings, error)
}

// UserHandler mantiene dependencias para los endpoints de autenticacion y usuarios.
type UserHandler struct {
	logger   *zap.Logger
	otpServ  OTPService
	userServ UserService
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, otpServ OTPService, userServ UserService) *UserHandler {
	return &UserHandler{
		logger:   logger,
		otpServ:  otpServ,
		userServ: userServ,
	}
}

// SendOTP maneja POST /auth/send-otp.
func (h *UserHandler) SendOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "send otp", err)
		return
	}
	if err := h.otpServ.Issue(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.logger, "send otp", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully"})
}

// VerifyOTP maneja POST /auth/verify-otp.
func (h *UserHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "verify otp", err)
		return
	}
	if err := h.otpServ.Verify(c.Request.Context(), req.Email, req.OTP); err != nil {
		writeError(c, h.logger, "verify otp", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true})
}

// Signup maneja POST /auth/signup.
func (h *UserHandler) Signup(c *gin.Context) {
	var req struct {
		Email        string `json:"email" binding:"required"`
		Password     string `json:"password" binding:"required"`
		Name         string `json:"name" binding:"required"`
		ReferralCode string `json:"referralCode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "signup", err)
		return
	}
	res, err := h.userServ.Signup(c.Request.Context(), service.SignupInput{
		Email:        req.Email,
		Password:     req.Password,
		Name:         req.Name,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		writeError(c, h.logger, "signup", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": res.Token, "user": res.User})
}

// Login maneja POST /auth/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "login", err)
		return
	}
	res, err := h.userServ.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, "login", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": res.Token, "user": res.User, "xpAwarded": res.XPAwarded})
}

// Me maneja GET /auth/me.
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.userServ.Me(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, "get me", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Profile maneja GET /users/:ref, donde ref es el id numerico o el handle.
func (h *UserHandler) Profile(c *gin.Context) {
	profile, err := h.userServ.Profile(c.Request.Context(), c.Param("ref"))
	if err != nil {
		writeError(c, h.logger, "get profile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateHandle maneja PUT /users/handle y su alias PUT /users/user-id.
func (h *UserHandler) UpdateHandle(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "update handle", err)
		return
	}
	handle, err := h.userServ.UpdateHandle(c.Request.Context(), userID, req.UserID)
	if err != nil {
		writeError(c, h.logger, "update handle", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "userId": handle})
}

// UpdateProfile maneja PUT /users/profile y devuelve el usuario actualizado.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Name        *string   `json:"name"`
		Bio         *string   `json:"bio"`
		AvatarURL   *string   `json:"avatarUrl"`
		Skills      *[]string `json:"skills"`
		GithubURL   *string   `json:"githubUrl"`
		LinkedinURL *string   `json:"linkedinUrl"`
		TwitterURL  *string   `json:"twitterUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "update profile", err)
		return
	}
	user, err := h.userServ.UpdateProfile(c.Request.Context(), userID, service.ProfileInput{
		Name:        req.Name,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
		Skills:      req.Skills,
		GithubURL:   req.GithubURL,
		LinkedinURL: req.LinkedinURL,
		TwitterURL:  req.TwitterURL,
	})
	if err != nil {
		writeError(c, h.logger, "update profile", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetSettings maneja GET /users/settings/me.
func (h *UserHandler) GetSettings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	settings, err := h.userServ.GetSettings(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, "get settings", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings maneja PUT /users/settings.
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		ProfileVisibility     *string `json:"profileVisibility"`
		NotificationIntensity *string `json:"notificationIntensity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "update settings", err)
		return
	}
	settings, err := h.userServ.UpdateSettings(c.Request.Context(), userID, service.SettingsInput{
		ProfileVisibility:     req.ProfileVisibility,
		NotificationIntensity: req.NotificationIntensity,
	})
	if err != nil {
		writeError(c, h.logger, "update settings", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
