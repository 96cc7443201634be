package http

import (
	"net/http"
	"strings"
	"time"

	"roomcast/internal/core/domain"
	"roomcast/internal/core/services"
	"roomcast/internal/infrastructure/middleware"
	"roomcast/internal/infrastructure/monitoring"
	"roomcast/pkg/errors"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
	metrics     *monitoring.PrometheusCollector
}

func NewAuthHandler(authService services.AuthService, metrics *monitoring.PrometheusCollector) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		metrics:     metrics,
	}
}

func (h *AuthHandler) SetupRoutes(router *gin.Engine) {
	router.POST("/login", h.Login)
	router.POST("/signup", h.Signup)
	router.GET("/logout", middleware.AuthMiddleware(h.authService), h.Logout)
	router.GET("/refresh", h.Refresh)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,max=254"`
	Password string `json:"password" binding:"required,max=128"`
}

type SignupRequest struct {
	Name     string `json:"name" binding:"required,max=1024"`
	Email    string `json:"email" binding:"required,max=254"`
	Password string `json:"password" binding:"required,max=128"`
	Code     string `json:"code" binding:"required,max=32"`
}

type SignupResponse struct {
	User         domain.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	start := time.Now()

	var req LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewValidationError("invalid request format"))
		return
	}

	pair, err := h.authService.Login(c.Request.Context(), domain.Credentials{
		Email:    strings.TrimSpace(strings.ToLower(req.Email)),
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}

	h.metrics.RecordAuthRequest("login", time.Since(start))
	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Signup(c *gin.Context) {
	start := time.Now()

	var req SignupRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewValidationError("invalid request format"))
		return
	}

	newUser, err := domain.ParseNewUser(
		strings.TrimSpace(req.Name),
		strings.TrimSpace(strings.ToLower(req.Email)),
		req.Password,
		strings.TrimSpace(req.Code),
	)
	if err != nil {
		c.Error(errors.NewValidationError(err.Error()))
		return
	}

	user, pair, err := h.authService.Signup(c.Request.Context(), newUser)
	if err != nil {
		c.Error(err)
		return
	}

	h.metrics.RecordAuthRequest("signup", time.Since(start))
	c.JSON(http.StatusCreated, SignupResponse{
		User:         *user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout revokes the refresh record bound to the presented access token.
// The access token itself stays valid until expiry.
func (h *AuthHandler) Logout(c *gin.Context) {
	start := time.Now()

	token := c.GetString(middleware.ContextRawTokenKey)
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		c.Error(err)
		return
	}

	h.metrics.RecordAuthRequest("logout", time.Since(start))
	c.Status(http.StatusNoContent)
}

// Refresh rotates a refresh token presented as a Bearer credential.
func (h *AuthHandler) Refresh(c *gin.Context) {
	start := time.Now()

	token, ok := bearerToken(c)
	if !ok {
		c.Error(errors.NewInvalidCredentialsError(nil))
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		c.Error(err)
		return
	}

	h.metrics.RecordAuthRequest("refresh", time.Since(start))
	c.JSON(http.StatusOK, pair)
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
