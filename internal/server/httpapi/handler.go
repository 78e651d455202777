// Package httpapi exposes the registration, confirmation, and credential
// flows over a small JSON REST surface.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avetisov/credkeeper/internal/common"
	"github.com/avetisov/credkeeper/internal/logging"
	"github.com/avetisov/credkeeper/internal/server/services"
)

// ActivationFlow is the slice of the activation service the handler needs.
type ActivationFlow interface {
	Register(ctx context.Context, firstName, lastName, email, password string) (string, error)
	Confirm(ctx context.Context, token string) error
}

// CredentialFlow is the slice of the credential service the handler needs.
type CredentialFlow interface {
	Authenticate(ctx context.Context, email, password string) (*services.AuthBundle, error)
	Refresh(ctx context.Context, presented string) (*services.AuthBundle, error)
}

type Handler struct {
	activation  ActivationFlow
	credentials CredentialFlow
	logger      logging.Logger
}

func NewHandler(activation ActivationFlow, credentials CredentialFlow, logger logging.Logger) *Handler {
	return &Handler{
		activation:  activation,
		credentials: credentials,
		logger:      logger.With("module", "httpapi"),
	}
}

type errorResponse struct {
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type registrationResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type registrationRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type authResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
}

func newErrorResponse(c *gin.Context, statusCode int, errMessage string) {
	c.AbortWithStatusJSON(statusCode, errorResponse{Message: errMessage})
}

// abortWithServiceError maps the service sentinel errors to HTTP statuses.
// Anything unmapped is an internal error and its detail stays out of the
// response.
func (h *Handler) abortWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidEmail):
		newErrorResponse(c, http.StatusBadRequest, "invalid email")
	case errors.Is(err, common.ErrMalformedToken):
		newErrorResponse(c, http.StatusBadRequest, "malformed token")
	case errors.Is(err, common.ErrInvalidCredentials):
		newErrorResponse(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, common.ErrInvalidToken):
		newErrorResponse(c, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, common.ErrAccountNotActivated):
		newErrorResponse(c, http.StatusForbidden, "account is not activated")
	case errors.Is(err, common.ErrAccountNotFound):
		newErrorResponse(c, http.StatusNotFound, "account not found")
	case errors.Is(err, common.ErrTokenNotFound):
		newErrorResponse(c, http.StatusNotFound, "token not found")
	case errors.Is(err, common.ErrEmailTaken):
		newErrorResponse(c, http.StatusConflict, "email is already registered")
	case errors.Is(err, common.ErrTokenAlreadyUsed):
		newErrorResponse(c, http.StatusConflict, "token was already used")
	case errors.Is(err, common.ErrTokenExpired):
		newErrorResponse(c, http.StatusGone, "token has expired")
	default:
		h.logger.Error(c.Request.Context(), "request failed", "error", err)
		newErrorResponse(c, http.StatusInternalServerError, "internal error")
	}
}

// RequestIDMiddleware assigns every request an id, echoed in the
// X-Request-Id response header. Incoming ids are kept so callers can
// correlate retries.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// InitRoutes builds the gin engine with the public API routes.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestIDMiddleware())

	v1 := router.Group("/api/v1")
	{
		v1.POST("/registration", h.Register)
		v1.GET("/registration/confirm", h.Confirm)
		v1.POST("/auth/login", h.Login)
		v1.POST("/auth/refresh", h.Refresh)
	}

	return router
}

// POST /api/v1/registration
func (h *Handler) Register(c *gin.Context) {
	var req registrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" {
		newErrorResponse(c, http.StatusBadRequest, "empty password")
		return
	}

	token, err := h.activation.Register(c.Request.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registrationResponse{Message: "confirmation link sent", Token: token})
}

// GET /api/v1/registration/confirm?token=...
func (h *Handler) Confirm(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		newErrorResponse(c, http.StatusBadRequest, "missing token")
		return
	}

	if err := h.activation.Confirm(c.Request.Context(), token); err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "account activated"})
}

// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	bundle, err := h.credentials.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bundleResponse(bundle))
}

// POST /api/v1/auth/refresh
//
// The refresh token comes from the Authorization header (with or without
// the Bearer scheme); a JSON body with refresh_token is accepted as a
// fallback.
func (h *Handler) Refresh(c *gin.Context) {
	presented := c.GetHeader("Authorization")
	if presented == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			presented = req.RefreshToken
		}
	}
	if presented == "" {
		newErrorResponse(c, http.StatusBadRequest, "missing refresh token")
		return
	}

	bundle, err := h.credentials.Refresh(c.Request.Context(), presented)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bundleResponse(bundle))
}

func bundleResponse(b *services.AuthBundle) authResponse {
	return authResponse{
		AccessToken:  b.AccessToken,
		RefreshToken: b.RefreshToken,
		TokenType:    b.TokenType,
		Email:        b.Email,
		FirstName:    b.FirstName,
		LastName:     b.LastName,
	}
}
