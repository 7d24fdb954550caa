package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kicon/kiconapi/internal/auth"
)

type Authenticator interface {
	Authenticate(username, password string) error
}

type TokenIssuer interface {
	GenerateAccessToken(username, role string) (string, time.Time, error)
}

type AuthHandler struct {
	admin  Authenticator
	tokens TokenIssuer
	log    *slog.Logger
}

func NewAuthHandler(admin Authenticator, tokens TokenIssuer, log *slog.Logger) *AuthHandler {
	return &AuthHandler{admin: admin, tokens: tokens, log: log}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.Username == "" || req.Password == "" {
		RespondBadRequest(ctx, "Username and password are required", nil)
		return
	}

	if err := h.admin.Authenticate(req.Username, req.Password); err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.log.ErrorContext(ctx.Request.Context(), "admin authentication failed", "err", err)
		}
		RespondUnAuthorized(ctx, "invalid_credentials", "Invalid username or password")
		return
	}

	token, expiresAt, err := h.tokens.GenerateAccessToken(req.Username, auth.RoleAdmin)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "token generation failed", "err", err)
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	RespondOK(ctx, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, "Login successful")
}
