package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mediclic/vademecum-ai/internal/infrastructure/auth"
	apperrors "github.com/mediclic/vademecum-ai/pkg/errors"
)

// Credential checks are delegated to this function so deployments can plug
// their user directory; the default demo validator accepts any non-empty
// pair and grants the admin role to the "admin" user.
type CredentialValidator func(username, password string) (role string, ok bool)

// DemoCredentials is the development validator.
func DemoCredentials(username, password string) (string, bool) {
	if username == "" || password == "" {
		return "", false
	}
	if username == "admin" {
		return "admin", true
	}
	return "patient", true
}

// AuthHandler issues session tokens.
type AuthHandler struct {
	issuer   *auth.TokenIssuer
	validate CredentialValidator
}

// NewAuthHandler constructs an AuthHandler. A nil validator uses
// DemoCredentials.
func NewAuthHandler(issuer *auth.TokenIssuer, validate CredentialValidator) *AuthHandler {
	if validate == nil {
		validate = DemoCredentials
	}
	return &AuthHandler{issuer: issuer, validate: validate}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.ErrCodeValidation, "username and password are required"))
		return
	}

	role, ok := h.validate(req.Username, req.Password)
	if !ok {
		respondError(c, apperrors.New(apperrors.ErrCodeUnauthorized, "invalid credentials"))
		return
	}

	pair, err := h.issuer.Issue(req.Username, role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}
