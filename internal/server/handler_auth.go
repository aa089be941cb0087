package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/doanvh/studentsvc/internal/auth"
	authjwt "github.com/doanvh/studentsvc/internal/auth/jwt"
	"github.com/doanvh/studentsvc/internal/observability"
)

const invalidCredentialsMessage = "Invalid username or password"

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token    string   `json:"token"`
	Type     string   `json:"type"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

type authHandler struct {
	verifier auth.Verifier
	signer   authjwt.Signer
	logger   observability.Logger
}

func newAuthHandler(verifier auth.Verifier, signer authjwt.Signer, logger observability.Logger) *authHandler {
	return &authHandler{
		verifier: verifier,
		signer:   signer,
		logger:   logger,
	}
}

func (h *authHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	principal, err := h.verifier.Verify(req.Username, req.Password)
	if err != nil {
		h.logger.Warn("login failed",
			observability.String("username", req.Username),
		)
		c.String(http.StatusUnauthorized, invalidCredentialsMessage)
		return
	}

	token, err := h.signer.Mint(principal)
	if err != nil {
		h.logger.Error("failed to mint token",
			observability.String("username", principal.Username),
			observability.Error(err),
		)
		c.String(http.StatusUnauthorized, invalidCredentialsMessage)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Token:    token,
		Type:     "Bearer",
		Username: principal.Username,
		Roles:    principal.Roles,
	})
}

func (h *authHandler) test(c *gin.Context) {
	principal, ok := auth.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}

	c.String(http.StatusOK, fmt.Sprintf("Hello %s! Your roles: [%s]",
		principal.Username, strings.Join(principal.Roles, ", ")))
}

// requireAuth validates the bearer token and attaches the principal to
// the request context.
func requireAuth(validator authjwt.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		principal, err := validator.Validate(token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		ctx := auth.ContextWithPrincipal(c.Request.Context(), principal)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
