package v1

import (
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login godoc
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	role := domain.Role(req.Portal)
	if !role.IsValid() {
		respondError(c, http.StatusBadRequest, "portal must be one of citizen, hospital, government")
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), role, req.Login, req.Password, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, pair)
}

// Refresh godoc
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, pair)
}
