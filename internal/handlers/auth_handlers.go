package handlers

import (
	"net/http"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// RegisterUser creates a staff account. Admin only.
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req models.RegistrationPayload
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.authService.RegisterUser(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "register user")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "User created", user)
}

// LoginUser handles user login.
func (h *AuthHandler) LoginUser(c *gin.Context) {
	var req models.Credentials
	if !bindJSON(c, &req) {
		return
	}
	authResp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "login")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", authResp)
}

// GetCurrentUser retrieves the profile of the currently authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	principal := principalFromContext(c)
	if !principal.Authenticated() {
		respondServiceError(c, services.ErrUnauthenticated, "load profile")
		return
	}
	user, err := h.authService.GetUserProfile(c.Request.Context(), principal.UserID)
	if err != nil {
		respondServiceError(c, err, "load profile")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", user)
}

// LogoutUser acknowledges a logout. Tokens are stateless; clients discard them.
func (h *AuthHandler) LogoutUser(c *gin.Context) {
	utils.RespondWithSuccess(c, http.StatusOK, "Logged out successfully. Please discard your token.", nil)
}
