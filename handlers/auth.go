package handlers

import (
	"net/http"

	"exoplanet-finder-api/middleware"
	"exoplanet-finder-api/models"
	"exoplanet-finder-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db          *gorm.DB
	authService *services.AuthService
}

func NewAuthHandler(db *gorm.DB, authService *services.AuthService) *AuthHandler {
	return &AuthHandler{db: db, authService: authService}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,max=20"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	user := models.User{Email: req.Email, Username: req.Username, Password: hash}
	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email or username already registered"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login issues both tokens as httpOnly cookies so browser clients never touch
// them, and echoes the user payload.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if !h.authService.CheckPassword(user.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	access, err := h.authService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refresh, err := h.authService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	h.setAuthCookie(c, middleware.AccessCookie, access, int(h.authService.AccessTTL().Seconds()))
	h.setAuthCookie(c, middleware.RefreshCookie, refresh, int(h.authService.RefreshTTL().Seconds()))

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout deny-lists the refresh token and clears both cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	if refresh, err := c.Cookie(middleware.RefreshCookie); err == nil && refresh != "" {
		if err := h.authService.RevokeRefreshToken(c.Request.Context(), refresh); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "error invalidating token"})
			return
		}
	}

	h.setAuthCookie(c, middleware.AccessCookie, "", -1)
	h.setAuthCookie(c, middleware.RefreshCookie, "", -1)

	c.JSON(http.StatusOK, gin.H{"message": "successfully logged out"})
}

// Refresh exchanges a valid refresh cookie for a fresh access cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie(middleware.RefreshCookie)
	if err != nil || refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh token is not provided"})
		return
	}

	claims, err := h.authService.ValidateRefreshToken(c.Request.Context(), refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	access, err := h.authService.GenerateAccessToken(claims.UserID, claims.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	h.setAuthCookie(c, middleware.AccessCookie, access, int(h.authService.AccessTTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{"message": "access token refreshed successfully"})
}

// UserInfo returns the authenticated caller's profile.
func (h *AuthHandler) UserInfo(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var user models.User
	if err := h.db.First(&user, *userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Username *string `json:"username" binding:"omitempty,max=20"`
}

// UpdateUserInfo changes the caller's email or username. Omitted fields keep
// their current value.
func (h *AuthHandler) UpdateUserInfo(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Email == nil && req.Username == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	var user models.User
	if err := h.db.First(&user, *userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if req.Email != nil && *req.Email != "" {
		user.Email = *req.Email
	}
	if req.Username != nil && *req.Username != "" {
		user.Username = *req.Username
	}

	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email or username already registered"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) setAuthCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(name, value, maxAge, "/", "", true, true)
}
