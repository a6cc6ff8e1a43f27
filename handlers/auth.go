package handlers

import (
	"context"
	"net/http"
	"time"

	userRepo "gatepass/database/repository/user"
	"gatepass/middleware"
	"gatepass/models"
	"gatepass/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const sessionDuration = 24 * time.Hour

// AuthHandler serves account registration and session endpoints.
type AuthHandler struct {
	Users userRepo.UserRepository
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users userRepo.UserRepository) *AuthHandler {
	return &AuthHandler{Users: users}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterHandler creates a new account. Accounts start unverified;
// identity verification is performed by an external service.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	existing, err := h.Users.GetByEmail(req.Email)
	if err != nil {
		logger.Error("Failed to check existing account", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
	}
	if err := h.Users.Create(user); err != nil {
		logger.Error("Failed to create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// LoginHandler verifies credentials and opens a revocable session.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	user, err := h.Users.GetByEmail(req.Email)
	if err != nil {
		logger.Error("Failed to fetch user for login", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateSessionToken(user.ID, user.Email, sessionDuration)
	if err != nil {
		logger.Error("Failed to generate session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}

	authCache := utils.GetAuthCacheClient()
	key := middleware.AuthCachePrefix + user.ID
	if err := authCache.Set(context.Background(), key, utils.HashToken(token), sessionDuration).Err(); err != nil {
		logger.Error("Failed to cache session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// LogoutHandler revokes the caller's session.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	userID := c.GetString("userID")
	authCache := utils.GetAuthCacheClient()
	if err := authCache.Del(context.Background(), middleware.AuthCachePrefix+userID).Err(); err != nil {
		utils.GetLogger().Error("Failed to revoke session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
