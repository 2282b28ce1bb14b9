package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"parking-billing/internal/domain"
	"parking-billing/internal/service"
)

const userContextKey = "user"

// authMiddleware resolves the caller from X-API-Key or a bearer token.
func authMiddleware(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			user *domain.User
			err  error
		)
		if key := c.GetHeader("X-API-Key"); key != "" {
			user, err = users.ResolveAPIKey(c.Request.Context(), key)
		} else if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			user, err = users.ResolveToken(c.Request.Context(), strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		} else {
			err = fmt.Errorf("api key or bearer token required: %w", domain.ErrUnauthorized)
		}

		if err != nil {
			status := http.StatusUnauthorized
			msg := "invalid or missing credentials"
			if !errors.Is(err, domain.ErrUnauthorized) {
				status = http.StatusInternalServerError
				msg = "internal error"
			}
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      user.ID,
		"email":   user.Email,
		"api_key": user.APIKey,
		"balance": user.Balance,
	})
}

func (h *Handler) issueToken(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, expiresAt, err := h.users.IssueToken(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_at":   formatTime(&expiresAt),
	})
}
