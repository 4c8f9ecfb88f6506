package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/middleware"
	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func tokenFromContext(c *gin.Context) string {
	value, exists := c.Get(middleware.ContextTokenKey)
	if !exists {
		return ""
	}
	token, _ := value.(string)
	return token
}
