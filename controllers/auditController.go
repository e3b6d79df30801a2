package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ChurchPortal/models"
	"github.com/ChurchPortal/services"
)

// GetModerationAudit lists recent moderation actions, newest first, optionally
// narrowed to one record kind.
func GetModerationAudit(c *gin.Context) {
	limit := uint(50)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || parsed == 0 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = uint(parsed)
	}

	kindName := ""
	if raw := c.Query("kind"); raw != "" {
		kind, ok := models.KindByName(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown record kind: " + raw})
			return
		}
		kindName = kind.Name
	}

	actions, err := services.GetRecentModerationActions(kindName, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch moderation audit", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"actions": actions})
}
