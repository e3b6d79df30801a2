package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ChurchPortal/models"
	"github.com/ChurchPortal/services"
)

// GetDashboardStats reads both collections fresh for the landing cards:
// total members, total prayer requests, and how many of each await
// moderation.
func GetDashboardStats(c *gin.Context) {
	store := services.GetRecordStore()
	if store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Record store not available"})
		return
	}

	members, err := store.List(c.Request.Context(), models.MemberKind)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Sync failed", "details": err.Error()})
		return
	}

	prayers, err := store.List(c.Request.Context(), models.PrayerKind)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Sync failed", "details": err.Error()})
		return
	}

	memberCounts := services.StatusCounts(models.MemberKind, members)
	prayerCounts := services.StatusCounts(models.PrayerKind, prayers)

	c.JSON(http.StatusOK, gin.H{
		"members":        len(members),
		"prayers":        len(prayers),
		"pendingMembers": memberCounts[models.StatusPending],
		"pendingPrayers": prayerCounts[models.StatusPending],
	})
}
