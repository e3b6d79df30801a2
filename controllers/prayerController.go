package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ChurchPortal/models"
	"github.com/ChurchPortal/services"
)

// GetPrayers serves the intercession list plus the pending-count badge.
func GetPrayers(c *gin.Context) {
	console := c.MustGet("console").(*services.Console)
	cache := console.Cache(models.PrayerKind)

	statusFilter := c.Query("status")
	if statusFilter != "" && !models.PrayerKind.ValidStatus(statusFilter) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown prayer status: " + statusFilter})
		return
	}

	snap := cache.Snapshot()
	if !snap.Loaded && !snap.IsLoading {
		_ = cache.Refresh(c.Request.Context())
		snap = cache.Snapshot()
	}

	counts := services.StatusCounts(models.PrayerKind, snap.Records)
	response := gin.H{
		"prayers":      services.Project(models.PrayerKind, snap.Records, c.Query("search"), statusFilter),
		"pendingCount": counts[models.StatusPending],
		"isLoading":    snap.IsLoading,
	}
	if snap.LastError != "" {
		response["syncError"] = snap.LastError
	}

	c.JSON(http.StatusOK, response)
}

func RefreshPrayers(c *gin.Context) {
	console := c.MustGet("console").(*services.Console)
	cache := console.Cache(models.PrayerKind)

	err := cache.Refresh(c.Request.Context())
	snap := cache.Snapshot()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Sync failed",
			"details": err.Error(),
			"prayers": snap.Records,
		})
		return
	}

	counts := services.StatusCounts(models.PrayerKind, snap.Records)
	c.JSON(http.StatusOK, gin.H{
		"message":      "Prayer requests synced.",
		"prayers":      snap.Records,
		"pendingCount": counts[models.StatusPending],
	})
}

func GetPrayer(c *gin.Context) {
	store := services.GetRecordStore()
	if store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Record store not available"})
		return
	}

	id := c.Param("prayer_id")
	prayer, err := store.Get(c.Request.Context(), models.PrayerKind, id)
	if err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Prayer request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch prayer request", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prayer":      prayer,
		"statusLabel": services.StatusLabel(models.PrayerKind, prayer.Status),
		"actions":     services.Actions(models.PrayerKind, prayer.Status),
	})
}

// TogglePrayerStatus flips a request between pending and prayed, the single
// affordance the prayer card carries.
func TogglePrayerStatus(c *gin.Context) {
	session := c.MustGet("session").(models.Session)
	console := c.MustGet("console").(*services.Console)

	id := c.Param("prayer_id")
	prayer, err := console.Dispatcher(models.PrayerKind).TogglePrayed(c.Request.Context(), session, id)
	if err != nil {
		respondDispatchError(c, "prayer request", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Prayer request marked as " + services.StatusLabel(models.PrayerKind, prayer.Status) + ".",
		"prayer":  prayer,
	})
}

func RequestPrayerDelete(c *gin.Context) {
	console := c.MustGet("console").(*services.Console)

	id := c.Param("prayer_id")
	token, err := console.Dispatcher(models.PrayerKind).RequestDelete(id)
	if err != nil {
		respondDispatchError(c, "prayer request", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Are you sure you want to delete this prayer request?",
		"confirmToken": token,
		"expiresIn":    int(services.DeleteConfirmWindow.Seconds()),
	})
}

func ConfirmPrayerDelete(c *gin.Context) {
	session := c.MustGet("session").(models.Session)
	console := c.MustGet("console").(*services.Console)

	var confirmation models.DeleteConfirmation
	if err := c.ShouldBindJSON(&confirmation); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("prayer_id")
	err := console.Dispatcher(models.PrayerKind).ConfirmDelete(c.Request.Context(), session, id, confirmation.ConfirmToken)
	if err != nil {
		respondDispatchError(c, "prayer request", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Prayer request deleted successfully"})
}
