package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ChurchPortal/models"
	"github.com/ChurchPortal/services"
)

// The public forms. Writes race a fixed timeout inside the store client; a
// timeout tells the visitor to check connectivity and try again, while a
// rejected write points at the request itself.

func SubmitMemberRegistration(c *gin.Context) {
	var registration models.MemberRegistration

	if err := c.ShouldBindJSON(&registration); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := services.GetRecordStore()
	if store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Registrations are temporarily unavailable. Please try again later."})
		return
	}

	id, err := store.Create(c.Request.Context(), models.MemberKind, registration.Document())
	if err != nil {
		if errors.Is(err, services.ErrStoreTimeout) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Connection timed out. Please check your internet connection and try again."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save your registration", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration received. God bless you!",
		"id":      id,
	})
}

func SubmitPrayerRequest(c *gin.Context) {
	var submission models.PrayerSubmission

	if err := c.ShouldBindJSON(&submission); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := services.GetRecordStore()
	if store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Prayer requests are temporarily unavailable. Please try again later."})
		return
	}

	id, err := store.Create(c.Request.Context(), models.PrayerKind, submission.Document())
	if err != nil {
		if errors.Is(err, services.ErrStoreTimeout) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Connection timed out. Please check your internet connection and try again."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save your prayer request", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Your prayer request has been received. The intercession team will be praying with you.",
		"id":      id,
	})
}
