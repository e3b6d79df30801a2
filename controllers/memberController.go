package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ChurchPortal/models"
	"github.com/ChurchPortal/services"
)

// GetMembers serves the registered-members list: the cache snapshot filtered
// by the search box and the active status tab. A refresh failure after a
// successful first load still answers with the stale records plus a sync
// error, never a blank list.
func GetMembers(c *gin.Context) {
	console := c.MustGet("console").(*services.Console)
	cache := console.Cache(models.MemberKind)

	statusFilter := c.Query("status")
	if statusFilter != "" && !models.MemberKind.ValidStatus(statusFilter) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown member status: " + statusFilter})
		return
	}

	snap := cache.Snapshot()
	if !snap.Loaded && !snap.IsLoading {
		// first visit this session
		_ = cache.Refresh(c.Request.Context())
		snap = cache.Snapshot()
	}

	response := gin.H{
		"members":   services.Project(models.MemberKind, snap.Records, c.Query("search"), statusFilter),
		"counts":    services.StatusCounts(models.MemberKind, snap.Records),
		"isLoading": snap.IsLoading,
	}
	if snap.LastError != "" {
		response["syncError"] = snap.LastError
	}

	c.JSON(http.StatusOK, response)
}

// RefreshMembers forces a re-read of the members collection.
func RefreshMembers(c *gin.Context) {
	console := c.MustGet("console").(*services.Console)
	cache := console.Cache(models.MemberKind)

	err := cache.Refresh(c.Request.Context())
	snap := cache.Snapshot()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Sync failed",
			"details": err.Error(),
			"members": snap.Records,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Members synced.",
		"members": snap.Records,
		"counts":  services.StatusCounts(models.MemberKind, snap.Records),
	})
}

// GetMember is the detail view, read straight from the store so it works for
// ids that arrived after the last refresh.
func GetMember(c *gin.Context) {
	store := services.GetRecordStore()
	if store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Record store not available"})
		return
	}

	id := c.Param("member_id")
	member, err := store.Get(c.Request.Context(), models.MemberKind, id)
	if err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch member", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"member":      member,
		"statusLabel": services.StatusLabel(models.MemberKind, member.Status),
		"actions":     services.Actions(models.MemberKind, member.Status),
	})
}

func UpdateMemberStatus(c *gin.Context) {
	session := c.MustGet("session").(models.Session)
	console := c.MustGet("console").(*services.Console)

	var change models.StatusChange
	if err := c.ShouldBindJSON(&change); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("member_id")
	member, err := console.Dispatcher(models.MemberKind).ChangeStatus(c.Request.Context(), session, id, change.Status)
	if err != nil {
		respondDispatchError(c, "member", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member marked as " + services.StatusLabel(models.MemberKind, member.Status) + ".",
		"member":  member,
		"actions": services.Actions(models.MemberKind, member.Status),
	})
}

// RequestMemberDelete starts the two-step removal; nothing is deleted until
// the confirmation token comes back.
func RequestMemberDelete(c *gin.Context) {
	console := c.MustGet("console").(*services.Console)

	id := c.Param("member_id")
	token, err := console.Dispatcher(models.MemberKind).RequestDelete(id)
	if err != nil {
		respondDispatchError(c, "member", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Are you sure you want to remove this member? This action cannot be undone.",
		"confirmToken": token,
		"expiresIn":    int(services.DeleteConfirmWindow.Seconds()),
	})
}

func ConfirmMemberDelete(c *gin.Context) {
	session := c.MustGet("session").(models.Session)
	console := c.MustGet("console").(*services.Console)

	var confirmation models.DeleteConfirmation
	if err := c.ShouldBindJSON(&confirmation); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("member_id")
	err := console.Dispatcher(models.MemberKind).ConfirmDelete(c.Request.Context(), session, id, confirmation.ConfirmToken)
	if err != nil {
		respondDispatchError(c, "member", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member deleted successfully"})
}

// respondDispatchError maps dispatcher failures onto the admin surface.
// Mutation errors stay scoped to the one record; the list stays usable.
func respondDispatchError(c *gin.Context, noun string, err error) {
	switch {
	case errors.Is(err, services.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "The " + noun + " no longer exists"})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrMutationInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConfirmationNeeded):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update " + noun, "details": err.Error()})
	}
}
