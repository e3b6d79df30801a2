package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ChurchPortal/models"
	"github.com/ChurchPortal/services"
)

func AdminLogin(c *gin.Context) {
	var login models.Login

	if err := c.ShouldBindJSON(&login); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cred, err := services.GetAuthProvider().SignIn(c.Request.Context(), login.Email, login.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredential) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Unable to reach the authentication service", "details": err.Error()})
		return
	}

	console := services.OpenConsole(cred.UID, cred.Email)

	c.JSON(http.StatusOK, gin.H{
		"message": "Admin logged in successfully.",
		"token":   cred.Token,
		"session": console.Gate.Current(),
	})
}

// AdminLogout closes the console immediately; credential revocation at the
// provider happens in the background and its latency never blocks the
// response.
func AdminLogout(c *gin.Context) {
	session := c.MustGet("session").(models.Session)

	services.CloseConsole(session.UID)

	go func() {
		if err := services.GetAuthProvider().SignOut(context.Background(), session.UID); err != nil {
			log.Printf("Failed to revoke credentials for %s: %v", session.UID, err)
		}
	}()

	c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}

func GetSession(c *gin.Context) {
	console := c.MustGet("console").(*services.Console)

	c.JSON(http.StatusOK, gin.H{"session": console.Gate.Current()})
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
