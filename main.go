package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/ChurchPortal/controllers"
	"github.com/ChurchPortal/initializers"
	"github.com/ChurchPortal/middlewares"
	"github.com/ChurchPortal/services"
)

func init() {
	initializers.LoadEnv()
	initializers.ConnectDB()
	initializers.InitFirebase()
	services.InitRecordStore()
	services.InitAuthProvider()
	services.InitEmailService()
}

func main() {
	router := gin.Default()

	getKey := func(c *gin.Context) string {
		if gin.Mode() == gin.DebugMode {
			return c.FullPath()
		}
		return c.ClientIP()
	}

	// public surface
	router.POST("/login", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.AdminLogin)
	router.GET("/ping", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.Ping)

	// submission forms (the site's registration and prayer request pages)
	router.POST("/join", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.SubmitMemberRegistration)
	router.POST("/prayer-request", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.SubmitPrayerRequest)

	admin := router.Group("/admin")
	admin.Use(middlewares.CheckAuth)
	admin.Use(middlewares.RateLimitMiddleware(10, 10, getKey))
	{
		admin.POST("/logout", controllers.AdminLogout)
		admin.GET("/session", controllers.GetSession)
		admin.GET("/stats", controllers.GetDashboardStats)

		// member moderation
		admin.GET("/members", controllers.GetMembers)
		admin.POST("/members/refresh", controllers.RefreshMembers)
		admin.GET("/members/:member_id", controllers.GetMember)
		admin.PATCH("/members/:member_id/status", controllers.UpdateMemberStatus)
		admin.POST("/members/:member_id/delete", controllers.RequestMemberDelete)
		admin.DELETE("/members/:member_id", controllers.ConfirmMemberDelete)

		// prayer request moderation
		admin.GET("/prayers", controllers.GetPrayers)
		admin.POST("/prayers/refresh", controllers.RefreshPrayers)
		admin.GET("/prayers/:prayer_id", controllers.GetPrayer)
		admin.PATCH("/prayers/:prayer_id/status", controllers.TogglePrayerStatus)
		admin.POST("/prayers/:prayer_id/delete", controllers.RequestPrayerDelete)
		admin.DELETE("/prayers/:prayer_id", controllers.ConfirmPrayerDelete)

		admin.GET("/audit", controllers.GetModerationAudit)
	}

	if err := router.Run(); err != nil {
		log.Fatal(err)
	}
}
