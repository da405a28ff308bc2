package router

import (
	"github.com/gin-gonic/gin"
	"github.com/lucidpath/wellness-api/internal/controller"
	"github.com/lucidpath/wellness-api/internal/middleware"
)

// Setup registers every API route.
func Setup(r *gin.Engine) {
	api := r.Group("/api")

	setupUserRoutes(api)
	setupProviderRoutes(api)
	setupWellnessRoutes(api)
	setupForumRoutes(api)
	setupNotificationRoutes(api)
	setupAdminRoutes(api)
}

func setupUserRoutes(api *gin.RouterGroup) {
	userApi := controller.NewUserApi()

	users := api.Group("/users")
	{
		users.GET("/captcha", userApi.Captcha)
		users.POST("/register", userApi.Register)
		users.POST("/login", userApi.Login)
		users.POST("/forgot-password", userApi.ForgotPassword)
		users.POST("/reset-password", userApi.ResetPassword)
	}

	refresh := api.Group("/users", middleware.RefreshAuth())
	{
		refresh.POST("/refresh", userApi.Refresh)
		refresh.POST("/logout", userApi.Logout)
	}

	authed := api.Group("/users", middleware.JWTAuth())
	{
		authed.GET("/me", userApi.Me)
		authed.PUT("/me", userApi.UpdateMe)
		authed.POST("/change-password", userApi.ChangePassword)
	}
}

func setupProviderRoutes(api *gin.RouterGroup) {
	providerApi := controller.NewProviderApi()

	providers := api.Group("/providers")
	{
		providers.POST("/register", providerApi.Register)
		providers.POST("/login", providerApi.Login)
		providers.GET("", providerApi.List)
	}

	own := api.Group("/providers", middleware.ProviderAuth())
	{
		own.GET("/me", providerApi.Me)
		own.PUT("/me", providerApi.UpdateMe)
		own.GET("/appointments", providerApi.Appointments)
		own.PUT("/appointments/:id", providerApi.UpdateAppointment)
		own.POST("/message/:id", providerApi.Message)
	}

	// parameterized route last so it does not shadow the fixed paths
	providers.GET("/:id", providerApi.Get)
}

func setupWellnessRoutes(api *gin.RouterGroup) {
	wellnessApi := controller.NewWellnessApi()

	moods := api.Group("/moods", middleware.JWTAuth())
	{
		moods.POST("", wellnessApi.CreateMood)
		moods.GET("", wellnessApi.ListMoods)
		moods.DELETE("/:id", wellnessApi.DeleteMood)
	}

	journals := api.Group("/journals", middleware.JWTAuth())
	{
		journals.POST("", wellnessApi.CreateJournal)
		journals.GET("", wellnessApi.ListJournals)
		journals.GET("/:id", wellnessApi.GetJournal)
		journals.PUT("/:id", wellnessApi.UpdateJournal)
		journals.DELETE("/:id", wellnessApi.DeleteJournal)
	}

	appointments := api.Group("/appointments", middleware.JWTAuth())
	{
		appointments.POST("", wellnessApi.CreateAppointment)
		appointments.GET("", wellnessApi.ListAppointments)
		appointments.POST("/:id/cancel", wellnessApi.CancelAppointment)
	}
}

func setupForumRoutes(api *gin.RouterGroup) {
	forumApi := controller.NewForumApi()

	forum := api.Group("/forum")
	{
		forum.GET("/threads", middleware.OptionalAuth(), forumApi.ListThreads)
		forum.GET("/threads/search", forumApi.SearchThreads)
		forum.GET("/threads/:id", middleware.OptionalAuth(), forumApi.GetThread)
	}

	authed := api.Group("/forum", middleware.JWTAuth())
	{
		authed.POST("/threads", forumApi.CreateThread)
		authed.POST("/threads/:id/posts", forumApi.AddPost)
		authed.POST("/threads/:id/flag", forumApi.FlagThread)
		authed.POST("/posts/:id/flag", forumApi.FlagPost)
	}

	moderation := api.Group("/forum", middleware.AdminAuth())
	{
		moderation.POST("/threads/:id/moderate", forumApi.ModerateThread)
		moderation.POST("/posts/:id/moderate", forumApi.ModeratePost)
		moderation.GET("/flagged", forumApi.ListFlagged)
	}
}

func setupNotificationRoutes(api *gin.RouterGroup) {
	notificationApi := controller.NewNotificationApi()

	api.GET("/notifications/vapid-public-key", notificationApi.VAPIDPublicKey)

	authed := api.Group("/notifications", middleware.JWTAuth())
	{
		authed.GET("", notificationApi.List)
		authed.GET("/unread-count", notificationApi.UnreadCount)
		authed.POST("/:id/read", notificationApi.MarkRead)
		authed.POST("/read-all", notificationApi.MarkAllRead)
		authed.POST("/subscribe", notificationApi.Subscribe)
		authed.POST("/unsubscribe", notificationApi.Unsubscribe)
	}
}

func setupAdminRoutes(api *gin.RouterGroup) {
	adminApi := controller.NewAdminApi()

	admin := api.Group("/admin", middleware.AdminAuth())
	{
		admin.GET("/users", adminApi.ListUsers)
		admin.GET("/providers", adminApi.ListProviders)
		admin.PUT("/providers/:id/review", adminApi.ReviewProvider)
		admin.GET("/stats", adminApi.Dashboard)
	}
}
