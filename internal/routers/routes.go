package routers

import (
	"cultureshare-api-io/api/internal/container"
	"cultureshare-api-io/api/internal/middleware"
	"cultureshare-api-io/api/pkg/controllers"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// InitRoute builds the gin engine with the full /v1 surface.
func InitRoute(sc *container.ServiceContainer, rdb *redis.Client) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.CorsMiddleware())
	router.Use(middleware.RateLimiter(rdb))

	authRequired := middleware.Auth(sc.TokenStore())
	authOptional := middleware.OptionalAuth(sc.TokenStore())
	adminRequired := middleware.AdminOnly(sc.UserService())

	v1 := router.Group("/v1")

	v1.GET("/ping", controllers.Ping())

	// Accounts and sessions.
	v1.POST("/signup", sc.UserController().Register())
	v1.POST("/auth", sc.UserController().Login())
	v1.POST("/auth/google", sc.UserController().GoogleLogin())
	v1.DELETE("/logout", authRequired, sc.UserController().Logout())

	users := v1.Group("/users")
	{
		users.GET("/:userid", authOptional, sc.UserController().GetUser())
		users.PUT("/:userid", authRequired, sc.UserController().UpdateProfile())
		users.PUT("/:userid/thumbnail", authRequired, sc.UserController().UploadAvatar())
	}

	categories := v1.Group("/categories")
	{
		categories.GET("", sc.CategoryController().GetCategories())
		categories.GET("/:id", sc.CategoryController().GetCategory())
		categories.GET("/:id/resources", sc.CategoryController().GetCategoryResources())

		categories.POST("", authRequired, adminRequired, sc.CategoryController().CreateCategory())
		categories.PUT("/:id", authRequired, adminRequired, sc.CategoryController().UpdateCategory())
		categories.DELETE("/:id", authRequired, adminRequired, sc.CategoryController().DeleteCategory())
	}

	resources := v1.Group("/resources")
	{
		resources.GET("", authOptional, sc.ResourceController().GetResources())
		resources.GET("/:id", authOptional, sc.ResourceController().GetResource())
		resources.PATCH("/:id/increment-download", sc.ResourceController().DownloadResource())

		resources.POST("", authRequired, sc.ResourceController().CreateResource())
		resources.PUT("/:id", authRequired, sc.ResourceController().UpdateResource())
		resources.DELETE("/:id", authRequired, sc.ResourceController().DeleteResource())
		resources.PUT("/:id/submit", authRequired, sc.ResourceController().SubmitResource())
		resources.PUT("/:id/resubmit", authRequired, sc.ResourceController().ResubmitResource())

		resources.PUT("/:id/review", authRequired, adminRequired, sc.AdminController().ReviewResource())
		resources.PUT("/:id/check-link", authRequired, adminRequired, sc.AdminController().CheckResourceLink())
		resources.POST("/check-links", authRequired, adminRequired, sc.AdminController().CheckAllLinks())
	}

	notifications := v1.Group("/notifications", authRequired)
	{
		notifications.GET("", sc.NotificationController().GetNotifications())
		notifications.PUT("/:id/read", sc.NotificationController().MarkNotificationRead())
	}

	admin := v1.Group("/admin", authRequired, adminRequired)
	{
		admin.GET("/resources/pending", sc.AdminController().GetPendingResources())
		admin.GET("/stats", sc.AdminController().GetSystemStats())
		admin.GET("/users", sc.AdminController().GetUsers())
		admin.PUT("/users/:id/status", sc.AdminController().SetUserStatus())
		admin.GET("/users/:id/stats", sc.AdminController().GetUserStats())
		admin.GET("/users/:id/resources", sc.AdminController().GetUserResources())
	}

	return router
}
