package container

import (
	"cultureshare-api-io/api/internal/auth"
	"cultureshare-api-io/api/pkg/controllers"
	"cultureshare-api-io/api/pkg/services"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServiceContainer wires the service graph once at startup. Handlers reach
// their dependencies through it instead of package-level state.
type ServiceContainer struct {
	tokens *auth.TokenStore

	categoryService     services.CategoryService
	resourceService     services.ResourceService
	linkCheckService    services.LinkCheckService
	statsService        services.StatsService
	notificationService services.NotificationService
	userService         services.UserService

	categoryController     *controllers.CategoryController
	resourceController     *controllers.ResourceController
	adminController        *controllers.AdminController
	userController         *controllers.UserController
	notificationController *controllers.NotificationController
}

func NewServiceContainer(db *mongo.Database, rdb *redis.Client) *ServiceContainer {
	tokens := auth.NewTokenStore(rdb)

	notificationService := services.NewNotificationService(db)
	categoryService := services.NewCategoryService(db)
	resourceService := services.NewResourceService(db, notificationService)
	linkCheckService := services.NewLinkCheckService(db, notificationService)
	statsService := services.NewStatsService(db)
	userService := services.NewUserService(db, tokens)

	return &ServiceContainer{
		tokens: tokens,

		categoryService:     categoryService,
		resourceService:     resourceService,
		linkCheckService:    linkCheckService,
		statsService:        statsService,
		notificationService: notificationService,
		userService:         userService,

		categoryController:     controllers.InitCategoryController(categoryService),
		resourceController:     controllers.InitResourceController(resourceService),
		adminController:        controllers.InitAdminController(resourceService, linkCheckService, statsService, userService),
		userController:         controllers.InitUserController(userService),
		notificationController: controllers.InitNotificationController(notificationService),
	}
}

func (sc *ServiceContainer) TokenStore() *auth.TokenStore { return sc.tokens }

func (sc *ServiceContainer) UserService() services.UserService { return sc.userService }

func (sc *ServiceContainer) CategoryController() *controllers.CategoryController {
	return sc.categoryController
}

func (sc *ServiceContainer) ResourceController() *controllers.ResourceController {
	return sc.resourceController
}

func (sc *ServiceContainer) AdminController() *controllers.AdminController {
	return sc.adminController
}

func (sc *ServiceContainer) UserController() *controllers.UserController {
	return sc.userController
}

func (sc *ServiceContainer) NotificationController() *controllers.NotificationController {
	return sc.notificationController
}
