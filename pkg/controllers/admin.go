package controllers

import (
	"context"
	"net/http"

	"cultureshare-api-io/api/internal/auth"
	"cultureshare-api-io/api/internal/common"
	"cultureshare-api-io/api/pkg/models"
	"cultureshare-api-io/api/pkg/services"
	"cultureshare-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminController serves the moderation surface: the review queue, link
// sweeps, platform stats, and user management. Every route behind it runs
// after the AdminOnly middleware.
type AdminController struct {
	resourceService  services.ResourceService
	linkCheckService services.LinkCheckService
	statsService     services.StatsService
	userService      services.UserService
}

func InitAdminController(
	resourceService services.ResourceService,
	linkCheckService services.LinkCheckService,
	statsService services.StatsService,
	userService services.UserService,
) *AdminController {
	return &AdminController{
		resourceService:  resourceService,
		linkCheckService: linkCheckService,
		statsService:     statsService,
		userService:      userService,
	}
}

// GetPendingResources - /v1/admin/resources/pending
func (ac *AdminController) GetPendingResources() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		pagination := util.GetPaginationArgs(c)
		resources, total, err := ac.resourceService.PendingQueue(ctx, pagination)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandlePaginated(c, http.StatusOK, resources, total, pagination)
	}
}

// ReviewResource approves or rejects a pending resource.
func (ac *AdminController) ReviewResource() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		principal, err := auth.CurrentPrincipal(c)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}

		var req models.ReviewRequest
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}

		resource, err := ac.resourceService.Review(ctx, id, principal.UserID, req)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Resource reviewed successfully", resource)
	}
}

// CheckResourceLink probes one resource's link on demand.
func (ac *AdminController) CheckResourceLink() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}

		result, err := ac.linkCheckService.CheckResource(ctx, id)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "success", result)
	}
}

// CheckAllLinks sweeps every approved resource. The sweep probes links
// concurrently and can outlast a normal request window, so it gets a wider
// timeout than the rest of the API.
func (ac *AdminController) CheckAllLinks() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.BATCH_CHECK_TIMEOUT)
		defer cancel()

		summary, err := ac.linkCheckService.CheckAllApproved(ctx)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Link check completed", summary)
	}
}

// GetSystemStats - /v1/admin/stats
func (ac *AdminController) GetSystemStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		stats, err := ac.statsService.SystemStats(ctx)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "success", stats)
	}
}

// GetUsers - /v1/admin/users
func (ac *AdminController) GetUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		pagination := util.GetPaginationArgs(c)
		users, total, err := ac.userService.ListUsers(ctx, pagination)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandlePaginated(c, http.StatusOK, users, total, pagination)
	}
}

// GetUserStats - /v1/admin/users/:id/stats
func (ac *AdminController) GetUserStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}

		stats, err := ac.statsService.UserStats(ctx, id)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "success", stats)
	}
}

// GetUserResources lists a user's uploads in any status for moderation.
func (ac *AdminController) GetUserResources() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}

		pagination := util.GetPaginationArgs(c)
		resources, total, err := ac.resourceService.ByUploader(ctx, id, c.Query("status"), pagination)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandlePaginated(c, http.StatusOK, resources, total, pagination)
	}
}

// SetUserStatus activates or deactivates an account.
func (ac *AdminController) SetUserStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}

		var req struct {
			IsActive *bool `json:"isActive" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}

		if err := ac.userService.SetUserStatus(ctx, id, *req.IsActive); err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "User status updated successfully", nil)
	}
}
