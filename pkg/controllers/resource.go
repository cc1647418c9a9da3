package controllers

import (
	"context"
	"net/http"
	"strings"

	"cultureshare-api-io/api/internal/auth"
	"cultureshare-api-io/api/internal/common"
	"cultureshare-api-io/api/pkg/models"
	"cultureshare-api-io/api/pkg/services"
	"cultureshare-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ResourceController struct {
	resourceService services.ResourceService
}

func InitResourceController(resourceService services.ResourceService) *ResourceController {
	return &ResourceController{resourceService: resourceService}
}

func (rc *ResourceController) CreateResource() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		principal, err := auth.CurrentPrincipal(c)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			return
		}

		var req models.ResourceRequest
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}
		if err := common.Validate.Struct(req); err != nil {
			HandleDomainError(c, err)
			return
		}

		resource, err := rc.resourceService.Create(ctx, principal.UserID, req)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusCreated, "Resource created successfully", resource)
	}
}

func (rc *ResourceController) GetResource() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}

		detail, err := rc.resourceService.Get(ctx, id)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		// Resources outside the public catalog exist only for their uploader
		// and for admins; everyone else gets a 404, not a 403, so the id
		// itself leaks nothing.
		if detail.Status != models.StatusApproved {
			principal, err := auth.CurrentPrincipal(c)
			if err != nil || (principal.UserID != detail.Uploader && !principal.IsAdmin()) {
				HandleDomainError(c, models.ErrNotFound)
				return
			}
		}

		util.HandleSuccess(c, http.StatusOK, "success", detail)
	}
}

// GetResources - /v1/resources?status=&category=&tags=a,b&keyword=&uploaderId=
func (rc *ResourceController) GetResources() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		filter := models.ResourceFilter{
			Status:     c.Query("status"),
			Category:   c.Query("category"),
			UploaderID: c.Query("uploaderId"),
			Keyword:    c.Query("keyword"),
		}
		if tags := c.Query("tags"); tags != "" {
			filter.Tags = strings.Split(tags, ",")
		}

		// Only approved resources are public. Asking for any other status
		// needs a token, and non-admins only ever see their own uploads.
		if filter.Status != "" && filter.Status != string(models.StatusApproved) {
			principal, err := auth.CurrentPrincipal(c)
			if err != nil {
				util.HandleError(c, http.StatusUnauthorized, err)
				return
			}
			if !principal.IsAdmin() {
				filter.UploaderID = principal.UserID.Hex()
			}
		}

		pagination := util.GetPaginationArgs(c)
		resources, total, err := rc.resourceService.List(ctx, filter, pagination)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandlePaginated(c, http.StatusOK, resources, total, pagination)
	}
}

func (rc *ResourceController) UpdateResource() gin.HandlerFunc {
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

		var req models.ResourceUpdateRequest
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}
		if err := common.Validate.Struct(req); err != nil {
			HandleDomainError(c, err)
			return
		}

		resource, err := rc.resourceService.Update(ctx, id, principal.UserID, req)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Resource updated successfully", resource)
	}
}

func (rc *ResourceController) DeleteResource() gin.HandlerFunc {
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

		if err := rc.resourceService.Delete(ctx, id, principal.UserID); err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Resource deleted successfully", nil)
	}
}

// SubmitResource moves a draft into the review queue.
func (rc *ResourceController) SubmitResource() gin.HandlerFunc {
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

		resource, err := rc.resourceService.Submit(ctx, id, principal.UserID)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Resource submitted for review", resource)
	}
}

// ResubmitResource sends a rejected resource back to the review queue.
func (rc *ResourceController) ResubmitResource() gin.HandlerFunc {
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

		resource, err := rc.resourceService.Resubmit(ctx, id, principal.UserID)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Resource resubmitted for review", resource)
	}
}

// DownloadResource bumps the download counter and reports the new total.
func (rc *ResourceController) DownloadResource() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}

		count, err := rc.resourceService.IncrementDownload(ctx, id)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "success", gin.H{"downloadCount": count})
	}
}
