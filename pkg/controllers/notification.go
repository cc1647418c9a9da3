package controllers

import (
	"context"
	"net/http"

	"cultureshare-api-io/api/internal/auth"
	"cultureshare-api-io/api/internal/common"
	"cultureshare-api-io/api/pkg/services"
	"cultureshare-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationController struct {
	notificationService services.NotificationService
}

func InitNotificationController(notificationService services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// GetNotifications - /v1/notifications
func (nc *NotificationController) GetNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		principal, err := auth.CurrentPrincipal(c)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			return
		}

		pagination := util.GetPaginationArgs(c)
		notifications, total, err := nc.notificationService.List(ctx, principal.UserID, pagination)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandlePaginated(c, http.StatusOK, notifications, total, pagination)
	}
}

// MarkNotificationRead - /v1/notifications/:id/read
func (nc *NotificationController) MarkNotificationRead() gin.HandlerFunc {
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

		if err := nc.notificationService.MarkRead(ctx, principal.UserID, id); err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Notification marked as read", nil)
	}
}
