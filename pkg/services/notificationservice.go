package services

import (
	"context"
	"fmt"
	"time"

	"cultureshare-api-io/api/pkg/models"
	"cultureshare-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type notificationService struct {
	notificationCollection *mongo.Collection
}

func NewNotificationService(db *mongo.Database) NotificationService {
	return &notificationService{
		notificationCollection: util.GetCollection(db, "Notification"),
	}
}

// NotifyReviewedAsync records the review outcome for the uploader without
// blocking the review response.
func (ns *notificationService) NotifyReviewedAsync(resource models.Resource, verdict models.ResourceStatus, reason string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		notification := models.Notification{
			ID:         primitive.NewObjectID(),
			User:       resource.Uploader,
			ResourceID: &resource.ID,
			IsRead:     false,
			CreatedAt:  time.Now(),
		}

		if verdict == models.StatusApproved {
			notification.Type = models.NotifyResourceApproved
			notification.Title = "Resource approved"
			notification.Content = fmt.Sprintf("Your resource %q passed review and is now published.", resource.Title)
		} else {
			notification.Type = models.NotifyResourceRejected
			notification.Title = "Resource rejected"
			notification.Content = fmt.Sprintf("Your resource %q did not pass review. Reason: %s", resource.Title, reason)
		}

		if _, err := ns.notificationCollection.InsertOne(ctx, notification); err != nil {
			util.LogError("inserting review notification", err)
		}
	}()
}

// NotifyTerminatedAsync tells the uploader their approved resource was killed
// by a failed link check.
func (ns *notificationService) NotifyTerminatedAsync(resource models.Resource, reason string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		notification := models.Notification{
			ID:         primitive.NewObjectID(),
			User:       resource.Uploader,
			Type:       models.NotifyResourceTerminated,
			Title:      "Resource link went dead",
			Content:    fmt.Sprintf("Your resource %q was taken down: %s. Update the link and upload it again.", resource.Title, reason),
			ResourceID: &resource.ID,
			IsRead:     false,
			CreatedAt:  time.Now(),
		}

		if _, err := ns.notificationCollection.InsertOne(ctx, notification); err != nil {
			util.LogError("inserting termination notification", err)
		}
	}()
}

func (ns *notificationService) List(ctx context.Context, userID primitive.ObjectID, pagination util.PaginationArgs) ([]models.Notification, int64, error) {
	filter := bson.M{"user": userID}

	total, err := ns.notificationCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	find := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(pagination.Skip())).
		SetLimit(int64(pagination.Limit))
	cursor, err := ns.notificationCollection.Find(ctx, filter, find)
	if err != nil {
		return nil, 0, errors.Wrap(err, "listing notifications")
	}

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (ns *notificationService) MarkRead(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	res, err := ns.notificationCollection.UpdateOne(ctx,
		bson.M{"_id": notificationID, "user": userID},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
