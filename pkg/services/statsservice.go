package services

import (
	"context"

	"cultureshare-api-io/api/pkg/models"
	"cultureshare-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const recentLimit = 5

type statsService struct {
	userCollection     *mongo.Collection
	resourceCollection *mongo.Collection
	categoryCollection *mongo.Collection
	tagCollection      *mongo.Collection
	ratingCollection   *mongo.Collection
	favoriteCollection *mongo.Collection
	downloadCollection *mongo.Collection
}

func NewStatsService(db *mongo.Database) StatsService {
	return &statsService{
		userCollection:     util.GetCollection(db, "User"),
		resourceCollection: util.GetCollection(db, "Resource"),
		categoryCollection: util.GetCollection(db, "Category"),
		tagCollection:      util.GetCollection(db, "Tag"),
		ratingCollection:   util.GetCollection(db, "Rating"),
		favoriteCollection: util.GetCollection(db, "Favorite"),
		downloadCollection: util.GetCollection(db, "DownloadHistory"),
	}
}

// SystemStats recomputes every count from the live collections. Nothing is
// maintained incrementally; at current volume the ad hoc counts stay well
// inside the latency budget.
func (s *statsService) SystemStats(ctx context.Context) (*SystemStats, error) {
	stats := &SystemStats{}

	counts := []struct {
		collection *mongo.Collection
		filter     bson.M
		dest       *int64
	}{
		{s.userCollection, bson.M{}, &stats.TotalUsers},
		{s.resourceCollection, bson.M{}, &stats.TotalResources},
		{s.resourceCollection, bson.M{"status": models.StatusApproved}, &stats.TotalApprovedResources},
		{s.resourceCollection, bson.M{"status": models.StatusPending}, &stats.TotalPendingResources},
		{s.resourceCollection, bson.M{"status": models.StatusRejected}, &stats.TotalRejectedResources},
		{s.categoryCollection, bson.M{}, &stats.TotalCategories},
		{s.tagCollection, bson.M{}, &stats.TotalTags},
		{s.ratingCollection, bson.M{}, &stats.TotalRatings},
		{s.favoriteCollection, bson.M{}, &stats.TotalFavorites},
		{s.downloadCollection, bson.M{}, &stats.TotalDownloads},
	}

	for _, c := range counts {
		n, err := c.collection.CountDocuments(ctx, c.filter)
		if err != nil {
			return nil, errors.Wrap(err, "counting documents")
		}
		*c.dest = n
	}

	recentUsersOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(recentLimit).
		SetProjection(bson.M{"username": 1, "email": 1, "created_at": 1})
	cursor, err := s.userCollection.Find(ctx, bson.M{}, recentUsersOpts)
	if err != nil {
		return nil, errors.Wrap(err, "listing recent users")
	}
	if err := cursor.All(ctx, &stats.RecentUsers); err != nil {
		return nil, err
	}

	recentResourcesOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(recentLimit)
	cursor, err = s.resourceCollection.Find(ctx, bson.M{"status": models.StatusApproved}, recentResourcesOpts)
	if err != nil {
		return nil, errors.Wrap(err, "listing recent resources")
	}
	if err := cursor.All(ctx, &stats.RecentResources); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *statsService) UserStats(ctx context.Context, userID primitive.ObjectID) (*UserStats, error) {
	stats := &UserStats{UploadsByStatus: make(map[string]int64)}

	total, err := s.resourceCollection.CountDocuments(ctx, bson.M{"uploader": userID})
	if err != nil {
		return nil, errors.Wrap(err, "counting uploads")
	}
	stats.TotalResourcesUploaded = total

	for _, status := range []models.ResourceStatus{
		models.StatusDraft, models.StatusPending, models.StatusApproved,
		models.StatusRejected, models.StatusTerminated,
	} {
		n, err := s.resourceCollection.CountDocuments(ctx, bson.M{"uploader": userID, "status": status})
		if err != nil {
			return nil, errors.Wrap(err, "counting uploads by status")
		}
		stats.UploadsByStatus[string(status)] = n
	}

	if stats.TotalFavorites, err = s.favoriteCollection.CountDocuments(ctx, bson.M{"user": userID}); err != nil {
		return nil, err
	}
	if stats.TotalDownloads, err = s.downloadCollection.CountDocuments(ctx, bson.M{"user": userID}); err != nil {
		return nil, err
	}
	if stats.TotalRatings, err = s.ratingCollection.CountDocuments(ctx, bson.M{"user": userID}); err != nil {
		return nil, err
	}

	recentOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(recentLimit).
		SetProjection(bson.M{"title": 1, "status": 1, "created_at": 1})
	cursor, err := s.resourceCollection.Find(ctx, bson.M{"uploader": userID}, recentOpts)
	if err != nil {
		return nil, errors.Wrap(err, "listing recent uploads")
	}
	if err := cursor.All(ctx, &stats.RecentUploads); err != nil {
		return nil, err
	}

	return stats, nil
}
