package services

import (
	"context"
	"time"

	"cultureshare-api-io/api/internal/common"
	"cultureshare-api-io/api/pkg/models"
	"cultureshare-api-io/api/pkg/util"

	slug2 "github.com/gosimple/slug"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type resourceService struct {
	resourceCollection *mongo.Collection
	categoryCollection *mongo.Collection
	tagCollection      *mongo.Collection
	notifications      NotificationService
}

func NewResourceService(db *mongo.Database, notifications NotificationService) ResourceService {
	return &resourceService{
		resourceCollection: util.GetCollection(db, "Resource"),
		categoryCollection: util.GetCollection(db, "Category"),
		tagCollection:      util.GetCollection(db, "Tag"),
		notifications:      notifications,
	}
}

func (s *resourceService) Create(ctx context.Context, uploader primitive.ObjectID, req models.ResourceRequest) (*models.Resource, error) {
	if err := common.Validate.Struct(&req); err != nil {
		return nil, err
	}

	categoryRef, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	tags := models.NormalizeTags(req.Tags)
	if err := s.registerTags(ctx, tags); err != nil {
		util.LogError("registering tags", err)
	}

	status := models.StatusPending
	if req.Draft {
		status = models.StatusDraft
	}

	now := time.Now()
	resource := models.Resource{
		ID:          primitive.NewObjectID(),
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
		Slug:        slug2.Make(req.Title),
		Uploader:    uploader,
		Category:    categoryRef,
		Tags:        tags,
		Status:      status,
		Version:     1,
		IsPublic:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.resourceCollection.InsertOne(ctx, resource); err != nil {
		return nil, errors.Wrap(err, "inserting resource")
	}

	return &resource, nil
}

func (s *resourceService) Get(ctx context.Context, id primitive.ObjectID) (*ResourceDetail, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"_id": id}},
		{
			"$lookup": bson.M{
				"from":         "User",
				"localField":   "uploader",
				"foreignField": "_id",
				"as":           "uploader_info",
			},
		},
		{"$unwind": bson.M{"path": "$uploader_info", "preserveNullAndEmptyArrays": true}},
		{
			"$lookup": bson.M{
				"from":         "Category",
				"localField":   "category",
				"foreignField": "_id",
				"as":           "category_info",
			},
		},
		{"$unwind": bson.M{"path": "$category_info", "preserveNullAndEmptyArrays": true}},
	}

	cursor, err := s.resourceCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "loading resource")
	}

	var results []ResourceDetail
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, models.ErrNotFound
	}

	return &results[0], nil
}

func (s *resourceService) List(ctx context.Context, filter models.ResourceFilter, pagination util.PaginationArgs) ([]models.Resource, int64, error) {
	query := bson.M{}

	// Unless the caller asks for a specific status (or "all"), only approved
	// resources are listed publicly.
	switch filter.Status {
	case "":
		query["status"] = models.StatusApproved
	case "all":
	default:
		query["status"] = models.ResourceStatus(filter.Status)
	}

	if filter.Keyword != "" {
		regex := primitive.Regex{Pattern: filter.Keyword, Options: "i"}
		query["$or"] = []bson.M{
			{"title": bson.M{"$regex": regex}},
			{"description": bson.M{"$regex": regex}},
		}
	}

	if filter.Category != "" {
		categoryID, err := primitive.ObjectIDFromHex(filter.Category)
		if err != nil {
			return nil, 0, models.ErrInvalidCategory
		}
		query["category"] = categoryID
	}

	if len(filter.Tags) > 0 {
		query["tags"] = bson.M{"$in": models.NormalizeTags(filter.Tags)}
	}

	if filter.UploaderID != "" {
		uploaderID, err := primitive.ObjectIDFromHex(filter.UploaderID)
		if err == nil {
			query["uploader"] = uploaderID
		}
	}

	total, err := s.resourceCollection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	find := options.Find().
		SetSort(resourceSort(pagination)).
		SetSkip(int64(pagination.Skip())).
		SetLimit(int64(pagination.Limit))
	cursor, err := s.resourceCollection.Find(ctx, query, find)
	if err != nil {
		return nil, 0, err
	}

	var resources []models.Resource
	if err := cursor.All(ctx, &resources); err != nil {
		return nil, 0, err
	}

	return resources, total, nil
}

// resourceSort whitelists sortable fields; anything else falls back to newest
// first.
func resourceSort(pagination util.PaginationArgs) bson.D {
	key := "created_at"
	switch pagination.SortBy {
	case "downloadCount":
		key = "download_count"
	case "rating":
		key = "rating"
	case "title":
		key = "title"
	case "createdAt", "":
	default:
	}

	order := -1
	if pagination.SortOrder == "asc" {
		order = 1
	}

	return bson.D{{Key: key, Value: order}}
}

func (s *resourceService) Update(ctx context.Context, id, userID primitive.ObjectID, req models.ResourceUpdateRequest) (*models.Resource, error) {
	if err := common.Validate.Struct(&req); err != nil {
		return nil, err
	}

	resource, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if resource.Uploader != userID {
		return nil, errors.Wrap(models.ErrForbidden, "only the uploader may edit a resource")
	}
	if !models.EditableBy(resource.Status) {
		return nil, models.NewTransitionError(resource.Status, "edit")
	}

	set := bson.M{"updated_at": time.Now()}
	if req.Title != nil {
		set["title"] = *req.Title
		set["slug"] = slug2.Make(*req.Title)
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Link != nil {
		set["link"] = *req.Link
	}
	if req.Category != nil {
		categoryRef, err := s.resolveCategory(ctx, req.Category)
		if err != nil {
			return nil, err
		}
		set["category"] = categoryRef
	}
	if req.Tags != nil {
		tags := models.NormalizeTags(req.Tags)
		if err := s.registerTags(ctx, tags); err != nil {
			util.LogError("registering tags", err)
		}
		set["tags"] = tags
	}

	// Content edits on a live or queued resource re-enter review. Drafts stay
	// drafts, and rejected resources wait for an explicit resubmit.
	if resource.Status == models.StatusApproved || resource.Status == models.StatusPending {
		set["status"] = models.StatusPending
		set["reviewed_by"] = nil
		set["reviewed_at"] = nil
		set["reject_reason"] = ""
	}

	// The write is conditional on the status the edit decision was based on:
	// if a concurrent transition (a review verdict, a link-check termination)
	// landed since the read, MatchedCount is zero and the caller sees the real
	// current state instead of the edit silently reviving the resource.
	filter := bson.M{"_id": id, "uploader": userID, "status": resource.Status}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	res, err := s.resourceCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, errors.Wrap(err, "updating resource")
	}
	if res.MatchedCount == 0 {
		return nil, s.explainMiss(ctx, id, userID, "edit")
	}

	return s.findByID(ctx, id)
}

func (s *resourceService) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	resource, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	if resource.Uploader != userID {
		return errors.Wrap(models.ErrForbidden, "only the uploader may delete a resource")
	}

	res, err := s.resourceCollection.DeleteOne(ctx, bson.M{"_id": id, "uploader": userID})
	if err != nil {
		return errors.Wrap(err, "deleting resource")
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Submit moves an uploader's draft into the review queue. The status filter in
// the update makes the transition atomic: a concurrent move leaves
// MatchedCount zero and the caller gets the real current state back.
func (s *resourceService) Submit(ctx context.Context, id, userID primitive.ObjectID) (*models.Resource, error) {
	filter := bson.M{"_id": id, "uploader": userID, "status": models.StatusDraft}
	update := bson.M{"$set": bson.M{"status": models.StatusPending, "updated_at": time.Now()}}

	res, err := s.resourceCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, errors.Wrap(err, "submitting resource")
	}
	if res.MatchedCount == 0 {
		return nil, s.explainMiss(ctx, id, userID, "submit")
	}

	return s.findByID(ctx, id)
}

// Resubmit re-enters review after a rejection, clearing the previous verdict.
func (s *resourceService) Resubmit(ctx context.Context, id, userID primitive.ObjectID) (*models.Resource, error) {
	filter := bson.M{"_id": id, "uploader": userID, "status": models.StatusRejected}
	update := bson.M{"$set": bson.M{
		"status":        models.StatusPending,
		"reviewed_by":   nil,
		"reviewed_at":   nil,
		"reject_reason": "",
		"updated_at":    time.Now(),
	}}

	res, err := s.resourceCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, errors.Wrap(err, "resubmitting resource")
	}
	if res.MatchedCount == 0 {
		return nil, s.explainMiss(ctx, id, userID, "resubmit")
	}

	return s.findByID(ctx, id)
}

// Review lands an admin verdict on a pending resource. Concurrent verdicts on
// the same resource serialize through the conditional filter: exactly one
// matches, the other observes an invalid transition.
func (s *resourceService) Review(ctx context.Context, id, reviewerID primitive.ObjectID, req models.ReviewRequest) (*models.Resource, error) {
	if err := models.ValidateReview(req); err != nil {
		return nil, err
	}

	now := time.Now()
	set := bson.M{
		"status":      req.Status,
		"reviewed_by": reviewerID,
		"reviewed_at": now,
		"updated_at":  now,
	}
	if req.Status == models.StatusRejected {
		set["reject_reason"] = req.RejectReason
	} else {
		set["reject_reason"] = ""
	}

	filter := bson.M{"_id": id, "status": models.StatusPending}
	res, err := s.resourceCollection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return nil, errors.Wrap(err, "reviewing resource")
	}
	if res.MatchedCount == 0 {
		current, err := s.findByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, models.NewTransitionError(current.Status, "review")
	}

	reviewed, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyReviewedAsync(*reviewed, req.Status, req.RejectReason)

	return reviewed, nil
}

func (s *resourceService) IncrementDownload(ctx context.Context, id primitive.ObjectID) (int, error) {
	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var resource models.Resource
	err := s.resourceCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"download_count": 1}},
		opts,
	).Decode(&resource)
	if err == mongo.ErrNoDocuments {
		return 0, models.ErrNotFound
	}
	if err != nil {
		return 0, errors.Wrap(err, "incrementing download count")
	}

	return resource.DownloadCount, nil
}

func (s *resourceService) PendingQueue(ctx context.Context, pagination util.PaginationArgs) ([]models.Resource, int64, error) {
	return s.List(ctx, models.ResourceFilter{Status: string(models.StatusPending)}, pagination)
}

func (s *resourceService) ByUploader(ctx context.Context, uploaderID primitive.ObjectID, status string, pagination util.PaginationArgs) ([]models.Resource, int64, error) {
	filter := models.ResourceFilter{
		UploaderID: uploaderID.Hex(),
		Status:     status,
	}
	if status == "" {
		filter.Status = "all"
	}
	return s.List(ctx, filter, pagination)
}

// resolveCategory turns an optional hex id into a validated reference. The
// category must exist and be active at assignment time; deactivating it later
// does not unfile existing resources.
func (s *resourceService) resolveCategory(ctx context.Context, raw *string) (*primitive.ObjectID, error) {
	if raw == nil || common.IsEmptyString(*raw) {
		return nil, nil
	}

	categoryID, err := primitive.ObjectIDFromHex(*raw)
	if err != nil {
		return nil, models.ErrInvalidCategory
	}

	var category models.Category
	err = s.categoryCollection.FindOne(ctx, bson.M{"_id": categoryID}).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrInvalidCategory
	}
	if err != nil {
		return nil, errors.Wrap(err, "resolving category")
	}
	if !category.IsActive {
		return nil, models.ErrInvalidCategory
	}

	return &categoryID, nil
}

// registerTags upserts the tag registry so stats can count distinct tags.
func (s *resourceService) registerTags(ctx context.Context, tags []string) error {
	for _, tag := range tags {
		opts := options.Update().SetUpsert(true)
		_, err := s.tagCollection.UpdateOne(ctx,
			bson.M{"name": tag},
			bson.M{
				"$inc":         bson.M{"use_count": 1},
				"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "created_at": time.Now()},
			},
			opts,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *resourceService) findByID(ctx context.Context, id primitive.ObjectID) (*models.Resource, error) {
	var resource models.Resource
	err := s.resourceCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&resource)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "finding resource")
	}
	return &resource, nil
}

// explainMiss distinguishes why a conditional uploader transition matched
// nothing: unknown id, someone else's resource, or a state that does not allow
// the move.
func (s *resourceService) explainMiss(ctx context.Context, id, userID primitive.ObjectID, attempted string) error {
	resource, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	if resource.Uploader != userID {
		return errors.Wrapf(models.ErrForbidden, "only the uploader may %s a resource", attempted)
	}
	return models.NewTransitionError(resource.Status, attempted)
}
