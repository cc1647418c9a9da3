package services

import (
	"context"
	"regexp"
	"time"

	"cultureshare-api-io/api/internal/common"
	"cultureshare-api-io/api/pkg/models"
	"cultureshare-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

type categoryService struct {
	categoryCollection *mongo.Collection
	resourceCollection *mongo.Collection
}

func NewCategoryService(db *mongo.Database) CategoryService {
	return &categoryService{
		categoryCollection: util.GetCollection(db, "Category"),
		resourceCollection: util.GetCollection(db, "Resource"),
	}
}

func (s *categoryService) Create(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	if err := common.Validate.Struct(&req); err != nil {
		return nil, err
	}

	count, err := s.categoryCollection.CountDocuments(ctx, bson.M{"name": req.Name})
	if err != nil {
		return nil, errors.Wrap(err, "checking category name")
	}
	if count > 0 {
		return nil, models.ErrDuplicateName
	}

	now := time.Now()
	category := models.Category{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		Description: req.Description,
		Level:       1,
		Order:       req.Order,
		Path:        req.Name,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if req.Parent != nil && *req.Parent != "" {
		parentID, err := primitive.ObjectIDFromHex(*req.Parent)
		if err != nil {
			return nil, models.ErrInvalidParent
		}
		parent, err := s.findByID(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || !parent.IsActive {
			return nil, models.ErrInvalidParent
		}
		category.Parent = &parentID
		category.Level = models.ChildLevel(parent.Level)
		category.Path = models.ChildPath(parent.Path, category.Name)
	}

	if _, err := s.categoryCollection.InsertOne(ctx, category); err != nil {
		if isDuplicateKey(err) {
			return nil, models.ErrDuplicateName
		}
		return nil, errors.Wrap(err, "inserting category")
	}

	return &category, nil
}

func (s *categoryService) Update(ctx context.Context, id primitive.ObjectID, req models.CategoryUpdateRequest) (*models.Category, error) {
	if err := common.Validate.Struct(&req); err != nil {
		return nil, err
	}

	category, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, models.ErrNotFound
	}

	if req.Name != nil && *req.Name != category.Name {
		count, err := s.categoryCollection.CountDocuments(ctx, bson.M{"name": *req.Name, "_id": bson.M{"$ne": id}})
		if err != nil {
			return nil, errors.Wrap(err, "checking category name")
		}
		if count > 0 {
			return nil, models.ErrDuplicateName
		}
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Order != nil {
		category.Order = *req.Order
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	// Re-parenting. The proposed parent must exist, be active, and must not be
	// the node itself or anything inside its subtree.
	if req.Parent != nil {
		if *req.Parent == "" {
			category.Parent = nil
		} else {
			parentID, err := primitive.ObjectIDFromHex(*req.Parent)
			if err != nil {
				return nil, models.ErrInvalidParent
			}
			if parentID == id {
				return nil, models.ErrCyclicParent
			}
			parent, err := s.findByID(ctx, parentID)
			if err != nil {
				return nil, err
			}
			if parent == nil || !parent.IsActive {
				return nil, models.ErrInvalidParent
			}
			if models.IsDescendantPath(category.Path, parent.Path) {
				return nil, models.ErrCyclicParent
			}
			category.Parent = &parentID
		}
	}

	// Recompute this node's path/level from its (possibly new) parent, then
	// cascade to the whole subtree inside one transaction so readers never see
	// a tree with stale descendant paths.
	newLevel := 1
	newPath := category.Name
	if category.Parent != nil {
		parent, err := s.findByID(ctx, *category.Parent)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, models.ErrInvalidParent
		}
		newLevel = models.ChildLevel(parent.Level)
		newPath = models.ChildPath(parent.Path, category.Name)
	}
	category.Level = newLevel
	category.Path = newPath
	category.UpdatedAt = time.Now()

	callback := func(sc mongo.SessionContext) (interface{}, error) {
		update := bson.M{"$set": bson.M{
			"name":        category.Name,
			"description": category.Description,
			"parent":      category.Parent,
			"order":       category.Order,
			"is_active":   category.IsActive,
			"level":       category.Level,
			"path":        category.Path,
			"updated_at":  category.UpdatedAt,
		}}
		if _, err := s.categoryCollection.UpdateOne(sc, bson.M{"_id": id}, update); err != nil {
			return nil, err
		}
		if err := s.cascadePaths(sc, category); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := s.withTransaction(ctx, callback); err != nil {
		// A rename racing past the count check above loses against the unique
		// name index inside the transaction.
		if isDuplicateKey(err) {
			return nil, models.ErrDuplicateName
		}
		return nil, errors.Wrap(err, "updating category tree")
	}

	return category, nil
}

// cascadePaths rewrites path/level for every descendant of the given node,
// depth first, so the whole subtree agrees with the node's new position.
func (s *categoryService) cascadePaths(ctx mongo.SessionContext, parent *models.Category) error {
	cursor, err := s.categoryCollection.Find(ctx, bson.M{"parent": parent.ID})
	if err != nil {
		return err
	}

	var children []*models.Category
	if err := cursor.All(ctx, &children); err != nil {
		return err
	}

	for _, child := range children {
		child.Level = models.ChildLevel(parent.Level)
		child.Path = models.ChildPath(parent.Path, child.Name)

		update := bson.M{"$set": bson.M{
			"level":      child.Level,
			"path":       child.Path,
			"updated_at": time.Now(),
		}}
		if _, err := s.categoryCollection.UpdateOne(ctx, bson.M{"_id": child.ID}, update); err != nil {
			return err
		}
		if err := s.cascadePaths(ctx, child); err != nil {
			return err
		}
	}

	return nil
}

func (s *categoryService) Delete(ctx context.Context, id primitive.ObjectID) error {
	category, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return models.ErrNotFound
	}

	childCount, err := s.categoryCollection.CountDocuments(ctx, bson.M{"parent": id})
	if err != nil {
		return errors.Wrap(err, "counting child categories")
	}
	if childCount > 0 {
		return models.ErrHasChildren
	}

	resourceCount, err := s.resourceCollection.CountDocuments(ctx, bson.M{"category": id})
	if err != nil {
		return errors.Wrap(err, "counting category resources")
	}
	if resourceCount > 0 {
		return models.ErrHasResources
	}

	res, err := s.categoryCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting category")
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (s *categoryService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	category, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, models.ErrNotFound
	}
	return category, nil
}

func (s *categoryService) ListFlat(ctx context.Context, activeOnly bool) ([]*models.Category, error) {
	filter := bson.M{}
	if activeOnly {
		filter["is_active"] = true
	}

	find := options.Find().SetSort(bson.D{{Key: "level", Value: 1}, {Key: "order", Value: 1}})
	cursor, err := s.categoryCollection.Find(ctx, filter, find)
	if err != nil {
		return nil, errors.Wrap(err, "listing categories")
	}

	var categories []*models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}

	return categories, nil
}

func (s *categoryService) ListTree(ctx context.Context, activeOnly bool) ([]*models.Category, error) {
	categories, err := s.ListFlat(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	return models.BuildCategoryTree(categories), nil
}

func (s *categoryService) ResourcesIn(ctx context.Context, id primitive.ObjectID, pagination util.PaginationArgs) ([]models.Resource, int64, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	// The category plus everything below it, found by path prefix.
	subtree := bson.M{"path": bson.M{"$regex": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(category.Path) + "(/|$)"}}}
	cursor, err := s.categoryCollection.Find(ctx, subtree)
	if err != nil {
		return nil, 0, errors.Wrap(err, "finding descendant categories")
	}

	var nodes []*models.Category
	if err := cursor.All(ctx, &nodes); err != nil {
		return nil, 0, err
	}

	ids := make([]primitive.ObjectID, 0, len(nodes))
	for _, node := range nodes {
		ids = append(ids, node.ID)
	}

	filter := bson.M{
		"category": bson.M{"$in": ids},
		"status":   models.StatusApproved,
	}

	total, err := s.resourceCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	find := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(pagination.Skip())).
		SetLimit(int64(pagination.Limit))
	resCursor, err := s.resourceCollection.Find(ctx, filter, find)
	if err != nil {
		return nil, 0, err
	}

	var resources []models.Resource
	if err := resCursor.All(ctx, &resources); err != nil {
		return nil, 0, err
	}

	return resources, total, nil
}

func (s *categoryService) findByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var category models.Category
	err := s.categoryCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "finding category")
	}
	return &category, nil
}

func (s *categoryService) withTransaction(ctx context.Context, callback func(mongo.SessionContext) (interface{}, error)) error {
	wc := writeconcern.New(writeconcern.WMajority())
	txnOptions := options.Transaction().SetWriteConcern(wc)
	session, err := s.categoryCollection.Database().Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, callback, txnOptions)
	return err
}
