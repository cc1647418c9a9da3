package services

import (
	"context"
	"testing"
	"time"

	"cultureshare-api-io/api/pkg/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const categoryNS = "cultureshare.Category"

func countResponse(n int32) bson.D {
	return mtest.CreateCursorResponse(0, categoryNS, mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func emptyCountResponse() bson.D {
	return mtest.CreateCursorResponse(0, categoryNS, mtest.FirstBatch)
}

func categoryNode(name, path string, level int, parent *primitive.ObjectID) models.Category {
	now := time.Now().Truncate(time.Millisecond)
	return models.Category{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Parent:    parent,
		Level:     level,
		Path:      path,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("caught by the pre-check", func(mt *mtest.T) {
		svc := NewCategoryService(mt.DB)

		mt.AddMockResponses(countResponse(1))

		_, err := svc.Create(context.Background(), models.CategoryRequest{Name: "Literature"})
		assert.ErrorIs(mt.T, err, models.ErrDuplicateName)
	})

	// A second writer can slip between the count and the insert; the unique
	// name index catches it and the caller still sees a duplicate, not a 500.
	mt.Run("caught by the unique index", func(mt *mtest.T) {
		svc := NewCategoryService(mt.DB)

		mt.AddMockResponses(
			emptyCountResponse(),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "E11000 duplicate key error",
			}),
		)

		_, err := svc.Create(context.Background(), models.CategoryRequest{Name: "Literature"})
		assert.ErrorIs(mt.T, err, models.ErrDuplicateName)
	})
}

func TestUpdateCategoryParentGuards(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("node as its own parent", func(mt *mtest.T) {
		svc := NewCategoryService(mt.DB)

		node := categoryNode("Literature", "Literature", 1, nil)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, categoryNS, mtest.FirstBatch, toDoc(mt.T, node)),
		)

		self := node.ID.Hex()
		_, err := svc.Update(context.Background(), node.ID, models.CategoryUpdateRequest{Parent: &self})
		assert.ErrorIs(mt.T, err, models.ErrCyclicParent)
	})

	mt.Run("node under its own descendant", func(mt *mtest.T) {
		svc := NewCategoryService(mt.DB)

		root := categoryNode("Literature", "Literature", 1, nil)
		child := categoryNode("Novels", "Literature/Novels", 2, &root.ID)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, categoryNS, mtest.FirstBatch, toDoc(mt.T, root)),
			mtest.CreateCursorResponse(0, categoryNS, mtest.FirstBatch, toDoc(mt.T, child)),
		)

		parent := child.ID.Hex()
		_, err := svc.Update(context.Background(), root.ID, models.CategoryUpdateRequest{Parent: &parent})
		assert.ErrorIs(mt.T, err, models.ErrCyclicParent)
	})

	mt.Run("inactive parent", func(mt *mtest.T) {
		svc := NewCategoryService(mt.DB)

		node := categoryNode("Novels", "Novels", 1, nil)
		retired := categoryNode("Archive", "Archive", 1, nil)
		retired.IsActive = false
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, categoryNS, mtest.FirstBatch, toDoc(mt.T, node)),
			mtest.CreateCursorResponse(0, categoryNS, mtest.FirstBatch, toDoc(mt.T, retired)),
		)

		parent := retired.ID.Hex()
		_, err := svc.Update(context.Background(), node.ID, models.CategoryUpdateRequest{Parent: &parent})
		assert.ErrorIs(mt.T, err, models.ErrInvalidParent)
	})
}

// Renaming a node rewrites its own path and every descendant's inside one
// transaction.
func TestUpdateCategoryRenameCascades(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("root rename re-paths the child", func(mt *mtest.T) {
		svc := NewCategoryService(mt.DB)

		root := categoryNode("Literature", "Literature", 1, nil)
		child := categoryNode("Novels", "Literature/Novels", 2, &root.ID)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, categoryNS, mtest.FirstBatch, toDoc(mt.T, root)),
			emptyCountResponse(), // rename target is free
			updateResponse(1),    // the node itself
			mtest.CreateCursorResponse(0, categoryNS, mtest.FirstBatch, toDoc(mt.T, child)),
			updateResponse(1), // the child's new path
			mtest.CreateCursorResponse(0, categoryNS, mtest.FirstBatch), // child has no children
			mtest.CreateSuccessResponse(), // commit
		)

		name := "World Literature"
		updated, err := svc.Update(context.Background(), root.ID, models.CategoryUpdateRequest{Name: &name})

		assert.NoError(mt.T, err)
		assert.Equal(mt.T, "World Literature", updated.Name)
		assert.Equal(mt.T, "World Literature", updated.Path)
		assert.Equal(mt.T, 1, updated.Level)
	})
}

func TestDeleteCategoryGuards(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("node with child categories", func(mt *mtest.T) {
		svc := NewCategoryService(mt.DB)

		node := categoryNode("Literature", "Literature", 1, nil)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, categoryNS, mtest.FirstBatch, toDoc(mt.T, node)),
			countResponse(1),
		)

		err := svc.Delete(context.Background(), node.ID)
		assert.ErrorIs(mt.T, err, models.ErrHasChildren)
	})

	mt.Run("node with filed resources", func(mt *mtest.T) {
		svc := NewCategoryService(mt.DB)

		node := categoryNode("Music", "Music", 1, nil)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, categoryNS, mtest.FirstBatch, toDoc(mt.T, node)),
			emptyCountResponse(),
			countResponse(3),
		)

		err := svc.Delete(context.Background(), node.ID)
		assert.ErrorIs(mt.T, err, models.ErrHasResources)
	})
}
