package migrate

import (
	"context"
	"fmt"

	"cultureshare-api-io/api/pkg/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CategoryReferenceRepair fixes resources whose category field predates the
// typed reference: hex strings, category names, or stringified objects such
// as "[object Object]". Each is resolved to a real category id or cleared.
func CategoryReferenceRepair() Migration {
	return Migration{
		Version:     "20240115_category_reference_repair",
		Description: "normalize resource.category to an ObjectID reference or null",
		Up:          repairCategoryReferences,
	}
}

func repairCategoryReferences(ctx context.Context, db *mongo.Database) error {
	resources := db.Collection("Resource")
	categories := db.Collection("Category")

	cursor, err := resources.Find(ctx, bson.M{
		"category": bson.M{
			"$exists": true,
			"$ne":     nil,
			"$not":    bson.M{"$type": "objectId"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to query corrupt category references: %w", err)
	}
	defer cursor.Close(ctx)

	var repaired, cleared int
	for cursor.Next(ctx) {
		var doc struct {
			ID       primitive.ObjectID `bson:"_id"`
			Category interface{}        `bson:"category"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return fmt.Errorf("failed to decode resource: %w", err)
		}

		resolved, err := resolveCategoryValue(ctx, categories, doc.Category)
		if err != nil {
			return err
		}

		update := bson.M{"$set": bson.M{"category": nil}}
		if resolved != nil {
			update = bson.M{"$set": bson.M{"category": *resolved}}
			repaired++
		} else {
			cleared++
		}

		if _, err := resources.UpdateOne(ctx, bson.M{"_id": doc.ID}, update); err != nil {
			return fmt.Errorf("failed to repair resource %s: %w", doc.ID.Hex(), err)
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("cursor failed during category repair: %w", err)
	}

	util.LogInfof("category repair: %d references resolved, %d cleared", repaired, cleared)
	return nil
}

// resolveCategoryValue maps a legacy category value to an existing category
// id. Returns nil when nothing in the catalog matches.
func resolveCategoryValue(ctx context.Context, categories *mongo.Collection, value interface{}) (*primitive.ObjectID, error) {
	switch v := value.(type) {
	case string:
		if id, err := primitive.ObjectIDFromHex(v); err == nil {
			return confirmCategory(ctx, categories, bson.M{"_id": id})
		}
		// Not hex: treat it as a category name, which some legacy writers
		// stored instead of the id. "[object Object]" never matches.
		return confirmCategory(ctx, categories, bson.M{"name": v})
	case bson.M:
		if raw, ok := v["_id"]; ok {
			if id, ok := raw.(primitive.ObjectID); ok {
				return confirmCategory(ctx, categories, bson.M{"_id": id})
			}
		}
		return nil, nil
	case bson.D:
		for _, elem := range v {
			if elem.Key != "_id" {
				continue
			}
			if id, ok := elem.Value.(primitive.ObjectID); ok {
				return confirmCategory(ctx, categories, bson.M{"_id": id})
			}
		}
		return nil, nil
	default:
		return nil, nil
	}
}

func confirmCategory(ctx context.Context, categories *mongo.Collection, filter bson.M) (*primitive.ObjectID, error) {
	var category struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err := categories.FindOne(ctx, filter).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to confirm category: %w", err)
	}
	return &category.ID, nil
}
