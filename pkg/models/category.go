package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is a node in the hierarchical taxonomy resources are filed under.
// Path is the materialized chain of ancestor names ("Literature/Novels"); it is
// recomputed whenever the parent changes and drives descendant and cycle
// queries without recursive traversal.
type Category struct {
	ID          primitive.ObjectID  `bson:"_id" json:"id"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description" json:"description"`
	Parent      *primitive.ObjectID `bson:"parent" json:"parent"`
	Level       int                 `bson:"level" json:"level"`
	Order       int                 `bson:"order" json:"order"`
	Path        string              `bson:"path" json:"path"`
	IsActive    bool                `bson:"is_active" json:"isActive"`
	CreatedAt   time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updatedAt"`
	Children    []*Category         `bson:"-" json:"children,omitempty"`
}

type CategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=50"`
	Description string  `json:"description" validate:"max=500"`
	Parent      *string `json:"parent"`
	Order       int     `json:"order"`
}

type CategoryUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=50"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Parent      *string `json:"parent"`
	Order       *int    `json:"order"`
	IsActive    *bool   `json:"isActive"`
}

// ChildPath materializes a node's path below a parent. A root node's path is
// its own name.
func ChildPath(parentPath, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + "/" + name
}

// ChildLevel is the depth below a parent; roots sit at level 1.
func ChildLevel(parentLevel int) int {
	if parentLevel < 1 {
		return 1
	}
	return parentLevel + 1
}

// IsDescendantPath reports whether path lies strictly inside the subtree
// rooted at ancestorPath. A node is not its own descendant.
func IsDescendantPath(ancestorPath, path string) bool {
	if ancestorPath == "" || path == ancestorPath {
		return false
	}
	return strings.HasPrefix(path, ancestorPath+"/")
}

// BuildCategoryTree nests a flat category list by parent reference. Input
// order is preserved within each children slice, so callers sorting by
// (level, order) get ordered siblings for free.
func BuildCategoryTree(categories []*Category) []*Category {
	categoryMap := make(map[primitive.ObjectID]*Category, len(categories))
	var roots []*Category

	for _, category := range categories {
		category.Children = nil
		categoryMap[category.ID] = category
	}

	for _, category := range categories {
		if category.Parent == nil {
			roots = append(roots, category)
			continue
		}
		parent, ok := categoryMap[*category.Parent]
		if !ok {
			// Orphaned by a filtered query; surface it at the root rather
			// than dropping it.
			roots = append(roots, category)
			continue
		}
		parent.Children = append(parent.Children, category)
	}

	return roots
}
