package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestChildPath(t *testing.T) {
	tests := []struct {
		name       string
		parentPath string
		childName  string
		expected   string
	}{
		{name: "root node", parentPath: "", childName: "Literature", expected: "Literature"},
		{name: "second level", parentPath: "Literature", childName: "Novels", expected: "Literature/Novels"},
		{name: "third level", parentPath: "Literature/Novels", childName: "Classics", expected: "Literature/Novels/Classics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ChildPath(tt.parentPath, tt.childName))
		})
	}
}

func TestChildLevel(t *testing.T) {
	assert.Equal(t, 1, ChildLevel(0), "no parent means root level")
	assert.Equal(t, 1, ChildLevel(-3), "garbage levels clamp to root")
	assert.Equal(t, 2, ChildLevel(1))
	assert.Equal(t, 5, ChildLevel(4))
}

func TestIsDescendantPath(t *testing.T) {
	tests := []struct {
		name     string
		ancestor string
		path     string
		expected bool
	}{
		{name: "direct child", ancestor: "Literature", path: "Literature/Novels", expected: true},
		{name: "deep descendant", ancestor: "Literature", path: "Literature/Novels/Classics", expected: true},
		{name: "self is not a descendant", ancestor: "Literature", path: "Literature", expected: false},
		{name: "sibling with shared prefix", ancestor: "Literature", path: "LiteratureReviews", expected: false},
		{name: "unrelated subtree", ancestor: "Literature", path: "Music/Folk", expected: false},
		{name: "empty ancestor", ancestor: "", path: "Literature", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDescendantPath(tt.ancestor, tt.path))
		})
	}
}

func TestBuildCategoryTree(t *testing.T) {
	literatureID := primitive.NewObjectID()
	novelsID := primitive.NewObjectID()
	classicsID := primitive.NewObjectID()
	musicID := primitive.NewObjectID()

	literature := &Category{ID: literatureID, Name: "Literature", Level: 1, Path: "Literature"}
	novels := &Category{ID: novelsID, Name: "Novels", Parent: &literatureID, Level: 2, Path: "Literature/Novels"}
	classics := &Category{ID: classicsID, Name: "Classics", Parent: &novelsID, Level: 3, Path: "Literature/Novels/Classics"}
	music := &Category{ID: musicID, Name: "Music", Level: 1, Path: "Music"}

	roots := BuildCategoryTree([]*Category{literature, music, novels, classics})

	assert.Len(t, roots, 2)
	assert.Equal(t, "Literature", roots[0].Name)
	assert.Equal(t, "Music", roots[1].Name)

	assert.Len(t, roots[0].Children, 1)
	assert.Equal(t, "Novels", roots[0].Children[0].Name)
	assert.Len(t, roots[0].Children[0].Children, 1)
	assert.Equal(t, "Classics", roots[0].Children[0].Children[0].Name)
	assert.Empty(t, roots[1].Children)
}

func TestBuildCategoryTreeOrphanSurfacesAtRoot(t *testing.T) {
	missingParent := primitive.NewObjectID()
	orphan := &Category{ID: primitive.NewObjectID(), Name: "Dangling", Parent: &missingParent}

	roots := BuildCategoryTree([]*Category{orphan})

	assert.Len(t, roots, 1)
	assert.Equal(t, "Dangling", roots[0].Name)
}

func TestBuildCategoryTreeResetsStaleChildren(t *testing.T) {
	stale := &Category{ID: primitive.NewObjectID(), Name: "Root"}
	stale.Children = []*Category{{Name: "Leftover"}}

	roots := BuildCategoryTree([]*Category{stale})

	assert.Len(t, roots, 1)
	assert.Empty(t, roots[0].Children)
}
