package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tag is the registry entry behind the free-form tag strings on resources.
// Upserted on first use so stats can count distinct tags.
type Tag struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	UseCount  int                `bson:"use_count" json:"useCount"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
