package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Product is a category record. Description is nil when not provided.
type Product struct {
	ID          bson.ObjectID `bson:"_id" json:"id"`
	Name        string        `bson:"name" json:"name"`
	Description *string       `bson:"description,omitempty" json:"description"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}
