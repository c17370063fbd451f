// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in the catalog.
type Exercise struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID       primitive.ObjectID `bson:"ownerId" json:"ownerId"` // User who added it to the catalog
	Name          string             `bson:"name" json:"name"`
	Category      string             `bson:"category,omitempty" json:"category,omitempty"`           // e.g., "Strength", "Cardio"
	PrimaryMuscle string             `bson:"primaryMuscle,omitempty" json:"primaryMuscle,omitempty"` // e.g., "Chest", "Legs"
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
