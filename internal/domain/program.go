// internal/domain/program.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutProgram is a user's reusable workout template. Sessions are started from it
// and treat it as read-only.
type WorkoutProgram struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"` // Owner
	Name        string             `bson:"name" json:"name"`     // e.g., "Push Day A"
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Exercises   []ProgramExercise  `bson:"exercises" json:"exercises"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProgramExercise is one exercise slot of a program.
type ProgramExercise struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	ExerciseID   primitive.ObjectID `bson:"exerciseId" json:"exerciseId"` // Catalog exercise
	DisplayOrder int                `bson:"displayOrder" json:"displayOrder"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Sets         []ProgramSet       `bson:"sets" json:"sets"`
}

// ProgramSet holds the targets for one set of a program exercise.
type ProgramSet struct {
	ID                    primitive.ObjectID `bson:"_id" json:"id"`
	Sequence              int                `bson:"sequence" json:"sequence"`
	TargetWeight          *float64           `bson:"targetWeight,omitempty" json:"targetWeight,omitempty"`
	TargetReps            *int               `bson:"targetReps,omitempty" json:"targetReps,omitempty"`
	TargetDurationSeconds *int               `bson:"targetDurationSeconds,omitempty" json:"targetDurationSeconds,omitempty"`
	RestSeconds           *int               `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
}
