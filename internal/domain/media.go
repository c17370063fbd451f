package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionMedia stores metadata about a form-check video recorded for a session
// exercise. The actual file resides in S3.
type SessionMedia struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID         primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	SessionExerciseID primitive.ObjectID `bson:"sessionExerciseId" json:"sessionExerciseId"`
	UserID            primitive.ObjectID `bson:"userId" json:"userId"`
	ObjectKey         string             `bson:"objectKey" json:"-"`             // Key in the bucket - internal use
	FileName          string             `bson:"fileName" json:"fileName"`       // Original filename provided by the client
	ContentType       string             `bson:"contentType" json:"contentType"` // MIME type (e.g., "video/mp4")
	Size              int64              `bson:"size" json:"size"`               // File size in bytes
	UploadedAt        time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
