package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PasswordResetToken is a single reset grant. The JTI ties the signed reset
// credential handed to the user back to this record, so a credential can be
// consumed exactly once even while its signature is still valid.
type PasswordResetToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	StudentID string        `bson:"student_id"`
	Email     string        `bson:"email"`
	JTI       string        `bson:"jti"`
	Used      bool          `bson:"used"`
	ExpiresAt time.Time     `bson:"expires_at"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
