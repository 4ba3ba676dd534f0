package model

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User roles. Every registration starts as a student; admin accounts are
// provisioned out of band.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User is the credential store record and the source of truth for
// authentication and verification state. StudentID is the join key shared
// verbatim with the identity provider and the profile mirror; it is minted
// once at registration and never reassigned.
type User struct {
	ID                bson.ObjectID `bson:"_id,omitempty"`
	StudentID         string        `bson:"student_id"`
	Email             string        `bson:"email"`
	PasswordHash      string        `bson:"password_hash"`
	Role              string        `bson:"role"`
	FirstName         string        `bson:"first_name"`
	LastName          string        `bson:"last_name"`
	Course            string        `bson:"course"`
	YearLevel         int           `bson:"year_level"`
	Verified          bool          `bson:"verified"`
	VerificationCode  string        `bson:"verification_code,omitempty"`
	VerificationToken string        `bson:"verification_token,omitempty"`
	CodeExpiresAt     time.Time     `bson:"code_expires_at,omitempty"`
	VerifiedAt        time.Time     `bson:"verified_at,omitempty"`
	CreatedAt         time.Time     `bson:"created_at"`
	UpdatedAt         time.Time     `bson:"updated_at"`
}

// DisplayName derives the name mirrored into the identity provider.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
