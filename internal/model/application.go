package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Application review statuses.
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// Application is a scholarship application submitted by a verified student.
// StudentID references the owning user's join key; one application exists
// per student per academic year.
type Application struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	StudentID    string        `bson:"student_id"`
	AcademicYear string        `bson:"academic_year"`
	Scholarship  string        `bson:"scholarship"`
	Status       string        `bson:"status"`
	Documents    []Document    `bson:"documents"`
	CreatedAt    time.Time     `bson:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at"`
}

// Document is an uploaded supporting file stored in the object store.
type Document struct {
	Name        string    `bson:"name"`
	URL         string    `bson:"url"`
	ContentType string    `bson:"content_type"`
	Size        int64     `bson:"size"`
	UploadedAt  time.Time `bson:"uploaded_at"`
}
