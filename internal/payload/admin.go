package payload

import (
	"time"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/mirror"
)

type DeleteUserRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type DeleteUserResponse struct {
	Envelope
	CredentialDeleted bool `json:"credential_deleted"`
	IdentityDeleted   bool `json:"identity_deleted"`
	MirrorDeleted     bool `json:"mirror_deleted"`
}

type SendStatusEmailRequest struct {
	Email        string `json:"email"         validate:"required,email"`
	Status       string `json:"status"        validate:"required,oneof=pending approved rejected"`
	AcademicYear string `json:"academic_year" validate:"omitempty,max=16"`
}

type ListUsersResponse struct {
	Envelope
	Users []User `json:"users"`
}

type ProfileResponse struct {
	Envelope
	Profile Profile `json:"profile"`
}

// Profile is the client-facing view of a mirror document.
type Profile struct {
	StudentID  string     `json:"student_id"`
	Email      string     `json:"email"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Course     string     `json:"course"`
	YearLevel  int        `json:"year_level"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

func NewProfile(studentID string, profile *mirror.Profile) Profile {
	out := Profile{
		StudentID: studentID,
		Email:     profile.Email,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Course:    profile.Course,
		YearLevel: profile.YearLevel,
	}

	if !profile.VerifiedAt.IsZero() {
		verifiedAt := profile.VerifiedAt
		out.VerifiedAt = &verifiedAt
	}

	return out
}
