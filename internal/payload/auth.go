package payload

import (
	"time"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/model"
)

type RegisterRequest struct {
	StudentID string `json:"student_id" validate:"required,max=32"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	Course    string `json:"course"     validate:"required"`
	YearLevel int    `json:"year_level" validate:"required,min=1,max=8"`
}

type RegisterResponse struct {
	Envelope
	EmailSent bool `json:"email_sent"`
	User      User `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Envelope
	Token string `json:"token"`
	User  User   `json:"user"`
}

// User is the client-facing view of a credential record.
type User struct {
	StudentID string    `json:"student_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Course    string    `json:"course"`
	YearLevel int       `json:"year_level"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUser(user *model.User) User {
	return User{
		StudentID: user.StudentID,
		Email:     user.Email,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Course:    user.Course,
		YearLevel: user.YearLevel,
		Verified:  user.Verified,
		CreatedAt: user.CreatedAt,
	}
}

func NewUsers(users []*model.User) []User {
	out := make([]User, 0, len(users))
	for _, user := range users {
		out = append(out, NewUser(user))
	}

	return out
}
