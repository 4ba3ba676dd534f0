package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/identity"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/mirror"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/model"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/repository"
)

// AccountUsecase defines the administrative and profile-read use cases.
type AccountUsecase interface {
	// DeleteUser removes the user from all three stores and reports which
	// ones actually held a record, so partial state is visible to the
	// caller. Deleting an unknown email is not an error.
	DeleteUser(ctx context.Context, email string) (*DeleteUserResult, error)

	ListUsers(ctx context.Context, params repository.FilterUsersParams) ([]*model.User, error)
	SendStatusEmail(ctx context.Context, params SendStatusEmailParams) error
	GetProfile(ctx context.Context, studentID string) (*mirror.Profile, error)
}

// DeleteUserResult reports per-store deletion outcomes.
type DeleteUserResult struct {
	CredentialDeleted bool
	IdentityDeleted   bool
	MirrorDeleted     bool
}

// SendStatusEmailParams defines the parameters for notifying a student of
// their application status. AcademicYear defaults to the student's most
// recent application.
type SendStatusEmailParams struct {
	Email        string
	Status       string
	AcademicYear string
}

var ErrUserNotFound = errors.New("user not found")

type accountUsecase struct {
	userRepo         repository.UserRepository
	applicationRepo  repository.ApplicationRepository
	identityProvider identity.Provider
	profileMirror    mirror.Store
	mail             EmailSender
	logger           *zerolog.Logger
}

func NewAccountUsecase(
	userRepo repository.UserRepository,
	applicationRepo repository.ApplicationRepository,
	identityProvider identity.Provider,
	profileMirror mirror.Store,
	mail EmailSender,
	logger *zerolog.Logger,
) AccountUsecase {
	return &accountUsecase{
		userRepo:         userRepo,
		applicationRepo:  applicationRepo,
		identityProvider: identityProvider,
		profileMirror:    profileMirror,
		mail:             mail,
		logger:           logger,
	}
}

func (u *accountUsecase) DeleteUser(ctx context.Context, email string) (*DeleteUserResult, error) {
	result := &DeleteUserResult{}

	// The credential record carries the student ID the secondary stores are
	// keyed by; without it there is nothing further to clean up.
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return result, nil
		}

		return nil, err
	}

	deleted, err := u.userRepo.DeleteUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	result.CredentialDeleted = deleted

	// Secondary-store failures are reported through the flags rather than
	// failing the operation; the credential record is already gone and a
	// retry could no longer reach these stores.
	if err := u.identityProvider.DeleteUser(ctx, user.StudentID); err != nil {
		if identity.KindOf(err) != identity.KindUserNotFound {
			u.logger.Error().
				Err(err).
				Str("student_id", user.StudentID).
				Msg("failed to delete identity provider user")
		}
	} else {
		result.IdentityDeleted = true
	}

	removed, err := u.profileMirror.DeleteProfile(ctx, user.StudentID)
	if err != nil {
		u.logger.Error().
			Err(err).
			Str("student_id", user.StudentID).
			Msg("failed to delete mirror profile")
	} else {
		result.MirrorDeleted = removed
	}

	return result, nil
}

func (u *accountUsecase) ListUsers(ctx context.Context, params repository.FilterUsersParams) ([]*model.User, error) {
	return u.userRepo.ListUsers(ctx, params)
}

func (u *accountUsecase) SendStatusEmail(ctx context.Context, params SendStatusEmailParams) error {
	user, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}

		return err
	}

	academicYear := params.AcademicYear
	if academicYear == "" {
		application, err := u.applicationRepo.GetApplication(ctx, user.StudentID, "")
		switch {
		case err == nil:
			academicYear = application.AcademicYear
		case !errors.Is(err, mongo.ErrNoDocuments):
			return err
		}
	}

	if academicYear != "" {
		if _, err := u.applicationRepo.SetApplicationStatus(ctx, user.StudentID, academicYear, params.Status); err != nil {
			return err
		}
	}

	return u.sendStatusEmail(user, params.Status, academicYear)
}

func (u *accountUsecase) GetProfile(ctx context.Context, studentID string) (*mirror.Profile, error) {
	return u.profileMirror.GetProfile(ctx, studentID)
}

func (u *accountUsecase) sendStatusEmail(user *model.User, status, academicYear string) error {
	var phrase string
	switch status {
	case model.ApplicationApproved:
		phrase = "has been approved"
	case model.ApplicationRejected:
		phrase = "has been rejected"
	default:
		phrase = "is pending review"
	}

	year := academicYear
	if year == "" {
		year = "the current academic year"
	}

	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your scholarship application for %s %s.</p>
		<p>Log in to your account for details.</p>
	`, user.DisplayName(), year, phrase)

	return u.mail.SendHTML([]string{user.Email}, "Scholarship application status", body)
}
