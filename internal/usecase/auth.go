package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/identity"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/model"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/repository"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*RegisterResult, error)
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	StudentID string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Course    string
	YearLevel int
}

// RegisterResult reports the created record and whether the verification
// email went out. A failed dispatch is not an error; the account stays
// registered and the user can request a resend.
type RegisterResult struct {
	User      *model.User
	EmailSent bool
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

// LoginResult carries the short-lived custom token the client exchanges
// with the identity provider for a full session.
type LoginResult struct {
	Token string
	User  *model.User
}

var (
	ErrEmailAlreadyUsed     = errors.New("email is already registered")
	ErrStudentIDAlreadyUsed = errors.New("student ID is already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrNotVerified          = errors.New("email is not verified")
)

type authUsecase struct {
	userRepo            repository.UserRepository
	syncUsecase         SyncUsecase
	verificationUsecase VerificationUsecase
	identityProvider    identity.Provider
	logger              *zerolog.Logger
}

func NewAuthUsecase(
	userRepo repository.UserRepository,
	syncUsecase SyncUsecase,
	verificationUsecase VerificationUsecase,
	identityProvider identity.Provider,
	logger *zerolog.Logger,
) AuthUsecase {
	return &authUsecase{
		userRepo:            userRepo,
		syncUsecase:         syncUsecase,
		verificationUsecase: verificationUsecase,
		identityProvider:    identityProvider,
		logger:              logger,
	}
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*RegisterResult, error) {
	// Pre-checks give each uniqueness violation its own message; the unique
	// indexes below still decide racing registrations.
	if err := u.checkDuplicates(ctx, params.Email, params.StudentID); err != nil {
		return nil, err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		StudentID:    params.StudentID,
		Email:        params.Email,
		PasswordHash: passwordHash,
		Role:         model.RoleStudent,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Course:       params.Course,
		YearLevel:    params.YearLevel,
	})
	if err != nil {
		switch repository.DuplicateKeyField(err) {
		case "email":
			return nil, ErrEmailAlreadyUsed
		case "student_id":
			return nil, ErrStudentIDAlreadyUsed
		}

		return nil, err
	}

	// The identity provider account must exist before the record is worth
	// keeping; otherwise the student could never log in. Roll the record
	// back so the registration can simply be retried.
	if err := u.syncUsecase.SyncUser(ctx, SyncUserParams{User: user, Password: params.Password}); err != nil {
		if _, deleteErr := u.userRepo.DeleteUserByEmail(ctx, user.Email); deleteErr != nil {
			u.logger.Error().
				Err(deleteErr).
				Str("email", user.Email).
				Msg("failed to roll back user after identity sync failure")
		}

		return nil, err
	}

	emailSent, err := u.verificationUsecase.IssueCode(ctx, user.Email)
	if err != nil {
		return nil, err
	}

	return &RegisterResult{User: user, EmailSent: emailSent}, nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	// Verification state is checked before the password so the response can
	// route straight to the verification screen.
	if !user.Verified {
		return nil, ErrNotVerified
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	if err := u.syncUsecase.SyncUser(ctx, SyncUserParams{User: user}); err != nil {
		return nil, err
	}

	token, err := u.identityProvider.MintCustomToken(ctx, user.StudentID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, User: user}, nil
}

func (u *authUsecase) checkDuplicates(ctx context.Context, email, studentID string) error {
	if _, err := u.userRepo.GetUserByEmail(ctx, email); err == nil {
		return ErrEmailAlreadyUsed
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	if _, err := u.userRepo.GetUserByStudentID(ctx, studentID); err == nil {
		return ErrStudentIDAlreadyUsed
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	return nil
}
