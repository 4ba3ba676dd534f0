package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/identity"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/mirror"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/model"
)

// SyncUsecase reconciles the identity provider account and the profile
// mirror document with a credential record. It is the only component that
// creates entries in either secondary store, and both stay keyed by the
// student ID the record was minted with.
type SyncUsecase interface {
	SyncUser(ctx context.Context, params SyncUserParams) error
}

// SyncUserParams defines the parameters for synchronizing a user. Password
// is only set on the registration path so the identity provider account is
// created with a usable credential; reconciliation on later logins leaves
// the provider-side password untouched.
type SyncUserParams struct {
	User     *model.User
	Password string
}

// ErrIdentityConflict reports that the user's email is already claimed by a
// different identity provider account. Neither record can be assumed
// authoritative, so the operation fails instead of guessing.
var ErrIdentityConflict = errors.New("email is claimed by a different identity")

type syncUsecase struct {
	identityProvider identity.Provider
	profileMirror    mirror.Store
	logger           *zerolog.Logger
}

func NewSyncUsecase(
	identityProvider identity.Provider,
	profileMirror mirror.Store,
	logger *zerolog.Logger,
) SyncUsecase {
	return &syncUsecase{
		identityProvider: identityProvider,
		profileMirror:    profileMirror,
		logger:           logger,
	}
}

// SyncUser repairs the identity provider first and the profile mirror
// second. A provider failure aborts the calling operation because session
// credentials are only meaningful for a recognized account; a mirror failure
// is logged and swallowed because the mirror is a read convenience.
func (u *syncUsecase) SyncUser(ctx context.Context, params SyncUserParams) error {
	if err := u.syncIdentity(ctx, params); err != nil {
		return err
	}

	if err := u.syncMirror(ctx, params.User); err != nil {
		u.logger.Error().
			Err(err).
			Str("student_id", params.User.StudentID).
			Msg("failed to sync profile mirror")
	}

	return nil
}

func (u *syncUsecase) syncIdentity(ctx context.Context, params SyncUserParams) error {
	user := params.User
	displayName := user.DisplayName()
	verified := user.Verified

	_, err := u.identityProvider.GetUser(ctx, user.StudentID)
	if err == nil {
		_, err = u.identityProvider.UpdateUser(ctx, user.StudentID, identity.UpdateUserParams{
			Email:         &user.Email,
			DisplayName:   &displayName,
			EmailVerified: &verified,
		})

		return err
	}

	if identity.KindOf(err) != identity.KindUserNotFound {
		return err
	}

	_, err = u.identityProvider.CreateUser(ctx, identity.CreateUserParams{
		ID:            user.StudentID,
		Email:         user.Email,
		Password:      params.Password,
		DisplayName:   displayName,
		EmailVerified: verified,
	})
	if err != nil {
		if identity.KindOf(err) == identity.KindEmailExists {
			return ErrIdentityConflict
		}

		return err
	}

	return nil
}

func (u *syncUsecase) syncMirror(ctx context.Context, user *model.User) error {
	profile := mirror.Profile{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Course:    user.Course,
		YearLevel: user.YearLevel,
	}

	if user.Verified {
		verifiedAt := user.VerifiedAt
		if verifiedAt.IsZero() {
			verifiedAt = time.Now()
		}
		profile.VerifiedAt = verifiedAt
	}

	return u.profileMirror.UpsertProfile(ctx, user.StudentID, profile)
}
