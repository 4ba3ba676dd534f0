package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/identity"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/model"
)

func accountTestUser() *model.User {
	return &model.User{
		StudentID: "2024-00117",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Lee",
	}
}

func newAccountUsecaseForDelete(
	repo *fakeUserRepository,
	provider *fakeIdentityProvider,
	store *fakeMirrorStore,
) AccountUsecase {
	return NewAccountUsecase(repo, &fakeApplicationRepository{}, provider, store, &fakeEmailSender{}, testLogger())
}

func TestDeleteUser_UnknownEmail(t *testing.T) {
	t.Parallel()

	repo := &fakeUserRepository{
		getByEmail: func(email string) (*model.User, error) {
			return nil, mongo.ErrNoDocuments
		},
	}

	u := newAccountUsecaseForDelete(repo, &fakeIdentityProvider{}, &fakeMirrorStore{})
	result, err := u.DeleteUser(context.Background(), "ghost@example.com")
	require.NoError(t, err)

	assert.False(t, result.CredentialDeleted)
	assert.False(t, result.IdentityDeleted)
	assert.False(t, result.MirrorDeleted)
}

func TestDeleteUser_RemovesAllThreeStores(t *testing.T) {
	t.Parallel()

	repo := &fakeUserRepository{
		getByEmail: func(email string) (*model.User, error) {
			return accountTestUser(), nil
		},
		deleteByEmail: func(email string) (bool, error) {
			return true, nil
		},
	}

	var providerID, mirrorID string
	provider := &fakeIdentityProvider{
		deleteUser: func(id string) error {
			providerID = id
			return nil
		},
	}
	store := &fakeMirrorStore{
		del: func(id string) (bool, error) {
			mirrorID = id
			return true, nil
		},
	}

	u := newAccountUsecaseForDelete(repo, provider, store)
	result, err := u.DeleteUser(context.Background(), "alice@example.com")
	require.NoError(t, err)

	assert.True(t, result.CredentialDeleted)
	assert.True(t, result.IdentityDeleted)
	assert.True(t, result.MirrorDeleted)
	assert.Equal(t, "2024-00117", providerID)
	assert.Equal(t, "2024-00117", mirrorID)
}

func TestDeleteUser_MissingProviderAccountTolerated(t *testing.T) {
	t.Parallel()

	repo := &fakeUserRepository{
		getByEmail: func(email string) (*model.User, error) {
			return accountTestUser(), nil
		},
		deleteByEmail: func(email string) (bool, error) {
			return true, nil
		},
	}
	provider := &fakeIdentityProvider{
		deleteUser: func(id string) error {
			return &identity.Error{Kind: identity.KindUserNotFound, Err: errors.New("missing")}
		},
	}

	mirrorTried := false
	store := &fakeMirrorStore{
		del: func(id string) (bool, error) {
			mirrorTried = true
			return true, nil
		},
	}

	u := newAccountUsecaseForDelete(repo, provider, store)
	result, err := u.DeleteUser(context.Background(), "alice@example.com")
	require.NoError(t, err)

	assert.True(t, result.CredentialDeleted)
	assert.False(t, result.IdentityDeleted)
	assert.True(t, result.MirrorDeleted)
	assert.True(t, mirrorTried)
}

func TestDeleteUser_ProviderOutageReportedNotFatal(t *testing.T) {
	t.Parallel()

	repo := &fakeUserRepository{
		getByEmail: func(email string) (*model.User, error) {
			return accountTestUser(), nil
		},
		deleteByEmail: func(email string) (bool, error) {
			return true, nil
		},
	}
	provider := &fakeIdentityProvider{
		deleteUser: func(id string) error {
			return &identity.Error{Kind: identity.KindUnavailable, Err: errors.New("backend error")}
		},
	}
	store := &fakeMirrorStore{
		del: func(id string) (bool, error) {
			return false, errors.New("connection refused")
		},
	}

	u := newAccountUsecaseForDelete(repo, provider, store)
	result, err := u.DeleteUser(context.Background(), "alice@example.com")
	require.NoError(t, err)

	assert.True(t, result.CredentialDeleted)
	assert.False(t, result.IdentityDeleted)
	assert.False(t, result.MirrorDeleted)
}

func TestDeleteUser_CredentialStoreFailureIsFatal(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("server selection timeout")
	repo := &fakeUserRepository{
		getByEmail: func(email string) (*model.User, error) {
			return accountTestUser(), nil
		},
		deleteByEmail: func(email string) (bool, error) {
			return false, storeErr
		},
	}

	u := newAccountUsecaseForDelete(repo, &fakeIdentityProvider{}, &fakeMirrorStore{})
	_, err := u.DeleteUser(context.Background(), "alice@example.com")

	assert.ErrorIs(t, err, storeErr)
}

func TestSendStatusEmail_UnknownEmail(t *testing.T) {
	t.Parallel()

	repo := &fakeUserRepository{
		getByEmail: func(email string) (*model.User, error) {
			return nil, mongo.ErrNoDocuments
		},
	}

	u := NewAccountUsecase(repo, &fakeApplicationRepository{}, &fakeIdentityProvider{}, &fakeMirrorStore{}, &fakeEmailSender{}, testLogger())
	err := u.SendStatusEmail(context.Background(), SendStatusEmailParams{Email: "ghost@example.com", Status: model.ApplicationApproved})

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSendStatusEmail_UpdatesStatusAndMails(t *testing.T) {
	t.Parallel()

	repo := &fakeUserRepository{
		getByEmail: func(email string) (*model.User, error) {
			return accountTestUser(), nil
		},
	}

	var statusStudentID, statusYear, status string
	appRepo := &fakeApplicationRepository{
		setStatus: func(studentID, academicYear, s string) (bool, error) {
			statusStudentID = studentID
			statusYear = academicYear
			status = s
			return true, nil
		},
	}
	mail := &fakeEmailSender{}

	u := NewAccountUsecase(repo, appRepo, &fakeIdentityProvider{}, &fakeMirrorStore{}, mail, testLogger())
	err := u.SendStatusEmail(context.Background(), SendStatusEmailParams{
		Email:        "alice@example.com",
		Status:       model.ApplicationApproved,
		AcademicYear: "2025-2026",
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-00117", statusStudentID)
	assert.Equal(t, "2025-2026", statusYear)
	assert.Equal(t, model.ApplicationApproved, status)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, []string{"alice@example.com"}, mail.sent[0].to)
	assert.Contains(t, mail.sent[0].body, "has been approved")
	assert.Contains(t, mail.sent[0].body, "2025-2026")
}

func TestSendStatusEmail_DefaultsToLatestApplication(t *testing.T) {
	t.Parallel()

	repo := &fakeUserRepository{
		getByEmail: func(email string) (*model.User, error) {
			return accountTestUser(), nil
		},
	}

	var requestedYear, statusYear string
	appRepo := &fakeApplicationRepository{
		get: func(studentID, academicYear string) (*model.Application, error) {
			requestedYear = academicYear
			return &model.Application{StudentID: studentID, AcademicYear: "2025-2026"}, nil
		},
		setStatus: func(studentID, academicYear, s string) (bool, error) {
			statusYear = academicYear
			return true, nil
		},
	}

	u := NewAccountUsecase(repo, appRepo, &fakeIdentityProvider{}, &fakeMirrorStore{}, &fakeEmailSender{}, testLogger())
	err := u.SendStatusEmail(context.Background(), SendStatusEmailParams{
		Email:  "alice@example.com",
		Status: model.ApplicationRejected,
	})
	require.NoError(t, err)

	assert.Empty(t, requestedYear)
	assert.Equal(t, "2025-2026", statusYear)
}

func TestSendStatusEmail_NoApplicationStillMails(t *testing.T) {
	t.Parallel()

	repo := &fakeUserRepository{
		getByEmail: func(email string) (*model.User, error) {
			return accountTestUser(), nil
		},
	}

	statusSet := false
	appRepo := &fakeApplicationRepository{
		get: func(studentID, academicYear string) (*model.Application, error) {
			return nil, mongo.ErrNoDocuments
		},
		setStatus: func(studentID, academicYear, s string) (bool, error) {
			statusSet = true
			return false, nil
		},
	}
	mail := &fakeEmailSender{}

	u := NewAccountUsecase(repo, appRepo, &fakeIdentityProvider{}, &fakeMirrorStore{}, mail, testLogger())
	err := u.SendStatusEmail(context.Background(), SendStatusEmailParams{
		Email:  "alice@example.com",
		Status: model.ApplicationPending,
	})
	require.NoError(t, err)

	assert.False(t, statusSet)
	require.Len(t, mail.sent, 1)
	assert.Contains(t, mail.sent[0].body, "is pending review")
	assert.Contains(t, mail.sent[0].body, "the current academic year")
}
