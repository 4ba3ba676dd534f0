package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/mirror"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/model"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/payload"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/usecase"
)

func newAccountHandler(t *testing.T, uc usecase.AccountUsecase) *AccountHandler {
	t.Helper()

	validate, trans := newTestValidator(t)
	return NewAccountHandler(uc, validate, trans, nopLogger())
}

func TestGetProfileHandler_OK(t *testing.T) {
	t.Parallel()

	verifiedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	uc := &fakeAccountUsecase{
		profile: &mirror.Profile{
			Email:      "alice@example.com",
			FirstName:  "Alice",
			LastName:   "Lee",
			Course:     "BS Computer Science",
			YearLevel:  3,
			VerifiedAt: verifiedAt,
		},
	}
	h := newAccountHandler(t, uc)

	req := withSession(httptest.NewRequest(http.MethodGet, "/profile", nil), studentSession("2024-00117"))
	rec := httptest.NewRecorder()
	h.GetProfile(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp payload.ProfileResponse
	decodeResponse(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "2024-00117", resp.Profile.StudentID)
	assert.Equal(t, "alice@example.com", resp.Profile.Email)
	require.NotNil(t, resp.Profile.VerifiedAt)
	assert.True(t, verifiedAt.Equal(*resp.Profile.VerifiedAt))
}

func TestGetProfileHandler_NotFound(t *testing.T) {
	t.Parallel()

	h := newAccountHandler(t, &fakeAccountUsecase{profileErr: mirror.ErrProfileNotFound})

	req := withSession(httptest.NewRequest(http.MethodGet, "/profile", nil), studentSession("2024-00117"))
	rec := httptest.NewRecorder()
	h.GetProfile(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProfileHandler_MissingSession(t *testing.T) {
	t.Parallel()

	h := newAccountHandler(t, &fakeAccountUsecase{})

	rec := httptest.NewRecorder()
	h.GetProfile(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteUserHandler_ReportsStoreFlags(t *testing.T) {
	t.Parallel()

	uc := &fakeAccountUsecase{
		deleteResult: &usecase.DeleteUserResult{
			CredentialDeleted: true,
			IdentityDeleted:   false,
			MirrorDeleted:     true,
		},
	}
	h := newAccountHandler(t, uc)

	body := payload.DeleteUserRequest{Email: "alice@example.com"}
	rec := httptest.NewRecorder()
	h.DeleteUser(rec, jsonRequest(t, http.MethodPost, "/admin/users/delete", body))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp payload.DeleteUserResponse
	decodeResponse(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "user deleted", resp.Message)
	assert.True(t, resp.CredentialDeleted)
	assert.False(t, resp.IdentityDeleted)
	assert.True(t, resp.MirrorDeleted)
}

func TestDeleteUserHandler_UnknownEmail(t *testing.T) {
	t.Parallel()

	h := newAccountHandler(t, &fakeAccountUsecase{deleteResult: &usecase.DeleteUserResult{}})

	body := payload.DeleteUserRequest{Email: "ghost@example.com"}
	rec := httptest.NewRecorder()
	h.DeleteUser(rec, jsonRequest(t, http.MethodPost, "/admin/users/delete", body))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp payload.DeleteUserResponse
	decodeResponse(t, rec, &resp)
	assert.Equal(t, "no account found for this email", resp.Message)
	assert.False(t, resp.CredentialDeleted)
}

func TestSendStatusEmailHandler_OK(t *testing.T) {
	t.Parallel()

	uc := &fakeAccountUsecase{}
	h := newAccountHandler(t, uc)

	body := payload.SendStatusEmailRequest{
		Email:        "alice@example.com",
		Status:       "approved",
		AcademicYear: "2025-2026",
	}
	rec := httptest.NewRecorder()
	h.SendStatusEmail(rec, jsonRequest(t, http.MethodPost, "/admin/applications/status-email", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, usecase.SendStatusEmailParams{
		Email:        "alice@example.com",
		Status:       "approved",
		AcademicYear: "2025-2026",
	}, uc.statusParams)
}

func TestSendStatusEmailHandler_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	h := newAccountHandler(t, &fakeAccountUsecase{})

	body := payload.SendStatusEmailRequest{Email: "alice@example.com", Status: "granted"}
	rec := httptest.NewRecorder()
	h.SendStatusEmail(rec, jsonRequest(t, http.MethodPost, "/admin/applications/status-email", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendStatusEmailHandler_UnknownUser(t *testing.T) {
	t.Parallel()

	h := newAccountHandler(t, &fakeAccountUsecase{statusErr: usecase.ErrUserNotFound})

	body := payload.SendStatusEmailRequest{Email: "ghost@example.com", Status: "approved"}
	rec := httptest.NewRecorder()
	h.SendStatusEmail(rec, jsonRequest(t, http.MethodPost, "/admin/applications/status-email", body))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListUsersHandler_ParsesFilters(t *testing.T) {
	t.Parallel()

	uc := &fakeAccountUsecase{users: []*model.User{{StudentID: "2024-00117"}}}
	h := newAccountHandler(t, uc)

	target := "/admin/users?email=alice%40example.com&role=student&verified=true&limit=5&offset=10&sort_by=email&order=desc"
	rec := httptest.NewRecorder()
	h.ListUsers(rec, httptest.NewRequest(http.MethodGet, target, nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	params := uc.listParams
	require.NotNil(t, params.Email)
	assert.Equal(t, "alice@example.com", *params.Email)
	require.NotNil(t, params.Role)
	assert.Equal(t, "student", *params.Role)
	require.NotNil(t, params.Verified)
	assert.True(t, *params.Verified)
	assert.Equal(t, uint64(5), params.Limit)
	assert.Equal(t, uint64(10), params.Offset)
	require.NotNil(t, params.SortBy)
	assert.Equal(t, "email", *params.SortBy)
	assert.True(t, params.SortDesc)

	var resp payload.ListUsersResponse
	decodeResponse(t, rec, &resp)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "2024-00117", resp.Users[0].StudentID)
}

func TestListUsersHandler_IgnoresUnknownSortField(t *testing.T) {
	t.Parallel()

	uc := &fakeAccountUsecase{}
	h := newAccountHandler(t, uc)

	rec := httptest.NewRecorder()
	h.ListUsers(rec, httptest.NewRequest(http.MethodGet, "/admin/users?sort_by=password_hash", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, uc.listParams.SortBy)
}
