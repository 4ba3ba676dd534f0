package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/auth"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/mirror"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/model"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/repository"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/usecase"
)

func newTestValidator(t *testing.T) (*validator.Validate, ut.Translator) {
	t.Helper()

	validate, trans, err := NewValidator()
	require.NoError(t, err)

	return validate, trans
}

func nopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	return req
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

func withSession(r *http.Request, claims *auth.SessionClaims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), SessionClaimsKey, claims))
}

func studentSession(studentID string) *auth.SessionClaims {
	return &auth.SessionClaims{StudentID: studentID, Role: model.RoleStudent}
}

type fakeAuthUsecase struct {
	usecase.AuthUsecase

	registerResult *usecase.RegisterResult
	registerErr    error
	loginResult    *usecase.LoginResult
	loginErr       error
}

func (f *fakeAuthUsecase) Register(_ context.Context, params usecase.RegisterParams) (*usecase.RegisterResult, error) {
	return f.registerResult, f.registerErr
}

func (f *fakeAuthUsecase) Login(_ context.Context, params usecase.LoginParams) (*usecase.LoginResult, error) {
	return f.loginResult, f.loginErr
}

type fakeVerificationUsecase struct {
	usecase.VerificationUsecase

	submitErr   error
	verifyErr   error
	issueResult bool
	issueErr    error

	submitted [][2]string
	verified  [][2]string
}

func (f *fakeVerificationUsecase) SubmitCode(_ context.Context, email, code string) error {
	f.submitted = append(f.submitted, [2]string{email, code})
	return f.submitErr
}

func (f *fakeVerificationUsecase) VerifyByToken(_ context.Context, email, token string) error {
	f.verified = append(f.verified, [2]string{email, token})
	return f.verifyErr
}

func (f *fakeVerificationUsecase) IssueCode(_ context.Context, email string) (bool, error) {
	return f.issueResult, f.issueErr
}

type fakePasswordResetUsecase struct {
	usecase.PasswordResetUsecase

	requestErr  error
	validateErr error
	resetErr    error

	requested []string
	resets    [][2]string
}

func (f *fakePasswordResetUsecase) RequestPasswordReset(_ context.Context, email string) error {
	f.requested = append(f.requested, email)
	return f.requestErr
}

func (f *fakePasswordResetUsecase) ValidateResetToken(_ context.Context, token string) error {
	return f.validateErr
}

func (f *fakePasswordResetUsecase) ResetPassword(_ context.Context, token, newPassword string) error {
	f.resets = append(f.resets, [2]string{token, newPassword})
	return f.resetErr
}

type fakeAccountUsecase struct {
	usecase.AccountUsecase

	deleteResult *usecase.DeleteUserResult
	deleteErr    error
	profile      *mirror.Profile
	profileErr   error
	users        []*model.User
	listErr      error
	statusErr    error

	listParams   repository.FilterUsersParams
	statusParams usecase.SendStatusEmailParams
}

func (f *fakeAccountUsecase) DeleteUser(_ context.Context, email string) (*usecase.DeleteUserResult, error) {
	return f.deleteResult, f.deleteErr
}

func (f *fakeAccountUsecase) GetProfile(_ context.Context, studentID string) (*mirror.Profile, error) {
	return f.profile, f.profileErr
}

func (f *fakeAccountUsecase) ListUsers(_ context.Context, params repository.FilterUsersParams) ([]*model.User, error) {
	f.listParams = params
	return f.users, f.listErr
}

func (f *fakeAccountUsecase) SendStatusEmail(_ context.Context, params usecase.SendStatusEmailParams) error {
	f.statusParams = params
	return f.statusErr
}

type fakeApplicationUsecase struct {
	usecase.ApplicationUsecase

	submitResult *model.Application
	submitErr    error
	getResult    *model.Application
	getErr       error
	listResult   []*model.Application
	listErr      error

	submitParams usecase.SubmitApplicationParams
	getStudentID string
	getYear      string
}

func (f *fakeApplicationUsecase) SubmitApplication(_ context.Context, params usecase.SubmitApplicationParams) (*model.Application, error) {
	f.submitParams = params
	return f.submitResult, f.submitErr
}

func (f *fakeApplicationUsecase) GetApplication(_ context.Context, studentID, academicYear string) (*model.Application, error) {
	f.getStudentID = studentID
	f.getYear = academicYear
	return f.getResult, f.getErr
}

func (f *fakeApplicationUsecase) ListApplications(_ context.Context, params repository.FilterApplicationsParams) ([]*model.Application, error) {
	return f.listResult, f.listErr
}
