package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/identity"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/mirror"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/model"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/repository"
)

// The fakes below embed the interface they stand in for, so each test only
// wires the methods its scenario touches; an unexpected call panics.

type fakeUserRepository struct {
	repository.UserRepository

	getByEmail      func(email string) (*model.User, error)
	getByStudentID  func(studentID string) (*model.User, error)
	createUser      func(user *model.User) (*model.User, error)
	setVerification func(email, code, token string, expiresAt time.Time) error
	markByCode      func(email, code string) (bool, error)
	markByToken     func(email, token string) (bool, error)
	clearExpired    func(email string) error
	updateHash      func(email, passwordHash string) error
	deleteByEmail   func(email string) (bool, error)
	listUsers       func(params repository.FilterUsersParams) ([]*model.User, error)
}

func (f *fakeUserRepository) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return f.getByEmail(email)
}

func (f *fakeUserRepository) GetUserByStudentID(_ context.Context, studentID string) (*model.User, error) {
	return f.getByStudentID(studentID)
}

func (f *fakeUserRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	return f.createUser(user)
}

func (f *fakeUserRepository) SetVerification(_ context.Context, email, code, token string, expiresAt time.Time) error {
	return f.setVerification(email, code, token, expiresAt)
}

func (f *fakeUserRepository) MarkVerifiedByCode(_ context.Context, email, code string) (bool, error) {
	return f.markByCode(email, code)
}

func (f *fakeUserRepository) MarkVerifiedByToken(_ context.Context, email, token string) (bool, error) {
	return f.markByToken(email, token)
}

func (f *fakeUserRepository) ClearExpiredCode(_ context.Context, email string) error {
	return f.clearExpired(email)
}

func (f *fakeUserRepository) UpdatePasswordHash(_ context.Context, email, passwordHash string) error {
	return f.updateHash(email, passwordHash)
}

func (f *fakeUserRepository) DeleteUserByEmail(_ context.Context, email string) (bool, error) {
	return f.deleteByEmail(email)
}

func (f *fakeUserRepository) ListUsers(_ context.Context, params repository.FilterUsersParams) ([]*model.User, error) {
	return f.listUsers(params)
}

type fakeApplicationRepository struct {
	repository.ApplicationRepository

	upsert    func(application *model.Application) (*model.Application, error)
	get       func(studentID, academicYear string) (*model.Application, error)
	setStatus func(studentID, academicYear, status string) (bool, error)
	list      func(params repository.FilterApplicationsParams) ([]*model.Application, error)
}

func (f *fakeApplicationRepository) UpsertApplication(_ context.Context, application *model.Application) (*model.Application, error) {
	return f.upsert(application)
}

func (f *fakeApplicationRepository) GetApplication(_ context.Context, studentID, academicYear string) (*model.Application, error) {
	return f.get(studentID, academicYear)
}

func (f *fakeApplicationRepository) SetApplicationStatus(_ context.Context, studentID, academicYear, status string) (bool, error) {
	return f.setStatus(studentID, academicYear, status)
}

func (f *fakeApplicationRepository) ListApplications(_ context.Context, params repository.FilterApplicationsParams) ([]*model.Application, error) {
	return f.list(params)
}

type fakeResetTokenRepository struct {
	repository.PasswordResetTokenRepository

	createToken   func(token *model.PasswordResetToken) (*model.PasswordResetToken, error)
	getByJTI      func(jti string) (*model.PasswordResetToken, error)
	markUsed      func(jti string) error
	invalidateAll func(studentID string) error
}

func (f *fakeResetTokenRepository) CreateToken(_ context.Context, token *model.PasswordResetToken) (*model.PasswordResetToken, error) {
	return f.createToken(token)
}

func (f *fakeResetTokenRepository) GetTokenByJTI(_ context.Context, jti string) (*model.PasswordResetToken, error) {
	return f.getByJTI(jti)
}

func (f *fakeResetTokenRepository) MarkTokenAsUsed(_ context.Context, jti string) error {
	return f.markUsed(jti)
}

func (f *fakeResetTokenRepository) InvalidateStudentTokens(_ context.Context, studentID string) error {
	return f.invalidateAll(studentID)
}

type fakeIdentityProvider struct {
	identity.Provider

	getUser    func(id string) (*identity.User, error)
	createUser func(params identity.CreateUserParams) (*identity.User, error)
	updateUser func(id string, params identity.UpdateUserParams) (*identity.User, error)
	deleteUser func(id string) error
	mintToken  func(id string) (string, error)
}

func (f *fakeIdentityProvider) GetUser(_ context.Context, id string) (*identity.User, error) {
	return f.getUser(id)
}

func (f *fakeIdentityProvider) CreateUser(_ context.Context, params identity.CreateUserParams) (*identity.User, error) {
	return f.createUser(params)
}

func (f *fakeIdentityProvider) UpdateUser(_ context.Context, id string, params identity.UpdateUserParams) (*identity.User, error) {
	return f.updateUser(id, params)
}

func (f *fakeIdentityProvider) DeleteUser(_ context.Context, id string) error {
	return f.deleteUser(id)
}

func (f *fakeIdentityProvider) MintCustomToken(_ context.Context, id string) (string, error) {
	return f.mintToken(id)
}

type fakeMirrorStore struct {
	mirror.Store

	upsert func(id string, profile mirror.Profile) error
	get    func(id string) (*mirror.Profile, error)
	del    func(id string) (bool, error)
}

func (f *fakeMirrorStore) UpsertProfile(_ context.Context, id string, profile mirror.Profile) error {
	return f.upsert(id, profile)
}

func (f *fakeMirrorStore) GetProfile(_ context.Context, id string) (*mirror.Profile, error) {
	return f.get(id)
}

func (f *fakeMirrorStore) DeleteProfile(_ context.Context, id string) (bool, error) {
	return f.del(id)
}

type sentEmail struct {
	to      []string
	subject string
	body    string
}

type fakeEmailSender struct {
	sent []sentEmail
	err  error
}

func (f *fakeEmailSender) SendHTML(to []string, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, sentEmail{to: to, subject: subject, body: htmlBody})

	return nil
}

type fakeSyncUsecase struct {
	calls []SyncUserParams
	err   error
}

func (f *fakeSyncUsecase) SyncUser(_ context.Context, params SyncUserParams) error {
	f.calls = append(f.calls, params)
	return f.err
}

type fakeVerificationUsecase struct {
	VerificationUsecase

	issued      []string
	issueResult bool
	issueErr    error
}

func (f *fakeVerificationUsecase) IssueCode(_ context.Context, email string) (bool, error) {
	f.issued = append(f.issued, email)
	return f.issueResult, f.issueErr
}

type uploadCall struct {
	key         string
	contentType string
	size        int
}

type fakeUploader struct {
	uploads []uploadCall
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, data []byte, key, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}

	f.uploads = append(f.uploads, uploadCall{key: key, contentType: contentType, size: len(data)})

	return "https://files.test/" + key, nil
}

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}
