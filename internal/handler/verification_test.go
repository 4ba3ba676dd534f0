package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/payload"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/usecase"
)

func newVerificationHandler(t *testing.T, uc usecase.VerificationUsecase) *VerificationHandler {
	t.Helper()

	validate, trans := newTestValidator(t)
	return NewVerificationHandler(uc, validate, trans, nopLogger())
}

func TestSubmitCodeHandler_OK(t *testing.T) {
	t.Parallel()

	uc := &fakeVerificationUsecase{}
	h := newVerificationHandler(t, uc)

	body := payload.SubmitCodeRequest{Email: "alice@example.com", Code: "482913"}
	rec := httptest.NewRecorder()
	h.SubmitCode(rec, jsonRequest(t, http.MethodPost, "/auth/verify-code", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, uc.submitted, 1)
	assert.Equal(t, [2]string{"alice@example.com", "482913"}, uc.submitted[0])

	var resp payload.Envelope
	decodeResponse(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "email verified", resp.Message)
}

func TestSubmitCodeHandler_RejectsNonNumericCode(t *testing.T) {
	t.Parallel()

	h := newVerificationHandler(t, &fakeVerificationUsecase{})

	body := payload.SubmitCodeRequest{Email: "alice@example.com", Code: "48291a"}
	rec := httptest.NewRecorder()
	h.SubmitCode(rec, jsonRequest(t, http.MethodPost, "/auth/verify-code", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitCodeHandler_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "unknown user", err: usecase.ErrUserNotFound, wantStatus: http.StatusNotFound},
		{name: "invalid code", err: usecase.ErrInvalidCode, wantStatus: http.StatusUnauthorized},
		{name: "expired code", err: usecase.ErrCodeExpired, wantStatus: http.StatusUnauthorized},
		{name: "identity conflict", err: usecase.ErrIdentityConflict, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newVerificationHandler(t, &fakeVerificationUsecase{submitErr: tt.err})

			body := payload.SubmitCodeRequest{Email: "alice@example.com", Code: "482913"}
			rec := httptest.NewRecorder()
			h.SubmitCode(rec, jsonRequest(t, http.MethodPost, "/auth/verify-code", body))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestVerifyByLinkHandler_OK(t *testing.T) {
	t.Parallel()

	uc := &fakeVerificationUsecase{}
	h := newVerificationHandler(t, uc)

	req := httptest.NewRequest(http.MethodGet, "/auth/verify?email=alice%40example.com&token=deadbeef", nil)
	rec := httptest.NewRecorder()
	h.VerifyByLink(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, uc.verified, 1)
	assert.Equal(t, [2]string{"alice@example.com", "deadbeef"}, uc.verified[0])
}

func TestVerifyByLinkHandler_MissingParams(t *testing.T) {
	t.Parallel()

	h := newVerificationHandler(t, &fakeVerificationUsecase{})

	req := httptest.NewRequest(http.MethodGet, "/auth/verify?email=alice%40example.com", nil)
	rec := httptest.NewRecorder()
	h.VerifyByLink(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyByLinkHandler_InvalidToken(t *testing.T) {
	t.Parallel()

	h := newVerificationHandler(t, &fakeVerificationUsecase{verifyErr: usecase.ErrInvalidToken})

	req := httptest.NewRequest(http.MethodGet, "/auth/verify?email=alice%40example.com&token=feedface", nil)
	rec := httptest.NewRecorder()
	h.VerifyByLink(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResendCodeHandler_OK(t *testing.T) {
	t.Parallel()

	h := newVerificationHandler(t, &fakeVerificationUsecase{issueResult: true})

	body := payload.ResendCodeRequest{Email: "alice@example.com"}
	rec := httptest.NewRecorder()
	h.ResendCode(rec, jsonRequest(t, http.MethodPost, "/auth/resend-code", body))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp payload.ResendCodeResponse
	decodeResponse(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.True(t, resp.EmailSent)
}

func TestResendCodeHandler_AlreadyVerified(t *testing.T) {
	t.Parallel()

	h := newVerificationHandler(t, &fakeVerificationUsecase{issueErr: usecase.ErrAlreadyVerified})

	body := payload.ResendCodeRequest{Email: "alice@example.com"}
	rec := httptest.NewRecorder()
	h.ResendCode(rec, jsonRequest(t, http.MethodPost, "/auth/resend-code", body))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestResendCodeHandler_MailFailure(t *testing.T) {
	t.Parallel()

	h := newVerificationHandler(t, &fakeVerificationUsecase{issueResult: false})

	body := payload.ResendCodeRequest{Email: "alice@example.com"}
	rec := httptest.NewRecorder()
	h.ResendCode(rec, jsonRequest(t, http.MethodPost, "/auth/resend-code", body))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp payload.ResendCodeResponse
	decodeResponse(t, rec, &resp)
	assert.False(t, resp.Success)
	assert.False(t, resp.EmailSent)
}
