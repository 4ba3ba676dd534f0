package handler

import (
	"errors"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/payload"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/usecase"
)

// VerificationHandler handles the email verification endpoints.
type VerificationHandler struct {
	verificationUsecase usecase.VerificationUsecase
	validate            *validator.Validate
	trans               ut.Translator
	logger              *zerolog.Logger
}

func NewVerificationHandler(
	verificationUsecase usecase.VerificationUsecase,
	validate *validator.Validate,
	trans ut.Translator,
	logger *zerolog.Logger,
) *VerificationHandler {
	return &VerificationHandler{
		verificationUsecase: verificationUsecase,
		validate:            validate,
		trans:               trans,
		logger:              logger,
	}
}

func (h *VerificationHandler) SubmitCode(w http.ResponseWriter, r *http.Request) {
	var req payload.SubmitCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, h.trans, err)
		return
	}

	if err := h.verificationUsecase.SubmitCode(r.Context(), req.Email, req.Code); err != nil {
		h.logger.Error().Err(err).Msg("failed to verify code")
		h.respondVerifyError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payload.Successful("email verified"))
}

// VerifyByLink serves the link embedded in the verification email; email and
// token arrive as query parameters.
func (h *VerificationHandler) VerifyByLink(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	token := r.URL.Query().Get("token")
	if email == "" || token == "" {
		respondError(w, http.StatusBadRequest, "email and token are required")
		return
	}

	if err := h.verificationUsecase.VerifyByToken(r.Context(), email, token); err != nil {
		h.logger.Error().Err(err).Msg("failed to verify token")
		h.respondVerifyError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payload.Successful("email verified"))
}

func (h *VerificationHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req payload.ResendCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, h.trans, err)
		return
	}

	emailSent, err := h.verificationUsecase.IssueCode(r.Context(), req.Email)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to resend verification code")

		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, usecase.ErrAlreadyVerified):
			respondError(w, http.StatusConflict, "email is already verified")
		default:
			respondError(w, http.StatusInternalServerError, "something went wrong")
		}

		return
	}

	if !emailSent {
		writeJSON(w, http.StatusInternalServerError, payload.ResendCodeResponse{
			Envelope:  payload.Failed("a new code was issued but the email could not be sent; try again later"),
			EmailSent: false,
		})
		return
	}

	writeJSON(w, http.StatusOK, payload.ResendCodeResponse{
		Envelope:  payload.Successful("a new verification code has been sent to your email"),
		EmailSent: true,
	})
}

func (h *VerificationHandler) respondVerifyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, usecase.ErrInvalidCode):
		respondError(w, http.StatusUnauthorized, "invalid verification code")
	case errors.Is(err, usecase.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, "invalid verification token")
	case errors.Is(err, usecase.ErrCodeExpired):
		respondError(w, http.StatusUnauthorized, "verification code has expired; request a new one")
	case errors.Is(err, usecase.ErrIdentityConflict):
		respondError(w, http.StatusConflict, "email is already claimed by a different identity")
	default:
		respondError(w, http.StatusInternalServerError, "something went wrong")
	}
}
