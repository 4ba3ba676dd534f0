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

// PasswordResetHandler handles the forgot-password endpoints.
type PasswordResetHandler struct {
	passwordResetUsecase usecase.PasswordResetUsecase
	validate             *validator.Validate
	trans                ut.Translator
	logger               *zerolog.Logger
}

func NewPasswordResetHandler(
	passwordResetUsecase usecase.PasswordResetUsecase,
	validate *validator.Validate,
	trans ut.Translator,
	logger *zerolog.Logger,
) *PasswordResetHandler {
	return &PasswordResetHandler{
		passwordResetUsecase: passwordResetUsecase,
		validate:             validate,
		trans:                trans,
		logger:               logger,
	}
}

// RequestReset mails a reset link. The response is the same whether or not
// the email has an account.
func (h *PasswordResetHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req payload.ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, h.trans, err)
		return
	}

	if err := h.passwordResetUsecase.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.logger.Error().Err(err).Msg("failed to request password reset")
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, payload.Successful(
		"if an account exists for that email, a reset link has been sent",
	))
}

// ValidateToken checks the reset link before the client renders its
// password form; the token arrives as a query parameter.
func (h *PasswordResetHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusBadRequest, "token is required")
		return
	}

	if err := h.passwordResetUsecase.ValidateResetToken(r.Context(), token); err != nil {
		h.logger.Error().Err(err).Msg("failed to validate password reset token")
		h.respondResetError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payload.Successful("reset token is valid"))
}

func (h *PasswordResetHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, h.trans, err)
		return
	}

	if err := h.passwordResetUsecase.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.logger.Error().Err(err).Msg("failed to reset password")
		h.respondResetError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payload.Successful("password has been reset; you can now log in"))
}

func (h *PasswordResetHandler) respondResetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrResetTokenNotFound):
		respondError(w, http.StatusNotFound, "password reset token not found")
	case errors.Is(err, usecase.ErrResetTokenUsed):
		respondError(w, http.StatusConflict, "password reset token has already been used")
	case errors.Is(err, usecase.ErrResetTokenExpired):
		respondError(w, http.StatusUnauthorized, "password reset token has expired; request a new one")
	case errors.Is(err, usecase.ErrInvalidResetToken):
		respondError(w, http.StatusUnauthorized, "invalid password reset token")
	case errors.Is(err, usecase.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user not found")
	default:
		respondError(w, http.StatusInternalServerError, "something went wrong")
	}
}
