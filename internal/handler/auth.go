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

// AuthHandler handles registration and login.
type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	validate    *validator.Validate
	trans       ut.Translator
	logger      *zerolog.Logger
}

func NewAuthHandler(
	authUsecase usecase.AuthUsecase,
	validate *validator.Validate,
	trans ut.Translator,
	logger *zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		validate:    validate,
		trans:       trans,
		logger:      logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, h.trans, err)
		return
	}

	result, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		StudentID: req.StudentID,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Course:    req.Course,
		YearLevel: req.YearLevel,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to register user")

		switch {
		case errors.Is(err, usecase.ErrEmailAlreadyUsed):
			respondError(w, http.StatusConflict, "email is already registered")
		case errors.Is(err, usecase.ErrStudentIDAlreadyUsed):
			respondError(w, http.StatusConflict, "student ID is already registered")
		case errors.Is(err, usecase.ErrIdentityConflict):
			respondError(w, http.StatusConflict, "email is already claimed by a different identity")
		default:
			respondError(w, http.StatusInternalServerError, "something went wrong")
		}

		return
	}

	message := "registration successful, check your email for the verification code"
	if !result.EmailSent {
		message = "registration successful, but the verification email could not be sent; please request a resend"
	}

	writeJSON(w, http.StatusCreated, payload.RegisterResponse{
		Envelope:  payload.Successful(message),
		EmailSent: result.EmailSent,
		User:      payload.NewUser(result.User),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, h.trans, err)
		return
	}

	result, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to log in user")

		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, usecase.ErrNotVerified):
			writeJSON(w, http.StatusForbidden, payload.NotVerifiedResponse{
				Envelope:          payload.Failed("email is not verified"),
				NeedsVerification: true,
			})
		case errors.Is(err, usecase.ErrIdentityConflict):
			respondError(w, http.StatusConflict, "email is already claimed by a different identity")
		default:
			respondError(w, http.StatusInternalServerError, "something went wrong")
		}

		return
	}

	writeJSON(w, http.StatusOK, payload.LoginResponse{
		Envelope: payload.Successful("login successful"),
		Token:    result.Token,
		User:     payload.NewUser(result.User),
	})
}
