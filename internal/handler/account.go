package handler

import (
	"errors"
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/mirror"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/payload"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/repository"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/usecase"
)

// AccountHandler handles the profile read and the administrative user
// endpoints.
type AccountHandler struct {
	accountUsecase usecase.AccountUsecase
	validate       *validator.Validate
	trans          ut.Translator
	logger         *zerolog.Logger
}

func NewAccountHandler(
	accountUsecase usecase.AccountUsecase,
	validate *validator.Validate,
	trans ut.Translator,
	logger *zerolog.Logger,
) *AccountHandler {
	return &AccountHandler{
		accountUsecase: accountUsecase,
		validate:       validate,
		trans:          trans,
		logger:         logger,
	}
}

// GetProfile serves the caller's profile from the mirror.
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}

	profile, err := h.accountUsecase.GetProfile(r.Context(), claims.StudentID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to get profile")

		if errors.Is(err, mirror.ErrProfileNotFound) {
			respondError(w, http.StatusNotFound, "profile not found")
			return
		}

		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, payload.ProfileResponse{
		Envelope: payload.Successful("profile retrieved"),
		Profile:  payload.NewProfile(claims.StudentID, profile),
	})
}

func (h *AccountHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req payload.DeleteUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, h.trans, err)
		return
	}

	result, err := h.accountUsecase.DeleteUser(r.Context(), req.Email)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to delete user")
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	message := "user deleted"
	if !result.CredentialDeleted {
		message = "no account found for this email"
	}

	writeJSON(w, http.StatusOK, payload.DeleteUserResponse{
		Envelope:          payload.Successful(message),
		CredentialDeleted: result.CredentialDeleted,
		IdentityDeleted:   result.IdentityDeleted,
		MirrorDeleted:     result.MirrorDeleted,
	})
}

func (h *AccountHandler) SendStatusEmail(w http.ResponseWriter, r *http.Request) {
	var req payload.SendStatusEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, h.trans, err)
		return
	}

	err := h.accountUsecase.SendStatusEmail(r.Context(), usecase.SendStatusEmailParams{
		Email:        req.Email,
		Status:       req.Status,
		AcademicYear: req.AcademicYear,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to send status email")

		if errors.Is(err, usecase.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}

		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, payload.Successful("status email sent"))
}

func (h *AccountHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accountUsecase.ListUsers(r.Context(), parseFilterUsersParams(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list users")
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, payload.ListUsersResponse{
		Envelope: payload.Successful("users retrieved"),
		Users:    payload.NewUsers(users),
	})
}

var allowedUserSortFields = map[string]bool{
	"created_at": true,
	"email":      true,
	"student_id": true,
	"year_level": true,
}

func parseFilterUsersParams(r *http.Request) repository.FilterUsersParams {
	query := r.URL.Query()
	params := repository.FilterUsersParams{}

	if v := query.Get("email"); v != "" {
		params.Email = &v
	}
	if v := query.Get("role"); v != "" {
		params.Role = &v
	}
	if v := query.Get("verified"); v != "" {
		if verified, err := strconv.ParseBool(v); err == nil {
			params.Verified = &verified
		}
	}
	if v := query.Get("limit"); v != "" {
		if limit, err := strconv.ParseUint(v, 10, 32); err == nil {
			params.Limit = limit
		}
	}
	if v := query.Get("offset"); v != "" {
		if offset, err := strconv.ParseUint(v, 10, 32); err == nil {
			params.Offset = offset
		}
	}
	if v := query.Get("sort_by"); allowedUserSortFields[v] {
		params.SortBy = &v
	}
	params.SortDesc = query.Get("order") == "desc"

	return params
}
