package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/payload"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/repository"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/usecase"
)

const (
	maxSubmissionBytes = 32 << 20
	maxDocumentBytes   = 10 << 20
	maxDocumentCount   = 5
)

// ApplicationHandler handles scholarship application endpoints.
type ApplicationHandler struct {
	applicationUsecase usecase.ApplicationUsecase
	validate           *validator.Validate
	trans              ut.Translator
	logger             *zerolog.Logger
}

func NewApplicationHandler(
	applicationUsecase usecase.ApplicationUsecase,
	validate *validator.Validate,
	trans ut.Translator,
	logger *zerolog.Logger,
) *ApplicationHandler {
	return &ApplicationHandler{
		applicationUsecase: applicationUsecase,
		validate:           validate,
		trans:              trans,
		logger:             logger,
	}
}

// Submit accepts a multipart form: academic_year and scholarship text
// fields plus one or more file parts named "documents".
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}

	if err := r.ParseMultipartForm(maxSubmissionBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req := payload.SubmitApplicationRequest{
		AcademicYear: r.FormValue("academic_year"),
		Scholarship:  r.FormValue("scholarship"),
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, h.trans, err)
		return
	}

	files := r.MultipartForm.File["documents"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "at least one document is required")
		return
	}
	if len(files) > maxDocumentCount {
		respondError(w, http.StatusBadRequest, "too many documents")
		return
	}

	documents := make([]usecase.DocumentUpload, 0, len(files))
	for _, fileHeader := range files {
		if fileHeader.Size > maxDocumentBytes {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("document %q exceeds the size limit", fileHeader.Filename))
			return
		}

		data, err := readMultipartFile(fileHeader)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to read uploaded document")
			respondError(w, http.StatusBadRequest, "failed to read uploaded document")
			return
		}

		contentType := fileHeader.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		documents = append(documents, usecase.DocumentUpload{
			Name:        fileHeader.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}

	application, err := h.applicationUsecase.SubmitApplication(r.Context(), usecase.SubmitApplicationParams{
		StudentID:    claims.StudentID,
		AcademicYear: req.AcademicYear,
		Scholarship:  req.Scholarship,
		Documents:    documents,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to submit application")

		if errors.Is(err, usecase.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}

		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusCreated, payload.ApplicationResponse{
		Envelope:    payload.Successful("application submitted"),
		Application: payload.NewApplication(application),
	})
}

// GetMine serves the caller's own application, the latest one unless an
// academic_year query parameter narrows it down.
func (h *ApplicationHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}

	academicYear := r.URL.Query().Get("academic_year")

	application, err := h.applicationUsecase.GetApplication(r.Context(), claims.StudentID, academicYear)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to get application")

		if errors.Is(err, usecase.ErrApplicationNotFound) {
			respondError(w, http.StatusNotFound, "application not found")
			return
		}

		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, payload.ApplicationResponse{
		Envelope:    payload.Successful("application retrieved"),
		Application: payload.NewApplication(application),
	})
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	applications, err := h.applicationUsecase.ListApplications(r.Context(), parseFilterApplicationsParams(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list applications")
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, payload.ListApplicationsResponse{
		Envelope:     payload.Successful("applications retrieved"),
		Applications: payload.NewApplications(applications),
	})
}

func readMultipartFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

var allowedApplicationSortFields = map[string]bool{
	"created_at":    true,
	"academic_year": true,
	"status":        true,
}

func parseFilterApplicationsParams(r *http.Request) repository.FilterApplicationsParams {
	query := r.URL.Query()
	params := repository.FilterApplicationsParams{}

	if v := query.Get("status"); v != "" {
		params.Status = &v
	}
	if v := query.Get("academic_year"); v != "" {
		params.AcademicYear = &v
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
	if v := query.Get("sort_by"); allowedApplicationSortFields[v] {
		params.SortBy = &v
	}
	params.SortDesc = query.Get("order") == "desc"

	return params
}
