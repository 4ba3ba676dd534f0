package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/payload"
)

// NewValidator builds the request validator with english translations
// registered, so field errors render as readable messages.
func NewValidator() (*validator.Validate, ut.Translator, error) {
	english := en.New()
	uni := ut.New(english, english)

	trans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, nil, errors.New("english translator not found")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := entranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, err
	}

	return validate, trans, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, payload.Failed(message))
}

func respondValidationError(w http.ResponseWriter, trans ut.Translator, err error) {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		messages = append(messages, fieldError.Translate(trans))
	}

	writeJSON(w, http.StatusBadRequest, payload.ValidationErrorResponse{
		Envelope: payload.Failed("request validation failed"),
		Errors:   messages,
	})
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
