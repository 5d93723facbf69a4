package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kaldeqca/sex-sim-ai/internal/card"
	"github.com/kaldeqca/sex-sim-ai/internal/locale"
	"github.com/kaldeqca/sex-sim-ai/internal/parsing"
	"github.com/kaldeqca/sex-sim-ai/internal/validation"
)

// ErrInvalidCredentials indicates an unknown client or a wrong secret.
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid client id or secret"
}

// ErrProfileNotFound indicates an unknown locale preset.
type ErrProfileNotFound struct {
	Name string
}

func (e *ErrProfileNotFound) Error() string {
	return fmt.Sprintf("locale profile not found: %s", e.Name)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		invalidCreds *ErrInvalidCredentials
		notFound     *ErrProfileNotFound
		invalidReq   *ErrValidation
		invalidInput *parsing.InvalidInputError
		unrepairable *parsing.UnrepairableError
		tooShort     *validation.ContentTooShortError
		profileErr   *locale.ProfileError
		cardErr      *card.CardError
		tooLarge     *http.MaxBytesError
	)
	switch {
	case errors.As(err, &invalidCreds):
		return http.StatusUnauthorized
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &invalidReq), errors.As(err, &invalidInput), errors.As(err, &profileErr):
		return http.StatusBadRequest
	case errors.As(err, &tooShort), errors.As(err, &unrepairable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, card.ErrMarkerNotFound), errors.As(err, &cardErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorCode is the machine-readable "code" field of an error body.
func errorCode(err error) string {
	var (
		tooShort     *validation.ContentTooShortError
		unrepairable *parsing.UnrepairableError
		invalidInput *parsing.InvalidInputError
	)
	switch {
	case errors.As(err, &tooShort):
		return "content_too_short"
	case errors.As(err, &unrepairable):
		return "unrepairable"
	case errors.As(err, &invalidInput):
		return "invalid_input"
	case errors.Is(err, card.ErrMarkerNotFound):
		return "marker_not_found"
	}
	switch HTTPStatus(err) {
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusRequestEntityTooLarge:
		return "too_large"
	case http.StatusBadRequest:
		return "bad_request"
	}
	return "internal"
}
