package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/regeneration"
	"github.com/jonathan/resume-tailor/internal/resume"
)

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
		validation *ErrValidation
		regenInput *regeneration.ValidationError
		jobInput   *ingestion.InputError
		parse      *resume.ParseError
		request    *pipeline.RequestError
		notFound   *db.NotFoundError
		config     *llm.ConfigError
		transient  *llm.TransientError
		fatal      *llm.FatalError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &regenInput), errors.As(err, &jobInput),
		errors.As(err, &parse), errors.As(err, &request):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &config):
		return http.StatusServiceUnavailable
	case errors.As(err, &transient), errors.As(err, &fatal):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
