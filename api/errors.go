package api

import (
	"errors"
	"net/http"

	"github.com/Skryldev/entry-catalog/service"
	"github.com/Skryldev/entry-catalog/validation"
)

func (s *Server) logError(r *http.Request, err error) {
	s.logger.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"uri", r.URL.RequestURI(),
		"request_id", requestIDFrom(r.Context()),
		"err", err,
	)
}

func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, status int, body envelope) {
	s.writeJSON(w, r, status, body)
}

// serviceErrorResponse maps a service error onto its status code. Causes of
// unexpected failures are logged and replaced by failMsg.
func (s *Server) serviceErrorResponse(w http.ResponseWriter, r *http.Request, err error, failMsg string) {
	var (
		inputErr *service.InputError
		validErr *validation.Error
	)
	switch {
	case errors.As(err, &inputErr):
		s.errorResponse(w, r, http.StatusBadRequest, envelope{"error": inputErr.Message})
	case errors.As(err, &validErr):
		s.errorResponse(w, r, http.StatusBadRequest, envelope{"error": "Validation failed", "details": validErr.Fields})
	case errors.Is(err, service.ErrNotFound):
		s.errorResponse(w, r, http.StatusNotFound, envelope{"error": "Entry not found"})
	case errors.Is(err, service.ErrStorageTimeout):
		s.logError(r, err)
		s.errorResponse(w, r, http.StatusServiceUnavailable, envelope{"error": "Service temporarily unavailable"})
	default:
		s.serverErrorResponse(w, r, err, failMsg)
	}
}

func (s *Server) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error, msg string) {
	s.logError(r, err)
	s.errorResponse(w, r, http.StatusInternalServerError, envelope{"error": msg})
}

func (s *Server) badBodyResponse(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBodyTooLarge) {
		s.errorResponse(w, r, http.StatusRequestEntityTooLarge, envelope{"error": "Request body must not be larger than 1 MiB"})
		return
	}
	s.errorResponse(w, r, http.StatusBadRequest, envelope{"error": "Invalid JSON body"})
}

func (s *Server) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, r, http.StatusNotFound, envelope{"error": "The requested resource could not be found"})
}

func (s *Server) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, r, http.StatusMethodNotAllowed, envelope{"error": "The " + r.Method + " method is not supported for this resource"})
}
