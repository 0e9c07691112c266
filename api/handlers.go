package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/Skryldev/entry-catalog/query"
	"github.com/Skryldev/entry-catalog/service"
)

// Failure messages for unexpected errors, one per operation.
const (
	msgFetchEntries = "Failed to fetch entries"
	msgFetchEntry   = "Failed to fetch entry"
	msgCreateEntry  = "Failed to create entry"
	msgUpdateEntry  = "Failed to update entry"
	msgDeleteEntry  = "Failed to delete entry"
)

func (s *Server) healthzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	if err := s.health.Ping(ctx); err != nil {
		s.logError(r, err)
		s.errorResponse(w, r, http.StatusServiceUnavailable, envelope{"error": "Database unavailable"})
		return
	}
	s.writeJSON(w, r, http.StatusOK, envelope{"data": map[string]string{"status": "ok"}})
}

func (s *Server) listEntriesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	params, err := query.ParseParams(r.URL.Query())
	if err != nil {
		s.serviceErrorResponse(w, r, &service.InputError{Message: service.MsgInvalidPagination, Err: err}, msgFetchEntries)
		return
	}

	res, err := s.entries.List(ctx, params)
	if err != nil {
		s.serviceErrorResponse(w, r, err, msgFetchEntries)
		return
	}
	s.writeJSON(w, r, http.StatusOK, envelope{"data": res.Entries, "pagination": res.Pagination})
}

func (s *Server) showEntryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	id, err := readIDParam(r)
	if err != nil {
		s.serviceErrorResponse(w, r, err, msgFetchEntry)
		return
	}

	entry, err := s.entries.Get(ctx, id)
	if err != nil {
		s.serviceErrorResponse(w, r, err, msgFetchEntry)
		return
	}
	s.writeJSON(w, r, http.StatusOK, envelope{"data": entry})
}

func (s *Server) createEntryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	input, err := s.readJSON(w, r)
	if err != nil {
		s.badBodyResponse(w, r, err)
		return
	}

	entry, err := s.entries.Create(ctx, input)
	if err != nil {
		s.serviceErrorResponse(w, r, err, msgCreateEntry)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, envelope{"message": "Entry created successfully", "data": entry})
}

func (s *Server) updateEntryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	id, err := readIDParam(r)
	if err != nil {
		s.serviceErrorResponse(w, r, err, msgUpdateEntry)
		return
	}

	input, err := s.readJSON(w, r)
	if err != nil {
		// A missing entry is reported ahead of an unreadable body.
		if _, findErr := s.entries.Get(ctx, id); findErr != nil {
			s.serviceErrorResponse(w, r, findErr, msgUpdateEntry)
			return
		}
		s.badBodyResponse(w, r, err)
		return
	}

	entry, err := s.entries.Update(ctx, id, input)
	if err != nil {
		s.serviceErrorResponse(w, r, err, msgUpdateEntry)
		return
	}
	s.writeJSON(w, r, http.StatusOK, envelope{"message": "Entry updated successfully", "data": entry})
}

func (s *Server) deleteEntryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	id, err := readIDParam(r)
	if err != nil {
		s.serviceErrorResponse(w, r, err, msgDeleteEntry)
		return
	}

	if err := s.entries.Delete(ctx, id); err != nil {
		s.serviceErrorResponse(w, r, err, msgDeleteEntry)
		return
	}
	s.writeJSON(w, r, http.StatusOK, envelope{"message": "Entry deleted successfully"})
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
}

func readIDParam(r *http.Request) (int64, error) {
	params := httprouter.ParamsFromContext(r.Context())
	return service.ParseID(params.ByName("id"))
}
