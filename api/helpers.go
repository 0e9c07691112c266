package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes caps request bodies at 1 MiB.
const maxBodyBytes = 1 << 20

type envelope map[string]any

var (
	errBadJSON      = errors.New("body is not a JSON object")
	errBodyTooLarge = fmt.Errorf("body must not be larger than %d bytes", maxBodyBytes)
)

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, data envelope) {
	js, err := json.Marshal(data)
	if err != nil {
		s.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	js = append(js, '\n')

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(js); err != nil {
		s.logger.DebugContext(r.Context(), "write response", "err", err)
	}
}

// readJSON decodes a single JSON object from the request body. Numbers are
// kept as json.Number so the validator sees exactly what the client sent.
func (s *Server) readJSON(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var input map[string]any
	if err := dec.Decode(&input); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, errBodyTooLarge
		}
		return nil, fmt.Errorf("%w: %v", errBadJSON, err)
	}
	if input == nil {
		// a literal null decodes into a nil map
		return nil, errBadJSON
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data", errBadJSON)
	}
	return input, nil
}
