// Package service implements the entry operations: each call validates its
// input, checks existence where needed, touches the store and returns typed
// results or typed errors.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Skryldev/entry-catalog/models"
	"github.com/Skryldev/entry-catalog/query"
	"github.com/Skryldev/entry-catalog/repo"
	"github.com/Skryldev/entry-catalog/validation"
)

// Client-facing messages of input errors.
const (
	MsgInvalidID         = "Invalid entry ID"
	MsgInvalidPagination = "Invalid pagination parameters. Page must be >= 1 and limit between 1-100"
)

// Options configures an EntryService.
type Options struct {
	// Timeout bounds the store calls of one operation. Zero disables it.
	Timeout time.Duration
	// Logger defaults to slog.Default() if nil.
	Logger *slog.Logger
	// Now defaults to time.Now. It decides the accepted year range.
	Now func() time.Time
}

// EntryService orchestrates the entry operations over an EntryRepository.
type EntryService struct {
	repo    repo.EntryRepository
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewEntryService returns a service backed by r.
func NewEntryService(r repo.EntryRepository, opts Options) *EntryService {
	s := &EntryService{repo: r, timeout: opts.Timeout, logger: opts.Logger, now: opts.Now}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ListResult is one page of entries and its pagination metadata.
type ListResult struct {
	Entries    []*models.Entry
	Pagination query.Pagination
}

// ParseID parses a path id. Anything but a base-10 integer is an InputError.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &InputError{Message: MsgInvalidID, Err: err}
	}
	return id, nil
}

// List returns the page of entries selected by p. The total is counted with
// the same filter as the page.
func (s *EntryService) List(ctx context.Context, p query.Params) (*ListResult, error) {
	spec, err := query.Build(p)
	if err != nil {
		return nil, &InputError{Message: MsgInvalidPagination, Err: err}
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	entries, err := s.repo.List(ctx, spec)
	if err != nil {
		return nil, &StorageError{Op: "list entries", Err: err}
	}
	total, err := s.repo.Count(ctx, spec.Filter)
	if err != nil {
		return nil, &StorageError{Op: "count entries", Err: err}
	}

	return &ListResult{
		Entries:    entries,
		Pagination: query.NewPagination(p.Page, p.Limit, total),
	}, nil
}

// Get returns a single entry.
func (s *EntryService) Get(ctx context.Context, id int64) (*models.Entry, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	e, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, storageErr("find entry", err)
	}
	return e, nil
}

// Create validates input as a complete entry and stores it. Nothing is
// written when validation fails.
func (s *EntryService) Create(ctx context.Context, input map[string]any) (*models.Entry, error) {
	params, err := validation.Create(input, s.now())
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	e, err := s.repo.Insert(ctx, params)
	if err != nil {
		return nil, &StorageError{Op: "insert entry", Err: err}
	}
	s.logger.InfoContext(ctx, "entry created", "id", e.ID, "title", e.Title)
	return e, nil
}

// Update applies the fields present in input to an existing entry. An empty
// input only refreshes updatedAt.
func (s *EntryService) Update(ctx context.Context, id int64, input map[string]any) (*models.Entry, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if _, err := s.repo.Find(ctx, id); err != nil {
		return nil, storageErr("find entry", err)
	}

	params, err := validation.Update(input, s.now())
	if err != nil {
		return nil, err
	}

	e, err := s.repo.Update(ctx, id, params)
	if err != nil {
		// deleted between the existence check and the update
		return nil, storageErr("update entry", err)
	}
	s.logger.InfoContext(ctx, "entry updated", "id", e.ID, "empty_patch", params.IsEmpty())
	return e, nil
}

// Delete removes an entry. Deleting a missing entry is ErrNotFound, never a
// silent success.
func (s *EntryService) Delete(ctx context.Context, id int64) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		return storageErr("delete entry", err)
	}
	s.logger.InfoContext(ctx, "entry deleted", "id", id)
	return nil
}

func (s *EntryService) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// IsClientError reports whether err is caused by the request rather than the
// service: bad input, failed validation or a missing entry.
func IsClientError(err error) bool {
	var (
		inputErr *InputError
		validErr *validation.Error
	)
	return errors.As(err, &inputErr) || errors.As(err, &validErr) || errors.Is(err, ErrNotFound)
}
