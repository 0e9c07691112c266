package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skryldev/entry-catalog/db"
	"github.com/Skryldev/entry-catalog/models"
	"github.com/Skryldev/entry-catalog/query"
)

// ─────────────────────────────────────────────────────────────────────────────
// EntryRepository interface: for mocking in tests
// ─────────────────────────────────────────────────────────────────────────────

// EntryRepository defines the contract for entry persistence operations.
type EntryRepository interface {
	Find(ctx context.Context, id int64) (*models.Entry, error)
	List(ctx context.Context, spec query.Spec) ([]*models.Entry, error)
	Count(ctx context.Context, filter query.Filter) (int64, error)
	Insert(ctx context.Context, params models.CreateEntryParams) (*models.Entry, error)
	Update(ctx context.Context, id int64, params models.UpdateEntryParams) (*models.Entry, error)
	Delete(ctx context.Context, id int64) error
	BatchInsert(ctx context.Context, params []models.CreateEntryParams) ([]*models.Entry, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// entryRepo: concrete implementation
// ─────────────────────────────────────────────────────────────────────────────

type entryRepo struct {
	q   db.Querier
	now func() time.Time
}

// Option configures an entry repository.
type Option func(*entryRepo)

// WithClock overrides the clock used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(r *entryRepo) { r.now = now }
}

// NewEntryRepo returns an EntryRepository backed by q.
// q can be a *db.DB or *db.Tx; both satisfy db.Querier.
func NewEntryRepo(q db.Querier, opts ...Option) EntryRepository {
	r := &entryRepo{q: q, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// timestamp returns the current time at the precision every supported store
// keeps, so values read back compare equal to values written.
func (r *entryRepo) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

// ─────────────────────────────────────────────────────────────────────────────
// SQL fragments
// ─────────────────────────────────────────────────────────────────────────────

const (
	entryColumns = `id, title, type, director, budget, location, duration, year, created_at, updated_at`

	insertColumns = `title, type, director, budget, location, duration, year, created_at, updated_at`

	// likeEscape is the ESCAPE character of search patterns. A backslash would
	// need quoting in MySQL string literals, '!' does not.
	likeEscape = '!'
)

var orderColumns = map[query.SortKey]string{
	query.SortByCreatedAt: "created_at",
	query.SortByYear:      "year",
	query.SortByTitle:     "title",
}

// stmt accumulates bind arguments and renders dialect placeholders.
type stmt struct {
	d    db.Dialect
	args []any
}

func (s *stmt) bind(v any) string {
	s.args = append(s.args, v)
	return s.d.Placeholder(len(s.args))
}

func (s *stmt) returning() string {
	if s.d.SupportsReturning() {
		return " RETURNING " + entryColumns
	}
	return ""
}

func (s *stmt) where(f query.Filter) string {
	if f.IsZero() {
		return ""
	}
	pattern := "%" + escapeLike(db.FoldCase(f.Search)) + "%"
	return fmt.Sprintf(" WHERE (%s LIKE %s ESCAPE '%c' OR %s LIKE %s ESCAPE '%c')",
		s.d.Fold("title"), s.bind(pattern), likeEscape, s.d.Fold("director"), s.bind(pattern), likeEscape)
}

func (s *stmt) insert(values []any) string {
	marks := make([]string, len(values))
	for i, v := range values {
		marks[i] = s.bind(v)
	}
	return fmt.Sprintf(`INSERT INTO entries (%s) VALUES (%s)`, insertColumns, strings.Join(marks, ", ")) + s.returning()
}

// insertValues lists the bind values of an insert in insertColumns order.
func insertValues(p models.CreateEntryParams, now time.Time) []any {
	return []any{p.Title, string(p.Type), p.Director, p.Budget, p.Location, p.Duration, p.Year, now, now}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(
		string(likeEscape), string(likeEscape)+string(likeEscape),
		"%", string(likeEscape)+"%",
		"_", string(likeEscape)+"_",
	)
	return r.Replace(s)
}

// ─────────────────────────────────────────────────────────────────────────────
// Find
// ─────────────────────────────────────────────────────────────────────────────

// Find returns a single entry by primary key.
// Returns db.ErrNotFound when no record matches.
func (r *entryRepo) Find(ctx context.Context, id int64) (*models.Entry, error) {
	s := &stmt{d: r.q.Dialect()}
	sql := fmt.Sprintf(`SELECT %s FROM entries WHERE id = %s`, entryColumns, s.bind(id))
	return scanEntry(r.q.QueryRow(ctx, sql, s.args...))
}

// ─────────────────────────────────────────────────────────────────────────────
// List / Count
// ─────────────────────────────────────────────────────────────────────────────

// List returns one page of entries matching spec, ordered by the requested
// key with id ascending as the tie-break.
func (r *entryRepo) List(ctx context.Context, spec query.Spec) ([]*models.Entry, error) {
	s := &stmt{d: r.q.Dialect()}

	column, ok := orderColumns[spec.Order.Key]
	if !ok {
		column = orderColumns[query.SortByCreatedAt]
	}
	direction := "ASC"
	if spec.Order.Descending {
		direction = "DESC"
	}

	sql := fmt.Sprintf(`SELECT %s FROM entries%s ORDER BY %s %s, id ASC LIMIT %s OFFSET %s`,
		entryColumns, s.where(spec.Filter), column, direction, s.bind(spec.Limit), s.bind(spec.Offset))

	rows, err := r.q.Query(ctx, sql, s.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.Entry, 0, spec.Limit)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of entries matching filter.
func (r *entryRepo) Count(ctx context.Context, filter query.Filter) (int64, error) {
	s := &stmt{d: r.q.Dialect()}
	sql := `SELECT COUNT(*) FROM entries` + s.where(filter)

	var n int64
	if err := r.q.QueryRow(ctx, sql, s.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo/entry: count: %w", err)
	}
	return n, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Insert
// ─────────────────────────────────────────────────────────────────────────────

// Insert creates a new entry and returns the persisted record including the
// store-assigned id and timestamps.
func (r *entryRepo) Insert(ctx context.Context, params models.CreateEntryParams) (*models.Entry, error) {
	s := &stmt{d: r.q.Dialect()}
	sql := s.insert(insertValues(params, r.timestamp()))

	if s.d.SupportsReturning() {
		return scanEntry(r.q.QueryRow(ctx, sql, s.args...))
	}

	res, err := r.q.Exec(ctx, sql, s.args...)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("repo/entry: last insert id: %w", err)
	}
	return r.Find(ctx, id)
}

// ─────────────────────────────────────────────────────────────────────────────
// Update: partial update with explicit SQL construction
// ─────────────────────────────────────────────────────────────────────────────

// Update applies a partial update. Only non-nil fields of params are written;
// updated_at is refreshed on every call, including an empty patch.
// Returns db.ErrNotFound when no record matches.
func (r *entryRepo) Update(ctx context.Context, id int64, params models.UpdateEntryParams) (*models.Entry, error) {
	s := &stmt{d: r.q.Dialect()}
	set := make([]string, 0, 8)

	if params.Title != nil {
		set = append(set, "title = "+s.bind(*params.Title))
	}
	if params.Type != nil {
		set = append(set, "type = "+s.bind(string(*params.Type)))
	}
	if params.Director != nil {
		set = append(set, "director = "+s.bind(*params.Director))
	}
	if params.Budget != nil {
		set = append(set, "budget = "+s.bind(*params.Budget))
	}
	if params.Location != nil {
		set = append(set, "location = "+s.bind(*params.Location))
	}
	if params.Duration != nil {
		set = append(set, "duration = "+s.bind(*params.Duration))
	}
	if params.Year != nil {
		set = append(set, "year = "+s.bind(*params.Year))
	}
	set = append(set, "updated_at = "+s.bind(r.timestamp()))

	sql := fmt.Sprintf(`UPDATE entries SET %s WHERE id = %s`, strings.Join(set, ", "), s.bind(id)) + s.returning()

	if s.d.SupportsReturning() {
		return scanEntry(r.q.QueryRow(ctx, sql, s.args...))
	}

	if _, err := r.q.Exec(ctx, sql, s.args...); err != nil {
		return nil, err
	}
	return r.Find(ctx, id)
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete
// ─────────────────────────────────────────────────────────────────────────────

// Delete removes an entry by id.
// Returns db.ErrNotFound if no row was deleted.
func (r *entryRepo) Delete(ctx context.Context, id int64) error {
	s := &stmt{d: r.q.Dialect()}
	res, err := r.q.Exec(ctx, `DELETE FROM entries WHERE id = `+s.bind(id), s.args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repo/entry: rows affected: %w", err)
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// BatchInsert
// ─────────────────────────────────────────────────────────────────────────────

// BatchInsert inserts entries through one prepared statement. Run it on a
// *db.Tx when all rows must be inserted or none.
func (r *entryRepo) BatchInsert(ctx context.Context, params []models.CreateEntryParams) ([]*models.Entry, error) {
	if len(params) == 0 {
		return nil, nil
	}

	// only the placeholders of the prototype are used; its bound values are discarded
	s := &stmt{d: r.q.Dialect()}
	prepared, err := r.q.Prepare(ctx, s.insert(insertValues(models.CreateEntryParams{}, time.Time{})))
	if err != nil {
		return nil, err
	}
	defer prepared.Close()

	now := r.timestamp()
	entries := make([]*models.Entry, 0, len(params))
	for _, p := range params {
		args := insertValues(p, now)

		var e *models.Entry
		if s.d.SupportsReturning() {
			e, err = scanEntry(prepared.QueryRow(ctx, args...))
		} else {
			e, err = r.execInsert(ctx, prepared, args)
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *entryRepo) execInsert(ctx context.Context, prepared *db.Stmt, args []any) (*models.Entry, error) {
	res, err := prepared.Exec(ctx, args...)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("repo/entry: last insert id: %w", err)
	}
	return r.Find(ctx, id)
}

// ─────────────────────────────────────────────────────────────────────────────
// scanEntry: centralised column mapping
// ─────────────────────────────────────────────────────────────────────────────

type scanner interface {
	Scan(dest ...any) error
}

// scanEntry scans a single entry row in entryColumns order.
func scanEntry(row scanner) (*models.Entry, error) {
	e := &models.Entry{}
	err := row.Scan(
		&e.ID, &e.Title, &e.Type, &e.Director, &e.Budget,
		&e.Location, &e.Duration, &e.Year,
		db.Time(&e.CreatedAt), db.Time(&e.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("repo/entry: %w", err)
	}
	return e, nil
}

var _ EntryRepository = (*entryRepo)(nil)
