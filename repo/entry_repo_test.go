package repo_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/Skryldev/entry-catalog/db"
	"github.com/Skryldev/entry-catalog/internal/testdb"
	"github.com/Skryldev/entry-catalog/models"
	"github.com/Skryldev/entry-catalog/query"
	"github.com/Skryldev/entry-catalog/repo"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test fixture
// ─────────────────────────────────────────────────────────────────────────────

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) (repo.EntryRepository, *db.DB) {
	t.Helper()
	database := testdb.Open(t)
	return repo.NewEntryRepo(database, repo.WithClock(testdb.Clock(epoch, time.Second))), database
}

func params(title, director string, year int) models.CreateEntryParams {
	return models.CreateEntryParams{
		Title:    title,
		Type:     models.EntryTypeMovie,
		Director: director,
		Budget:   1000000,
		Location: "Somewhere",
		Duration: "120 min",
		Year:     year,
	}
}

func mustInsert(t *testing.T, r repo.EntryRepository, p models.CreateEntryParams) *models.Entry {
	t.Helper()
	e, err := r.Insert(context.Background(), p)
	if err != nil {
		t.Fatalf("insert %q: %v", p.Title, err)
	}
	return e
}

func titles(entries []*models.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}

func sameEntry(a, b *models.Entry) bool {
	return a.ID == b.ID && a.Title == b.Title && a.Type == b.Type && a.Director == b.Director &&
		a.Budget == b.Budget && a.Location == b.Location && a.Duration == b.Duration && a.Year == b.Year &&
		a.CreatedAt.Equal(b.CreatedAt) && a.UpdatedAt.Equal(b.UpdatedAt)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ─────────────────────────────────────────────────────────────────────────────
// Insert / Find
// ─────────────────────────────────────────────────────────────────────────────

func TestEntryRepo_Insert(t *testing.T) {
	r, _ := newTestRepo(t)

	p := params("Dune", "Denis Villeneuve", 2021)
	p.Type = models.EntryTypeTVShow
	p.Budget = 165000000.5

	e := mustInsert(t, r, p)
	if e.ID == 0 {
		t.Fatal("expected non-zero ID")
	}
	if e.Title != "Dune" || e.Type != models.EntryTypeTVShow || e.Budget != 165000000.5 || e.Year != 2021 {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if !e.CreatedAt.Equal(epoch) || !e.UpdatedAt.Equal(epoch) {
		t.Fatalf("unexpected timestamps: %v %v", e.CreatedAt, e.UpdatedAt)
	}
}

func TestEntryRepo_Insert_IDsIncrease(t *testing.T) {
	r, _ := newTestRepo(t)

	a := mustInsert(t, r, params("A", "X", 2000))
	b := mustInsert(t, r, params("B", "X", 2000))
	if b.ID <= a.ID {
		t.Fatalf("expected increasing ids, got %d then %d", a.ID, b.ID)
	}
}

func TestEntryRepo_Insert_CheckViolation(t *testing.T) {
	r, _ := newTestRepo(t)

	p := params("Free", "Nobody", 2000)
	p.Budget = 0
	_, err := r.Insert(context.Background(), p)
	if !db.IsCheckViolation(err) {
		t.Fatalf("expected ErrCheckViolation, got %v", err)
	}
}

func TestEntryRepo_Find(t *testing.T) {
	r, _ := newTestRepo(t)
	created := mustInsert(t, r, params("Heat", "Michael Mann", 1995))

	got, err := r.Find(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !sameEntry(got, created) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, created)
	}
}

func TestEntryRepo_Find_NotFound(t *testing.T) {
	r, _ := newTestRepo(t)

	_, err := r.Find(context.Background(), 999_999)
	if !db.IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// List / Count
// ─────────────────────────────────────────────────────────────────────────────

func seedList(t *testing.T, r repo.EntryRepository) {
	t.Helper()
	mustInsert(t, r, params("Alien", "Ridley Scott", 1979))
	mustInsert(t, r, params("Blade Runner", "Ridley Scott", 1982))
	mustInsert(t, r, params("Casablanca", "Michael Curtiz", 1942))
	mustInsert(t, r, params("100%_Pure", "Someone", 1979))
}

func TestEntryRepo_List_Order(t *testing.T) {
	r, _ := newTestRepo(t)
	seedList(t, r)
	ctx := context.Background()

	tests := []struct {
		name  string
		order query.Order
		want  []string
	}{
		{"newest first", query.Order{Key: query.SortByCreatedAt, Descending: true}, []string{"100%_Pure", "Casablanca", "Blade Runner", "Alien"}},
		{"oldest first", query.Order{Key: query.SortByCreatedAt}, []string{"Alien", "Blade Runner", "Casablanca", "100%_Pure"}},
		{"title asc", query.Order{Key: query.SortByTitle}, []string{"100%_Pure", "Alien", "Blade Runner", "Casablanca"}},
		// equal years fall back to id ascending
		{"year desc", query.Order{Key: query.SortByYear, Descending: true}, []string{"Blade Runner", "Alien", "100%_Pure", "Casablanca"}},
		{"year asc", query.Order{Key: query.SortByYear}, []string{"Casablanca", "Alien", "100%_Pure", "Blade Runner"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.List(ctx, query.Spec{Order: tt.order, Limit: 10})
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if !equalStrings(titles(got), tt.want) {
				t.Fatalf("got %v, want %v", titles(got), tt.want)
			}
		})
	}
}

func TestEntryRepo_List_Pagination(t *testing.T) {
	r, _ := newTestRepo(t)
	seedList(t, r)
	ctx := context.Background()
	order := query.Order{Key: query.SortByTitle}

	page2, err := r.List(ctx, query.Spec{Order: order, Limit: 3, Offset: 3})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !equalStrings(titles(page2), []string{"Casablanca"}) {
		t.Fatalf("unexpected second page %v", titles(page2))
	}

	beyond, err := r.List(ctx, query.Spec{Order: order, Limit: 3, Offset: 30})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if beyond == nil || len(beyond) != 0 {
		t.Fatalf("expected empty non-nil page, got %v", beyond)
	}

	last, err := r.List(ctx, query.Spec{Order: order, Limit: 100, Offset: math.MaxInt})
	if err != nil {
		t.Fatalf("list at max offset: %v", err)
	}
	if len(last) != 0 {
		t.Fatalf("expected empty page at max offset, got %v", titles(last))
	}
}

func TestEntryRepo_List_Search(t *testing.T) {
	r, _ := newTestRepo(t)
	seedList(t, r)
	ctx := context.Background()

	tests := []struct {
		search string
		want   []string
	}{
		{"ridley", []string{"Alien", "Blade Runner"}},
		{"CASA", []string{"Casablanca"}},
		{"curtiz", []string{"Casablanca"}},
		{"%", []string{"100%_Pure"}},
		{"_", []string{"100%_Pure"}},
		{"nothing matches", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			spec := query.Spec{Filter: query.Filter{Search: tt.search}, Order: query.Order{Key: query.SortByTitle}, Limit: 10}
			got, err := r.List(ctx, spec)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if !equalStrings(titles(got), tt.want) {
				t.Fatalf("got %v, want %v", titles(got), tt.want)
			}

			n, err := r.Count(ctx, spec.Filter)
			if err != nil {
				t.Fatalf("count: %v", err)
			}
			if n != int64(len(tt.want)) {
				t.Fatalf("count %d does not match page %v", n, tt.want)
			}
		})
	}
}

func TestEntryRepo_List_SearchFoldsUnicode(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()
	mustInsert(t, r, params("École du Nord", "Jean Dupont", 1970))
	mustInsert(t, r, params("Volver", "Pedro ALMODÓVAR", 2006))
	mustInsert(t, r, params("Casablanca", "Michael Curtiz", 1942))

	tests := []struct {
		search string
		want   []string
	}{
		{"École", []string{"École du Nord"}},
		{"école", []string{"École du Nord"}},
		{"ÉCOLE", []string{"École du Nord"}},
		{"cole", []string{"École du Nord"}},
		{"almodóvar", []string{"Volver"}},
		{"ÓVAR", []string{"Volver"}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			f := query.Filter{Search: tt.search}
			got, err := r.List(ctx, query.Spec{Filter: f, Order: query.Order{Key: query.SortByTitle}, Limit: 10})
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if !equalStrings(titles(got), tt.want) {
				t.Fatalf("got %v, want %v", titles(got), tt.want)
			}
			if n, err := r.Count(ctx, f); err != nil || n != int64(len(tt.want)) {
				t.Fatalf("count = %d, %v; want %d", n, err, len(tt.want))
			}
		})
	}
}

func TestEntryRepo_Count(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	n, err := r.Count(ctx, query.Filter{})
	if err != nil || n != 0 {
		t.Fatalf("empty count = %d, %v", n, err)
	}

	seedList(t, r)
	if n, _ = r.Count(ctx, query.Filter{}); n != 4 {
		t.Fatalf("expected 4, got %d", n)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update
// ─────────────────────────────────────────────────────────────────────────────

func TestEntryRepo_Update_Partial(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()
	original := mustInsert(t, r, params("Solaris", "Tarkovsky", 1972))

	title := "Solaris (restored)"
	year := 1973
	updated, err := r.Update(ctx, original.ID, models.UpdateEntryParams{Title: &title, Year: &year})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title || updated.Year != year {
		t.Fatalf("fields not applied: %+v", updated)
	}
	if updated.Director != original.Director || updated.Budget != original.Budget {
		t.Fatal("untouched fields must be preserved")
	}
	if !updated.CreatedAt.Equal(original.CreatedAt) {
		t.Fatal("createdAt must never change")
	}
	if !updated.UpdatedAt.After(original.UpdatedAt) {
		t.Fatalf("updatedAt not refreshed: %v -> %v", original.UpdatedAt, updated.UpdatedAt)
	}
}

func TestEntryRepo_Update_EmptyPatch(t *testing.T) {
	r, _ := newTestRepo(t)
	original := mustInsert(t, r, params("Stalker", "Tarkovsky", 1979))

	updated, err := r.Update(context.Background(), original.ID, models.UpdateEntryParams{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != original.Title || !updated.UpdatedAt.After(original.UpdatedAt) {
		t.Fatalf("empty patch must only refresh updatedAt: %+v", updated)
	}
}

func TestEntryRepo_Update_NotFound(t *testing.T) {
	r, _ := newTestRepo(t)
	title := "ghost"

	_, err := r.Update(context.Background(), 999_999, models.UpdateEntryParams{Title: &title})
	if !db.IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete
// ─────────────────────────────────────────────────────────────────────────────

func TestEntryRepo_Delete(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()
	e := mustInsert(t, r, params("Ran", "Kurosawa", 1985))

	if err := r.Delete(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := r.Find(ctx, e.ID); !db.IsNotFound(err) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := r.Delete(ctx, e.ID); !db.IsNotFound(err) {
		t.Fatalf("second delete must report ErrNotFound, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// BatchInsert / transactions
// ─────────────────────────────────────────────────────────────────────────────

func TestEntryRepo_BatchInsert(t *testing.T) {
	r, database := newTestRepo(t)
	ctx := context.Background()

	batch := []models.CreateEntryParams{
		params("One", "A", 2001),
		params("Two", "B", 2002),
		params("Three", "C", 2003),
	}

	var created []*models.Entry
	err := database.ExecTx(ctx, func(tx *db.Tx) error {
		var err error
		created, err = repo.NewEntryRepo(tx).BatchInsert(ctx, batch)
		return err
	})
	if err != nil {
		t.Fatalf("batch insert: %v", err)
	}
	if len(created) != 3 || created[2].Title != "Three" || created[2].ID == 0 {
		t.Fatalf("unexpected batch result %+v", created)
	}

	if n, _ := r.Count(ctx, query.Filter{}); n != 3 {
		t.Fatalf("expected 3 entries, got %d", n)
	}
}

func TestEntryRepo_BatchInsert_RollsBack(t *testing.T) {
	r, database := newTestRepo(t)
	ctx := context.Background()

	bad := params("Bad", "B", 2002)
	bad.Budget = -5

	err := database.ExecTx(ctx, func(tx *db.Tx) error {
		_, err := repo.NewEntryRepo(tx).BatchInsert(ctx, []models.CreateEntryParams{params("Good", "A", 2001), bad})
		return err
	})
	if !db.IsCheckViolation(err) {
		t.Fatalf("expected ErrCheckViolation, got %v", err)
	}
	if n, _ := r.Count(ctx, query.Filter{}); n != 0 {
		t.Fatalf("expected rollback, found %d entries", n)
	}
}

func TestEntryRepo_BatchInsert_Empty(t *testing.T) {
	r, _ := newTestRepo(t)

	created, err := r.BatchInsert(context.Background(), nil)
	if err != nil || len(created) != 0 {
		t.Fatalf("unexpected result %v, %v", created, err)
	}
}
