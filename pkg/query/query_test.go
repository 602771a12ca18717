package query_test

import (
	"testing"

	"github.com/JaimeStill/lostfound/pkg/query"
)

func itemProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "found_items", "i").
		Project("id", "ID").
		Project("owner_id", "OwnerID").
		Project("title", "Title").
		Project("status", "Status").
		Join("public", "categories", "cat", "LEFT JOIN", "i.category_id = cat.id").
		Project("name", "CategoryName")
}

func ptr[T any](v T) *T { return &v }

func TestProjectionMap(t *testing.T) {
	p := itemProjection()

	if got, want := p.Table(), "public.found_items i"; got != want {
		t.Errorf("Table() = %q, want %q", got, want)
	}
	if got, want := p.Alias(), "i"; got != want {
		t.Errorf("Alias() = %q, want %q", got, want)
	}

	wantFrom := "public.found_items i LEFT JOIN public.categories cat ON i.category_id = cat.id"
	if got := p.From(); got != wantFrom {
		t.Errorf("From() = %q, want %q", got, wantFrom)
	}

	wantCols := "i.id, i.owner_id, i.title, i.status, cat.name"
	if got := p.Columns(); got != wantCols {
		t.Errorf("Columns() = %q, want %q", got, wantCols)
	}

	if got := len(p.ColumnList()); got != 5 {
		t.Errorf("ColumnList() length = %d, want 5", got)
	}
}

func TestProjectionMapColumnLookup(t *testing.T) {
	p := itemProjection()

	tests := []struct {
		view string
		want string
	}{
		{"Title", "i.title"},
		{"CategoryName", "cat.name"},
		{"unmapped", "unmapped"},
	}

	for _, tt := range tests {
		t.Run(tt.view, func(t *testing.T) {
			if got := p.Column(tt.view); got != tt.want {
				t.Errorf("Column(%q) = %q, want %q", tt.view, got, tt.want)
			}
		})
	}
}

func TestParseSortFields(t *testing.T) {
	fields := query.ParseSortFields("Title, -CreatedAt,,")
	if len(fields) != 2 {
		t.Fatalf("len = %d, want 2", len(fields))
	}
	if fields[0].Field != "Title" || fields[0].Descending {
		t.Errorf("fields[0] = %+v", fields[0])
	}
	if fields[1].Field != "CreatedAt" || !fields[1].Descending {
		t.Errorf("fields[1] = %+v", fields[1])
	}
	if query.ParseSortFields("") != nil {
		t.Error("empty input should return nil")
	}
}

func TestBuilderConditions(t *testing.T) {
	owner := "9f3c6c38-6d1e-4f57-9d4c-3b8f3cbb0a11"

	qb := query.NewBuilder(itemProjection(), query.SortField{Field: "Title"}).
		WhereSearch(ptr("backpack"), "Title").
		WhereEquals("OwnerID", &owner).
		WhereEquals("Status", (*string)(nil)).
		WhereEqualsFold("CategoryName", ptr("Bags")).
		WhereNotEquals("OwnerID", "other")

	sql, args := qb.Build()
	want := "SELECT i.id, i.owner_id, i.title, i.status, cat.name " +
		"FROM public.found_items i LEFT JOIN public.categories cat ON i.category_id = cat.id " +
		"WHERE (i.title ILIKE $1) AND i.owner_id = $2 AND LOWER(cat.name) = LOWER($3) AND i.owner_id <> $4 " +
		"ORDER BY i.title ASC"

	if sql != want {
		t.Errorf("Build()\n got: %s\nwant: %s", sql, want)
	}
	if len(args) != 4 {
		t.Fatalf("args = %d, want 4", len(args))
	}
	if args[0] != "%backpack%" {
		t.Errorf("args[0] = %v, want %%backpack%%", args[0])
	}
}

func TestBuilderNullable(t *testing.T) {
	sql, args := query.NewBuilder(itemProjection()).
		WhereNullable("CategoryName", (*string)(nil)).
		WhereNotNull("Title").
		WhereNullable("Status", "lost").
		BuildCount()

	want := "SELECT COUNT(*) FROM public.found_items i LEFT JOIN public.categories cat ON i.category_id = cat.id " +
		"WHERE cat.name IS NULL AND i.title IS NOT NULL AND i.status = $1"
	if sql != want {
		t.Errorf("BuildCount()\n got: %s\nwant: %s", sql, want)
	}
	if len(args) != 1 || args[0] != "lost" {
		t.Errorf("args = %v", args)
	}
}

func TestBuilderWhereIn(t *testing.T) {
	sql, args := query.NewBuilder(itemProjection()).
		WhereIn("Status", []any{"found", "returned"}).
		WhereIn("Title", nil).
		BuildLimit(10)

	want := "SELECT i.id, i.owner_id, i.title, i.status, cat.name " +
		"FROM public.found_items i LEFT JOIN public.categories cat ON i.category_id = cat.id " +
		"WHERE i.status IN ($1, $2) LIMIT 10"
	if sql != want {
		t.Errorf("BuildLimit()\n got: %s\nwant: %s", sql, want)
	}
	if len(args) != 2 {
		t.Errorf("args = %v", args)
	}
}

func TestBuilderPage(t *testing.T) {
	sql, _ := query.NewBuilder(itemProjection(), query.SortField{Field: "Title"}).
		OrderByFields([]query.SortField{{Field: "Status", Descending: true}}).
		BuildPage(3, 20)

	want := "SELECT i.id, i.owner_id, i.title, i.status, cat.name " +
		"FROM public.found_items i LEFT JOIN public.categories cat ON i.category_id = cat.id " +
		"ORDER BY i.status DESC LIMIT 20 OFFSET 40"
	if sql != want {
		t.Errorf("BuildPage()\n got: %s\nwant: %s", sql, want)
	}
}

func TestBuilderSingle(t *testing.T) {
	qb := query.NewBuilder(itemProjection())

	sql, args := qb.BuildSingleForUpdate("ID", "abc")
	want := "SELECT i.id, i.owner_id, i.title, i.status, cat.name " +
		"FROM public.found_items i LEFT JOIN public.categories cat ON i.category_id = cat.id " +
		"WHERE i.id = $1 FOR UPDATE OF i"
	if sql != want {
		t.Errorf("BuildSingleForUpdate()\n got: %s\nwant: %s", sql, want)
	}
	if len(args) != 1 || args[0] != "abc" {
		t.Errorf("args = %v", args)
	}

	sql, _ = query.NewBuilder(itemProjection()).WhereEquals("ID", "abc").BuildSingleOrNull()
	if want := "SELECT i.id, i.owner_id, i.title, i.status, cat.name " +
		"FROM public.found_items i LEFT JOIN public.categories cat ON i.category_id = cat.id " +
		"WHERE i.id = $1 LIMIT 1"; sql != want {
		t.Errorf("BuildSingleOrNull()\n got: %s\nwant: %s", sql, want)
	}
}
