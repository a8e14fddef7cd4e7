package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/vavepl/marketplace-backend/internal/dto"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func boolPtr(v bool) *bool        { return &v }

func newQuery() *dto.EventSearchQuery {
	q := &dto.EventSearchQuery{}
	q.SetDefaults()
	return q
}

func TestBuildSearchQuery_Defaults(t *testing.T) {
	q := newQuery()
	sq := buildSearchQuery(q)

	if strings.Contains(sq.countQuery, "WHERE") {
		t.Errorf("empty filter should produce no WHERE clause, got: %s", sq.countQuery)
	}
	if strings.Contains(sq.pageQuery, "HAVING") {
		t.Errorf("empty filter should produce no HAVING clause, got: %s", sq.pageQuery)
	}

	if len(sq.pageArgs) != 2 {
		t.Fatalf("expected only limit and offset args, got %d", len(sq.pageArgs))
	}
	if sq.pageArgs[0] != 10 {
		t.Errorf("expected default limit 10, got %v", sq.pageArgs[0])
	}
	if sq.pageArgs[1] != 0 {
		t.Errorf("expected offset 0 for page 1, got %v", sq.pageArgs[1])
	}
}

func TestBuildSearchQuery_Pagination(t *testing.T) {
	q := newQuery()
	q.Limit = 10
	q.Page = 2
	sq := buildSearchQuery(q)

	if sq.pageArgs[len(sq.pageArgs)-2] != 10 {
		t.Errorf("expected limit 10, got %v", sq.pageArgs[len(sq.pageArgs)-2])
	}
	if sq.pageArgs[len(sq.pageArgs)-1] != 10 {
		t.Errorf("expected offset 10 for page 2, got %v", sq.pageArgs[len(sq.pageArgs)-1])
	}

	if !strings.Contains(sq.pageQuery, "ORDER BY e.created_at DESC, e.id DESC") {
		t.Errorf("page query must carry a stable order, got: %s", sq.pageQuery)
	}
}

func TestBuildSearchQuery_GeoAllOrNothing(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(q *dto.EventSearchQuery)
		wantGeo   bool
	}{
		{
			name: "all four inputs present",
			mutate: func(q *dto.EventSearchQuery) {
				q.Latitude = floatPtr(52.23)
				q.Longitude = floatPtr(21.01)
				q.DistFrom = floatPtr(0)
				q.DistTo = floatPtr(25)
			},
			wantGeo: true,
		},
		{
			name: "missing latitude",
			mutate: func(q *dto.EventSearchQuery) {
				q.Longitude = floatPtr(21.01)
				q.DistFrom = floatPtr(0)
				q.DistTo = floatPtr(25)
			},
			wantGeo: false,
		},
		{
			name: "missing longitude",
			mutate: func(q *dto.EventSearchQuery) {
				q.Latitude = floatPtr(52.23)
				q.DistFrom = floatPtr(0)
				q.DistTo = floatPtr(25)
			},
			wantGeo: false,
		},
		{
			name: "missing dist_from",
			mutate: func(q *dto.EventSearchQuery) {
				q.Latitude = floatPtr(52.23)
				q.Longitude = floatPtr(21.01)
				q.DistTo = floatPtr(25)
			},
			wantGeo: false,
		},
		{
			name: "missing dist_to",
			mutate: func(q *dto.EventSearchQuery) {
				q.Latitude = floatPtr(52.23)
				q.Longitude = floatPtr(21.01)
				q.DistFrom = floatPtr(0)
			},
			wantGeo: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newQuery()
			tt.mutate(q)
			sq := buildSearchQuery(q)

			hasGeo := strings.Contains(sq.pageQuery, "acos")
			if hasGeo != tt.wantGeo {
				t.Errorf("geo predicate present = %v, want %v\nquery: %s", hasGeo, tt.wantGeo, sq.pageQuery)
			}
		})
	}
}

func TestBuildSearchQuery_PriceBand(t *testing.T) {
	q := newQuery()
	q.PriceFrom = intPtr(60)
	q.PriceTo = intPtr(150)
	sq := buildSearchQuery(q)

	// The band intersects the derived [min, max] range: min <= to AND max >= from
	if !strings.Contains(sq.pageQuery, "COALESCE(MIN(d.price), 0) <= $1") {
		t.Errorf("expected min-price HAVING condition, got: %s", sq.pageQuery)
	}
	if !strings.Contains(sq.pageQuery, "COALESCE(MAX(d.price), 0) >= $2") {
		t.Errorf("expected max-price HAVING condition, got: %s", sq.pageQuery)
	}

	if sq.countArgs[0] != 150 || sq.countArgs[1] != 60 {
		t.Errorf("unexpected price args: %v", sq.countArgs)
	}
}

func TestBuildSearchQuery_PriceBandSingleBound(t *testing.T) {
	q := newQuery()
	q.PriceFrom = intPtr(60)
	sq := buildSearchQuery(q)

	if strings.Contains(sq.pageQuery, "MIN(d.price)") {
		t.Errorf("price_to absent, min bound should be skipped: %s", sq.pageQuery)
	}
	if !strings.Contains(sq.pageQuery, "COALESCE(MAX(d.price), 0) >= $1") {
		t.Errorf("expected max-price HAVING condition, got: %s", sq.pageQuery)
	}
}

func TestBuildSearchQuery_AllFilters(t *testing.T) {
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	q := newQuery()
	q.CategoryID = "cat-1"
	q.PriceFrom = intPtr(50)
	q.PriceTo = intPtr(200)
	q.Latitude = floatPtr(52.23)
	q.Longitude = floatPtr(21.01)
	q.DistFrom = floatPtr(0)
	q.DistTo = floatPtr(30)
	q.DateFrom = &from
	q.DateTo = &to
	q.Rating = floatPtr(4.0)
	q.Status = intPtr(1)
	q.StatusUserEvent = strPtr("accepted")
	q.UserLimitReached = boolPtr(true)
	q.Blacklist = []string{"company-x"}
	sq := buildSearchQuery(q)

	// page args = all filter args + limit + offset
	if len(sq.pageArgs) != len(sq.countArgs)+2 {
		t.Fatalf("page args must be count args plus limit/offset: %d vs %d", len(sq.pageArgs), len(sq.countArgs))
	}

	// 1 category + 5 geo + 2 dates + 1 rating + 1 status + 1 ue status + 1 limit flag + 1 blacklist + 2 price
	if len(sq.countArgs) != 15 {
		t.Errorf("expected 15 filter args, got %d: %v", len(sq.countArgs), sq.countArgs)
	}

	for _, fragment := range []string{
		"e.category_id = $1",
		"BETWEEN $5 AND $6",
		"e.start_date >= $7",
		"e.start_date <= $8",
		"e.rating_score >= $9",
		"e.status = $10",
		"ue.status = $11",
		"e.user_limit = $12",
		"NOT (e.company_id = ANY($13))",
		"COALESCE(MIN(d.price), 0) <= $14",
		"COALESCE(MAX(d.price), 0) >= $15",
		"LIMIT $16 OFFSET $17",
	} {
		if !strings.Contains(sq.pageQuery, fragment) {
			t.Errorf("page query missing %q:\n%s", fragment, sq.pageQuery)
		}
	}
}

func TestBuildSearchQuery_CountMatchesPageFilters(t *testing.T) {
	q := newQuery()
	q.CategoryID = "cat-1"
	q.Status = intPtr(1)
	sq := buildSearchQuery(q)

	if !strings.Contains(sq.countQuery, "e.category_id = $1") {
		t.Errorf("count query missing category filter: %s", sq.countQuery)
	}
	if !strings.Contains(sq.countQuery, "e.status = $2") {
		t.Errorf("count query missing status filter: %s", sq.countQuery)
	}
	if strings.Contains(sq.countQuery, "LIMIT") {
		t.Errorf("count query must not paginate: %s", sq.countQuery)
	}
}
