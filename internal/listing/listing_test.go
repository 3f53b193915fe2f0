package listing

import (
	"net/url"
	"testing"
	"time"

	"voicera-console/internal/calls"
)

func ints(p Page[int]) []int { return p.Items }

var numbers = Schema[int]{
	Fields: map[string]func(int) string{
		"parity": func(n int) string {
			if n%2 == 0 {
				return "even"
			}
			return "odd"
		},
	},
	Sorts: map[string]func(a, b int) int{
		"value": ByNumber(func(n int) int { return n }),
	},
}

func TestApply_FilterSortPaginate(t *testing.T) {
	items := []int{5, 2, 9, 4, 7, 6, 1, 8, 3}

	p := Apply(items, numbers, Query{
		Filters:  map[string]string{"parity": "odd"},
		SortKey:  "value",
		Desc:     true,
		Page:     2,
		PageSize: 2,
	})
	if p.Total != 5 || p.TotalPages != 3 || p.Page != 2 {
		t.Fatalf("unexpected page meta %+v", p)
	}
	got := ints(p)
	if len(got) != 2 || got[0] != 5 || got[1] != 3 {
		t.Fatalf("unexpected items %v", got)
	}
	if items[0] != 5 || items[1] != 2 {
		t.Fatalf("input was modified: %v", items)
	}
}

func TestApply_IgnoresAllAndUnknownFilters(t *testing.T) {
	p := Apply([]int{1, 2, 3}, numbers, Query{Filters: map[string]string{"parity": "all", "nope": "x"}})
	if p.Total != 3 {
		t.Fatalf("expected all items, got %+v", p)
	}
}

func TestSelect_ReturnsEveryMatch(t *testing.T) {
	items := make([]int, 0, 250)
	for i := 250; i > 0; i-- {
		items = append(items, i)
	}
	got := Select(items, numbers, Query{Filters: map[string]string{"parity": "even"}, SortKey: "value", PageSize: 5})
	if len(got) != 125 {
		t.Fatalf("expected 125 rows, got %d", len(got))
	}
	if got[0] != 2 || got[124] != 250 {
		t.Fatalf("unexpected order: first %d last %d", got[0], got[124])
	}
}

func TestApply_ClampsPage(t *testing.T) {
	p := Apply([]int{1, 2, 3}, numbers, Query{Page: 9, PageSize: 2})
	if p.Page != 2 || len(p.Items) != 1 {
		t.Fatalf("expected last page, got %+v", p)
	}

	empty := Apply([]int{}, numbers, Query{Page: 3})
	if empty.Page != 1 || empty.TotalPages != 1 || empty.Total != 0 || empty.PageSize != DefaultPageSize {
		t.Fatalf("unexpected empty page %+v", empty)
	}
}

func TestApply_StableSort(t *testing.T) {
	type pair struct{ k, v string }
	s := Schema[pair]{Sorts: map[string]func(a, b pair) int{"k": ByString(func(p pair) string { return p.k })}}
	items := []pair{{"b", "1"}, {"a", "1"}, {"b", "2"}, {"a", "2"}}

	p := Apply(items, s, Query{SortKey: "k"})
	want := []pair{{"a", "1"}, {"a", "2"}, {"b", "1"}, {"b", "2"}}
	for i := range want {
		if p.Items[i] != want[i] {
			t.Fatalf("position %d: got %v want %v", i, p.Items[i], want[i])
		}
	}
}

func TestParseQuery(t *testing.T) {
	v := url.Values{
		"page":       {"3"},
		"page_size":  {"25"},
		"sort":       {"started_at"},
		"order":      {"DESC"},
		"q":          {"+91"},
		"from":       {"2025-01-01"},
		"to":         {"2025-01-31"},
		"agent_type": {"sales"},
	}
	q := ParseQuery(v)
	if q.Page != 3 || q.PageSize != 25 || q.SortKey != "started_at" || !q.Desc || q.Search != "+91" {
		t.Fatalf("unexpected query %+v", q)
	}
	if q.Filters["agent_type"] != "sales" || len(q.Filters) != 1 {
		t.Fatalf("unexpected filters %v", q.Filters)
	}
	wantTo := time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)
	if !q.From.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) || !q.To.Equal(wantTo) {
		t.Fatalf("unexpected window %v..%v", q.From, q.To)
	}

	q = ParseQuery(url.Values{}).WithDefaultSort("started_at", true)
	if q.SortKey != "started_at" || !q.Desc {
		t.Fatalf("default sort not applied: %+v", q)
	}
}

func historyRows() []calls.Row {
	done := true
	busy := true
	d := 65.0
	return calls.Rows([]calls.Meeting{
		{MeetingID: "m1", AgentType: "sales", Inbound: &done, FromNumber: "+911", ToNumber: "+912", StartTimeUTC: "2025-01-02T10:00:00Z", EndTimeUTC: "2025-01-02T10:01:05Z"},
		{MeetingID: "m2", AgentType: "support", FromNumber: "+913", ToNumber: "+914", StartTimeUTC: "2025-01-03T10:00:00Z", CallBusy: &busy},
		{MeetingID: "m3", AgentType: "sales", FromNumber: "+915", ToNumber: "+916", StartTimeUTC: "2025-02-01T10:00:00Z", Duration: &d},
	})
}

func TestHistory_FiltersAndOptions(t *testing.T) {
	rows := historyRows()

	p := Apply(rows, History, Query{Filters: map[string]string{"agent_type": "sales"}}.WithDefaultSort("started_at", true))
	if p.Total != 2 || p.Items[0].MeetingID != "m3" {
		t.Fatalf("unexpected page %+v", p)
	}

	p = Apply(rows, History, Query{
		From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC),
	})
	if p.Total != 2 {
		t.Fatalf("expected january calls only, got %d", p.Total)
	}

	p = Apply(rows, History, Query{Search: "+915"})
	if p.Total != 1 || p.Items[0].MeetingID != "m3" {
		t.Fatalf("search failed: %+v", p)
	}

	opts := HistoryFilterOptions(rows)
	if len(opts.Agents) != 2 || opts.Agents[0] != "sales" || opts.Agents[1] != "support" {
		t.Fatalf("unexpected agent options %v", opts.Agents)
	}
	if len(opts.Statuses) != 2 {
		t.Fatalf("unexpected status options %v", opts.Statuses)
	}
}
