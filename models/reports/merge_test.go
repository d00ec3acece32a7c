package reports

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

type entity struct {
	id   string
	name string
}

type total struct {
	id  string
	sum int
}

type row struct {
	name string
	sum  int
}

func mergeRows(base []entity, totals []total) []row {
	return MergeByKey(base, totals,
		func(e entity) string { return e.id },
		func(t total) string { return t.id },
		func(e entity, t total) row { return row{name: e.name, sum: t.sum} },
	)
}

func TestMergeByKey_KeepsBaseOrderAndZeroDefaults(t *testing.T) {
	base := []entity{{"b", "Bravo"}, {"a", "Alpha"}, {"c", "Charlie"}}
	totals := []total{{"a", 10}, {"c", 5}, {"orphan", 99}}

	got := mergeRows(base, totals)

	require.Equal(t, []row{{"Bravo", 0}, {"Alpha", 10}, {"Charlie", 5}}, got)
}

func TestMergeByKey_EmptyInputs(t *testing.T) {
	require.Empty(t, mergeRows(nil, []total{{"a", 1}}))
	require.NotNil(t, mergeRows(nil, nil))

	got := mergeRows([]entity{{"a", "Alpha"}}, nil)
	require.Equal(t, []row{{"Alpha", 0}}, got)
}

func TestPaginate(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5, 6, 7}
	cases := []struct {
		name       string
		page, size int
		want       []int
		wantPages  int
	}{
		{"first page", 1, 3, []int{1, 2, 3}, 3},
		{"last partial page", 3, 3, []int{7}, 3},
		{"past the end", 4, 3, []int{}, 3},
		{"single page", 1, 10, rows, 1},
		{"page below one", 0, 3, []int{1, 2, 3}, 3},
		{"max int page", math.MaxInt, 100, []int{}, 1},
		{"max int page and size", math.MaxInt, math.MaxInt, []int{}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, pages := Paginate(rows, tc.page, tc.size)
			require.NotNil(t, got)
			require.Equal(t, tc.want, got)
			require.Equal(t, tc.wantPages, pages)
		})
	}
}

func TestPaginate_HugePageFromQuery(t *testing.T) {
	q := ParseQuery("9223372036854775807", "100", "", DefaultReportSize)
	got, pages := Paginate([]int{1, 2, 3}, q.Page, q.PageSize)
	require.Empty(t, got)
	require.NotNil(t, got)
	require.Equal(t, 1, pages)
}

func TestPaginate_EmptyRows(t *testing.T) {
	got, pages := Paginate([]string{}, 1, 5)
	require.NotNil(t, got)
	require.Empty(t, got)
	require.Equal(t, 0, pages)
}

func TestPaginate_DoesNotAliasInput(t *testing.T) {
	rows := []int{1, 2, 3}
	got, _ := Paginate(rows, 1, 2)
	got[0] = 42
	require.Equal(t, 1, rows[0])
}

func TestParseQuery(t *testing.T) {
	cases := []struct {
		name             string
		page, size, term string
		want             Query
	}{
		{"defaults", "", "", "", Query{Page: 1, PageSize: DefaultReportSize}},
		{"non numeric", "abc", "x", "", Query{Page: 1, PageSize: DefaultReportSize}},
		{"explicit values", "3", "10", " Travel ", Query{Page: 3, PageSize: 10, Search: "Travel"}},
		{"page below one", "-2", "5", "", Query{Page: 1, PageSize: 5}},
		{"page size zero", "1", "0", "", Query{Page: 1, PageSize: 1}},
		{"page size capped", "1", "5000", "", Query{Page: 1, PageSize: MaxPageSize}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ParseQuery(tc.page, tc.size, tc.term, DefaultReportSize))
		})
	}
}
