package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todolist/internal/query"
)

func TestParse(t *testing.T) {
	base := query.Spec{
		SortField:  query.SortByDate,
		SortOrder:  query.Descending,
		Filter:     query.FilterDone,
		SearchText: "milk",
	}

	withSpec := func(f func(*query.Spec)) query.Spec {
		s := base
		f(&s)
		return s
	}

	tests := []struct {
		input string
		want  CommandMsg
	}{
		{"refresh", CommandMsg{Kind: KindRefresh, Spec: base}},
		{"  R  ", CommandMsg{Kind: KindRefresh, Spec: base}},
		{"import", CommandMsg{Kind: KindImport, Spec: base}},
		{"new", CommandMsg{Kind: KindNew, Spec: base}},
		{"q", CommandMsg{Kind: KindQuit, Spec: base}},
		{"sort title", CommandMsg{Kind: KindSort, Spec: withSpec(func(s *query.Spec) { s.SortField = query.SortByTitle })}},
		{"order asc", CommandMsg{Kind: KindOrder, Spec: withSpec(func(s *query.Spec) { s.SortOrder = query.Ascending })}},
		{"filter undone", CommandMsg{Kind: KindFilter, Spec: withSpec(func(s *query.Spec) { s.Filter = query.FilterUndone })}},
		{"search  Buy bread  ", CommandMsg{Kind: KindSearch, Spec: withSpec(func(s *query.Spec) { s.SearchText = "Buy bread" })}},
		{"search", CommandMsg{Kind: KindSearch, Spec: withSpec(func(s *query.Spec) { s.SearchText = "" })}},
		{"clear", CommandMsg{Kind: KindClear, Spec: withSpec(func(s *query.Spec) {
			s.Filter = query.FilterAll
			s.SearchText = ""
		})}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input, base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{"", "launch", "sort priority", "order up", "filter maybe"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input, query.DefaultSpec())
			assert.Error(t, err)
		})
	}
}
