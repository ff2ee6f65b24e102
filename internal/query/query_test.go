package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		spec      Spec
		wantWhere string
		wantArgs  []any
		wantOrder string
	}{
		{
			name:      "default spec",
			spec:      DefaultSpec(),
			wantWhere: "",
			wantArgs:  nil,
			wantOrder: "created_at DESC, seq DESC",
		},
		{
			name:      "date ascending",
			spec:      Spec{SortField: SortByDate, SortOrder: Ascending, Filter: FilterAll},
			wantOrder: "created_at ASC, seq ASC",
		},
		{
			name:      "title descending done",
			spec:      Spec{SortField: SortByTitle, SortOrder: Descending, Filter: FilterDone},
			wantWhere: "completed = 1",
			wantOrder: "title_key DESC, seq DESC",
		},
		{
			name:      "undone",
			spec:      Spec{SortField: SortByDate, SortOrder: Ascending, Filter: FilterUndone},
			wantWhere: "completed = 0",
			wantOrder: "created_at ASC, seq ASC",
		},
		{
			name:      "search is folded and anded with filter",
			spec:      Spec{SortField: SortByDate, SortOrder: Ascending, Filter: FilterUndone, SearchText: "  Milk "},
			wantWhere: `completed = 0 AND (title_key LIKE ? ESCAPE '\' OR description_key LIKE ? ESCAPE '\')`,
			wantArgs:  []any{"%milk%", "%milk%"},
			wantOrder: "created_at ASC, seq ASC",
		},
		{
			name:      "whitespace search matches everything",
			spec:      Spec{SortField: SortByDate, SortOrder: Ascending, Filter: FilterAll, SearchText: "   "},
			wantOrder: "created_at ASC, seq ASC",
		},
		{
			name:      "invalid values fall back to defaults",
			spec:      Spec{SortField: "priority", SortOrder: "sideways", Filter: "maybe"},
			wantOrder: "created_at DESC, seq DESC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Build(tt.spec)
			assert.Equal(t, tt.wantWhere, c.Where)
			assert.Equal(t, tt.wantArgs, c.Args)
			assert.Equal(t, tt.wantOrder, c.OrderBy)
		})
	}
}

func TestBuild_EscapesWildcards(t *testing.T) {
	c := Build(Spec{SearchText: `50%_off\now`})
	require.Len(t, c.Args, 2)
	assert.Equal(t, `%50\%\_off\\now%`, c.Args[0])
}

func TestBuild_Deterministic(t *testing.T) {
	spec := Spec{SortField: SortByTitle, SortOrder: Ascending, Filter: FilterDone, SearchText: "x"}
	assert.Equal(t, Build(spec), Build(spec))
}

func TestClauseSQL(t *testing.T) {
	c := Build(Spec{SortField: SortByTitle, SortOrder: Ascending, Filter: FilterDone})
	assert.Equal(t,
		"SELECT * FROM tasks WHERE completed = 1 ORDER BY title_key ASC, seq ASC",
		c.SQL("SELECT * FROM tasks"),
	)

	c = Build(DefaultSpec())
	assert.Equal(t, "SELECT * FROM tasks ORDER BY created_at DESC, seq DESC", c.SQL("SELECT * FROM tasks"))
}

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Buy Milk", "buy milk"},
		{"Café", "cafe"},
		{"CRÈME BRÛLÉE", "creme brulee"},
		{"Ångström", "angstrom"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in), "Fold(%q)", tt.in)
	}
}

func TestParse(t *testing.T) {
	sf, err := ParseSortField("Title")
	require.NoError(t, err)
	assert.Equal(t, SortByTitle, sf)

	_, err = ParseSortField("priority")
	require.Error(t, err)

	so, err := ParseSortOrder("asc")
	require.NoError(t, err)
	assert.Equal(t, Ascending, so)

	so, err = ParseSortOrder("DESCENDING")
	require.NoError(t, err)
	assert.Equal(t, Descending, so)

	_, err = ParseSortOrder("up")
	require.Error(t, err)

	f, err := ParseFilter("undone")
	require.NoError(t, err)
	assert.Equal(t, FilterUndone, f)

	f, err = ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	_, err = ParseFilter("later")
	require.Error(t, err)
}

func TestCycling(t *testing.T) {
	assert.Equal(t, SortByTitle, SortByDate.Next())
	assert.Equal(t, SortByDate, SortByTitle.Next())
	assert.Equal(t, Descending, Ascending.Toggle())
	assert.Equal(t, Ascending, Descending.Toggle())
	assert.Equal(t, FilterDone, FilterAll.Next())
	assert.Equal(t, FilterUndone, FilterDone.Next())
	assert.Equal(t, FilterAll, FilterUndone.Next())
}

func TestHasConstraints(t *testing.T) {
	assert.False(t, DefaultSpec().HasConstraints())
	assert.True(t, Spec{Filter: FilterDone}.HasConstraints())
	assert.True(t, Spec{SearchText: "x"}.HasConstraints())
	assert.False(t, Spec{SearchText: "  "}.HasConstraints())
}
