// Package query translates the user's sort, filter and search choices into
// the predicate and ordering used by the task store.
package query

import (
	"fmt"
	"strings"
)

// SortField selects the column tasks are ordered by.
type SortField string

const (
	SortByDate  SortField = "date"
	SortByTitle SortField = "title"
)

// SortOrder selects the ordering direction.
type SortOrder string

const (
	Ascending  SortOrder = "ascending"
	Descending SortOrder = "descending"
)

// Filter restricts tasks by completion state.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterDone   Filter = "done"
	FilterUndone Filter = "undone"
)

// SortFields lists the sort fields in the order the UI cycles through them.
var SortFields = []SortField{SortByDate, SortByTitle}

// Filters lists the filters in the order the UI cycles through them.
var Filters = []Filter{FilterAll, FilterDone, FilterUndone}

// Spec holds the parameters of a single task read.
type Spec struct {
	SortField  SortField `json:"sort_field"`
	SortOrder  SortOrder `json:"sort_order"`
	Filter     Filter    `json:"filter"`
	SearchText string    `json:"search_text"`
}

// DefaultSpec returns newest-first, unfiltered, with no search.
func DefaultSpec() Spec {
	return Spec{
		SortField: SortByDate,
		SortOrder: Descending,
		Filter:    FilterAll,
	}
}

// Normalize replaces unknown enum values with defaults and trims the search
// text.
func (s Spec) Normalize() Spec {
	def := DefaultSpec()
	switch s.SortField {
	case SortByDate, SortByTitle:
	default:
		s.SortField = def.SortField
	}
	switch s.SortOrder {
	case Ascending, Descending:
	default:
		s.SortOrder = def.SortOrder
	}
	switch s.Filter {
	case FilterAll, FilterDone, FilterUndone:
	default:
		s.Filter = def.Filter
	}
	s.SearchText = strings.TrimSpace(s.SearchText)
	return s
}

// HasConstraints reports whether the spec narrows the result set.
func (s Spec) HasConstraints() bool {
	if s.Filter != "" && s.Filter != FilterAll {
		return true
	}
	return strings.TrimSpace(s.SearchText) != ""
}

// ParseSortField parses a sort field name case-insensitively.
func ParseSortField(v string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "date", "created", "created_at":
		return SortByDate, nil
	case "title":
		return SortByTitle, nil
	}
	return "", fmt.Errorf("invalid sort field %q: must be one of date, title", v)
}

// ParseSortOrder parses a sort order, accepting asc/desc shorthands.
func ParseSortOrder(v string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", fmt.Errorf("invalid sort order %q: must be one of ascending, descending", v)
}

// ParseFilter parses a filter name case-insensitively.
func ParseFilter(v string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "all", "":
		return FilterAll, nil
	case "done", "completed":
		return FilterDone, nil
	case "undone", "open":
		return FilterUndone, nil
	}
	return "", fmt.Errorf("invalid filter %q: must be one of all, done, undone", v)
}

// Next returns the sort field after f in SortFields, wrapping around.
func (f SortField) Next() SortField {
	for i, sf := range SortFields {
		if sf == f {
			return SortFields[(i+1)%len(SortFields)]
		}
	}
	return SortFields[0]
}

// Toggle returns the opposite sort order.
func (o SortOrder) Toggle() SortOrder {
	if o == Ascending {
		return Descending
	}
	return Ascending
}

// Next returns the filter after f in Filters, wrapping around.
func (f Filter) Next() Filter {
	for i, ff := range Filters {
		if ff == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return Filters[0]
}
