package dummyjson

// TodosResponse is the top-level payload of GET /todos. Only Todos is
// consumed. Paging is never followed, so Total, Skip and Limit are decoded
// but unused.
type TodosResponse struct {
	Todos *[]Todo `json:"todos"`
	Total int     `json:"total"`
	Skip  int     `json:"skip"`
	Limit int     `json:"limit"`
}

// Todo is a single record in the todos array. Fields are pointers so that
// missing keys can be told apart from zero values.
type Todo struct {
	ID        *int    `json:"id"`
	Todo      *string `json:"todo"`
	Completed *bool   `json:"completed"`
	UserID    *int    `json:"userId"`
}
