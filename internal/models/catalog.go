package models

// Query is the catalog filter state. The last query is kept by the session so
// mutations can reload the same view.
type Query struct {
	Q        string `json:"q"`
	Page     int    `json:"page"`
	PerPage  int    `json:"per_page"`
	LimitExt int    `json:"limit_ext"`
}

// WithPage returns a copy of q pointing at page.
func (q Query) WithPage(page int) Query {
	q.Page = page
	return q
}

// WithTerm returns a copy of q searching for term, back on the first page.
func (q Query) WithTerm(term string) Query {
	q.Q = NormalizeTerm(term)
	q.Page = 1
	return q
}

// Page is one window of the merged catalog.
type Page struct {
	Items []Exercise `json:"items"`
	Page  int        `json:"page"`
	Pages int        `json:"pages"`
	Total *int       `json:"total,omitempty"`
}

// PageCount returns the number of pages needed for n items, never less than one.
func PageCount(n, perPage int) int {
	if perPage <= 0 || n <= 0 {
		return 1
	}
	return (n + perPage - 1) / perPage
}

// ClampPage keeps page inside [1, pages].
func ClampPage(page, pages int) int {
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}

// Paginate slices items for the given page after clamping it into range.
// It returns the window, the effective page and the page count.
func Paginate(items []Exercise, page, perPage int) ([]Exercise, int, int) {
	pages := PageCount(len(items), perPage)
	page = ClampPage(page, pages)
	if perPage <= 0 {
		return items, page, pages
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return []Exercise{}, page, pages
	}
	end := min(start+perPage, len(items))
	return items[start:end], page, pages
}
