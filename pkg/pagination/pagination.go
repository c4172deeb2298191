package pagination

import (
	"net/http"
	"strconv"
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// FromRequest extracts page/per_page from the request, clamping per_page to
// maxPerPage and defaulting to the given perPage.
func FromRequest(r *http.Request, defaultPerPage, maxPerPage int) Params {
	p := Params{Page: 1, PerPage: defaultPerPage}

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if perPage := r.URL.Query().Get("per_page"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 {
			p.PerPage = v
		}
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}

	p.Offset = (p.Page - 1) * p.PerPage
	return p
}
