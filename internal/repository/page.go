// Package repository implements the data access layer for the application.
package repository

import "microblog/internal/models"

// Page is one page of a paginated post query. Pages are 1-indexed; Total is
// the full result-set size so callers can decide whether further pages exist.
type Page struct {
	Posts  []*models.Post
	Number int
	Size   int
	Total  int64
}

// HasNext reports whether a page after this one exists.
func (p *Page) HasNext() bool {
	return int64(p.Number*p.Size) < p.Total
}

// HasPrev reports whether a page before this one exists.
func (p *Page) HasPrev() bool {
	return p.Number > 1
}

// NextPage returns the following page number, or 0 when there is none.
func (p *Page) NextPage() int {
	if !p.HasNext() {
		return 0
	}
	return p.Number + 1
}

// PrevPage returns the preceding page number, or 0 when there is none.
func (p *Page) PrevPage() int {
	if !p.HasPrev() {
		return 0
	}
	return p.Number - 1
}

func clampPage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}
	return page, size
}
