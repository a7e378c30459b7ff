// internal/catalog/domain.go
package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"deptlib/internal/fault"
)

// Book is a catalog record. Copies counts the physically available units,
// not the total ever owned. Year is nullable.
type Book struct {
	ID         int64  `db:"id" json:"id"`
	Title      string `db:"title" json:"title"`
	Author     string `db:"author" json:"author"`
	Year       *int   `db:"year" json:"year"`
	ISBN       string `db:"isbn" json:"isbn"`
	Copies     int    `db:"copies" json:"copies"`
	Department string `db:"department" json:"department"`
}

// Filter holds the composable search predicates. Zero values mean "filter
// absent"; all supplied predicates combine with AND.
type Filter struct {
	Text          string
	Department    string
	MinYear       *int
	MaxYear       *int
	AvailableOnly bool
}

// ParseFilter reads search predicates from query parameters. Year bounds
// that do not parse as non-negative integers are dropped, not rejected,
// so a malformed optional filter never fails the whole query.
func ParseFilter(values url.Values) Filter {
	f := Filter{
		Text:       strings.TrimSpace(values.Get("q")),
		Department: strings.TrimSpace(values.Get("dept")),
		MinYear:    optionalYear(values.Get("min_year")),
		MaxYear:    optionalYear(values.Get("max_year")),
	}

	switch strings.ToLower(strings.TrimSpace(values.Get("available"))) {
	case "1", "true", "yes":
		f.AvailableOnly = true
	}

	return f
}

func optionalYear(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseUint(raw, 10, 31)
	if err != nil {
		return nil
	}
	year := int(n)
	return &year
}

// BookInput carries administrative form input before validation. Year and
// Copies arrive as free text; an empty Copies defaults to 1.
type BookInput struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	Year       string `json:"year"`
	ISBN       string `json:"isbn"`
	Copies     string `json:"copies"`
	Department string `json:"department"`
}

// validate checks the input and returns the resulting record. Problems
// are collected and reported together, not one at a time.
func (in BookInput) validate() (Book, error) {
	title := strings.TrimSpace(in.Title)
	year := strings.TrimSpace(in.Year)
	copies := strings.TrimSpace(in.Copies)

	var problems []string
	if title == "" {
		problems = append(problems, "title is required")
	}
	if copies != "" && !isDigits(copies) {
		problems = append(problems, "copies must be a number")
	}
	if year != "" && !isDigits(year) {
		problems = append(problems, "year must be a number")
	}
	if len(problems) > 0 {
		return Book{}, fault.Validation(problems)
	}

	book := Book{
		Title:      title,
		Author:     strings.TrimSpace(in.Author),
		ISBN:       strings.TrimSpace(in.ISBN),
		Copies:     1,
		Department: strings.TrimSpace(in.Department),
	}
	if year != "" {
		y, _ := strconv.Atoi(year)
		book.Year = &y
	}
	if copies != "" {
		book.Copies, _ = strconv.Atoi(copies)
	}

	return book, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
