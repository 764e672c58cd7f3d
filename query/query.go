// ABOUTME: Search, sort, and totals over loaded contact and deal lists
// ABOUTME: Pure functions over slices; inputs are never modified
package query

import (
	"slices"
	"strings"

	"github.com/harperreed/dealdesk/models"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps anything other than "desc" to Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

func matches(term string, fields ...string) bool {
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// FilterContacts keeps contacts whose name, company, or email contain term,
// ignoring case. An empty term keeps everything.
func FilterContacts(list []models.Contact, term string) []models.Contact {
	out := make([]models.Contact, 0, len(list))
	for _, c := range list {
		if matches(term, c.Name, c.Company, c.Email) {
			out = append(out, c)
		}
	}
	return out
}

// FilterDeals keeps deals whose name or stage contain term, ignoring case.
func FilterDeals(list []models.Deal, term string) []models.Deal {
	out := make([]models.Deal, 0, len(list))
	for _, d := range list {
		if matches(term, d.Name, string(d.Stage)) {
			out = append(out, d)
		}
	}
	return out
}

// FilterStage keeps deals in stage. An empty stage keeps everything.
func FilterStage(list []models.Deal, stage models.Stage) []models.Deal {
	if stage == "" {
		return slices.Clone(list)
	}
	out := make([]models.Deal, 0, len(list))
	for _, d := range list {
		if d.Stage == stage {
			out = append(out, d)
		}
	}
	return out
}

func cmpText(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func sorted[T any](list []T, dir Direction, cmp func(a, b T) int) []T {
	out := slices.Clone(list)
	if dir == Desc {
		slices.SortStableFunc(out, func(a, b T) int { return cmp(b, a) })
		return out
	}
	slices.SortStableFunc(out, cmp)
	return out
}

// SortDeals orders deals by "value" (numeric), "stage", or "name" (case
// insensitive). Unknown fields sort by name.
func SortDeals(list []models.Deal, field string, dir Direction) []models.Deal {
	var cmp func(a, b models.Deal) int
	switch field {
	case "value":
		cmp = func(a, b models.Deal) int { return cmpFloat(a.Value, b.Value) }
	case "stage":
		cmp = func(a, b models.Deal) int { return cmpText(string(a.Stage), string(b.Stage)) }
	default:
		cmp = func(a, b models.Deal) int { return cmpText(a.Name, b.Name) }
	}
	return sorted(list, dir, cmp)
}

// SortContacts orders contacts by "company", "email", "created", or "name".
func SortContacts(list []models.Contact, field string, dir Direction) []models.Contact {
	var cmp func(a, b models.Contact) int
	switch field {
	case "company":
		cmp = func(a, b models.Contact) int { return cmpText(a.Company, b.Company) }
	case "email":
		cmp = func(a, b models.Contact) int { return cmpText(a.Email, b.Email) }
	case "created", "createdAt":
		cmp = func(a, b models.Contact) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		cmp = func(a, b models.Contact) int { return cmpText(a.Name, b.Name) }
	}
	return sorted(list, dir, cmp)
}

// TotalValue sums deal values.
func TotalValue(deals []models.Deal) float64 {
	var total float64
	for _, d := range deals {
		total += d.Value
	}
	return total
}
