// ABOUTME: Table-driven mapping between backend records and domain entities
// ABOUTME: Each column names its external key, write mode, and decode/encode rules
package records

import (
	"time"

	"github.com/harperreed/dealdesk/backend"
)

// WriteMode says when a column is sent to the backend.
type WriteMode int

const (
	// WriteAlways columns are sent on create and update.
	WriteAlways WriteMode = iota
	// WriteOnCreate columns are set once at creation.
	WriteOnCreate
	// WriteNever columns are assigned by the backend.
	WriteNever
)

// Mode selects which payload ToExternal builds.
type Mode int

const (
	ForCreate Mode = iota
	ForUpdate
)

// Column maps one external key onto a domain field. Decode must apply the
// field's default when v is missing.
type Column[T, In any] struct {
	Key    string
	Write  WriteMode
	Decode func(dst *T, v any, now time.Time)
	Encode func(in In, now time.Time) any
}

// Mapping is the full column table for one entity.
type Mapping[T, In any] struct {
	Table      string
	IDKey      string
	CreatedKey string
	Columns    []Column[T, In]

	now func() time.Time
}

// WithClock returns a copy of m that reads the current time from now.
func (m *Mapping[T, In]) WithClock(now func() time.Time) *Mapping[T, In] {
	cp := *m
	cp.now = now
	return &cp
}

func (m *Mapping[T, In]) clock() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}

// ToDomain converts a backend record. It never fails: missing fields take
// their column default.
func (m *Mapping[T, In]) ToDomain(rec backend.Record) T {
	now := m.clock()
	var out T
	for _, col := range m.Columns {
		col.Decode(&out, rec[col.Key], now)
	}
	return out
}

// ToExternal builds the write payload for in. Server-managed columns are
// omitted according to mode.
func (m *Mapping[T, In]) ToExternal(in In, mode Mode) backend.Record {
	now := m.clock()
	rec := make(backend.Record, len(m.Columns))
	for _, col := range m.Columns {
		if col.Encode == nil {
			continue
		}
		switch col.Write {
		case WriteNever:
			continue
		case WriteOnCreate:
			if mode != ForCreate {
				continue
			}
		}
		rec[col.Key] = col.Encode(in, now)
	}
	return rec
}

// Fields lists every external key except the id, in column order.
func (m *Mapping[T, In]) Fields() []string {
	out := make([]string, 0, len(m.Columns))
	for _, col := range m.Columns {
		if col.Key == m.IDKey {
			continue
		}
		out = append(out, col.Key)
	}
	return out
}

// Selectors returns the field selectors used for reads.
func (m *Mapping[T, In]) Selectors() []backend.FieldSelector {
	return backend.Select(m.Fields()...)
}

// NewestFirst is the read ordering: creation time descending.
func (m *Mapping[T, In]) NewestFirst() []backend.OrderBy {
	return []backend.OrderBy{{FieldName: m.CreatedKey, SortType: backend.SortDesc}}
}
