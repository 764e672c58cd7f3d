// ABOUTME: Record-oriented client contract for the hosted backend
// ABOUTME: Defines request params, batch responses, and the Client interface
package backend

import (
	"context"
	"encoding/json"
	"fmt"
)

// Sort directions understood by OrderBy.
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// Record is a backend-native row keyed by external field name.
type Record map[string]any

type FieldName struct {
	Name string `json:"Name"`
}

type FieldSelector struct {
	Field FieldName `json:"field"`
}

// Select builds a field selector list from plain names.
func Select(names ...string) []FieldSelector {
	out := make([]FieldSelector, 0, len(names))
	for _, n := range names {
		out = append(out, FieldSelector{Field: FieldName{Name: n}})
	}
	return out
}

type OrderBy struct {
	FieldName string `json:"fieldName"`
	SortType  string `json:"sorttype"`
}

// Params is the request body shared by every client operation.
type Params struct {
	Fields    []FieldSelector `json:"fields,omitempty"`
	OrderBy   []OrderBy       `json:"orderBy,omitempty"`
	Records   []Record        `json:"records,omitempty"`
	RecordIDs []int           `json:"RecordIds,omitempty"`
}

type FieldError struct {
	FieldLabel string `json:"fieldLabel"`
	Message    string `json:"message"`
}

// Result is the outcome of one item of a batched write or delete.
type Result struct {
	Success bool         `json:"success"`
	Data    Record       `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// Response is the envelope returned by every client operation. Data holds a
// list for fetches and a single record for lookups.
type Response struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Results []Result        `json:"results,omitempty"`
}

// Records decodes Data as a list. Empty or null data yields no records.
func (r *Response) Records() ([]Record, error) {
	if r == nil || isNull(r.Data) {
		return nil, nil
	}
	var recs []Record
	if err := json.Unmarshal(r.Data, &recs); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return recs, nil
}

// Record decodes Data as a single record. Empty or null data yields nil.
func (r *Response) Record() (Record, error) {
	if r == nil || isNull(r.Data) {
		return nil, nil
	}
	var rec Record
	if err := json.Unmarshal(r.Data, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// SetData encodes v into Data.
func (r *Response) SetData(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r.Data = raw
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// Client is the backend-as-a-service collaborator. A returned error means the
// round trip itself failed; rejections travel inside the Response.
type Client interface {
	FetchRecords(ctx context.Context, table string, params Params) (*Response, error)
	GetRecordByID(ctx context.Context, table string, id int, params Params) (*Response, error)
	CreateRecord(ctx context.Context, table string, params Params) (*Response, error)
	UpdateRecord(ctx context.Context, table string, params Params) (*Response, error)
	DeleteRecord(ctx context.Context, table string, params Params) (*Response, error)
}
