// ABOUTME: Local SQLite implementation of the record-oriented backend client
// ABOUTME: Applies batches item by item so partial failures behave like the hosted API
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/dealdesk/backend"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/records"
)

const (
	msgNotFound         = "Record not found"
	msgValidationFailed = "Record validation failed"
	msgMissingID        = "Record Id is required"
)

type fieldRule struct {
	Key   string
	Label string
}

// requiredFields lists, per table, the fields a stored record must carry.
var requiredFields = map[string][]fieldRule{
	records.ContactTable: {
		{records.KeyName, "Name"},
		{records.KeyEmail, "Email"},
		{records.KeyPhone, "Phone"},
	},
	records.DealTable: {
		{records.KeyName, "Name"},
		{records.KeyStage, "Stage"},
	},
}

// Client serves backend.Client requests from the records table.
type Client struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewClient(db *sql.DB, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{db: db, logger: logger, now: time.Now}
}

var _ backend.Client = (*Client)(nil)

func knownTable(table string) bool {
	_, ok := requiredFields[table]
	return ok
}

func unknownTable(table string) *backend.Response {
	return &backend.Response{Success: false, Message: fmt.Sprintf("Table %s does not exist", table)}
}

func validate(table string, rec backend.Record) []backend.FieldError {
	var errs []backend.FieldError
	for _, rule := range requiredFields[table] {
		if strings.TrimSpace(records.Text(rec[rule.Key])) == "" {
			errs = append(errs, backend.FieldError{FieldLabel: rule.Label, Message: "is required"})
		}
	}
	if email := records.Text(rec[records.KeyEmail]); email != "" && !models.ValidEmail(email) {
		errs = append(errs, backend.FieldError{FieldLabel: "Email", Message: "is not a valid email"})
	}
	return errs
}

func decodePayload(id int, payload string) (backend.Record, error) {
	rec := backend.Record{}
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record %d: %w", id, err)
	}
	rec[records.KeyID] = id
	return rec, nil
}

func encodePayload(rec backend.Record) (string, error) {
	stored := make(backend.Record, len(rec))
	for k, v := range rec {
		if k == records.KeyID {
			continue
		}
		stored[k] = v
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("failed to encode record: %w", err)
	}
	return string(raw), nil
}

// project keeps only the selected fields plus the id. No selection keeps all.
func project(rec backend.Record, fields []backend.FieldSelector) backend.Record {
	if len(fields) == 0 {
		return rec
	}
	out := backend.Record{records.KeyID: rec[records.KeyID]}
	for _, f := range fields {
		if v, ok := rec[f.Field.Name]; ok {
			out[f.Field.Name] = v
		}
	}
	return out
}

func orderClause(orderBy []backend.OrderBy) (string, []any) {
	var parts []string
	var args []any
	dir := "ASC"
	for _, o := range orderBy {
		dir = "ASC"
		if strings.EqualFold(o.SortType, backend.SortDesc) {
			dir = "DESC"
		}
		switch o.FieldName {
		case records.KeyID:
			parts = append(parts, "id "+dir)
		case records.KeyCreatedAt:
			parts = append(parts, "created_at "+dir)
		default:
			parts = append(parts, "json_extract(payload, ?) "+dir)
			args = append(args, "$."+o.FieldName)
		}
	}
	// ties follow insertion order in the last requested direction
	parts = append(parts, "id "+dir)
	return " ORDER BY " + strings.Join(parts, ", "), args
}

func (c *Client) FetchRecords(ctx context.Context, table string, params backend.Params) (*backend.Response, error) {
	if !knownTable(table) {
		return unknownTable(table), nil
	}

	order, orderArgs := orderClause(params.OrderBy)
	args := append([]any{table}, orderArgs...)

	rows, err := c.db.QueryContext(ctx, `SELECT id, payload FROM records WHERE tbl = ?`+order, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	out := []backend.Record{}
	for rows.Next() {
		var id int
		var payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		rec, err := decodePayload(id, payload)
		if err != nil {
			return nil, err
		}
		out = append(out, project(rec, params.Fields))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", table, err)
	}

	resp := &backend.Response{Success: true}
	if err := resp.SetData(out); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) get(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, table string, id int) (backend.Record, error) {
	var payload string
	err := q.QueryRowContext(ctx, `SELECT payload FROM records WHERE tbl = ? AND id = ?`, table, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %d: %w", table, id, err)
	}
	return decodePayload(id, payload)
}

func (c *Client) GetRecordByID(ctx context.Context, table string, id int, params backend.Params) (*backend.Response, error) {
	if !knownTable(table) {
		return unknownTable(table), nil
	}

	rec, err := c.get(ctx, c.db, table, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return &backend.Response{Success: false, Message: msgNotFound}, nil
	}

	resp := &backend.Response{Success: true}
	if err := resp.SetData(project(rec, params.Fields)); err != nil {
		return nil, err
	}
	return resp, nil
}

// batch runs fn for every item inside one transaction. fn reports per-item
// outcomes; a returned error aborts the whole batch.
func (c *Client) batch(ctx context.Context, n int, fn func(tx *sql.Tx, i int) (backend.Result, error)) (*backend.Response, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	results := make([]backend.Result, 0, n)
	for i := 0; i < n; i++ {
		res, err := fn(tx, i)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &backend.Response{Success: true, Results: results}, nil
}

func (c *Client) CreateRecord(ctx context.Context, table string, params backend.Params) (*backend.Response, error) {
	if !knownTable(table) {
		return unknownTable(table), nil
	}

	return c.batch(ctx, len(params.Records), func(tx *sql.Tx, i int) (backend.Result, error) {
		rec := params.Records[i]
		if errs := validate(table, rec); len(errs) > 0 {
			return backend.Result{Success: false, Message: msgValidationFailed, Errors: errs}, nil
		}

		var id int
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM records WHERE tbl = ?`, table).Scan(&id); err != nil {
			return backend.Result{}, fmt.Errorf("failed to allocate id: %w", err)
		}

		now := c.now().UTC()
		created := records.Text(rec[records.KeyCreatedAt])
		if created == "" {
			created = records.FormatTime(now)
		}

		stored := make(backend.Record, len(rec)+1)
		for k, v := range rec {
			stored[k] = v
		}
		stored[records.KeyCreatedAt] = created

		payload, err := encodePayload(stored)
		if err != nil {
			return backend.Result{}, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO records (tbl, id, payload, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			table, id, payload, created, now)
		if err != nil {
			return backend.Result{}, fmt.Errorf("failed to insert %s: %w", table, err)
		}

		saved, err := decodePayload(id, payload)
		if err != nil {
			return backend.Result{}, err
		}
		c.logger.Debug("created record", zap.String("table", table), zap.Int("id", id))
		return backend.Result{Success: true, Data: saved}, nil
	})
}

func (c *Client) UpdateRecord(ctx context.Context, table string, params backend.Params) (*backend.Response, error) {
	if !knownTable(table) {
		return unknownTable(table), nil
	}

	return c.batch(ctx, len(params.Records), func(tx *sql.Tx, i int) (backend.Result, error) {
		rec := params.Records[i]
		id, ok := records.Int(rec[records.KeyID])
		if !ok || id == 0 {
			return backend.Result{Success: false, Message: msgMissingID}, nil
		}

		existing, err := c.get(ctx, tx, table, id)
		if err != nil {
			return backend.Result{}, err
		}
		if existing == nil {
			return backend.Result{Success: false, Message: msgNotFound}, nil
		}

		for k, v := range rec {
			if k == records.KeyID || k == records.KeyCreatedAt {
				continue
			}
			existing[k] = v
		}
		if errs := validate(table, existing); len(errs) > 0 {
			return backend.Result{Success: false, Message: msgValidationFailed, Errors: errs}, nil
		}

		payload, err := encodePayload(existing)
		if err != nil {
			return backend.Result{}, err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE records SET payload = ?, updated_at = ? WHERE tbl = ? AND id = ?`,
			payload, c.now().UTC(), table, id)
		if err != nil {
			return backend.Result{}, fmt.Errorf("failed to update %s %d: %w", table, id, err)
		}

		saved, err := decodePayload(id, payload)
		if err != nil {
			return backend.Result{}, err
		}
		return backend.Result{Success: true, Data: saved}, nil
	})
}

func (c *Client) DeleteRecord(ctx context.Context, table string, params backend.Params) (*backend.Response, error) {
	if !knownTable(table) {
		return unknownTable(table), nil
	}

	return c.batch(ctx, len(params.RecordIDs), func(tx *sql.Tx, i int) (backend.Result, error) {
		id := params.RecordIDs[i]
		result, err := tx.ExecContext(ctx, `DELETE FROM records WHERE tbl = ? AND id = ?`, table, id)
		if err != nil {
			return backend.Result{}, fmt.Errorf("failed to delete %s %d: %w", table, id, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return backend.Result{}, err
		}
		if n == 0 {
			return backend.Result{Success: false, Message: msgNotFound}, nil
		}
		return backend.Result{Success: true}, nil
	})
}
