// ABOUTME: Output shapes shared by the MCP tool handlers
// ABOUTME: Converts domain entities into JSON-friendly tool results
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/records"
	"github.com/harperreed/dealdesk/service"
)

type ContactOutput struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Company   string  `json:"company,omitempty"`
	Email     string  `json:"email,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	Tags      string  `json:"tags,omitempty"`
	Owner     *string `json:"owner,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type DealOutput struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Stage     string  `json:"stage"`
	ContactID *int    `json:"contact_id,omitempty"`
	Tags      string  `json:"tags,omitempty"`
	Owner     *string `json:"owner,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type DeleteOutput struct {
	Deleted  bool     `json:"deleted"`
	Warnings []string `json:"warnings,omitempty"`
}

func contactToOutput(c models.Contact) ContactOutput {
	return ContactOutput{
		ID:        c.ID,
		Name:      c.Name,
		Company:   c.Company,
		Email:     c.Email,
		Phone:     c.Phone,
		Tags:      c.Tags,
		Owner:     c.Owner,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

func dealToOutput(d models.Deal) DealOutput {
	return DealOutput{
		ID:        d.ID,
		Name:      d.Name,
		Value:     d.Value,
		Stage:     string(d.Stage),
		ContactID: d.ContactID,
		Tags:      d.Tags,
		Owner:     d.Owner,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}
}

// capture attaches a collector so backend messages for one tool call can be
// returned to the caller.
func capture(ctx context.Context) (context.Context, *records.Collector) {
	var col records.Collector
	return records.WithNotifier(ctx, &col), &col
}

// writeError wraps a failed write, appending any backend messages.
func writeError(action string, err error, col *records.Collector) error {
	if msgs := col.Messages(); len(msgs) > 0 {
		return fmt.Errorf("failed to %s: %w (%s)", action, err, strings.Join(msgs, "; "))
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func optional(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// isDegraded reports whether a read failed only because the backend was
// unreachable, leaving an empty list to serve.
func isDegraded(err error) bool {
	return errors.Is(err, service.ErrUnavailable)
}
