// ABOUTME: MCP resource handlers for exposing CRM data
// ABOUTME: Provides read-only JSON views of contacts, deals, and the pipeline by URI
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dealdesk/service"
	"github.com/harperreed/dealdesk/viz"
)

const resourceScheme = "dealdesk://"

type ResourceHandlers struct {
	contacts service.ContactStore
	deals    service.DealStore
}

func NewResourceHandlers(contacts service.ContactStore, deals service.DealStore) *ResourceHandlers {
	return &ResourceHandlers{contacts: contacts, deals: deals}
}

// ReadResource serves dealdesk://contacts[/{id}], dealdesk://deals[/{id}]
// and dealdesk://pipeline.
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}
	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")

	var payload any
	var err error
	switch {
	case parts[0] == "contacts" && len(parts) == 1:
		payload, err = h.contactList(ctx)
	case parts[0] == "contacts" && len(parts) == 2:
		payload, err = h.contact(ctx, uri, parts[1])
	case parts[0] == "deals" && len(parts) == 1:
		payload, err = h.dealList(ctx)
	case parts[0] == "deals" && len(parts) == 2:
		payload, err = h.deal(ctx, uri, parts[1])
	case parts[0] == "pipeline" && len(parts) == 1:
		payload, err = h.pipeline(ctx)
	default:
		return nil, mcp.ResourceNotFoundError(uri)
	}
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func (h *ResourceHandlers) contactList(ctx context.Context) ([]ContactOutput, error) {
	contacts, err := h.contacts.GetAll(ctx)
	if err != nil && !isDegraded(err) {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	out := make([]ContactOutput, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, contactToOutput(c))
	}
	return out, nil
}

func (h *ResourceHandlers) contact(ctx context.Context, uri, raw string) (ContactOutput, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return ContactOutput{}, mcp.ResourceNotFoundError(uri)
	}
	c, err := h.contacts.GetByID(ctx, id)
	if service.Missing(c, err) {
		return ContactOutput{}, mcp.ResourceNotFoundError(uri)
	}
	if err != nil {
		return ContactOutput{}, fmt.Errorf("failed to get contact: %w", err)
	}
	return contactToOutput(*c), nil
}

func (h *ResourceHandlers) dealList(ctx context.Context) ([]DealOutput, error) {
	deals, err := h.deals.GetAll(ctx)
	if err != nil && !isDegraded(err) {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}
	out := make([]DealOutput, 0, len(deals))
	for _, d := range deals {
		out = append(out, dealToOutput(d))
	}
	return out, nil
}

func (h *ResourceHandlers) deal(ctx context.Context, uri, raw string) (DealOutput, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return DealOutput{}, mcp.ResourceNotFoundError(uri)
	}
	d, err := h.deals.GetByID(ctx, id)
	if service.Missing(d, err) {
		return DealOutput{}, mcp.ResourceNotFoundError(uri)
	}
	if err != nil {
		return DealOutput{}, fmt.Errorf("failed to get deal: %w", err)
	}
	return dealToOutput(*d), nil
}

func (h *ResourceHandlers) pipeline(ctx context.Context) ([]StageOutput, error) {
	deals, err := h.deals.GetAll(ctx)
	if err != nil && !isDegraded(err) {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}
	stats := viz.ComputeStats(nil, deals)
	out := make([]StageOutput, 0, len(stats.Pipeline))
	for _, s := range stats.Pipeline {
		out = append(out, stageToOutput(s))
	}
	return out, nil
}
