// ABOUTME: Deal MCP tool handlers
// ABOUTME: Implements list_deals, get_deal, create_deal, update_deal, and delete_deal tools
package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/query"
	"github.com/harperreed/dealdesk/service"
)

type DealHandlers struct {
	store service.DealStore
}

func NewDealHandlers(store service.DealStore) *DealHandlers {
	return &DealHandlers{store: store}
}

type ListDealsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Case-insensitive search over name and stage"`
	Stage string `json:"stage,omitempty" jsonschema:"Only deals in this stage"`
	Sort  string `json:"sort,omitempty" jsonschema:"Sort field: name, value, or stage"`
	Desc  bool   `json:"desc,omitempty" jsonschema:"Sort descending"`
}

type ListDealsOutput struct {
	Deals      []DealOutput `json:"deals"`
	TotalValue float64      `json:"total_value"`
	Warnings   []string     `json:"warnings,omitempty"`
	Degraded   bool         `json:"degraded,omitempty"`
}

func (h *DealHandlers) ListDeals(ctx context.Context, _ *mcp.CallToolRequest, input ListDealsInput) (*mcp.CallToolResult, ListDealsOutput, error) {
	if input.Stage != "" && !models.Stage(input.Stage).Valid() {
		return nil, ListDealsOutput{}, fmt.Errorf("unknown stage %q", input.Stage)
	}

	ctx, col := capture(ctx)
	deals, err := h.store.GetAll(ctx)
	out := ListDealsOutput{Degraded: err != nil}
	if err != nil && len(deals) == 0 {
		out.Warnings = append(out.Warnings, err.Error())
	}

	dir := query.Asc
	if input.Desc {
		dir = query.Desc
	}
	deals = query.FilterStage(query.FilterDeals(deals, input.Query), models.Stage(input.Stage))
	deals = query.SortDeals(deals, input.Sort, dir)

	out.Deals = make([]DealOutput, 0, len(deals))
	for _, d := range deals {
		out.Deals = append(out.Deals, dealToOutput(d))
	}
	out.TotalValue = query.TotalValue(deals)
	out.Warnings = append(out.Warnings, col.Messages()...)
	return nil, out, nil
}

type GetDealInput struct {
	ID int `json:"id" jsonschema:"Deal Id"`
}

func (h *DealHandlers) GetDeal(ctx context.Context, _ *mcp.CallToolRequest, input GetDealInput) (*mcp.CallToolResult, DealOutput, error) {
	d, err := h.store.GetByID(ctx, input.ID)
	if service.Missing(d, err) {
		return nil, DealOutput{}, fmt.Errorf("deal %d not found", input.ID)
	}
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to get deal: %w", err)
	}
	return nil, dealToOutput(*d), nil
}

type CreateDealInput struct {
	Name      string  `json:"name" jsonschema:"Deal name (required)"`
	Value     float64 `json:"value" jsonschema:"Deal value in dollars (required, positive)"`
	Stage     string  `json:"stage,omitempty" jsonschema:"Pipeline stage (default lead)"`
	ContactID int     `json:"contact_id,omitempty" jsonschema:"Related contact Id"`
	Tags      string  `json:"tags,omitempty" jsonschema:"Comma separated tags"`
	Owner     *string `json:"owner,omitempty" jsonschema:"Owner reference"`
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatRef(id int) string {
	if id == 0 {
		return ""
	}
	return strconv.Itoa(id)
}

func (h *DealHandlers) CreateDeal(ctx context.Context, _ *mcp.CallToolRequest, input CreateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	stage := models.Stage(input.Stage)
	if stage == "" {
		stage = models.StageLead
	}
	in := models.DealInput{
		Name:      input.Name,
		Value:     formatValue(input.Value),
		Stage:     stage,
		ContactID: formatRef(input.ContactID),
		Tags:      input.Tags,
		Owner:     input.Owner,
	}
	if err := in.Validate(); err != nil {
		return nil, DealOutput{}, err
	}

	ctx, col := capture(ctx)
	d, err := h.store.Create(ctx, in)
	if err != nil {
		return nil, DealOutput{}, writeError("create deal", err, col)
	}
	return nil, dealToOutput(d), nil
}

type UpdateDealInput struct {
	ID        int      `json:"id" jsonschema:"Deal Id"`
	Name      *string  `json:"name,omitempty" jsonschema:"New name"`
	Value     *float64 `json:"value,omitempty" jsonschema:"New value in dollars"`
	Stage     *string  `json:"stage,omitempty" jsonschema:"New pipeline stage"`
	ContactID *int     `json:"contact_id,omitempty" jsonschema:"New related contact Id (0 clears)"`
	Tags      *string  `json:"tags,omitempty" jsonschema:"New tags"`
	Owner     *string  `json:"owner,omitempty" jsonschema:"New owner reference"`
}

func (h *DealHandlers) UpdateDeal(ctx context.Context, _ *mcp.CallToolRequest, input UpdateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	existing, err := h.store.GetByID(ctx, input.ID)
	if service.Missing(existing, err) {
		return nil, DealOutput{}, fmt.Errorf("deal %d not found", input.ID)
	}
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to get deal: %w", err)
	}

	in := existing.Input()
	optional(&in.Name, input.Name)
	optional(&in.Tags, input.Tags)
	if input.Value != nil {
		in.Value = formatValue(*input.Value)
	}
	if input.Stage != nil {
		in.Stage = models.Stage(*input.Stage)
	}
	if input.ContactID != nil {
		in.ContactID = formatRef(*input.ContactID)
	}
	if input.Owner != nil {
		in.Owner = models.StrPtr(*input.Owner)
	}
	if err := in.Validate(); err != nil {
		return nil, DealOutput{}, err
	}

	ctx, col := capture(ctx)
	d, err := h.store.Update(ctx, input.ID, in)
	if err != nil {
		return nil, DealOutput{}, writeError("update deal", err, col)
	}
	return nil, dealToOutput(d), nil
}

type DeleteDealInput struct {
	ID int `json:"id" jsonschema:"Deal Id"`
}

func (h *DealHandlers) DeleteDeal(ctx context.Context, _ *mcp.CallToolRequest, input DeleteDealInput) (*mcp.CallToolResult, DeleteOutput, error) {
	ctx, col := capture(ctx)
	ok, err := h.store.Delete(ctx, input.ID)
	if err != nil {
		return nil, DeleteOutput{}, writeError("delete deal", err, col)
	}
	return nil, DeleteOutput{Deleted: ok, Warnings: col.Messages()}, nil
}
