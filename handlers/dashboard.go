// ABOUTME: Dashboard summary MCP tool handler
// ABOUTME: Loads both collections and returns pipeline totals and recent activity
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/harperreed/dealdesk/hook"
	"github.com/harperreed/dealdesk/service"
	"github.com/harperreed/dealdesk/viz"
)

type DashboardHandlers struct {
	contacts service.ContactStore
	deals    service.DealStore
	logger   *zap.Logger
}

func NewDashboardHandlers(contacts service.ContactStore, deals service.DealStore, logger *zap.Logger) *DashboardHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandlers{contacts: contacts, deals: deals, logger: logger}
}

type DashboardInput struct{}

type StageOutput struct {
	Stage string  `json:"stage"`
	Label string  `json:"label"`
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

type DashboardOutput struct {
	TotalContacts  int             `json:"total_contacts"`
	TotalDeals     int             `json:"total_deals"`
	PipelineValue  float64         `json:"pipeline_value"`
	WonValue       float64         `json:"won_value"`
	Pipeline       []StageOutput   `json:"pipeline"`
	RecentContacts []ContactOutput `json:"recent_contacts"`
	RecentDeals    []DealOutput    `json:"recent_deals"`
	Summary        string          `json:"summary"`
}

func (h *DashboardHandlers) DashboardSummary(ctx context.Context, _ *mcp.CallToolRequest, _ DashboardInput) (*mcp.CallToolResult, DashboardOutput, error) {
	stats, err := viz.GenerateDashboardStats(ctx,
		hook.NewContacts(h.contacts, h.logger),
		hook.NewDeals(h.deals, h.logger))
	if err != nil {
		return nil, DashboardOutput{}, fmt.Errorf("failed to build dashboard: %w", err)
	}
	return nil, dashboardToOutput(stats), nil
}

func dashboardToOutput(stats *viz.DashboardStats) DashboardOutput {
	out := DashboardOutput{
		TotalContacts:  stats.TotalContacts,
		TotalDeals:     stats.TotalDeals,
		PipelineValue:  stats.PipelineValue,
		WonValue:       stats.WonValue,
		Pipeline:       make([]StageOutput, 0, len(stats.Pipeline)),
		RecentContacts: make([]ContactOutput, 0, len(stats.RecentContacts)),
		RecentDeals:    make([]DealOutput, 0, len(stats.RecentDeals)),
		Summary: fmt.Sprintf("%d contacts, %d deals, pipeline %s, won %s",
			stats.TotalContacts, stats.TotalDeals,
			viz.FormatCurrency(stats.PipelineValue), viz.FormatCurrency(stats.WonValue)),
	}
	for _, p := range stats.Pipeline {
		out.Pipeline = append(out.Pipeline, stageToOutput(p))
	}
	for _, c := range stats.RecentContacts {
		out.RecentContacts = append(out.RecentContacts, contactToOutput(c))
	}
	for _, d := range stats.RecentDeals {
		out.RecentDeals = append(out.RecentDeals, dealToOutput(d))
	}
	return out
}

func stageToOutput(p viz.PipelineStageStats) StageOutput {
	return StageOutput{Stage: string(p.Stage), Label: p.Stage.Label(), Count: p.Count, Value: p.Value}
}
