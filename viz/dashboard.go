// ABOUTME: Dashboard summary statistics and terminal rendering
// ABOUTME: Loads both collections concurrently and renders a pipeline overview
package viz

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/dealdesk/hook"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/query"
)

// RecentLimit is how many recent contacts and deals the summary keeps.
const RecentLimit = 5

type DashboardStats struct {
	TotalContacts int     `json:"totalContacts"`
	TotalDeals    int     `json:"totalDeals"`
	PipelineValue float64 `json:"pipelineValue"`
	WonValue      float64 `json:"wonValue"`

	// Pipeline holds one entry per stage in pipeline order.
	Pipeline []PipelineStageStats `json:"pipeline"`

	// Most recently added first.
	RecentContacts []models.Contact `json:"recentContacts"`
	RecentDeals    []models.Deal    `json:"recentDeals"`
}

type PipelineStageStats struct {
	Stage models.Stage `json:"stage"`
	Count int          `json:"count"`
	Value float64      `json:"value"`
}

// GenerateDashboardStats loads both hooks concurrently and summarizes them.
func GenerateDashboardStats(
	ctx context.Context,
	contacts *hook.Hook[models.Contact, models.ContactInput],
	deals *hook.Hook[models.Deal, models.DealInput],
) (*DashboardStats, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := contacts.Load(gctx); err != nil {
			return fmt.Errorf("failed to load contacts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := deals.Load(gctx); err != nil {
			return fmt.Errorf("failed to load deals: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return ComputeStats(contacts.Snapshot().Items, deals.Snapshot().Items), nil
}

// ComputeStats summarizes already loaded lists.
func ComputeStats(contacts []models.Contact, deals []models.Deal) *DashboardStats {
	stats := &DashboardStats{
		TotalContacts:  len(contacts),
		TotalDeals:     len(deals),
		PipelineValue:  query.TotalValue(deals),
		RecentContacts: lastReversed(contacts, RecentLimit),
		RecentDeals:    lastReversed(deals, RecentLimit),
	}

	byStage := make(map[models.Stage]*PipelineStageStats, len(models.Stages))
	for _, s := range models.Stages {
		stats.Pipeline = append(stats.Pipeline, PipelineStageStats{Stage: s})
	}
	for i := range stats.Pipeline {
		byStage[stats.Pipeline[i].Stage] = &stats.Pipeline[i]
	}

	for _, d := range deals {
		if d.Stage == models.StageClosedWon {
			stats.WonValue += d.Value
		}
		if p, ok := byStage[d.Stage]; ok {
			p.Count++
			p.Value += d.Value
		}
	}
	return stats
}

func lastReversed[T any](list []T, n int) []T {
	start := max(len(list)-n, 0)
	out := make([]T, 0, len(list)-start)
	for i := len(list) - 1; i >= start; i-- {
		out = append(out, list[i])
	}
	return out
}

// FormatCurrency renders amount as whole US dollars, e.g. "$12,346".
func FormatCurrency(amount float64) string {
	rounded := math.Round(amount)
	neg := rounded < 0
	digits := fmt.Sprintf("%.0f", math.Abs(rounded))

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	statStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  " + titleStyle.Render("DEALDESK DASHBOARD") + "\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString(headerStyle.Render("STATS") + "\n")
	out.WriteString(statStyle.Render(fmt.Sprintf("  %d contacts  %d deals", stats.TotalContacts, stats.TotalDeals)) + "\n")
	out.WriteString(statStyle.Render(fmt.Sprintf("  Pipeline value %s  Won %s",
		FormatCurrency(stats.PipelineValue), FormatCurrency(stats.WonValue))) + "\n\n")

	out.WriteString(headerStyle.Render("PIPELINE OVERVIEW") + "\n")
	renderPipeline(&out, stats.Pipeline)
	out.WriteString("\n")

	out.WriteString(headerStyle.Render("RECENT CONTACTS") + "\n")
	if len(stats.RecentContacts) == 0 {
		out.WriteString(mutedStyle.Render("  none yet") + "\n")
	}
	for _, c := range stats.RecentContacts {
		line := "  " + c.Name
		if c.Company != "" {
			line += "  " + mutedStyle.Render(c.Company)
		}
		out.WriteString(line + "\n")
	}
	out.WriteString("\n")

	out.WriteString(headerStyle.Render("RECENT DEALS") + "\n")
	if len(stats.RecentDeals) == 0 {
		out.WriteString(mutedStyle.Render("  none yet") + "\n")
	}
	for _, d := range stats.RecentDeals {
		out.WriteString(fmt.Sprintf("  %-30s %12s  %s\n", d.Name, FormatCurrency(d.Value), mutedStyle.Render(d.Stage.Label())))
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, pipeline []PipelineStageStats) {
	maxCount := 0
	for _, p := range pipeline {
		if p.Count > maxCount {
			maxCount = p.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, p := range pipeline {
		barLength := (p.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)

		out.WriteString(fmt.Sprintf("  %-13s %s  %2d (%s)\n",
			p.Stage.Label(), bar, p.Count, FormatCurrency(p.Value)))
	}
}
