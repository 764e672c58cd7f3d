package viz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealdesk/hook"
	"github.com/harperreed/dealdesk/memstore"
	"github.com/harperreed/dealdesk/models"
)

func TestComputeStats(t *testing.T) {
	contacts := []models.Contact{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}
	deals := []models.Deal{
		{ID: 1, Value: 1000, Stage: models.StageClosedWon},
		{ID: 2, Value: 2500.4, Stage: models.StageProposal},
		{ID: 3, Value: 500, Stage: models.StageClosedWon},
		{ID: 4, Value: 10, Stage: "mystery"},
	}

	stats := ComputeStats(contacts, deals)

	assert.Equal(t, 2, stats.TotalContacts)
	assert.Equal(t, 4, stats.TotalDeals)
	assert.InDelta(t, 4010.4, stats.PipelineValue, 1e-9)
	assert.Equal(t, 1500.0, stats.WonValue)

	require.Len(t, stats.Pipeline, len(models.Stages))
	assert.Equal(t, models.StageLead, stats.Pipeline[0].Stage)
	won := stats.Pipeline[4]
	assert.Equal(t, models.StageClosedWon, won.Stage)
	assert.Equal(t, 2, won.Count)
	assert.Equal(t, 1500.0, won.Value)
}

func TestRecentIsReverseInsertionOrder(t *testing.T) {
	var deals []models.Deal
	for i := 1; i <= 7; i++ {
		deals = append(deals, models.Deal{ID: i})
	}

	stats := ComputeStats(nil, deals)

	var ids []int
	for _, d := range stats.RecentDeals {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []int{7, 6, 5, 4, 3}, ids)
	assert.Empty(t, stats.RecentContacts)
}

func TestFormatCurrency(t *testing.T) {
	tests := map[float64]string{
		0:         "$0",
		999:       "$999",
		1000:      "$1,000",
		15000.5:   "$15,001",
		1234567.4: "$1,234,567",
		-2500:     "-$2,500",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatCurrency(in), "input %v", in)
	}
}

func TestGenerateDashboardStatsFromMockStores(t *testing.T) {
	cs, err := memstore.NewContacts(memstore.WithLatency(0, 0))
	require.NoError(t, err)
	ds, err := memstore.NewDeals(memstore.WithLatency(0, 0))
	require.NoError(t, err)

	stats, err := GenerateDashboardStats(context.Background(), hook.NewContacts(cs, nil), hook.NewDeals(ds, nil))
	require.NoError(t, err)

	assert.Equal(t, 5, stats.TotalContacts)
	assert.Equal(t, 6, stats.TotalDeals)
	assert.Equal(t, 48000.0, stats.WonValue)
	assert.Equal(t, "Margaret Hamilton", stats.RecentContacts[0].Name)

	out := RenderDashboard(stats)
	assert.Contains(t, out, "DEALDESK DASHBOARD")
	assert.Contains(t, out, "Closed Won")
	assert.Contains(t, out, "$48,000")
	assert.Contains(t, out, "Margaret Hamilton")
}

type failingDeals struct{ memstore.Store[models.Deal, models.DealInput] }

func (*failingDeals) GetAll(context.Context) ([]models.Deal, error) {
	return nil, errors.New("backend down")
}

func TestGenerateDashboardStatsPropagatesLoadError(t *testing.T) {
	cs, err := memstore.NewContacts(memstore.WithLatency(0, 0))
	require.NoError(t, err)

	deals := hook.NewDeals(&failingDeals{}, nil)
	_, err = GenerateDashboardStats(context.Background(), hook.NewContacts(cs, nil), deals)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load deals")
	assert.Equal(t, hook.DealsLoadError, deals.Snapshot().Err)
}
