package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/harperreed/dealdesk/models"
)

func dealNames(list []models.Deal) []string {
	out := make([]string, 0, len(list))
	for _, d := range list {
		out = append(out, d.Name)
	}
	return out
}

var deals = []models.Deal{
	{ID: 1, Name: "beta", Value: 300, Stage: models.StageProposal},
	{ID: 2, Name: "Alpha", Value: 100, Stage: models.StageClosedWon},
	{ID: 3, Name: "gamma", Value: 200, Stage: models.StageLead},
	{ID: 4, Name: "Alpha", Value: 50, Stage: models.StageLead},
}

func TestFilterContacts(t *testing.T) {
	contacts := []models.Contact{
		{ID: 1, Name: "Ada Lovelace", Company: "Analytical", Email: "ada@example.com"},
		{ID: 2, Name: "Grace Hopper", Company: "Navy", Email: "grace@navy.example"},
	}

	tests := []struct {
		term string
		want []int
	}{
		{"", []int{1, 2}},
		{"ADA", []int{1}},
		{"navy", []int{2}},
		{"example", []int{1, 2}},
		{"zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			var got []int
			for _, c := range FilterContacts(contacts, tt.term) {
				got = append(got, c.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterDealsMatchesNameOrStage(t *testing.T) {
	assert.Equal(t, []string{"beta"}, dealNames(FilterDeals(deals, "PROPOSAL")))
	assert.Equal(t, []string{"Alpha"}, dealNames(FilterDeals(deals, "won")))
	assert.Len(t, FilterDeals(deals, "a"), 4)
	assert.Len(t, FilterStage(deals, models.StageLead), 2)
	assert.Len(t, FilterStage(deals, ""), 4)
}

func TestSortDeals(t *testing.T) {
	assert.Equal(t, []string{"Alpha", "Alpha", "beta", "gamma"}, dealNames(SortDeals(deals, "name", Asc)))
	assert.Equal(t, []string{"gamma", "beta", "Alpha", "Alpha"}, dealNames(SortDeals(deals, "name", Desc)))
	assert.Equal(t, []string{"Alpha", "Alpha", "gamma", "beta"}, dealNames(SortDeals(deals, "value", Asc)))

	byValueDesc := SortDeals(deals, "value", Desc)
	assert.Equal(t, 300.0, byValueDesc[0].Value)
	assert.Equal(t, 50.0, byValueDesc[3].Value)

	stable := SortDeals(deals, "", Asc)
	assert.Equal(t, 2, stable[0].ID)
	assert.Equal(t, 4, stable[1].ID)

	assert.Equal(t, 1, deals[0].ID, "input must not be reordered")
}

func TestSortContactsByCreated(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	contacts := []models.Contact{
		{ID: 1, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 2, CreatedAt: base},
		{ID: 3, CreatedAt: base.Add(time.Hour)},
	}

	got := SortContacts(contacts, "created", Desc)
	assert.Equal(t, []int{1, 3, 2}, []int{got[0].ID, got[1].ID, got[2].ID})
}

func TestTotalValueAndDirection(t *testing.T) {
	assert.Equal(t, 650.0, TotalValue(deals))
	assert.Equal(t, 0.0, TotalValue(nil))
	assert.Equal(t, Desc, ParseDirection("DESC"))
	assert.Equal(t, Asc, ParseDirection("sideways"))
}
