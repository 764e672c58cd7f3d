package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealdesk/backend"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/records"
	"github.com/harperreed/dealdesk/service"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDatabase(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func setupClient(t *testing.T) *Client {
	t.Helper()
	c := NewClient(setupTestDB(t), nil)
	start := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	c.now = func() time.Time {
		tick++
		return start.Add(time.Duration(tick) * time.Minute)
	}
	return c
}

func contact(name, email string) backend.Record {
	return backend.Record{
		records.KeyName:  name,
		records.KeyEmail: email,
		records.KeyPhone: "555-0100",
	}
}

func TestCreatePartialBatch(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()

	resp, err := c.CreateRecord(ctx, records.ContactTable, backend.Params{Records: []backend.Record{
		contact("Ada", "ada@example.com"),
		{records.KeyName: "", records.KeyEmail: "nope"},
		contact("Grace", "grace@example.com"),
	}})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Len(t, resp.Results, 3)

	assert.True(t, resp.Results[0].Success)
	assert.Equal(t, 1, resp.Results[0].Data[records.KeyID])

	bad := resp.Results[1]
	assert.False(t, bad.Success)
	assert.Equal(t, msgValidationFailed, bad.Message)
	assert.Equal(t, []backend.FieldError{
		{FieldLabel: "Name", Message: "is required"},
		{FieldLabel: "Phone", Message: "is required"},
		{FieldLabel: "Email", Message: "is not a valid email"},
	}, bad.Errors)

	assert.True(t, resp.Results[2].Success)
	assert.Equal(t, 2, resp.Results[2].Data[records.KeyID])
}

func TestFetchOrdersAndProjects(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := c.CreateRecord(ctx, records.ContactTable, backend.Params{Records: []backend.Record{contact(name, name+"@example.com")}})
		require.NoError(t, err)
	}

	resp, err := c.FetchRecords(ctx, records.ContactTable, backend.Params{
		Fields:  backend.Select(records.KeyName),
		OrderBy: []backend.OrderBy{{FieldName: records.KeyCreatedAt, SortType: backend.SortDesc}},
	})
	require.NoError(t, err)
	recs, err := resp.Records()
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "third", recs[0][records.KeyName])
	assert.Equal(t, "first", recs[2][records.KeyName])
	assert.NotContains(t, recs[0], records.KeyEmail)
	assert.Contains(t, recs[0], records.KeyID)

	byName, err := c.FetchRecords(ctx, records.ContactTable, backend.Params{
		OrderBy: []backend.OrderBy{{FieldName: records.KeyName, SortType: backend.SortAsc}},
	})
	require.NoError(t, err)
	recs, err = byName.Records()
	require.NoError(t, err)
	assert.Equal(t, "first", recs[0][records.KeyName])
	assert.Equal(t, "third", recs[2][records.KeyName])
}

func TestFetchEmptyTable(t *testing.T) {
	resp, err := setupClient(t).FetchRecords(context.Background(), records.DealTable, backend.Params{})
	require.NoError(t, err)
	recs, err := resp.Records()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestUnknownTableIsRejected(t *testing.T) {
	resp, err := setupClient(t).FetchRecords(context.Background(), "app_widget_c", backend.Params{})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "app_widget_c")
}

func TestUpdateMergesAndKeepsCreatedAt(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()

	created, err := c.CreateRecord(ctx, records.ContactTable, backend.Params{Records: []backend.Record{contact("Ada", "ada@example.com")}})
	require.NoError(t, err)
	createdAt := created.Results[0].Data[records.KeyCreatedAt]

	resp, err := c.UpdateRecord(ctx, records.ContactTable, backend.Params{Records: []backend.Record{
		{records.KeyID: 1, records.KeyCompany: "Analytical", records.KeyCreatedAt: "1999-01-01T00:00:00.000Z"},
		{records.KeyID: 42, records.KeyName: "ghost"},
		{records.KeyName: "no id"},
	}})
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)

	ok := resp.Results[0]
	require.True(t, ok.Success)
	assert.Equal(t, "Analytical", ok.Data[records.KeyCompany])
	assert.Equal(t, "Ada", ok.Data[records.KeyName])
	assert.Equal(t, createdAt, ok.Data[records.KeyCreatedAt])

	assert.Equal(t, msgNotFound, resp.Results[1].Message)
	assert.Equal(t, msgMissingID, resp.Results[2].Message)
}

func TestUpdateValidationFailure(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()
	_, err := c.CreateRecord(ctx, records.ContactTable, backend.Params{Records: []backend.Record{contact("Ada", "ada@example.com")}})
	require.NoError(t, err)

	resp, err := c.UpdateRecord(ctx, records.ContactTable, backend.Params{Records: []backend.Record{
		{records.KeyID: 1, records.KeyName: "  "},
	}})
	require.NoError(t, err)
	assert.False(t, resp.Results[0].Success)
	assert.Equal(t, []backend.FieldError{{FieldLabel: "Name", Message: "is required"}}, resp.Results[0].Errors)
}

func TestGetAndDelete(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()
	_, err := c.CreateRecord(ctx, records.ContactTable, backend.Params{Records: []backend.Record{contact("Ada", "ada@example.com")}})
	require.NoError(t, err)

	got, err := c.GetRecordByID(ctx, records.ContactTable, 1, backend.Params{})
	require.NoError(t, err)
	rec, err := got.Record()
	require.NoError(t, err)
	assert.Equal(t, "Ada", rec[records.KeyName])

	resp, err := c.DeleteRecord(ctx, records.ContactTable, backend.Params{RecordIDs: []int{1, 1}})
	require.NoError(t, err)
	assert.True(t, resp.Results[0].Success)
	assert.False(t, resp.Results[1].Success)
	assert.Equal(t, msgNotFound, resp.Results[1].Message)

	missing, err := c.GetRecordByID(ctx, records.ContactTable, 1, backend.Params{})
	require.NoError(t, err)
	assert.False(t, missing.Success)
}

func TestIDsAreScopedPerTable(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()

	_, err := c.CreateRecord(ctx, records.ContactTable, backend.Params{Records: []backend.Record{contact("Ada", "ada@example.com")}})
	require.NoError(t, err)
	resp, err := c.CreateRecord(ctx, records.DealTable, backend.Params{Records: []backend.Record{
		{records.KeyName: "Deal", records.KeyStage: "lead", records.KeyValue: 10.0},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Results[0].Data[records.KeyID])
}

func TestHostedServiceOverLocalBackend(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()
	deals := service.NewDealService(c)

	d, err := deals.Create(ctx, models.DealInput{
		Name: "Expansion", Value: "15000.5", Stage: models.StageProposal, ContactID: "3",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, d.ID)
	assert.Equal(t, 15000.5, d.Value)
	require.NotNil(t, d.ContactID)
	assert.Equal(t, 3, *d.ContactID)

	_, err = deals.Create(ctx, models.DealInput{Name: "Second", Value: "1", Stage: models.StageLead})
	require.NoError(t, err)

	all, err := deals.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Second", all[0].Name, "newest first")

	got, err := deals.GetByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err := deals.Delete(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = deals.Delete(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
