// ABOUTME: Tests for the hosted entity services
// ABOUTME: Uses a scripted backend client to drive every response shape
package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/harperreed/dealdesk/backend"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/records"
)

type call struct {
	op     string
	table  string
	id     int
	params backend.Params
}

type scriptedClient struct {
	resp  *backend.Response
	err   error
	calls []call
}

func (c *scriptedClient) do(op, table string, id int, p backend.Params) (*backend.Response, error) {
	c.calls = append(c.calls, call{op: op, table: table, id: id, params: p})
	return c.resp, c.err
}

func (c *scriptedClient) FetchRecords(_ context.Context, table string, p backend.Params) (*backend.Response, error) {
	return c.do("fetch", table, 0, p)
}

func (c *scriptedClient) GetRecordByID(_ context.Context, table string, id int, p backend.Params) (*backend.Response, error) {
	return c.do("get", table, id, p)
}

func (c *scriptedClient) CreateRecord(_ context.Context, table string, p backend.Params) (*backend.Response, error) {
	return c.do("create", table, 0, p)
}

func (c *scriptedClient) UpdateRecord(_ context.Context, table string, p backend.Params) (*backend.Response, error) {
	return c.do("update", table, 0, p)
}

func (c *scriptedClient) DeleteRecord(_ context.Context, table string, p backend.Params) (*backend.Response, error) {
	return c.do("delete", table, 0, p)
}

func dataResponse(t *testing.T, v any) *backend.Response {
	t.Helper()
	resp := &backend.Response{Success: true}
	require.NoError(t, resp.SetData(v))
	return resp
}

func TestGetAllRequestsFieldsNewestFirst(t *testing.T) {
	client := &scriptedClient{resp: dataResponse(t, []backend.Record{
		{"Id": 2, "Name": "Grace", "email_c": "grace@example.com"},
		{"Id": 1, "Name": "Ada"},
	})}
	svc := NewContactService(client)

	got, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Grace", got[0].Name)
	assert.Equal(t, "grace@example.com", got[0].Email)

	require.Len(t, client.calls, 1)
	c := client.calls[0]
	assert.Equal(t, records.ContactTable, c.table)
	assert.Len(t, c.params.Fields, 7)
	assert.Equal(t, []backend.OrderBy{{FieldName: "createdAt_c", SortType: "DESC"}}, c.params.OrderBy)
}

func TestGetAllRejectedReturnsEmptyAndNotifies(t *testing.T) {
	client := &scriptedClient{resp: &backend.Response{Success: false, Message: "table locked"}}
	var col records.Collector
	svc := NewDealService(client, WithNotifier(&col))

	got, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, []string{"table locked"}, col.Messages())
}

func TestGetAllNilResponseReturnsEmpty(t *testing.T) {
	client := &scriptedClient{}
	var col records.Collector
	svc := NewContactService(client, WithNotifier(&col))

	got, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, col.Messages())
}

func TestGetAllTransportFailureIsUnavailable(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	client := &scriptedClient{err: errors.New("connection refused")}
	svc := NewDealService(client, WithLogger(zap.New(core)))

	got, err := svc.GetAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 1, logs.FilterMessage("failed to fetch deals").Len())
}

func TestGetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		client := &scriptedClient{resp: dataResponse(t, backend.Record{"Id": 4, "Name": "Renewal", "value_c": 900})}
		svc := NewDealService(client)

		d, err := svc.GetByID(context.Background(), 4)
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.Equal(t, 4, d.ID)
		assert.Equal(t, 900.0, d.Value)
		assert.Equal(t, 4, client.calls[0].id)
	})

	t.Run("null data", func(t *testing.T) {
		client := &scriptedClient{resp: &backend.Response{Success: true}}
		d, err := NewDealService(client).GetByID(context.Background(), 4)
		require.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("rejected", func(t *testing.T) {
		client := &scriptedClient{resp: &backend.Response{Success: false, Message: "nope"}}
		d, err := NewDealService(client).GetByID(context.Background(), 4)
		require.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("transport failure", func(t *testing.T) {
		client := &scriptedClient{err: errors.New("timeout")}
		d, err := NewDealService(client).GetByID(context.Background(), 4)
		assert.True(t, errors.Is(err, ErrUnavailable))
		assert.Nil(t, d)
	})
}

func TestCreateReturnsFirstAcceptedAndReportsRejected(t *testing.T) {
	client := &scriptedClient{resp: &backend.Response{
		Success: true,
		Results: []backend.Result{
			{Success: false, Message: "duplicate email"},
			{Success: true, Data: backend.Record{"Id": 11, "Name": "Ada"}},
		},
	}}
	var col records.Collector
	svc := NewContactService(client)
	ctx := records.WithNotifier(context.Background(), &col)

	c, err := svc.Create(ctx, models.ContactInput{Name: "Ada", Email: "ada@example.com", Phone: "555"})
	require.NoError(t, err)
	assert.Equal(t, 11, c.ID)
	assert.Equal(t, []string{"duplicate email"}, col.Messages())

	sent := client.calls[0].params.Records
	require.Len(t, sent, 1)
	_, hasID := sent[0][records.KeyID]
	assert.False(t, hasID)
	assert.Contains(t, sent[0], records.KeyCreatedAt)
}

func TestCreateWithNoAcceptedItemFails(t *testing.T) {
	client := &scriptedClient{resp: &backend.Response{
		Success: true,
		Results: []backend.Result{{Success: false, Errors: []backend.FieldError{{FieldLabel: "Email", Message: "is invalid"}}}},
	}}
	var col records.Collector
	svc := NewContactService(client, WithNotifier(&col))

	_, err := svc.Create(context.Background(), models.ContactInput{Name: "Ada"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWriteFailed))
	assert.True(t, errors.Is(err, records.ErrNoSuccess))
	assert.Equal(t, []string{"Email: is invalid"}, col.Messages())
}

func TestCreateTopLevelRejection(t *testing.T) {
	client := &scriptedClient{resp: &backend.Response{Success: false, Message: "invalid project"}}
	_, err := NewDealService(client).Create(context.Background(), models.DealInput{Name: "x", Value: "1"})
	assert.True(t, errors.Is(err, records.ErrBatchRejected))
	assert.Equal(t, "invalid project", err.Error())
}

func TestUpdateSendsIDWithoutCreatedAt(t *testing.T) {
	client := &scriptedClient{resp: &backend.Response{
		Success: true,
		Results: []backend.Result{{Success: true, Data: backend.Record{"Id": 3, "Name": "Renewal", "stage_c": "proposal"}}},
	}}
	svc := NewDealService(client)

	d, err := svc.Update(context.Background(), 3, models.DealInput{Name: "Renewal", Value: "10", Stage: models.StageProposal})
	require.NoError(t, err)
	assert.Equal(t, models.StageProposal, d.Stage)

	rec := client.calls[0].params.Records[0]
	assert.Equal(t, 3, rec[records.KeyID])
	assert.NotContains(t, rec, records.KeyCreatedAt)
}

func TestDeleteNeverErrors(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		client := &scriptedClient{resp: &backend.Response{Success: true, Results: []backend.Result{{Success: true}}}}
		ok, err := NewContactService(client).Delete(context.Background(), 7)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []int{7}, client.calls[0].params.RecordIDs)
	})

	t.Run("rejected", func(t *testing.T) {
		client := &scriptedClient{resp: &backend.Response{Success: true, Results: []backend.Result{{Success: false, Message: "not found"}}}}
		var col records.Collector
		ok, err := NewContactService(client, WithNotifier(&col)).Delete(context.Background(), 7)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, []string{"not found"}, col.Messages())
	})

	t.Run("transport failure", func(t *testing.T) {
		client := &scriptedClient{err: errors.New("reset by peer")}
		ok, err := NewContactService(client).Delete(context.Background(), 7)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestHostedSatisfiesStore(t *testing.T) {
	var _ ContactStore = NewContactService(&scriptedClient{})
	var _ DealStore = NewDealService(&scriptedClient{})
}
