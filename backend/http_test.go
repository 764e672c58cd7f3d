package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewHTTPClient(HTTPConfig{
		BaseURL:   ts.URL + "/",
		ProjectID: "proj-1",
		PublicKey: "pk-1",
	}, zap.NewNop())
}

func TestHTTPClient_FetchRecords(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/tables/app_contact_c/fetch", r.URL.Path)
		assert.Equal(t, "proj-1", r.Header.Get("X-Apper-Project-Id"))
		assert.Equal(t, "Bearer pk-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var params Params
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		require.Len(t, params.OrderBy, 1)
		assert.Equal(t, "createdAt_c", params.OrderBy[0].FieldName)
		assert.Equal(t, SortDesc, params.OrderBy[0].SortType)
		require.Len(t, params.Fields, 2)
		assert.Equal(t, "Name", params.Fields[0].Field.Name)

		_, _ = w.Write([]byte(`{"success":true,"data":[{"Id":1,"Name":"Ada"},{"Id":2,"Name":"Grace"}]}`))
	})

	resp, err := client.FetchRecords(context.Background(), "app_contact_c", Params{
		Fields:  Select("Name", "email_c"),
		OrderBy: []OrderBy{{FieldName: "createdAt_c", SortType: SortDesc}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	recs, err := resp.Records()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Grace", recs[1]["Name"])
}

func TestHTTPClient_GetRecordByIDSendsID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tables/app_deal_c/get", r.URL.Path)
		var params Params
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, []int{9}, params.RecordIDs)
		_, _ = w.Write([]byte(`{"success":true,"data":{"Id":9,"Name":"Renewal"}}`))
	})

	resp, err := client.GetRecordByID(context.Background(), "app_deal_c", 9, Params{})
	require.NoError(t, err)

	rec, err := resp.Record()
	require.NoError(t, err)
	assert.Equal(t, float64(9), rec["Id"])
}

func TestHTTPClient_CreateRecordPartialResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"results":[
			{"success":true,"data":{"Id":4,"Name":"Ada"}},
			{"success":false,"message":"duplicate","errors":[{"fieldLabel":"Email","message":"already used"}]}
		]}`))
	})

	resp, err := client.CreateRecord(context.Background(), "app_contact_c", Params{
		Records: []Record{{"Name": "Ada"}, {"Name": "Ada"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].Success)
	assert.Equal(t, "Email", resp.Results[1].Errors[0].FieldLabel)
}

func TestHTTPClient_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream failed", http.StatusBadGateway)
	})

	_, err := client.DeleteRecord(context.Background(), "app_deal_c", Params{RecordIDs: []int{1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPClient_BadJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := client.UpdateRecord(context.Background(), "app_deal_c", Params{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestResponseNullData(t *testing.T) {
	resp := &Response{Success: true, Data: json.RawMessage("null")}

	recs, err := resp.Records()
	require.NoError(t, err)
	assert.Nil(t, recs)

	rec, err := resp.Record()
	require.NoError(t, err)
	assert.Nil(t, rec)
}
