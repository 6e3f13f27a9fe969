package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Veraticus/novatax/internal/common"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPredictor struct {
	err  error
	rate float64
}

func (s stubPredictor) PredictRate(context.Context, string, string, model.Category) (float64, error) {
	return s.rate, s.err
}

// failingStore refuses to wipe, as when the hosted datastore is down.
type failingStore struct {
	Store
}

func (failingStore) WipeAll(context.Context, string) error {
	return fmt.Errorf("%w: connection refused", common.ErrRemoteUnavailable)
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(testutil.NewTestRepository(t), nil, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestCreateAndListTransactions(t *testing.T) {
	_, ts := newTestServer(t)
	url := ts.URL + "/api/users/u1/transactions"

	resp, body := do(t, http.MethodPost, url, `{
		"date": "2026-03-14",
		"description": "Website build",
		"jurisdiction": "Saudi Arabia",
		"currency": "sar",
		"type": "income",
		"items": [
			{"description": "Design", "category": "Services", "quantity": 2, "unitPrice": 50},
			{"description": "Hosting", "category": "Digital", "quantity": 1, "unitPrice": 100, "taxRate": 0}
		]
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created model.Transaction
	require.NoError(t, json.Unmarshal(body, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "SAR", created.OriginalCurrency)
	assert.Equal(t, model.TypeIncome, created.Type)
	assert.InDelta(t, 215, created.Amount, 1e-9)
	assert.InDelta(t, 15, created.TaxAmount, 1e-9)
	require.Len(t, created.Items, 2)
	assert.InDelta(t, 100, created.Items[0].LineTotal, 1e-9)
	assert.Equal(t, "Services", created.Category)

	resp, body = do(t, http.MethodGet, url, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []model.Transaction
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	resp, body = do(t, http.MethodGet, ts.URL+"/api/users/u2/transactions", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
}

func TestCreateTransaction_BadRequests(t *testing.T) {
	_, ts := newTestServer(t)
	url := ts.URL + "/api/users/u1/transactions"

	tests := []struct {
		name string
		body string
	}{
		{name: "no items", body: `{"items": []}`},
		{name: "unknown field", body: `{"amount": 5, "items": [{"quantity": 1, "unitPrice": 1}]}`},
		{name: "not json", body: `nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := do(t, http.MethodPost, url, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCreateTransaction_OverflowingLineTotal(t *testing.T) {
	_, ts := newTestServer(t)
	url := ts.URL + "/api/users/u1/transactions"

	resp, body := do(t, http.MethodPost, url, `{
		"jurisdiction": "Saudi Arabia",
		"items": [{"description": "Huge", "quantity": 1e308, "unitPrice": 1e308}]
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created model.Transaction
	require.NoError(t, json.Unmarshal(body, &created))
	require.Len(t, created.Items, 1)
	assert.Zero(t, created.Items[0].LineTotal)
	assert.Zero(t, created.Amount)

	resp, body = do(t, http.MethodGet, url, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []model.Transaction
	require.NoError(t, json.Unmarshal(body, &listed))
	assert.Len(t, listed, 1)
}

func TestWipeTransactions(t *testing.T) {
	srv, ts := newTestServer(t)
	ctx := context.Background()
	for _, txn := range testutil.Transactions(2, "USD", 0.1) {
		require.NoError(t, srv.store.Append(ctx, "u1", txn))
	}
	url := ts.URL + "/api/users/u1/transactions"

	resp, _ := do(t, http.MethodDelete, url, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Len(t, srv.store.LoadAll(ctx, "u1"), 2)

	resp, _ = do(t, http.MethodDelete, url+"?confirm=true", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, srv.store.LoadAll(ctx, "u1"))
}

func TestWipeTransactions_RemoteUnavailable(t *testing.T) {
	srv := NewServer(failingStore{Store: testutil.NewTestRepository(t)}, nil, nil)
	req := httptest.NewRequest(http.MethodDelete, "/api/users/u1/transactions?confirm=true", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSummary(t *testing.T) {
	srv, ts := newTestServer(t)
	ctx := context.Background()
	for _, txn := range testutil.Transactions(4, "USD", 0.1) {
		require.NoError(t, srv.store.Append(ctx, "u1", txn))
	}

	resp, body := do(t, http.MethodGet, ts.URL+"/api/users/u1/summary?currency=USD", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var got summaryResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, 4, got.TransactionCount)
	assert.InDelta(t, 440, got.TotalIncome, 1e-9)
	assert.InDelta(t, 660, got.TotalExpenses, 1e-9)
	assert.InDelta(t, -20, got.TaxLiability, 1e-9)
	assert.Len(t, got.Monthly, 4)

	resp, body = do(t, http.MethodGet, ts.URL+"/api/users/u1/summary?from=2026-03-01", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, 2, got.TransactionCount)
	assert.Len(t, got.Monthly, 2)

	resp, _ = do(t, http.MethodGet, ts.URL+"/api/users/u1/summary?from=March", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTaxRate(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name  string
		query string
		want  rateResponse
	}{
		{
			name:  "reduced rate",
			query: "jurisdiction=Germany&category=Food",
			want:  rateResponse{Jurisdiction: "Germany", Category: model.CategoryFood, Rate: 0.07, Known: true},
		},
		{
			name:  "unknown jurisdiction falls back",
			query: "jurisdiction=Atlantis&category=Goods",
			want:  rateResponse{Jurisdiction: "United States", Category: model.CategoryGoods, Rate: 0.07, Known: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodGet, ts.URL+"/api/tax/rate?"+tt.query, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var got rateResponse
			require.NoError(t, json.Unmarshal(body, &got))
			assert.Equal(t, tt.want.Jurisdiction, got.Jurisdiction)
			assert.Equal(t, tt.want.Category, got.Category)
			assert.InDelta(t, tt.want.Rate, got.Rate, 1e-9)
			assert.Equal(t, tt.want.Known, got.Known)
		})
	}
}

func TestTaxPredict(t *testing.T) {
	body := `{"jurisdiction": "Saudi Arabia", "description": "Dates from Qassim", "category": "Food"}`

	tests := []struct {
		predictor     *stubPredictor
		name          string
		wantRate      float64
		wantPredicted bool
	}{
		{name: "no predictor", wantRate: 0.15},
		{name: "predicted", predictor: &stubPredictor{rate: 0.05}, wantRate: 0.05, wantPredicted: true},
		{name: "prediction fails", predictor: &stubPredictor{err: errors.New("timeout")}, wantRate: 0.15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, ts := newTestServer(t)
			if tt.predictor != nil {
				srv.SetPredictor(*tt.predictor)
			}

			resp, data := do(t, http.MethodPost, ts.URL+"/api/tax/predict", body)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var got predictResponse
			require.NoError(t, json.Unmarshal(data, &got))
			assert.InDelta(t, tt.wantRate, got.Rate, 1e-9)
			assert.Equal(t, tt.wantPredicted, got.Predicted)
		})
	}
}

func TestTaxPredict_RequiresDescription(t *testing.T) {
	_, ts := newTestServer(t)

	resp, _ := do(t, http.MethodPost, ts.URL+"/api/tax/predict", `{"jurisdiction": "Germany"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConvert(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/api/currency/convert?amount=42&from=usd&to=USD", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got convertResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "USD", got.From)
	assert.InDelta(t, 42, got.Result, 1e-9)

	for _, amount := range []string{"", "abc", "NaN"} {
		resp, _ := do(t, http.MethodGet, ts.URL+"/api/currency/convert?amount="+amount, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, amount)
	}
}

func TestProfiles(t *testing.T) {
	_, ts := newTestServer(t)

	resp, _ := do(t, http.MethodPut, ts.URL+"/api/profiles/p1", `{"name": "Aisha", "country": "Saudi Arabia", "baseCurrency": "SAR"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, http.MethodGet, ts.URL+"/api/profiles", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profiles []model.UserProfile
	require.NoError(t, json.Unmarshal(body, &profiles))
	require.Len(t, profiles, 1)
	assert.Equal(t, "p1", profiles[0].ID)
	assert.Equal(t, "SAR", profiles[0].BaseCurrency)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.EnableMetrics()
	h := srv.Handler()

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte(`novatax_http_requests_total{method="GET",route="/health",status="200"}`)))
}

func TestMetricsDisabledByDefault(t *testing.T) {
	_, ts := newTestServer(t)

	resp, _ := do(t, http.MethodGet, ts.URL+"/metrics", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
