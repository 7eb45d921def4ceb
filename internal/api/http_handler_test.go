package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"materials-quote-service/internal/catalog"
	"materials-quote-service/internal/compliance"
	"materials-quote-service/internal/domain"
	"materials-quote-service/internal/quote"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	rows := []domain.RawCatalogRecord{
		{Code: "P2", Supplier: "ITM", Name: "125X125 H5 PILE 2.4M", Price: decimal.RequireFromString("45.00"), Unit: "EA"},
		{Code: "P1", Supplier: "ITM", Name: "100X100 H4 POST 2.4M", Price: decimal.RequireFromString("32.00"), Unit: "EA"},
		{Code: "J1", Supplier: "ITM", Name: "190X45 H3.2 RAD SG8 JOIST 4.8M", Price: decimal.RequireFromString("61.00"), Unit: "EA"},
		{Code: "D1", Supplier: "ITM", Name: "140X32 H3.2 RAD DECKING 5.4M", Price: decimal.RequireFromString("24.50"), Unit: "EA"},
		{Code: "S1", Supplier: "ITM", Name: "10G X 65MM DECK SCREW SS 316 BOX 500", Price: decimal.RequireFromString("119.00"), Unit: "BOX", UnitsPerPackage: 500},
	}
	records, errs := catalog.Ingest(rows)
	require.Empty(t, errs)
	th := compliance.DefaultThresholds()
	resolver, err := catalog.NewResolver(catalog.BuildIndex(records), catalog.WithThresholds(th), catalog.WithMemo(32))
	require.NoError(t, err)
	return NewEngine(resolver, quote.NewService(resolver, th, "NZD"), th)
}

// Helper for setting up tests with a chi router and handler
func setupTestChiServer(t *testing.T) *httptest.Server {
	handler := NewHTTPHandler(newTestEngine(t))
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return httptest.NewServer(router)
}

func postJSON(t *testing.T, url string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	return res
}

func decodeError(t *testing.T, res *http.Response) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&e))
	return e
}

func TestHTTPHandler_ExtractAttributes_Success(t *testing.T) {
	server := setupTestChiServer(t)
	defer server.Close()

	res := postJSON(t, server.URL+"/api/v1/attributes/extract", ExtractInput{Names: []string{"100x100 H4 Post 2.4m"}})
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var resp ExtractResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	require.Len(t, resp.Items, 1)
	attrs := resp.Items[0].Attributes
	assert.Equal(t, domain.TypePost, attrs.Type)
	require.NotNil(t, attrs.Treatment)
	assert.Equal(t, domain.H4, *attrs.Treatment)
	require.NotNil(t, attrs.Timber)
	assert.Equal(t, 100, attrs.Timber.Width)
	require.NotNil(t, attrs.LengthMM)
	assert.Equal(t, 2400, *attrs.LengthMM)
}

func TestHTTPHandler_ExtractAttributes_ValidationError(t *testing.T) {
	server := setupTestChiServer(t)
	defer server.Close()

	res := postJSON(t, server.URL+"/api/v1/attributes/extract", ExtractInput{Names: []string{}})
	defer res.Body.Close()

	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, decodeError(t, res).Error, "Validation failed")
}

func TestHTTPHandler_InvalidPayload(t *testing.T) {
	server := setupTestChiServer(t)
	defer server.Close()

	res, err := http.Post(server.URL+"/api/v1/quotes", "application/json", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, decodeError(t, res).Error, "Invalid request payload")
}

func TestHTTPHandler_SearchCatalog(t *testing.T) {
	server := setupTestChiServer(t)
	defer server.Close()

	res, err := http.Get(server.URL + "/api/v1/catalog/search?q=joist&limit=5")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var resp SearchResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	assert.Equal(t, "joist", resp.Query)
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, "ITM:J1", resp.Candidates[0].Record.ID)
	assert.Equal(t, 1.0, resp.Candidates[0].Confidence)
}

func TestHTTPHandler_SearchCatalog_MissingQuery(t *testing.T) {
	server := setupTestChiServer(t)
	defer server.Close()

	res, err := http.Get(server.URL + "/api/v1/catalog/search")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestHTTPHandler_GetRecord(t *testing.T) {
	server := setupTestChiServer(t)
	defer server.Close()

	res, err := http.Get(server.URL + "/api/v1/catalog/records/ITM:P1")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var rec domain.CatalogRecord
	require.NoError(t, json.NewDecoder(res.Body).Decode(&rec))
	assert.Equal(t, "100X100 H4 POST 2.4M", rec.Name)
	assert.True(t, decimal.RequireFromString("32").Equal(rec.Price))

	missing, err := http.Get(server.URL + "/api/v1/catalog/records/ITM:NOPE")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestHTTPHandler_ResolveItems(t *testing.T) {
	server := setupTestChiServer(t)
	defer server.Close()

	input := ResolveInput{Suggestions: []domain.Suggestion{
		{Name: "Piles", SearchTerm: "125x125 H5 pile", QtyToOrder: 6},
		{Name: "Mystery", SearchTerm: "flux capacitor", QtyToOrder: 1},
		{Name: "More piles", SearchTerm: "125x125 H5 pile", QtyToOrder: 2},
	}}
	res := postJSON(t, server.URL+"/api/v1/quotes/resolve", input)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var resp ResolveResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 1, resp.Matched)
	assert.Equal(t, 1, resp.Unmatched)
	assert.Equal(t, 8, resp.Items[0].Quantity)
	assert.NotEmpty(t, resp.Items[1].Suggestions)
}

func TestHTTPHandler_ResolveItems_FromAIResponse(t *testing.T) {
	server := setupTestChiServer(t)
	defer server.Close()

	ai := "Here is the list:\n```json\n[{\"name\":\"Posts\",\"searchTerm\":\"100x100 H4 post\",\"qtyToOrder\":\"4\"}]\n```"
	res := postJSON(t, server.URL+"/api/v1/quotes/resolve", ResolveInput{AIResponse: ai})
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var resp ResolveResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "ITM:P1", resp.Items[0].Record.ID)
	assert.Equal(t, 4, resp.Items[0].Quantity)
}

func TestHTTPHandler_ResolveItems_Malformed(t *testing.T) {
	server := setupTestChiServer(t)
	defer server.Close()

	res := postJSON(t, server.URL+"/api/v1/quotes/resolve", ResolveInput{AIResponse: "sorry, I cannot help"})
	defer res.Body.Close()

	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, quote.ErrMalformedAIResponse.Error(), decodeError(t, res).Error)
}

func TestHTTPHandler_ValidateQuote_Empty(t *testing.T) {
	server := setupTestChiServer(t)
	defer server.Close()

	res := postJSON(t, server.URL+"/api/v1/quotes/validate", ValidateInput{JobType: "deck"})
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var resp ValidateResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	require.Len(t, resp.Findings, 1)
	assert.Equal(t, compliance.CodeQuoteEmpty, resp.Findings[0].Code)
	assert.Equal(t, 1, resp.Errors)
	assert.False(t, resp.Finalizable)
}

func TestHTTPHandler_ValidateQuote_MissingJobType(t *testing.T) {
	server := setupTestChiServer(t)
	defer server.Close()

	res := postJSON(t, server.URL+"/api/v1/quotes/validate", ValidateInput{})
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestHTTPHandler_BuildQuote_Success(t *testing.T) {
	server := setupTestChiServer(t)
	defer server.Close()

	input := map[string]interface{}{
		"job_type": "deck",
		"suggestions": []map[string]interface{}{
			{"name": "Piles", "searchTerm": "125x125 H5 pile", "qtyToOrder": 6},
			{"name": "Joists", "searchTerm": "190x45 H3.2 joist", "qtyToOrder": 8},
			{"name": "Decking", "searchTerm": "140x32 H3.2 decking", "totalNeeded": 38.2},
			{"name": "Screws", "searchTerm": "deck screw SS 316", "qtyToOrder": 2},
		},
		"labour":   []map[string]interface{}{{"description": "Build deck", "hours": 23.5, "rate": "85"}},
		"geometry": map[string]interface{}{"length": 6, "width": 4, "height": 600},
	}
	res := postJSON(t, server.URL+"/api/v1/quotes", input)
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var q quote.Quote
	require.NoError(t, json.NewDecoder(res.Body).Decode(&q))
	require.Len(t, q.Items, 5)
	assert.True(t, q.Finalizable)
	assert.Empty(t, q.Report.Findings)
	assert.True(t, decimal.RequireFromString("3991.50").Equal(q.Total), q.Total.String())
	require.NotNil(t, q.Span)
	assert.Equal(t, "140x45", q.Span.JoistSize)
}

func TestHTTPHandler_BuildQuote_NoItems(t *testing.T) {
	server := setupTestChiServer(t)
	defer server.Close()

	res := postJSON(t, server.URL+"/api/v1/quotes", QuoteInput{JobType: "deck"})
	defer res.Body.Close()

	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, quote.ErrNoSuggestions.Error(), decodeError(t, res).Error)
}

func TestHTTPHandler_SizeDeck(t *testing.T) {
	server := setupTestChiServer(t)
	defer server.Close()

	res := postJSON(t, server.URL+"/api/v1/structural/deck", map[string]float64{"length": 6, "width": 4, "height": 600})
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var span domain.SpanResult
	require.NoError(t, json.NewDecoder(res.Body).Decode(&span))
	assert.Equal(t, "140x45", span.JoistSize)
	assert.Equal(t, 24.0, span.AreaM2)
}

func TestHTTPHandler_SizeDeck_MissingWidth(t *testing.T) {
	server := setupTestChiServer(t)
	defer server.Close()

	res := postJSON(t, server.URL+"/api/v1/structural/deck", map[string]float64{"length": 6})
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
