package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/awu339/LeadIn-LeadOut/internal/config"
	"github.com/awu339/LeadIn-LeadOut/internal/httpx"
	"github.com/awu339/LeadIn-LeadOut/internal/pipeline"
	"github.com/awu339/LeadIn-LeadOut/internal/store"
)

func buildSheet(t *testing.T, header []string, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	h := make([]interface{}, len(header))
	for i, v := range header {
		h[i] = v
	}
	if err := f.SetSheetRow("Sheet1", "A1", &h); err != nil {
		t.Fatalf("set header: %v", err)
	}
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		copy(cells, row)
		if err := f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+2), &cells); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func newServer() *httptest.Server {
	cfg := config.Config{SalesChannel: "Amazon.com", OrderStatus: "Shipped", CacheEntries: 4}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	pipe := pipeline.New(cfg, log)
	return httptest.NewServer(httpx.NewRouter(log, pipe, store.NewMemory()))
}

func uploadFiles(t *testing.T, url string, files map[string][]byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, data := range files {
		fw, err := mw.CreateFormFile(field, field+".xlsx")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	mw.Close()

	resp, err := http.Post(url+"/ingest/run", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("post ingest: %v", err)
	}
	return resp
}

func testFiles(t *testing.T) map[string][]byte {
	tx := buildSheet(t,
		[]string{"sales-channel", "purchase-date", "order-status", "quantity", "item-price", "item-promotion-discount"},
		[][]any{
			{"Amazon.com", "2024-07-09", "Shipped", 1, 40.0, 0.0},
			{"Amazon.com", "2024-07-10", "Shipped", 2, 100.0, 10.0},
			{"Amazon.com", "2024-07-10", "Pending", 1, 99.0, 0.0},
		})
	sp := buildSheet(t,
		[]string{"Date", "Impressions", "Clicks", "Spend", "7 Day Total Orders (#)", "7 Day Total Sales "},
		[][]any{
			{"2024-07-10", 1000, 40, 12.5, 3, 60.0},
			{"2024-07-11", 400, 8, 4.0, 1, 25.0},
		})
	return map[string][]byte{"transactions": tx, "sp": sp}
}

func TestUploadAndQueryFlow(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	resp := uploadFiles(t, srv.URL, testFiles(t))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("ingest status %d: %s", resp.StatusCode, b)
	}
	var ingestResp struct {
		Days   int    `json:"days"`
		Cached bool   `json:"cached"`
		From   string `json:"from"`
		To     string `json:"to"`
		Drops  struct {
			Filtered int `json:"filtered"`
		} `json:"drops"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ingestResp); err != nil {
		t.Fatalf("decode ingest response: %v", err)
	}
	if ingestResp.Days != 3 {
		t.Fatalf("expected 3 merged days, got %d", ingestResp.Days)
	}
	if ingestResp.From != "2024-07-09" || ingestResp.To != "2024-07-11" {
		t.Fatalf("unexpected date range %s..%s", ingestResp.From, ingestResp.To)
	}
	if ingestResp.Drops.Filtered != 1 {
		t.Fatalf("expected 1 filtered row, got %d", ingestResp.Drops.Filtered)
	}

	// Daily table in display orientation.
	tableResp, err := http.Get(srv.URL + "/table?view=display")
	if err != nil {
		t.Fatalf("get table: %v", err)
	}
	defer tableResp.Body.Close()
	var table struct {
		Fields  []string `json:"fields"`
		Columns []struct {
			Date   string   `json:"date"`
			Values []string `json:"values"`
		} `json:"columns"`
	}
	if err := json.NewDecoder(tableResp.Body).Decode(&table); err != nil {
		t.Fatalf("decode table: %v", err)
	}
	if len(table.Columns) != 3 {
		t.Fatalf("expected 3 date columns, got %d", len(table.Columns))
	}
	if table.Columns[0].Date != "2024-07-09" {
		t.Fatalf("columns out of order: %s", table.Columns[0].Date)
	}

	// Period report: summary and average for two named periods.
	reportBody := `{"periods":[
		{"name":"Lead In","dates":["2024-07-09"]},
		{"name":"Discount","dates":["2024-07-10","2024-07-11"]}
	]}`
	reportResp, err := http.Post(srv.URL+"/periods/report", "application/json", strings.NewReader(reportBody))
	if err != nil {
		t.Fatalf("post report: %v", err)
	}
	defer reportResp.Body.Close()
	if reportResp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(reportResp.Body)
		t.Fatalf("report status %d: %s", reportResp.StatusCode, b)
	}
	var report struct {
		Periods []struct {
			Name             string   `json:"name"`
			SummaryFormatted []string `json:"summary_formatted"`
		} `json:"periods"`
	}
	if err := json.NewDecoder(reportResp.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.Periods) != 2 || report.Periods[0].Name != "Lead In" {
		t.Fatalf("unexpected report periods: %+v", report.Periods)
	}

	// Lift with the default pairwise comparison set.
	liftBody := `{"periods":[
		{"name":"Lead In","dates":["2024-07-09"]},
		{"name":"Discount","dates":["2024-07-10","2024-07-11"]}
	]}`
	liftResp, err := http.Post(srv.URL+"/periods/lift", "application/json", strings.NewReader(liftBody))
	if err != nil {
		t.Fatalf("post lift: %v", err)
	}
	defer liftResp.Body.Close()
	var lift struct {
		Comparisons []struct {
			Name      string   `json:"name"`
			Formatted []string `json:"formatted"`
		} `json:"comparisons"`
	}
	if err := json.NewDecoder(liftResp.Body).Decode(&lift); err != nil {
		t.Fatalf("decode lift: %v", err)
	}
	if len(lift.Comparisons) != 1 || lift.Comparisons[0].Name != "Discount → Lead In" {
		t.Fatalf("unexpected comparisons: %+v", lift.Comparisons)
	}
}

func TestEmptyPeriodRejected(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	resp := uploadFiles(t, srv.URL, testFiles(t))
	resp.Body.Close()

	body := `{"periods":[{"name":"Nothing","dates":["2030-01-01"]}]}`
	periodResp, err := http.Post(srv.URL+"/periods/report", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post report: %v", err)
	}
	defer periodResp.Body.Close()
	if periodResp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty selection, got %d", periodResp.StatusCode)
	}
}

func TestSchemaErrorSurfacesSource(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	bad := buildSheet(t, []string{"sales-channel", "purchase-date"}, nil)
	resp := uploadFiles(t, srv.URL, map[string][]byte{"transactions": bad})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for schema error, got %d", resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "transactions") {
		t.Fatalf("error should name the source: %s", b)
	}
}

func TestTransactionsRequired(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	resp := uploadFiles(t, srv.URL, map[string][]byte{})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without transactions file, got %d", resp.StatusCode)
	}
}

func TestTableExportCSV(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	resp := uploadFiles(t, srv.URL, testFiles(t))
	resp.Body.Close()

	csvResp, err := http.Get(srv.URL + "/table/export?format=csv&view=display")
	if err != nil {
		t.Fatalf("get export: %v", err)
	}
	defer csvResp.Body.Close()
	if ct := csvResp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("expected text/csv, got %s", ct)
	}
	b, _ := io.ReadAll(csvResp.Body)
	first := strings.SplitN(string(b), "\n", 2)[0]
	if !strings.HasPrefix(first, "Metric,2024-07-09") {
		t.Fatalf("unexpected csv header: %s", first)
	}
}
