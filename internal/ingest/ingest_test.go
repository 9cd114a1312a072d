package ingest_test

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/awu339/LeadIn-LeadOut/internal/config"
	"github.com/awu339/LeadIn-LeadOut/internal/ingest"
)

var txHeader = []string{"sales-channel", "purchase-date", "order-status", "quantity", "item-price", "item-promotion-discount"}

func testIngestor() *ingest.Ingestor {
	cfg := config.Config{SalesChannel: "Amazon.com", OrderStatus: "Shipped"}
	return ingest.NewIngestor(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// buildSheet writes a single-sheet workbook with the given header and
// data rows and returns its bytes.
func buildSheet(t *testing.T, header []string, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	h := make([]interface{}, len(header))
	for i, v := range header {
		h[i] = v
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &h))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		copy(cells, row)
		require.NoError(t, f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+2), &cells))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestTransactionsAggregatesShippedOrders(t *testing.T) {
	b := buildSheet(t, txHeader, [][]any{
		{"Amazon.com", "2024-07-10T08:15:32+00:00", "Shipped", 2, 20.0, 0.0},
		{"Amazon.com", "2024-07-10T11:42:00+00:00", "Shipped", 1, 15.0, 0.0},
		{"Amazon.com", "2024-07-10T12:00:00+00:00", "Cancelled", 1, 99.0, 0.0},
	})

	recs, drops, err := testIngestor().Transactions(b)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), rec.Date)
	assert.EqualValues(t, 2, rec.Orders)
	assert.EqualValues(t, 3, rec.TotalUnits)
	assert.Equal(t, "35", rec.Revenue.String())
	assert.True(t, rec.PromotionDiscount.IsZero())
	assert.Equal(t, "35", rec.NetRevenue.String())
	assert.Equal(t, 1, drops.Filtered)
	assert.Equal(t, 0, drops.BadDate)
}

func TestTransactionsNetRevenueSubtractsDiscount(t *testing.T) {
	b := buildSheet(t, txHeader, [][]any{
		{"Amazon.com", "2024-07-11T00:00:00+00:00", "Shipped", 1, 50.0, 7.5},
	})

	recs, _, err := testIngestor().Transactions(b)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "42.5", recs[0].NetRevenue.String())
}

func TestTransactionsCountsBadDates(t *testing.T) {
	b := buildSheet(t, txHeader, [][]any{
		{"Amazon.com", "not a date", "Shipped", 1, 10.0, 0.0},
		{"Amazon.com", "2024-07-10", "Shipped", 1, 10.0, 0.0},
	})

	recs, drops, err := testIngestor().Transactions(b)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, 1, drops.BadDate)
}

func TestTransactionsMissingColumnFails(t *testing.T) {
	b := buildSheet(t, []string{"sales-channel", "purchase-date", "order-status", "quantity", "item-price"}, nil)

	_, _, err := testIngestor().Transactions(b)
	var schemaErr *ingest.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "transactions", schemaErr.Source)
	assert.Equal(t, "item-promotion-discount", schemaErr.Column)
}

func TestTransactionsTreatsMissingNumbersAsZero(t *testing.T) {
	b := buildSheet(t, txHeader, [][]any{
		{"Amazon.com", "2024-07-10", "Shipped", nil, nil, nil},
	})

	recs, _, err := testIngestor().Transactions(b)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.EqualValues(t, 1, recs[0].Orders)
	assert.EqualValues(t, 0, recs[0].TotalUnits)
	assert.True(t, recs[0].Revenue.IsZero())
}

func spHeader() []string {
	return []string{"Date", "Impressions", "Clicks", "Spend", "7 Day Total Orders (#)", "7 Day Total Sales "}
}

func sbHeader() []string {
	return []string{"Date", "Impressions", "Clicks", "Spend", "14 Day Total Orders (#)", "14 Day Total Sales "}
}

func TestCampaignsSerialDate(t *testing.T) {
	// Serial 45483 is 2024-07-10 in the 1899-12-30 epoch convention.
	b := buildSheet(t, spHeader(), [][]any{
		{45483, 1000, 40, 12.5, 3, 60.0},
	})

	recs, _, err := testIngestor().Campaigns(b, nil, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), recs[0].Date)
	assert.EqualValues(t, 1000, recs[0].Impressions)
	assert.EqualValues(t, 40, recs[0].Clicks)
	assert.EqualValues(t, 3, recs[0].CampaignOrders)
	assert.Equal(t, "12.5", recs[0].CampaignSpend.String())
	assert.Equal(t, "60", recs[0].CampaignSales.String())
}

func TestCampaignsTextDate(t *testing.T) {
	b := buildSheet(t, spHeader(), [][]any{
		{"2024-07-10", 10, 1, 1.0, 0, 0.0},
	})

	recs, _, err := testIngestor().Campaigns(b, nil, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), recs[0].Date)
}

func TestCampaignsSumAcrossProducts(t *testing.T) {
	sp := buildSheet(t, spHeader(), [][]any{
		{"2024-07-10", 1000, 40, 10.0, 2, 30.0},
		{"2024-07-11", 500, 20, 5.0, 1, 20.0},
	})
	sb := buildSheet(t, sbHeader(), [][]any{
		{"2024-07-10", 200, 10, 4.0, 1, 15.0},
	})

	recs, _, err := testIngestor().Campaigns(sp, sb, nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.EqualValues(t, 1200, recs[0].Impressions)
	assert.EqualValues(t, 50, recs[0].Clicks)
	assert.EqualValues(t, 3, recs[0].CampaignOrders)
	assert.Equal(t, "14", recs[0].CampaignSpend.String())
	assert.Equal(t, "45", recs[0].CampaignSales.String())

	assert.EqualValues(t, 500, recs[1].Impressions)
}

func TestCampaignsAllSourcesOptional(t *testing.T) {
	recs, drops, err := testIngestor().Campaigns(nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Zero(t, drops.BadDate)
}

func TestCampaignsMissingColumnFails(t *testing.T) {
	sb := buildSheet(t, []string{"Date", "Impressions", "Clicks", "Spend", "14 Day Total Sales "}, nil)

	_, _, err := testIngestor().Campaigns(nil, sb, nil)
	var schemaErr *ingest.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "sponsored-brands", schemaErr.Source)
	assert.Equal(t, "14 Day Total Orders (#)", schemaErr.Column)
}
