package ingest

import (
	"fmt"
	"strings"
)

// Canonical field keys shared by the schema descriptors and the readers.
const (
	fieldDate           = "date"
	fieldChannel        = "sales_channel"
	fieldStatus         = "order_status"
	fieldQuantity       = "quantity"
	fieldItemPrice      = "item_price"
	fieldItemDiscount   = "item_promotion_discount"
	fieldImpressions    = "impressions"
	fieldClicks         = "clicks"
	fieldSpend          = "campaign_spend"
	fieldCampaignOrders = "campaign_orders"
	fieldCampaignSales  = "campaign_sales"
)

// Column maps one spreadsheet header to a canonical field. Headers are
// compared after trimming surrounding whitespace; the ad-product exports
// ship headers with trailing spaces.
type Column struct {
	Header   string
	Field    string
	Required bool
}

// SourceSchema describes one input spreadsheet: which columns to read and
// which of them must be present.
type SourceSchema struct {
	Source  string
	Columns []Column
}

// SchemaError reports a required column missing from a source. It aborts
// the whole ingestion run; proceeding without a core field would corrupt
// every downstream ratio.
type SchemaError struct {
	Source string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("source %s: required column %q not found", e.Source, e.Column)
}

var transactionSchema = SourceSchema{
	Source: "transactions",
	Columns: []Column{
		{Header: "sales-channel", Field: fieldChannel, Required: true},
		{Header: "purchase-date", Field: fieldDate, Required: true},
		{Header: "order-status", Field: fieldStatus, Required: true},
		{Header: "quantity", Field: fieldQuantity, Required: true},
		{Header: "item-price", Field: fieldItemPrice, Required: true},
		{Header: "item-promotion-discount", Field: fieldItemDiscount, Required: true},
	},
}

// campaignSchema builds the descriptor for one ad-product export. The
// three products share a layout and differ only in the attribution-window
// prefix of the orders/sales headers (7 days for SP, 14 for SB and SD).
func campaignSchema(source string, windowDays int) SourceSchema {
	return SourceSchema{
		Source: source,
		Columns: []Column{
			{Header: "Date", Field: fieldDate, Required: true},
			{Header: "Impressions", Field: fieldImpressions, Required: true},
			{Header: "Clicks", Field: fieldClicks, Required: true},
			{Header: "Spend", Field: fieldSpend, Required: true},
			{Header: fmt.Sprintf("%d Day Total Orders (#)", windowDays), Field: fieldCampaignOrders, Required: true},
			{Header: fmt.Sprintf("%d Day Total Sales", windowDays), Field: fieldCampaignSales, Required: true},
		},
	}
}

// resolve locates each schema column in the header row and returns a
// field→column-index map. A missing required column is a *SchemaError.
func (s SourceSchema) resolve(header []string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.TrimSpace(h)] = i
	}
	out := make(map[string]int, len(s.Columns))
	for _, c := range s.Columns {
		i, ok := byName[strings.TrimSpace(c.Header)]
		if !ok {
			if c.Required {
				return nil, &SchemaError{Source: s.Source, Column: c.Header}
			}
			continue
		}
		out[c.Field] = i
	}
	return out, nil
}
