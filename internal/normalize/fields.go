package normalize

import (
	"sort"

	"github.com/PaesslerAG/jsonpath"
)

// source extracts one candidate value from a key-folded document.
type source interface {
	lookup(doc any) (any, bool)
}

// path is a jsonpath expression over the folded document.
type path string

func (p path) lookup(doc any) (any, bool) {
	v, err := jsonpath.Get(string(p), doc)
	if err != nil || v == nil {
		return nil, false
	}
	// jsonpath may wrap a single answer in a list; keep the first one.
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil, false
		}
		v = list[0]
	}
	return v, v != nil
}

// latest reads field from the most recent period of a date-keyed map such
// as Financials.Balance_Sheet.yearly.
type latest struct {
	periods string
	field   string
}

func (l latest) lookup(doc any) (any, bool) {
	v, err := jsonpath.Get(l.periods, doc)
	if err != nil {
		return nil, false
	}
	byDate, ok := v.(map[string]any)
	if !ok || len(byDate) == 0 {
		return nil, false
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	for _, d := range dates {
		period, ok := byDate[d].(map[string]any)
		if !ok {
			continue
		}
		if val, ok := period[l.field]; ok && val != nil {
			return val, true
		}
	}
	return nil, false
}

// Canonical field names, as they appear in the mapping table and in JSON.
const (
	FieldName             = "name"
	FieldCountry          = "country"
	FieldSector           = "sector"
	FieldIndustry         = "industry"
	FieldMarketCap        = "market_cap"
	FieldPERatio          = "pe_ratio"
	FieldEPS              = "eps"
	FieldProfitMargin     = "profit_margin"
	FieldEBITDA           = "ebitda"
	FieldTotalAssets      = "total_assets"
	FieldTotalLiabilities = "total_liabilities"
	FieldBookValue        = "book_value"
	FieldDescription      = "description"
)

// fieldMap lists, per canonical field, the source paths tried in order.
// Paths address the key-folded document: lower case, no separators.
var fieldMap = []struct {
	field   string
	numeric bool
	sources []source
}{
	{FieldName, false, []source{path("$.general.name"), path("$.name"), path("$.companyname")}},
	{FieldCountry, false, []source{path("$.general.countryname"), path("$.general.country"), path("$.country"), path("$.general.countryiso")}},
	{FieldSector, false, []source{path("$.general.sector"), path("$.sector"), path("$.general.gicsector")}},
	{FieldIndustry, false, []source{path("$.general.industry"), path("$.industry"), path("$.general.gicindustry")}},
	{FieldMarketCap, true, []source{path("$.highlights.marketcapitalization"), path("$.marketcapitalization"), path("$.marketcap"), path("$.general.marketcapitalization")}},
	{FieldPERatio, true, []source{path("$.highlights.peratio"), path("$.valuation.trailingpe"), path("$.peratio"), path("$.pe")}},
	{FieldEPS, true, []source{path("$.highlights.earningsshare"), path("$.highlights.dilutedepsttm"), path("$.eps"), path("$.earningsshare")}},
	{FieldProfitMargin, true, []source{path("$.highlights.profitmargin"), path("$.profitmargin")}},
	{FieldEBITDA, true, []source{path("$.highlights.ebitda"), path("$.ebitda")}},
	{FieldTotalAssets, true, []source{
		latest{"$.financials.balancesheet.yearly", "totalassets"},
		latest{"$.financials.balancesheet.quarterly", "totalassets"},
		path("$.totalassets"),
	}},
	{FieldTotalLiabilities, true, []source{
		latest{"$.financials.balancesheet.yearly", "totalliab"},
		latest{"$.financials.balancesheet.yearly", "totalliabilities"},
		latest{"$.financials.balancesheet.quarterly", "totalliab"},
		path("$.totalliabilities"),
		path("$.totalliab"),
	}},
	{FieldBookValue, true, []source{path("$.highlights.bookvalue"), path("$.bookvalue"), path("$.valuation.bookvalue")}},
	{FieldDescription, false, []source{path("$.general.description"), path("$.description"), path("$.summary")}},
}

// competitorPaths locate the peer list.
var competitorPaths = []path{"$.competitors", "$.general.competitors", "$.peers", "$.general.peers"}
