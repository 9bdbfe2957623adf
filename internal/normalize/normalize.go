// Package normalize maps provider-specific fundamentals payloads onto the
// canonical model.Fundamentals record.
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"MarketOverview/internal/collector"
	"MarketOverview/internal/model"
)

// MaxCompetitors caps the peer list kept from a payload.
const MaxCompetitors = 10

// Result is a normalized fundamentals payload.
type Result struct {
	Fundamentals model.Fundamentals
	Competitors  []string
}

// Record converts the result into its cached form.
func (r Result) Record() model.FundamentalsRecord {
	comps := r.Competitors
	if comps == nil {
		comps = []string{}
	}
	return model.FundamentalsRecord{Fundamentals: r.Fundamentals, Competitors: comps}
}

// Normalize extracts every canonical field it can find. Fields no source
// supplies stay unknown. The only error is an undecodable payload.
func Normalize(raw collector.RawPayload, self string) (Result, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Result{}, fmt.Errorf("decode fundamentals: %w", err)
	}
	// Some providers return a one-element list.
	if list, ok := doc.([]any); ok && len(list) > 0 {
		doc = list[0]
	}
	if _, ok := doc.(map[string]any); !ok {
		return Result{}, fmt.Errorf("decode fundamentals: expected object, got %T", doc)
	}
	doc = fold(doc)

	values := make(map[string]any, len(fieldMap))
	for _, fm := range fieldMap {
		for _, src := range fm.sources {
			if v, ok := src.lookup(doc); ok && usable(v, fm.numeric) {
				values[fm.field] = v
				break
			}
		}
	}

	f := model.Fundamentals{
		Name:             text(values[FieldName]),
		Country:          text(values[FieldCountry]),
		Sector:           text(values[FieldSector]),
		Industry:         text(values[FieldIndustry]),
		MarketCap:        number(values[FieldMarketCap]),
		PERatio:          number(values[FieldPERatio]),
		EPS:              number(values[FieldEPS]),
		ProfitMargin:     number(values[FieldProfitMargin]),
		EBITDA:           number(values[FieldEBITDA]),
		TotalAssets:      number(values[FieldTotalAssets]),
		TotalLiabilities: number(values[FieldTotalLiabilities]),
		BookValue:        number(values[FieldBookValue]),
		Description:      text(values[FieldDescription]),
	}
	return Result{Fundamentals: f, Competitors: competitors(doc, self)}, nil
}

// fold rewrites every object key with collector.FoldKey, recursively.
func fold(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[collector.FoldKey(k)] = fold(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = fold(inner)
		}
		return out
	}
	return v
}

// usable reports whether v can fill a field. Numeric fields only take
// values ParseNumber accepts, so a later path can still supply one.
func usable(v any, numeric bool) bool {
	switch t := v.(type) {
	case nil, map[string]any, []any:
		return false
	case string:
		_, isNum := collector.ParseNumber(t)
		return isNum || (!numeric && !placeholder(t))
	}
	if numeric {
		_, isNum := collector.ParseNumber(v)
		return isNum
	}
	return true
}

func placeholder(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "na", "n/a", "none", "null", "nan", "-", "unknown":
		return true
	}
	return false
}

func text(v any) model.Text {
	switch t := v.(type) {
	case string:
		if placeholder(t) {
			return model.Text{}
		}
		return model.Str(strings.TrimSpace(t))
	case float64:
		return model.Str(strconv.FormatFloat(t, 'f', -1, 64))
	}
	return model.Text{}
}

func number(v any) model.Number {
	if f, ok := collector.ParseNumber(v); ok {
		return model.Num(f)
	}
	return model.Number{}
}

// competitors reads the peer list: strings or objects carrying a code,
// de-duplicated, without self, capped at MaxCompetitors.
func competitors(doc any, self string) []string {
	var list []any
	for _, p := range competitorPaths {
		v, ok := lookupList(doc, p)
		if ok {
			list = v
			break
		}
	}
	seen := map[string]bool{strings.ToUpper(self): true}
	out := []string{}
	for _, item := range list {
		code := ""
		switch t := item.(type) {
		case string:
			code = t
		case map[string]any:
			for _, k := range []string{"code", "ticker", "symbol"} {
				if s, ok := t[k].(string); ok && s != "" {
					code = s
					break
				}
			}
			if ex, ok := t["exchange"].(string); ok && ex != "" && code != "" && !strings.Contains(code, ".") {
				code += "." + ex
			}
		}
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
		if len(out) == MaxCompetitors {
			break
		}
	}
	return out
}

func lookupList(doc any, p path) ([]any, bool) {
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, false
	}
	cur := any(m)
	for _, seg := range strings.Split(strings.TrimPrefix(string(p), "$."), ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur = obj[seg]
	}
	list, ok := cur.([]any)
	return list, ok && len(list) > 0
}
