package model

// Fundamentals is the canonical company record. Every field is always
// present; values no source could supply are unknown rather than zero.
type Fundamentals struct {
	Name             Text   `json:"name"`
	Country          Text   `json:"country"`
	Sector           Text   `json:"sector"`
	Industry         Text   `json:"industry"`
	MarketCap        Number `json:"market_cap"`
	PERatio          Number `json:"pe_ratio"`
	EPS              Number `json:"eps"`
	ProfitMargin     Number `json:"profit_margin"`
	EBITDA           Number `json:"ebitda"`
	TotalAssets      Number `json:"total_assets"`
	TotalLiabilities Number `json:"total_liabilities"`
	BookValue        Number `json:"book_value"`
	Description      Text   `json:"description"`
}

// Known reports whether at least one field carries a value.
func (f Fundamentals) Known() bool {
	for _, t := range []Text{f.Name, f.Country, f.Sector, f.Industry, f.Description} {
		if t.Known {
			return true
		}
	}
	for _, n := range []Number{f.MarketCap, f.PERatio, f.EPS, f.ProfitMargin, f.EBITDA,
		f.TotalAssets, f.TotalLiabilities, f.BookValue} {
		if n.Known {
			return true
		}
	}
	return false
}

// FundamentalsRecord is the cached unit: fundamentals plus the peer list the
// provider returned alongside them.
type FundamentalsRecord struct {
	Fundamentals Fundamentals `json:"fundamentals"`
	Competitors  []string     `json:"competitors"`
}
