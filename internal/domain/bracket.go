package domain

import "time"

// BracketData describes one cosmetic bracket pair from the preset catalog.
type BracketData struct {
	ID          string  `json:"id"`
	Left        string  `json:"left"`
	Right       string  `json:"right"`
	DisplayName string  `json:"displayName,omitempty"`
	PriceMoney  float64 `json:"priceMoney,omitempty"`
	PricePoints int     `json:"pricePoints,omitempty"`
	Permission  string  `json:"permission,omitempty"`
	Category    string  `json:"category,omitempty"`
	// Default brackets are owned by every player without a purchase row.
	Default bool `json:"default,omitempty"`
}

func (b BracketData) RequiresMoney() bool {
	return b.PriceMoney > 0
}

func (b BracketData) RequiresPoints() bool {
	return b.PricePoints > 0
}

func (b BracketData) RequiresPermission() bool {
	return b.Permission != ""
}

func (b BracketData) Free() bool {
	return b.PriceMoney == 0 && b.PricePoints == 0
}

func (b BracketData) Preview() string {
	return b.Left + "Title" + b.Right
}

// BracketRecord is one owned bracket row.
type BracketRecord struct {
	BracketID  string
	ObtainedAt time.Time
}
