package domain

import (
	"encoding/json"
	"time"
)

type TitleType string

const (
	TitlePreset TitleType = "PRESET"
	TitleCustom TitleType = "CUSTOM"
)

// TitleData is the serialized snapshot stored in the title_data column. It is
// shared between player-owned rows and the preset catalog. Decoding tolerates
// unknown and missing fields so rows written by older or newer builds stay
// readable.
type TitleData struct {
	Contents     []string  `json:"contents"`
	BracketLeft  string    `json:"bracketLeft"`
	BracketRight string    `json:"bracketRight"`
	Prefix       string    `json:"prefix"`
	Suffix       string    `json:"suffix"`
	Type         TitleType `json:"type"`
	DisplayName  string    `json:"displayName,omitempty"`
	PriceMoney   float64   `json:"priceMoney,omitempty"`
	PricePoints  int       `json:"pricePoints,omitempty"`
	Permission   string    `json:"permission,omitempty"`
	Category     string    `json:"category,omitempty"`
}

func NewTitleData() TitleData {
	return TitleData{
		Contents:     []string{},
		BracketLeft:  "[",
		BracketRight: "]",
		Type:         TitleCustom,
		Category:     "default",
	}
}

func NewCustomTitle(contents []string, bracketLeft, bracketRight string) TitleData {
	d := NewTitleData()
	d.Contents = contents
	d.BracketLeft = bracketLeft
	d.BracketRight = bracketRight
	return d
}

// DecodeTitleData parses a title_data snapshot, applying defaults for any
// missing field. An empty payload yields a zero-value custom title.
func DecodeTitleData(raw string) TitleData {
	d := NewTitleData()
	if raw == "" {
		return d
	}
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return NewTitleData()
	}
	if d.Contents == nil {
		d.Contents = []string{}
	}
	if d.BracketLeft == "" {
		d.BracketLeft = "["
	}
	if d.BracketRight == "" {
		d.BracketRight = "]"
	}
	if d.Type == "" {
		d.Type = TitleCustom
	}
	if d.Category == "" {
		d.Category = "default"
	}
	return d
}

func (d TitleData) Encode() string {
	b, err := json.Marshal(d)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// IsDynamic reports whether the title rotates between multiple contents.
func (d TitleData) IsDynamic() bool {
	return len(d.Contents) > 1
}

func (d TitleData) ContentCount() int {
	return len(d.Contents)
}

// Content returns the entry at index, clamped into the valid range.
func (d TitleData) Content(index int) string {
	if len(d.Contents) == 0 {
		return ""
	}
	if index < 0 {
		index = 0
	}
	if index >= len(d.Contents) {
		index = len(d.Contents) - 1
	}
	return d.Contents[index]
}

func (d TitleData) FirstContent() string {
	return d.Content(0)
}

// Formatted renders the full display string for the given content index:
// reset + left bracket + reset + prefix + content + suffix + reset + right
// bracket + reset.
func (d TitleData) Formatted(index int) string {
	return "&r" + d.BracketLeft + "&r" + d.Prefix + d.Content(index) + d.Suffix + "&r" + d.BracketRight + "&r"
}

// Raw renders the title without brackets.
func (d TitleData) Raw() string {
	return d.Prefix + d.FirstContent() + d.Suffix
}

func (d TitleData) Display() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.FirstContent()
}

func (d TitleData) RequiresMoney() bool {
	return d.PriceMoney > 0
}

func (d TitleData) RequiresPoints() bool {
	return d.PricePoints > 0
}

func (d TitleData) RequiresPermission() bool {
	return d.Permission != ""
}

// PlayerTitleRecord is one owned title row; unique per (player, title id).
type PlayerTitleRecord struct {
	TitleID    string
	Data       TitleData
	OnUse      bool
	ObtainedAt time.Time
}
