package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexInt decodes a JSON number or a numeric string. Anything else,
// including null, decodes to an invalid value rather than an error.
type FlexInt struct {
	Value int
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	*f = FlexInt{}
	if isNull(data) {
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		f.Value, f.Valid = n, true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			f.Value, f.Valid = n, true
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Value)), nil
}

// Ptr returns the value as a pointer, nil when invalid.
func (f FlexInt) Ptr() *int {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// FlexString decodes a JSON string or a number into its string form.
type FlexString struct {
	Value string
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	*f = FlexString{}
	if isNull(data) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Value, f.Valid = s, true
		return nil
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		f.Value, f.Valid = n.String(), true
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexString) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Ptr returns the value as a pointer, nil when invalid.
func (f FlexString) Ptr() *string {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// CardBrief is the short card form returned by list endpoints.
type CardBrief struct {
	ID      string  `json:"id"`
	LocalID string  `json:"localId"`
	Name    string  `json:"name"`
	Image   *string `json:"image,omitempty"`
}

// SetID derives the set id from the card id ("{setId}-{localId}").
func (b CardBrief) SetID() string {
	if b.LocalID != "" {
		if prefix, ok := strings.CutSuffix(b.ID, "-"+b.LocalID); ok {
			return prefix
		}
	}
	if i := strings.LastIndex(b.ID, "-"); i > 0 {
		return b.ID[:i]
	}
	return ""
}

// CardDetail is the full card payload of GET /cards/{id}.
type CardDetail struct {
	ID             string         `json:"id"`
	LocalID        string         `json:"localId"`
	Name           string         `json:"name"`
	Image          *string        `json:"image,omitempty"`
	Category       *string        `json:"category,omitempty"`
	HP             FlexInt        `json:"hp"`
	Types          []string       `json:"types,omitempty"`
	EvolveFrom     *string        `json:"evolveFrom,omitempty"`
	Description    *string        `json:"description,omitempty"`
	Level          *string        `json:"level,omitempty"`
	Stage          *string        `json:"stage,omitempty"`
	Abilities      []RawAbility   `json:"abilities,omitempty"`
	Attacks        []RawAttack    `json:"attacks,omitempty"`
	Weaknesses     []RawTypeValue `json:"weaknesses,omitempty"`
	Resistances    []RawTypeValue `json:"resistances,omitempty"`
	Retreat        FlexInt        `json:"retreat"`
	Set            SetBrief       `json:"set"`
	Rarity         *string        `json:"rarity,omitempty"`
	Illustrator    *string        `json:"illustrator,omitempty"`
	RegulationMark *string        `json:"regulationMark,omitempty"`
	Effect         *string        `json:"effect,omitempty"`
	TrainerType    *string        `json:"trainerType,omitempty"`
	Legal          *Legal         `json:"legal,omitempty"`
}

// RawAbility is an ability as delivered by the catalog.
type RawAbility struct {
	Type   *string `json:"type,omitempty"`
	Name   string  `json:"name"`
	Effect string  `json:"effect"`
}

// RawAttack is an attack as delivered by the catalog. Damage may be a
// number or a string such as "30+".
type RawAttack struct {
	Cost   []string   `json:"cost,omitempty"`
	Name   string     `json:"name"`
	Effect *string    `json:"effect,omitempty"`
	Damage FlexString `json:"damage"`
}

// RawTypeValue is a weakness or resistance entry.
type RawTypeValue struct {
	Type  string     `json:"type"`
	Value FlexString `json:"value"`
}

// Legal carries format legality flags.
type Legal struct {
	Standard *bool `json:"standard,omitempty"`
	Expanded *bool `json:"expanded,omitempty"`
}

// CardCount holds the printed and total card counts of a set.
type CardCount struct {
	Total    *int `json:"total,omitempty"`
	Official int  `json:"official"`
	Normal   *int `json:"normal,omitempty"`
	Reverse  *int `json:"reverse,omitempty"`
	Holo     *int `json:"holo,omitempty"`
	FirstEd  *int `json:"firstEd,omitempty"`
}

// TotalOrOfficial returns the total count, falling back to the official one.
func (c CardCount) TotalOrOfficial() int {
	if c.Total != nil {
		return *c.Total
	}
	return c.Official
}

// SetBrief is the short set form returned by GET /sets and embedded in cards.
type SetBrief struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Logo      *string    `json:"logo,omitempty"`
	Symbol    *string    `json:"symbol,omitempty"`
	CardCount *CardCount `json:"cardCount,omitempty"`
}

// SerieBrief identifies the series a set belongs to.
type SerieBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SetDetail is the full set payload of GET /sets/{id}.
type SetDetail struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Logo        *string     `json:"logo,omitempty"`
	Symbol      *string     `json:"symbol,omitempty"`
	CardCount   CardCount   `json:"cardCount"`
	ReleaseDate string      `json:"releaseDate"`
	Legal       *Legal      `json:"legal,omitempty"`
	Serie       *SerieBrief `json:"serie,omitempty"`
	TCGOnline   *string     `json:"tcgOnline,omitempty"`
	Cards       []CardBrief `json:"cards,omitempty"`
}

// SearchResult is the outcome of Search. Exactly one of Cards or Sets is
// populated for a given query.
type SearchResult struct {
	Pattern SearchPattern `json:"pattern"`
	Cards   []CardBrief   `json:"cards,omitempty"`
	Sets    []SetBrief    `json:"sets,omitempty"`
}
