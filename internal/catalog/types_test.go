package catalog

import (
	"encoding/json"
	"testing"
)

func TestFlexInt(t *testing.T) {
	tests := []struct {
		input string
		want  int
		valid bool
	}{
		{`120`, 120, true},
		{`"120"`, 120, true},
		{`" 60 "`, 60, true},
		{`"abc"`, 0, false},
		{`null`, 0, false},
		{`{}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var f FlexInt
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Valid != tt.valid || f.Value != tt.want {
				t.Errorf("got %+v, want {%d %v}", f, tt.want, tt.valid)
			}
		})
	}
}

func TestFlexString(t *testing.T) {
	tests := []struct {
		input string
		want  string
		valid bool
	}{
		{`"30+"`, "30+", true},
		{`30`, "30", true},
		{`null`, "", false},
		{`[1]`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var f FlexString
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Valid != tt.valid || f.Value != tt.want {
				t.Errorf("got %+v, want {%q %v}", f, tt.want, tt.valid)
			}
		})
	}
}

func TestCardDetail_MalformedNumericFieldsDoNotFail(t *testing.T) {
	var card CardDetail
	payload := `{"id": "x-1", "localId": "1", "name": "Old", "hp": "none", "retreat": "?", "set": {"id": "x", "name": "X"}}`
	if err := json.Unmarshal([]byte(payload), &card); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if card.HP.Valid || card.Retreat.Valid {
		t.Errorf("malformed numbers should be invalid: %+v %+v", card.HP, card.Retreat)
	}
	if card.HP.Ptr() != nil {
		t.Error("Ptr of invalid value should be nil")
	}
}

func TestCardBrief_SetID(t *testing.T) {
	tests := []struct {
		brief CardBrief
		want  string
	}{
		{CardBrief{ID: "sv03.5-025", LocalID: "025"}, "sv03.5"},
		{CardBrief{ID: "swsh12pt5gg-GG01", LocalID: "GG01"}, "swsh12pt5gg"},
		{CardBrief{ID: "base1-4"}, "base1"},
		{CardBrief{ID: "nodash"}, ""},
	}
	for _, tt := range tests {
		if got := tt.brief.SetID(); got != tt.want {
			t.Errorf("SetID(%s) = %q, want %q", tt.brief.ID, got, tt.want)
		}
	}
}
