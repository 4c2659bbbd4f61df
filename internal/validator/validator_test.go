package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func newValidate() *validator.Validate {
	v := validator.New()
	RegisterOn(v)
	return v
}

func TestScheduleTags(t *testing.T) {
	type schedule struct {
		Frequency string `validate:"required,frequency"`
		Weekday   *int   `validate:"omitempty,weekday"`
		Day       *int   `validate:"omitempty,anchor_day"`
		Month     *int   `validate:"omitempty,month"`
	}
	n := func(i int) *int { return &i }

	tests := []struct {
		name  string
		input schedule
		valid bool
	}{
		{"weekly_monday", schedule{Frequency: "weekly", Weekday: n(1)}, true},
		{"weekly_sunday", schedule{Frequency: "weekly", Weekday: n(7)}, true},
		{"weekday_zero", schedule{Frequency: "weekly", Weekday: n(0)}, false},
		{"weekday_eight", schedule{Frequency: "weekly", Weekday: n(8)}, false},
		{"monthly_28", schedule{Frequency: "monthly", Day: n(28)}, true},
		{"monthly_29", schedule{Frequency: "monthly", Day: n(29)}, false},
		{"yearly", schedule{Frequency: "yearly", Month: n(12), Day: n(1)}, true},
		{"month_13", schedule{Frequency: "yearly", Month: n(13), Day: n(1)}, false},
		{"unknown_frequency", schedule{Frequency: "daily"}, false},
	}

	v := newValidate()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEnumTags(t *testing.T) {
	type payload struct {
		Type     string `validate:"omitempty,transaction_type"`
		Source   string `validate:"omitempty,transaction_source"`
		Category string `validate:"omitempty,category_type"`
		Color    string `validate:"omitempty,hex_color"`
	}

	tests := []struct {
		name  string
		input payload
		valid bool
	}{
		{"all_valid", payload{Type: "expense", Source: "recurring", Category: "income", Color: "#FF00aa"}, true},
		{"short_color", payload{Color: "#abc"}, true},
		{"bad_type", payload{Type: "transfer"}, false},
		{"bad_source", payload{Source: "imported"}, false},
		{"bad_category", payload{Category: "asset"}, false},
		{"bad_color", payload{Color: "red"}, false},
	}

	v := newValidate()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
