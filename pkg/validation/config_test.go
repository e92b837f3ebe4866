package validation

import (
	"math"
	"strings"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestValidateMeasurements(t *testing.T) {
	tests := []struct {
		name         string
		measurements []Measurement
		expectErr    bool
		contains     []string
	}{
		{
			name:         "All valid",
			measurements: []Measurement{{"railWidth", ptr(300)}, {"drop", ptr(250)}},
		},
		{
			name:         "Blank fields are allowed",
			measurements: []Measurement{{"railWidth", nil}, {"drop", nil}},
		},
		{
			name:         "Zero is allowed",
			measurements: []Measurement{{"pooling", ptr(0)}},
		},
		{
			name:         "Negative value",
			measurements: []Measurement{{"drop", ptr(-10)}},
			expectErr:    true,
			contains:     []string{"drop cannot be negative"},
		},
		{
			name:         "NaN and infinity",
			measurements: []Measurement{{"railWidth", ptr(math.NaN())}, {"fabricWidth", ptr(math.Inf(1))}},
			expectErr:    true,
			contains:     []string{"railWidth must be a finite number", "fabricWidth must be a finite number"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMeasurements(tt.measurements...)
			if (err != nil) != tt.expectErr {
				t.Fatalf("ValidateMeasurements() error = %v, expectErr %v", err, tt.expectErr)
			}
			for _, fragment := range tt.contains {
				if !strings.Contains(err.Error(), fragment) {
					t.Errorf("error %q missing %q", err.Error(), fragment)
				}
			}
		})
	}
}

func TestValidateQuantity(t *testing.T) {
	negative, zero, two := -1, 0, 2
	if err := ValidateQuantity(&negative); err == nil {
		t.Error("expected an error for a negative quantity")
	}
	for _, q := range []*int{nil, &zero, &two} {
		if err := ValidateQuantity(q); err != nil {
			t.Errorf("ValidateQuantity(%v) unexpected error = %v", q, err)
		}
	}
}
