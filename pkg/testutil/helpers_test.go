package testutil

import (
	"testing"
)

type namedItem struct {
	Name  string
	Value float64
}

func itemName(i namedItem) string { return i.Name }

func TestFindByName(t *testing.T) {
	results := []namedItem{
		{Name: "Lounge", Value: 1000.00},
		{Name: "Kitchen", Value: 2000.00},
		{Name: "Lounge bay", Value: 3000.00},
	}

	tests := []struct {
		name          string
		searchName    string
		expectFound   bool
		expectedValue float64
	}{
		{
			name:          "Find existing item",
			searchName:    "Lounge",
			expectFound:   true,
			expectedValue: 1000.00,
		},
		{
			name:          "Find second item",
			searchName:    "Kitchen",
			expectFound:   true,
			expectedValue: 2000.00,
		},
		{
			name:          "Find item with longer name",
			searchName:    "Lounge bay",
			expectFound:   true,
			expectedValue: 3000.00,
		},
		{
			name:        "Search for non-existent item",
			searchName:  "Non-existent",
			expectFound: false,
		},
		{
			name:        "Search is case sensitive",
			searchName:  "lounge",
			expectFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindByName(results, tt.searchName, itemName)
			if !tt.expectFound {
				if result != nil {
					t.Errorf("expected nil for %q, got %+v", tt.searchName, result)
				}
				return
			}
			if result == nil {
				t.Fatalf("expected to find %q", tt.searchName)
			}
			if result.Value != tt.expectedValue {
				t.Errorf("Value = %v, expected %v", result.Value, tt.expectedValue)
			}
		})
	}
}

func TestFindByNameReturnsPointerIntoSlice(t *testing.T) {
	results := []namedItem{{Name: "Lounge", Value: 1}}
	FindByName(results, "Lounge", itemName).Value = 5
	if results[0].Value != 5 {
		t.Errorf("expected the pointer to alias the slice element")
	}
}

func TestPointerHelpers(t *testing.T) {
	if f := FloatPtr(2.5); f == nil || *f != 2.5 {
		t.Errorf("FloatPtr(2.5) = %v", f)
	}
	if i := IntPtr(2); i == nil || *i != 2 {
		t.Errorf("IntPtr(2) = %v", i)
	}
}
