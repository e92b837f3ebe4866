// Package testutil provides common utility functions for testing.
package testutil

// FindByName finds an item by name in the results slice.
// Returns a pointer to the item if found, nil otherwise.
func FindByName[T any](results []T, name string, nameOf func(T) string) *T {
	for i := range results {
		if nameOf(results[i]) == name {
			return &results[i]
		}
	}
	return nil
}

// FloatPtr returns a pointer to v, for building forms in tests.
func FloatPtr(v float64) *float64 {
	return &v
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
