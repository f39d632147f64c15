package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseRunID tests run ID parsing
func TestParseRunID(t *testing.T) {
	valid := NewRunID().String()
	tests := []struct {
		input    string
		expected RunID
		hasError bool
	}{
		{valid, RunID(valid), false},
		{"run-123", "", true},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseRunID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

func TestComputeInputHash_OrderIndependent(t *testing.T) {
	a := ComputeInputHash([]string{"dir/a.tsv", "dir/b.tsv"})
	b := ComputeInputHash([]string{"dir/b.tsv", "dir/a.tsv"})
	if a != b {
		t.Errorf("Expected identical hashes, got %s vs %s", a, b)
	}
	c := ComputeInputHash([]string{"dir/a.tsv"})
	if a == c {
		t.Error("Expected different inputs to hash differently")
	}
	if len(a.Short()) != 12 {
		t.Errorf("Expected 12-char short hash, got %q", a.Short())
	}
}

func TestErrorHelpers(t *testing.T) {
	err := NewMissingColumnError("res.tsv", "c1_theta")
	if !errors.Is(err, ErrMissingColumn) || !IsSchemaError(err) {
		t.Errorf("Expected missing column error, got %v", err)
	}
	if IsNumericError(err) {
		t.Error("Missing column must not be a numeric error")
	}
	if !IsNumericError(NewDivisionByZeroError("nfeature")) {
		t.Error("Expected division by zero to be numeric")
	}
	if !IsMalformedKeyError(NewMalformedKeyError("x", "odd token count")) {
		t.Error("Expected malformed key error")
	}
}
