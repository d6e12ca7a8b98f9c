package util

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestParseID(t *testing.T) {
	valid := uuid.New()

	cases := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"canonical", valid.String(), false},
		{"surrounding spaces", "  " + valid.String() + " ", false},
		{"empty", "", true},
		{"garbage", "not-a-uuid", true},
		{"nil uuid", uuid.Nil.String(), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ParseID(tc.in)
			if tc.wantErr {
				if !IsInvalidID(err) {
					t.Fatalf("expected InvalidIDError for %q, got %v", tc.in, err)
				}
				if !errors.Is(err, &InvalidIDError{}) {
					t.Fatalf("errors.Is should match any InvalidIDError")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != valid {
				t.Fatalf("expected %s, got %s", valid, id)
			}
		})
	}
}
