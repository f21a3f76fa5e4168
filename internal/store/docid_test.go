package store_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/anshulchahar/gita/internal/store"
)

func TestValidateDocumentID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		// Valid cases
		{"unit", "unit_1", nil},
		{"lesson", "lesson_2_3_4", nil},
		{"question", "q_1_1_1_storyCard_2", nil},
		{"hyphen", "journey-1", nil},
		{"max length", strings.Repeat("a", 1500), nil},

		// Invalid cases
		{"empty", "", store.ErrInvalidDocumentID},
		{"slash", "unit_1/x", store.ErrInvalidDocumentID},
		{"dot segment", "..", store.ErrInvalidDocumentID},
		{"space", "unit 1", store.ErrInvalidDocumentID},
		{"query", "unit_1?x=y", store.ErrInvalidDocumentID},
		{"too long", strings.Repeat("a", 1501), store.ErrInvalidDocumentID},
		{"reserved", "__name__", store.ErrReservedDocumentID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.ValidateDocumentID(tt.id)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocumentID(%q) unexpected error: %v", tt.id, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocumentID(%q) error = %v, want %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCollection(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"journeys", "journeys", false},
		{"with underscore", "user_progress", false},
		{"empty", "", true},
		{"uppercase", "Units", true},
		{"leading digit", "1units", true},
		{"slash", "units/unit_1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.ValidateCollection(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCollection(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}
