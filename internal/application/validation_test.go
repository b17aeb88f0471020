package application

import (
	"errors"
	"testing"

	"vaultgraph/internal/domain"
)

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		wantErr   bool
	}{
		{
			name:      "valid value",
			fieldName: "label",
			value:     "Idea",
			wantErr:   false,
		},
		{
			name:      "empty string",
			fieldName: "label",
			value:     "",
			wantErr:   true,
		},
		{
			name:      "whitespace only",
			fieldName: "nodeID",
			value:     "   ",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.fieldName, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequired() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Fatalf("expected ValidationError, got %T", err)
				}
				if valErr.Field != tt.fieldName {
					t.Errorf("expected field %s, got %s", tt.fieldName, valErr.Field)
				}
			}
		})
	}
}

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    domain.VizID
		wantErr bool
	}{
		{name: "bare name", raw: "Project Alpha", want: domain.NewVizID("Project Alpha")},
		{name: "core id", raw: "core:Alpha", want: domain.NewVizID("Alpha")},
		{name: "terminal id", raw: "terminal:abc", want: domain.VizID{ID: "abc", Store: domain.StoreTerminal}},
		{name: "name with colon", raw: "Meeting: Q3", want: domain.NewVizID("Meeting: Q3")},
		{name: "empty", raw: "", wantErr: true},
		{name: "missing id", raw: "core:", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateNodeID("nodeID", tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateNodeID(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateNodeID(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestValidateOneOf(t *testing.T) {
	if err := ValidateOneOf("format", "dot", "json", "dot"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateOneOf("format", "xml", "json", "dot"); err == nil {
		t.Error("expected error for unsupported value")
	}
}

func TestStoreErrorIs(t *testing.T) {
	err := &StoreError{ID: "x:y", Store: "x"}
	if !errors.Is(err, ErrUnsupportedStore) {
		t.Error("StoreError should match ErrUnsupportedStore")
	}
}

func TestRefreshErrorUnwrap(t *testing.T) {
	err := &RefreshError{ID: "core:A", Op: "build edges", Err: ErrNotReady}
	if !errors.Is(err, ErrNotReady) {
		t.Error("RefreshError should unwrap to its cause")
	}
}
