package application

import (
	"fmt"
	"strings"

	"vaultgraph/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "nodeID" -> "node ID")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"nodeID":      "node ID",
		"workspaceID": "workspace ID",
		"target":      "target",
		"format":      "format",
		"label":       "label",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}
	return fieldName
}

// ValidateNodeID parses a serialized node id, accepting a bare document name
// as a core-store id. Returns a ValidationError for malformed ids.
func ValidateNodeID(fieldName, raw string) (domain.VizID, error) {
	if err := ValidateRequired(fieldName, raw); err != nil {
		return domain.VizID{}, err
	}
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, ":") {
		return domain.NewVizID(raw), nil
	}
	id, err := domain.ParseVizID(raw)
	if err != nil {
		return domain.VizID{}, &ValidationError{Field: fieldName, Message: err.Error()}
	}
	switch id.Store {
	case domain.StoreCore, domain.StoreTerminal:
		return id, nil
	default:
		// a name that merely contains a colon, e.g. "Meeting: Q3"
		return domain.NewVizID(raw), nil
	}
}

// ValidateOneOf checks that value is one of allowed
func ValidateOneOf(fieldName, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{
		Field:   fieldName,
		Message: fmt.Sprintf("expected one of %s, got: %s", strings.Join(allowed, ", "), value),
	}
}
