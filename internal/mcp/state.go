package mcp

import (
	"github.com/tidwall/sjson"

	"github.com/dshills/keycalc/internal/engine"
)

// StateJSON renders a session snapshot. status is omitted when empty.
func StateJSON(session string, st engine.State, status string) (string, error) {
	fields := []struct {
		path  string
		value any
	}{
		{"session", session},
		{"display", st.Display},
		{"history", st.History},
		{"last_calculation", st.LastCalculation},
		{"memory", st.Memory},
		{"memory_active", st.MemoryActive},
		{"error", st.IsError()},
	}
	if status != "" {
		fields = append(fields, struct {
			path  string
			value any
		}{"status", status})
	}

	doc := "{}"
	for _, f := range fields {
		var err error
		if doc, err = sjson.Set(doc, f.path, f.value); err != nil {
			return "", err
		}
	}
	return doc, nil
}
