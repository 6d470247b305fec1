package batch

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseIDs(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		paramName string
		want      []int64
		wantErr   bool
	}{
		{
			name:      "single number",
			input:     float64(123),
			paramName: "task_ids",
			want:      []int64{123},
		},
		{
			name:      "single numeric string",
			input:     "456",
			paramName: "task_ids",
			want:      []int64{456},
		},
		{
			name:      "array of numbers",
			input:     []interface{}{float64(1), float64(2), float64(3)},
			paramName: "task_ids",
			want:      []int64{1, 2, 3},
		},
		{
			name:      "mixed array",
			input:     []interface{}{float64(1), "2"},
			paramName: "task_ids",
			want:      []int64{1, 2},
		},
		{
			name:      "JSON array string",
			input:     `[10, 20, 30]`,
			paramName: "task_ids",
			want:      []int64{10, 20, 30},
		},
		{
			name:      "json number",
			input:     json.Number("77"),
			paramName: "task_ids",
			want:      []int64{77},
		},
		{
			name:      "nil input",
			input:     nil,
			paramName: "task_ids",
			wantErr:   true,
		},
		{
			name:      "empty string",
			input:     "",
			paramName: "task_ids",
			wantErr:   true,
		},
		{
			name:      "empty array",
			input:     []interface{}{},
			paramName: "task_ids",
			wantErr:   true,
		},
		{
			name:      "fractional id",
			input:     float64(1.5),
			paramName: "task_ids",
			wantErr:   true,
		},
		{
			name:      "zero id",
			input:     []interface{}{float64(0)},
			paramName: "task_ids",
			wantErr:   true,
		},
		{
			name:      "not a number",
			input:     "abc",
			paramName: "task_ids",
			wantErr:   true,
		},
		{
			name:      "invalid JSON array",
			input:     `[1, 2`,
			paramName: "task_ids",
			wantErr:   true,
		},
		{
			name:      "invalid type",
			input:     true,
			paramName: "task_ids",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDs(tt.input, tt.paramName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseIDs() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if len(got) != len(tt.want) {
					t.Errorf("ParseIDs() got %d items, want %d", len(got), len(tt.want))
					return
				}
				for i := range got {
					if got[i] != tt.want[i] {
						t.Errorf("ParseIDs()[%d] = %d, want %d", i, got[i], tt.want[i])
					}
				}
			}
		})
	}
}

func TestNewSummary(t *testing.T) {
	s := NewSummary(3, []int64{1, 2, 3}, nil)
	if s.Applied != 3 || s.Error != "" {
		t.Errorf("NewSummary(success) = %+v", s)
	}

	err := &ChunkError{Chunk: 2, Chunks: 3, Applied: 50, Err: errors.New("toodledo error 605: Invalid task")}
	s = NewSummary(125, nil, err)
	if s.Applied != 50 {
		t.Errorf("Applied = %d, want 50", s.Applied)
	}
	if s.Error == "" {
		t.Error("expected error message in summary")
	}

	var decoded Summary
	if err := json.Unmarshal([]byte(s.Format()), &decoded); err != nil {
		t.Fatalf("Format() is not valid JSON: %v", err)
	}
	if decoded.Requested != 125 {
		t.Errorf("Requested = %d, want 125", decoded.Requested)
	}
}
