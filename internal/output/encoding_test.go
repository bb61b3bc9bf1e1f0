package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"treemerge/internal/errors"
)

type groupCount struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Count int    `json:"count" yaml:"count" toml:"count"`
}

type sampleReport struct {
	Source  string       `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
	Nodes   int          `json:"nodes" yaml:"nodes" toml:"nodes"`
	Average float64      `json:"average" yaml:"average" toml:"average"`
	Groups  []groupCount `json:"groups,omitempty" yaml:"groups,omitempty" toml:"groups,omitempty"`
}

type textReport string

func (r textReport) String() string { return string(r) }

func TestDeterministicEncode(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		wantJSON string
	}{
		{
			name: "simple struct with floats",
			input: struct {
				Name  string  `json:"name"`
				Score float64 `json:"score"`
				Count int     `json:"count"`
			}{
				Name:  "test",
				Score: 0.123456789,
				Count: 42,
			},
			wantJSON: `{"count":42,"name":"test","score":0.123457}`,
		},
		{
			name: "struct with omitted nil fields",
			input: struct {
				Name  string   `json:"name"`
				Score *float64 `json:"score,omitempty"`
			}{
				Name: "test",
			},
			wantJSON: `{"name":"test"}`,
		},
		{
			name: "struct with zero values and omitempty",
			input: struct {
				Name  string `json:"name"`
				Count int    `json:"count,omitempty"`
			}{
				Name: "test",
			},
			wantJSON: `{"name":"test"}`,
		},
		{
			name: "map with sorted keys",
			input: map[string]interface{}{
				"zebra": "last",
				"alpha": "first",
				"beta":  "second",
			},
			wantJSON: `{"alpha":"first","beta":"second","zebra":"last"}`,
		},
		{
			name: "slice of structs",
			input: []groupCount{
				{Name: "IMAGE", Count: 14},
				{Name: "TEXT", Count: 4},
			},
			wantJSON: `[{"count":14,"name":"IMAGE"},{"count":4,"name":"TEXT"}]`,
		},
		{
			name:     "nil value",
			input:    nil,
			wantJSON: `null`,
		},
		{
			name:     "empty slice returns null",
			input:    []string{},
			wantJSON: `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeterministicEncode(tt.input, "")
			if err != nil {
				t.Fatalf("DeterministicEncode() error = %v", err)
			}
			if string(got) != tt.wantJSON {
				t.Errorf("DeterministicEncode() = %s, want %s", got, tt.wantJSON)
			}
		})
	}
}

func TestDeterministicEncodeConsistency(t *testing.T) {
	data := map[string]interface{}{
		"merges": []sampleReport{
			{Source: "b", Nodes: 5, Average: 3.5},
			{Source: "a", Nodes: 10, Average: 1.0 / 3.0},
		},
		"metadata": map[string]interface{}{
			"version": "1.0",
			"score":   0.123456789,
		},
	}

	var results [][]byte
	for i := 0; i < 10; i++ {
		encoded, err := DeterministicEncode(data, "")
		if err != nil {
			t.Fatalf("DeterministicEncode() error = %v", err)
		}
		results = append(results, encoded)
	}

	for i := 1; i < len(results); i++ {
		if !bytes.Equal(results[0], results[i]) {
			t.Errorf("Encoding is not deterministic:\nrun 0: %s\nrun %d: %s", results[0], i, results[i])
		}
	}
}

func TestDeterministicEncode_Indented(t *testing.T) {
	data := map[string]interface{}{
		"name":  "test",
		"value": 0.123456789,
	}

	got, err := DeterministicEncode(data, "  ")
	if err != nil {
		t.Fatalf("DeterministicEncode() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(got, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}
	if !bytes.Contains(got, []byte("\n  ")) {
		t.Error("DeterministicEncode() should produce indented output")
	}
	if bytes.HasSuffix(got, []byte("\n")) {
		t.Error("DeterministicEncode() should not end with a newline")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"", FormatText, false},
		{"JSON", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"toml", FormatTOML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !errors.IsCode(err, errors.UnsupportedFormat) {
				t.Errorf("ParseFormat(%q) error code = %v, want %v", tt.input, err, errors.UnsupportedFormat)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	report := sampleReport{
		Source:  "testdata",
		Nodes:   3,
		Average: 3.5,
		Groups:  []groupCount{{Name: "TEXT", Count: 2}},
	}

	tests := []struct {
		format    Format
		input     interface{}
		wantParts []string
	}{
		{FormatJSON, report, []string{`"source": "testdata"`, `"average": 3.5`, `"count": 2`}},
		{FormatYAML, report, []string{"source: testdata", "nodes: 3", "- name: TEXT"}},
		{FormatTOML, report, []string{`source = "testdata"`, "nodes = 3", "[[groups]]", `name = "TEXT"`}},
		{FormatText, textReport("• M0-1/1, 2×TEXT\n"), []string{"• M0-1/1, 2×TEXT\n"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, tt.format, tt.input); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			for _, part := range tt.wantParts {
				if !strings.Contains(buf.String(), part) {
					t.Errorf("Encode(%s) = %q, want to contain %q", tt.format, buf.String(), part)
				}
			}
		})
	}
}

func TestEncode_TextNeedsStringer(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, FormatText, sampleReport{})
	if !errors.IsCode(err, errors.UnsupportedFormat) {
		t.Errorf("Encode() error = %v, want %v", err, errors.UnsupportedFormat)
	}
}
