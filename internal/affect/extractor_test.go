package affect

import (
	"context"
	"testing"
)

func TestFallbackExactValues(t *testing.T) {
	f := Fallback()
	if f.DisclosureLevel != DisclosureUnknown {
		t.Errorf("fallback disclosure = %q, want unknown", f.DisclosureLevel)
	}
	if f.DistressScore != 0.0 {
		t.Errorf("fallback distress = %v, want 0.0", f.DistressScore)
	}
	if f.HelpIntent {
		t.Errorf("fallback help intent should be false")
	}
}

func TestDecodeModelJSON(t *testing.T) {
	type payload struct {
		DisclosureLevel string  `json:"disclosure_level"`
		DistressScore   float64 `json:"distress_score"`
	}

	cases := []struct {
		name    string
		in      string
		wantErr bool
		want    string
	}{
		{"plain", `{"disclosure_level":"deep","distress_score":0.8}`, false, "deep"},
		{"wrapped", "Here you go:\n```json\n{\"disclosure_level\":\"mid\",\"distress_score\":0.2}\n```", false, "mid"},
		{"empty", "", true, ""},
		{"no object", "I cannot analyze this.", true, ""},
		{"truncated", `{"disclosure_level":"deep"`, true, ""},
	}
	for _, tc := range cases {
		var p payload
		err := decodeModelJSON(tc.in, &p)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%s: expected error, got %+v", tc.name, p)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
			continue
		}
		if p.DisclosureLevel != tc.want {
			t.Errorf("%s: disclosure = %q, want %q", tc.name, p.DisclosureLevel, tc.want)
		}
	}
}

func TestNormalizeExtraction(t *testing.T) {
	cases := []struct {
		name string
		in   extractorPayload
		want Extraction
	}{
		{
			"valid deep",
			extractorPayload{DisclosureLevel: "deep", DistressScore: 0.7, HelpIntent: true},
			Extraction{DisclosureLevel: DisclosureDeep, DistressScore: 0.7, HelpIntent: true},
		},
		{
			"case and whitespace",
			extractorPayload{DisclosureLevel: " Surface ", DistressScore: 0.1},
			Extraction{DisclosureLevel: DisclosureSurface, DistressScore: 0.1},
		},
		{
			"unknown label",
			extractorPayload{DisclosureLevel: "profound", DistressScore: 0.5},
			Extraction{DisclosureLevel: DisclosureUnknown, DistressScore: 0.5},
		},
		{
			"distress clamped high",
			extractorPayload{DisclosureLevel: "mid", DistressScore: 3.2},
			Extraction{DisclosureLevel: DisclosureMid, DistressScore: 1},
		},
		{
			"distress clamped low",
			extractorPayload{DisclosureLevel: "mid", DistressScore: -0.4},
			Extraction{DisclosureLevel: DisclosureMid, DistressScore: 0},
		},
	}
	for _, tc := range cases {
		if got := normalizeExtraction(tc.in); got != tc.want {
			t.Errorf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestOpenAIExtractorNilClientFallsBack(t *testing.T) {
	e := NewOpenAIExtractor(nil, "")
	if got := e.Extract(context.Background(), "anything"); got != Fallback() {
		t.Fatalf("expected fallback, got %+v", got)
	}
}

func TestExtractorSchemaShape(t *testing.T) {
	props, ok := extractorSchema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties: %v", extractorSchema)
	}
	for _, field := range []string{"disclosure_level", "distress_score", "help_intent"} {
		if _, ok := props[field]; !ok {
			t.Errorf("schema missing property %q", field)
		}
	}
	if ap, ok := extractorSchema["additionalProperties"].(bool); !ok || ap {
		t.Errorf("schema must forbid additional properties")
	}
	required, ok := extractorSchema["required"].([]string)
	if !ok || len(required) != 3 {
		t.Errorf("schema must require all three fields, got %v", extractorSchema["required"])
	}
}
