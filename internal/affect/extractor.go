package affect

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
)

// Extraction is the disclosure/distress portion of Stage-1. It is never an
// error at this boundary: a turn must not fail because the generative model
// produced unparsable output, so implementations substitute Fallback
// internally.
type Extraction struct {
	DisclosureLevel Disclosure
	DistressScore   float64
	HelpIntent      bool
}

// Fallback is the safe default used whenever extraction cannot produce a
// usable result.
func Fallback() Extraction {
	return Extraction{DisclosureLevel: DisclosureUnknown, DistressScore: 0.0, HelpIntent: false}
}

type Extractor interface {
	Extract(ctx context.Context, text string) Extraction
}

const extractorInstructions = "You are a psychologist analyzing text for emotional disclosure. " +
	"Return JSON with disclosure_level (surface/mid/deep), distress_score (0-1 float), and help_intent (true/false)."

type extractorPayload struct {
	DisclosureLevel string  `json:"disclosure_level"`
	DistressScore   float64 `json:"distress_score"`
	HelpIntent      bool    `json:"help_intent"`
}

var extractorSchema = generateSchema[extractorPayload]()

// OpenAIExtractor asks an OpenAI model for the three disclosure fields as
// strict structured output.
type OpenAIExtractor struct {
	Client *openai.Client
	Model  string
}

func NewOpenAIExtractor(client *openai.Client, model string) *OpenAIExtractor {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIExtractor{Client: client, Model: model}
}

func (e *OpenAIExtractor) Extract(ctx context.Context, text string) Extraction {
	if e.Client == nil {
		return Fallback()
	}

	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "DisclosureAnalysis",
			Schema:      extractorSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Disclosure and distress analysis JSON"),
			Type:        "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           e.Model,
		MaxOutputTokens: openai.Int(200),
		Instructions:    openai.String(extractorInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(text, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := e.Client.Responses.New(ctx, params)
	if err != nil {
		log.Printf("disclosure extraction failed, using fallback err=%v", err)
		return Fallback()
	}

	var payload extractorPayload
	if err := decodeModelJSON(resp.OutputText(), &payload); err != nil {
		log.Printf("disclosure extraction unparsable, using fallback err=%v", err)
		return Fallback()
	}
	return normalizeExtraction(payload)
}

// normalizeExtraction keeps model output within the documented domains:
// unrecognized disclosure labels become unknown and distress is clamped
// to [0,1].
func normalizeExtraction(p extractorPayload) Extraction {
	out := Extraction{HelpIntent: p.HelpIntent}

	switch Disclosure(strings.ToLower(strings.TrimSpace(p.DisclosureLevel))) {
	case DisclosureSurface:
		out.DisclosureLevel = DisclosureSurface
	case DisclosureMid:
		out.DisclosureLevel = DisclosureMid
	case DisclosureDeep:
		out.DisclosureLevel = DisclosureDeep
	default:
		out.DisclosureLevel = DisclosureUnknown
	}

	switch {
	case p.DistressScore < 0:
		out.DistressScore = 0
	case p.DistressScore > 1:
		out.DistressScore = 1
	default:
		out.DistressScore = p.DistressScore
	}
	return out
}

// decodeModelJSON unmarshals JSON from a model response, tolerating wrapper
// text around the object.
func decodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return io.ErrUnexpectedEOF
	}
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return errors.New("no json object in model output")
	}
	return json.Unmarshal([]byte(s[start:end+1]), v)
}

// generateSchema reflects a strict OpenAI-compatible JSON schema for T:
// every property required, no additional properties.
func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	b, err := reflector.Reflect(v).MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	requireAllProperties(m)
	return m
}

func requireAllProperties(schema map[string]any) {
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
		if props, ok := schema["properties"].(map[string]any); ok {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			if len(required) > 0 {
				schema["required"] = required
			}
			for _, p := range props {
				if pm, ok := p.(map[string]any); ok {
					requireAllProperties(pm)
				}
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		requireAllProperties(items)
	}
}
