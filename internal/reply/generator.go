// Package reply turns a Stage-1 record plus a policy variant into an
// assistant reply.
package reply

import (
	"context"
	"errors"
	"fmt"

	"github.com/affectlab/affectchat/internal/affect"
	"github.com/affectlab/affectchat/internal/policy"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
)

// ErrGenerationFailed marks the generative backend as unreachable or
// errored. The caller decides what happens to the already-persisted user
// message; no retry happens here.
var ErrGenerationFailed = errors.New("generation failed")

type Generator interface {
	Generate(ctx context.Context, v policy.Variant, rec affect.Record, text string) (string, error)
}

// ContextMessage renders the analysis-annotated user message sent alongside
// the policy instructions. The user text is included verbatim.
func ContextMessage(rec affect.Record, text string) string {
	return fmt.Sprintf(
		"User emotion: %s, Arousal: %s, Disclosure: %s, Distress: %g, HelpIntent: %t.\nUser said: %q",
		rec.EmotionLabel, rec.ArousalLevel, rec.DisclosureLevel, rec.DistressScore, rec.HelpIntent, text,
	)
}

// OpenAIGenerator invokes the OpenAI backend configured per variant in the
// policy registry. The reply string is returned verbatim.
type OpenAIGenerator struct {
	Client *openai.Client
}

func NewOpenAIGenerator(client *openai.Client) *OpenAIGenerator {
	return &OpenAIGenerator{Client: client}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, v policy.Variant, rec affect.Record, text string) (string, error) {
	if g.Client == nil {
		return "", fmt.Errorf("%w: openai client is nil", ErrGenerationFailed)
	}
	p, ok := policy.Lookup(v)
	if !ok {
		return "", fmt.Errorf("%w: unknown policy variant %q", ErrGenerationFailed, v)
	}

	params := responses.ResponseNewParams{
		Model:           p.Model,
		Temperature:     openai.Float(p.Temperature),
		MaxOutputTokens: openai.Int(p.MaxOutputTokens),
		Instructions:    openai.String(p.Instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(ContextMessage(rec, text), responses.EasyInputMessageRoleUser),
			},
		},
	}

	resp, err := g.Client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	out := resp.OutputText()
	if out == "" {
		return "", fmt.Errorf("%w: empty reply", ErrGenerationFailed)
	}
	return out, nil
}
