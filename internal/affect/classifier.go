package affect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrClassificationUnavailable marks the emotion classifier as unreachable or
// returning unusable output. There is no fallback label: arousal and every
// downstream tone rule depend on the emotion, so a default would silently
// corrupt the conditioning contract.
var ErrClassificationUnavailable = errors.New("classification unavailable")

// Classifier returns the top-ranked emotion label and its confidence for one
// utterance.
type Classifier interface {
	Classify(ctx context.Context, text string) (label string, confidence float64, err error)
}

const defaultHFURL = "https://router.huggingface.co/hf-inference/models/j-hartmann/emotion-english-distilroberta-base"

// HFClassifier calls a HuggingFace text-classification inference endpoint.
// The endpoint returns a ranked list of (label, score) pairs per input; only
// rank 0 is used.
type HFClassifier struct {
	URL    string
	Token  string
	Client *http.Client
}

type hfClassifyReq struct {
	Inputs string `json:"inputs"`
}

type hfScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func NewHFClassifier(url, token string) *HFClassifier {
	if url == "" {
		url = defaultHFURL
	}
	return &HFClassifier{
		URL:    url,
		Token:  token,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HFClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	if c.Client == nil {
		return "", 0, fmt.Errorf("%w: http client is nil", ErrClassificationUnavailable)
	}
	if strings.TrimSpace(text) == "" {
		return "", 0, fmt.Errorf("%w: empty utterance", ErrClassificationUnavailable)
	}

	b, err := json.Marshal(hfClassifyReq{Inputs: text})
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrClassificationUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(b))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrClassificationUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrClassificationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", 0, fmt.Errorf("%w: %s", ErrClassificationUnavailable, msg)
	}

	// One inner list per input; one input is sent.
	var decoded [][]hfScore
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrClassificationUnavailable, err)
	}
	if len(decoded) == 0 || len(decoded[0]) == 0 {
		return "", 0, fmt.Errorf("%w: empty ranking", ErrClassificationUnavailable)
	}

	top := decoded[0][0]
	label := strings.ToLower(strings.TrimSpace(top.Label))
	if label == "" {
		return "", 0, fmt.Errorf("%w: blank top label", ErrClassificationUnavailable)
	}
	return label, top.Score, nil
}
