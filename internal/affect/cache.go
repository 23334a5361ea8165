package affect

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/affectlab/affectchat/internal/store/redisstore"
	"github.com/redis/go-redis/v9"
)

type cachedClassification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// CachedClassifier memoizes classifier results in redis, keyed by a hash of
// the utterance. Identical utterances sent to different study arms then see
// identical Stage-1 labels. Cache failures fall through to the live call.
type CachedClassifier struct {
	Inner Classifier
	Store *redisstore.Store
	TTL   time.Duration
}

func NewCachedClassifier(inner Classifier, store *redisstore.Store, ttl time.Duration) *CachedClassifier {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedClassifier{Inner: inner, Store: store, TTL: ttl}
}

func (c *CachedClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	if c.Store == nil {
		return c.Inner.Classify(ctx, text)
	}

	sum := sha256.Sum256([]byte(text))
	key := hex.EncodeToString(sum[:])

	if raw, err := c.Store.GetClassification(ctx, key); err == nil {
		var hit cachedClassification
		if json.Unmarshal([]byte(raw), &hit) == nil && hit.Label != "" {
			return hit.Label, hit.Confidence, nil
		}
	} else if err != redis.Nil {
		log.Printf("classifier cache read failed key=%s err=%v", key[:12], err)
	}

	label, confidence, err := c.Inner.Classify(ctx, text)
	if err != nil {
		return "", 0, err
	}

	if raw, err := json.Marshal(cachedClassification{Label: label, Confidence: confidence}); err == nil {
		if err := c.Store.SetClassification(ctx, key, string(raw), c.TTL); err != nil {
			log.Printf("classifier cache write failed key=%s err=%v", key[:12], err)
		}
	}
	return label, confidence, nil
}
