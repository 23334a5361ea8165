package handlers

import (
	"github.com/affectlab/affectchat/internal/affect"
	"github.com/affectlab/affectchat/internal/config"
	"github.com/affectlab/affectchat/internal/conversation"
	"github.com/affectlab/affectchat/internal/reply"
	"github.com/affectlab/affectchat/internal/store/rabbitmq"
	"github.com/affectlab/affectchat/internal/store/redisstore"
	"github.com/affectlab/affectchat/internal/turn"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"gorm.io/gorm"
)

type Handler struct {
	Cfg    config.Config
	Repo   *conversation.Repo
	Turns  *turn.Service
	Rabbit *rabbitmq.Publisher // nil when the broker is not configured
}

// NewHandler wires the production pipeline: HF classifier (redis-cached when
// available) + OpenAI extractor for Stage-1, OpenAI generator for Stage-2.
func NewHandler(db *gorm.DB, cfg config.Config, rds *redisstore.Store, rabbit *rabbitmq.Publisher) *Handler {
	repo := conversation.NewRepo(db)

	var classifier affect.Classifier = affect.NewHFClassifier(cfg.ClassifierURL, cfg.HFToken)
	if rds != nil {
		classifier = affect.NewCachedClassifier(classifier, rds, cfg.ClassifierCacheTTL)
	}

	oa := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
	analyzer := affect.NewAnalyzer(classifier, affect.NewOpenAIExtractor(&oa, cfg.ExtractorModel))
	generator := reply.NewOpenAIGenerator(&oa)

	return &Handler{
		Cfg:    cfg,
		Repo:   repo,
		Turns:  turn.NewService(repo, analyzer, generator),
		Rabbit: rabbit,
	}
}
