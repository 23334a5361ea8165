package turn

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/affectlab/affectchat/internal/affect"
	"github.com/affectlab/affectchat/internal/common"
	"github.com/affectlab/affectchat/internal/conversation"
	"github.com/affectlab/affectchat/internal/policy"
	"github.com/affectlab/affectchat/internal/reply"
	"gorm.io/gorm"
)

// Service runs one conversation turn end to end: resolve the conversation,
// analyze the utterance, persist the user message with its analysis, generate
// the policy-conditioned reply, persist it, return the result. Persistence is
// append-only and best-effort per step: a generation failure does not roll
// back the already-committed user message.
type Service struct {
	repo      *conversation.Repo
	analyzer  *affect.Analyzer
	generator reply.Generator
}

func NewService(repo *conversation.Repo, analyzer *affect.Analyzer, generator reply.Generator) *Service {
	return &Service{repo: repo, analyzer: analyzer, generator: generator}
}

// Result is what the turn API returns to the UI. The conversation id is the
// sole correlation key the client has to retain per variant.
type Result struct {
	ConversationID     string        `json:"conversationId"`
	Analysis           affect.Record `json:"analysis"`
	Reply              string        `json:"reply"`
	AssistantMessageID uint64        `json:"-"`
}

// Respond executes one synchronous turn. An empty conversationID creates a
// fresh conversation bound to the variant; a supplied one is reused, but must
// belong to the same variant it was created under.
func (s *Service) Respond(ctx context.Context, v policy.Variant, text, conversationID string, username *string) (*Result, error) {
	convo, err := s.resolveConversation(ctx, v, conversationID, username)
	if err != nil {
		return nil, err
	}

	rec, err := s.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}

	userMsg := &conversation.Message{
		ConversationID: convo.ID,
		Role:           conversation.RoleUser,
		Text:           text,
		Analysis:       &rec,
	}
	if err := s.repo.AppendMessage(ctx, userMsg); err != nil {
		return nil, newError(KindPersistenceUnavailable, err)
	}

	replyText, err := s.generator.Generate(ctx, v, rec, text)
	if err != nil {
		// The user message stays; the turn ends at UserPersisted. No
		// placeholder assistant row is written.
		return nil, newError(KindGenerationFailed, err)
	}

	assistantMsg := &conversation.Message{
		ConversationID: convo.ID,
		Role:           conversation.RoleAssistant,
		Text:           replyText,
		Analysis:       nil,
	}
	if err := s.repo.AppendMessage(ctx, assistantMsg); err != nil {
		return nil, newError(KindPersistenceUnavailable, err)
	}

	return &Result{
		ConversationID:     convo.ID,
		Analysis:           rec,
		Reply:              replyText,
		AssistantMessageID: assistantMsg.ID,
	}, nil
}

// Analyze runs Stage-1 only (the per-variant /analyze endpoints).
func (s *Service) Analyze(ctx context.Context, text string) (affect.Record, error) {
	rec, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		return affect.Record{}, newError(KindClassificationUnavailable, err)
	}
	return rec, nil
}

func (s *Service) resolveConversation(ctx context.Context, v policy.Variant, conversationID string, username *string) (*conversation.Conversation, error) {
	if conversationID == "" {
		id, err := common.NewULID()
		if err != nil {
			return nil, newError(KindPersistenceUnavailable, err)
		}
		convo := &conversation.Conversation{
			ID:       id,
			Variant:  v,
			Username: username,
		}
		if err := s.repo.CreateConversation(ctx, convo); err != nil {
			return nil, newError(KindPersistenceUnavailable, err)
		}
		return convo, nil
	}

	convo, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindConversationNotFound, err)
		}
		return nil, newError(KindPersistenceUnavailable, err)
	}
	if convo.Variant != v {
		return nil, newError(KindVariantMismatch,
			fmt.Errorf("conversation %s belongs to variant %q, not %q", convo.ID, convo.Variant, v))
	}
	return convo, nil
}

// PrepareAsyncTurn resolves the conversation and records a queued job; the
// caller publishes the job id and the worker runs the pipeline.
func (s *Service) PrepareAsyncTurn(ctx context.Context, v policy.Variant, text, conversationID string, username *string) (*conversation.TurnJob, error) {
	convo, err := s.resolveConversation(ctx, v, conversationID, username)
	if err != nil {
		return nil, err
	}

	jobID, err := common.NewULID()
	if err != nil {
		return nil, newError(KindPersistenceUnavailable, err)
	}
	job := &conversation.TurnJob{
		ID:             jobID,
		ConversationID: convo.ID,
		Variant:        v,
		Text:           text,
		Status:         conversation.JobQueued,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, newError(KindPersistenceUnavailable, err)
	}
	return job, nil
}

func (s *Service) GetJob(ctx context.Context, jobID string) (*conversation.TurnJob, error) {
	return s.repo.GetJobByID(ctx, jobID)
}

// ProcessJob runs one queued turn to completion and records the outcome on
// the job row.
func (s *Service) ProcessJob(ctx context.Context, jobID string) error {
	_ = s.repo.UpdateJobStatusRunning(ctx, jobID)

	job, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}

	res, err := s.Respond(ctx, job.Variant, job.Text, job.ConversationID, nil)
	if err != nil {
		if markErr := s.repo.MarkJobFailed(ctx, jobID, err.Error()); markErr != nil {
			log.Printf("mark job failed job=%s err=%v", jobID, markErr)
		}
		return err
	}
	return s.repo.MarkJobSucceeded(ctx, jobID, res.AssistantMessageID)
}
