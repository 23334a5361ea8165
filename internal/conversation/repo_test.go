package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/affectlab/affectchat/internal/affect"
	"github.com/affectlab/affectchat/internal/common"
	"github.com/affectlab/affectchat/internal/policy"
	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Each test gets its own named in-memory database; cache=shared keeps gorm's
// pooled connections on the same one.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Conversation{}, &Message{}, &TurnJob{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func mustULID(t *testing.T) string {
	t.Helper()
	id, err := common.NewULID()
	if err != nil {
		t.Fatalf("new ulid: %v", err)
	}
	return id
}

func newTestConversation(t *testing.T, r *Repo, v policy.Variant) *Conversation {
	t.Helper()
	c := &Conversation{ID: mustULID(t), Variant: v}
	if err := r.CreateConversation(context.Background(), c); err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	return c
}

func TestMessageAnalysisRoundTrip(t *testing.T) {
	r := NewRepo(openTestDB(t))
	ctx := context.Background()
	c := newTestConversation(t, r, policy.Companion)

	rec := affect.Record{
		EmotionLabel:      "sadness",
		EmotionConfidence: 0.83,
		ArousalLevel:      affect.ArousalLow,
		DisclosureLevel:   affect.DisclosureMid,
		DistressScore:     0.4,
		HelpIntent:        false,
	}
	if err := r.AppendMessage(ctx, &Message{
		ConversationID: c.ID,
		Role:           RoleUser,
		Text:           "nobody at school will talk to me anymore",
		Analysis:       &rec,
	}); err != nil {
		t.Fatalf("append user message: %v", err)
	}
	if err := r.AppendMessage(ctx, &Message{
		ConversationID: c.ID,
		Role:           RoleAssistant,
		Text:           "That sounds lonely.",
	}); err != nil {
		t.Fatalf("append assistant message: %v", err)
	}

	msgs, err := r.ListMessages(ctx, c.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Analysis == nil {
		t.Fatalf("user message lost its analysis: %+v", msgs[0])
	}
	if *msgs[0].Analysis != rec {
		t.Fatalf("analysis round trip: got %+v, want %+v", *msgs[0].Analysis, rec)
	}
	if msgs[1].Role != RoleAssistant || msgs[1].Analysis != nil {
		t.Fatalf("assistant message must have null analysis: %+v", msgs[1])
	}
}

func TestListMessagesStableOrder(t *testing.T) {
	r := NewRepo(openTestDB(t))
	ctx := context.Background()
	c := newTestConversation(t, r, policy.Neutral)

	// Same timestamp on every row forces the id tiebreak.
	now := time.Now().UTC().Truncate(time.Second)
	for i, text := range []string{"first", "second", "third", "fourth"} {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		if err := r.AppendMessage(ctx, &Message{
			ConversationID: c.ID,
			Role:           role,
			Text:           text,
			CreatedAt:      now,
		}); err != nil {
			t.Fatalf("append %q: %v", text, err)
		}
	}

	msgs, err := r.ListMessages(ctx, c.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	want := []string{"first", "second", "third", "fourth"}
	if len(msgs) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(msgs))
	}
	for i := range want {
		if msgs[i].Text != want[i] {
			t.Errorf("position %d: got %q, want %q", i, msgs[i].Text, want[i])
		}
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].ID <= msgs[i-1].ID {
			t.Errorf("ids not strictly increasing at position %d", i)
		}
	}
}

func TestDeleteConversationRemovesMessages(t *testing.T) {
	r := NewRepo(openTestDB(t))
	ctx := context.Background()
	c := newTestConversation(t, r, policy.NonCompanion)

	for _, text := range []string{"a", "b"} {
		if err := r.AppendMessage(ctx, &Message{ConversationID: c.ID, Role: RoleUser, Text: text}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	if err := r.DeleteConversation(ctx, c.ID); err != nil {
		t.Fatalf("delete conversation: %v", err)
	}
	if _, err := r.GetConversation(ctx, c.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("conversation should be gone, got err=%v", err)
	}
	msgs, err := r.ListMessages(ctx, c.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no messages after delete, got %d", len(msgs))
	}
}

func TestTurnJobLifecycle(t *testing.T) {
	r := NewRepo(openTestDB(t))
	ctx := context.Background()
	c := newTestConversation(t, r, policy.Companion)

	job := &TurnJob{
		ID:             mustULID(t),
		ConversationID: c.ID,
		Variant:        c.Variant,
		Text:           "hello",
		Status:         JobQueued,
	}
	if err := r.CreateJob(ctx, job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	if err := r.UpdateJobStatusRunning(ctx, job.ID); err != nil {
		t.Fatalf("mark running: %v", err)
	}
	got, err := r.GetJobByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != JobRunning {
		t.Fatalf("status = %q, want running", got.Status)
	}

	if err := r.MarkJobSucceeded(ctx, job.ID, 42); err != nil {
		t.Fatalf("mark succeeded: %v", err)
	}
	got, err = r.GetJobByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != JobSucceeded {
		t.Fatalf("status = %q, want succeeded", got.Status)
	}
	if got.ResultMessageID == nil || *got.ResultMessageID != 42 {
		t.Fatalf("result message id = %v, want 42", got.ResultMessageID)
	}
	if got.Error != nil {
		t.Fatalf("succeeded job must not carry an error, got %q", *got.Error)
	}
}

func TestTurnJobFailure(t *testing.T) {
	r := NewRepo(openTestDB(t))
	ctx := context.Background()
	c := newTestConversation(t, r, policy.Neutral)

	job := &TurnJob{
		ID:             mustULID(t),
		ConversationID: c.ID,
		Variant:        c.Variant,
		Text:           "hello",
		Status:         JobQueued,
	}
	if err := r.CreateJob(ctx, job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	if err := r.MarkJobFailed(ctx, job.ID, "stage 1 analysis failed"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	got, err := r.GetJobByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != JobFailed {
		t.Fatalf("status = %q, want failed", got.Status)
	}
	if got.Error == nil || *got.Error != "stage 1 analysis failed" {
		t.Fatalf("error = %v, want recorded failure", got.Error)
	}
}

func TestRunningTransitionRequiresQueued(t *testing.T) {
	r := NewRepo(openTestDB(t))
	ctx := context.Background()
	c := newTestConversation(t, r, policy.Companion)

	job := &TurnJob{
		ID:             mustULID(t),
		ConversationID: c.ID,
		Variant:        c.Variant,
		Text:           "hello",
		Status:         JobFailed,
	}
	if err := r.CreateJob(ctx, job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	if err := r.UpdateJobStatusRunning(ctx, job.ID); err != nil {
		t.Fatalf("mark running: %v", err)
	}
	got, err := r.GetJobByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != JobFailed {
		t.Fatalf("terminal job must not re-enter running, got %q", got.Status)
	}
}
