package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/affectlab/affectchat/internal/affect"
	"github.com/affectlab/affectchat/internal/conversation"
	"github.com/affectlab/affectchat/internal/policy"
)

func parseCSV(t *testing.T, b []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(string(b))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	return rows
}

func TestConversationCSV(t *testing.T) {
	username := "participant-7"
	userID := uint64(7)
	convo := &conversation.Conversation{
		ID:       "01CSVCONVERSATIONTEST00000",
		Variant:  policy.Companion,
		Username: &username,
		UserID:   &userID,
	}
	created := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC) // 13:30 EST / 14:30 EDT
	rec := affect.Record{
		EmotionLabel:      "fear",
		EmotionConfidence: 0.9,
		ArousalLevel:      affect.ArousalHigh,
		DisclosureLevel:   affect.DisclosureDeep,
		DistressScore:     0.8,
		HelpIntent:        true,
	}
	msgs := []conversation.Message{
		{ID: 1, ConversationID: convo.ID, Role: conversation.RoleUser, Text: "line one, with a comma", Analysis: &rec, CreatedAt: created},
		{ID: 2, ConversationID: convo.ID, Role: conversation.RoleAssistant, Text: "You're safe here.", CreatedAt: created.Add(2 * time.Second)},
	}

	out, err := ConversationCSV(convo, msgs)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	rows := parseCSV(t, out)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}

	wantHeader := []string{"conversationId", "messageId", "role", "aiType", "username", "userId", "text", "createdAt", "analysis"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header column %d = %q, want %q", i, rows[0][i], col)
		}
	}

	user := rows[1]
	if user[0] != convo.ID || user[1] != "1" || user[2] != "user" {
		t.Errorf("user row identity columns wrong: %v", user)
	}
	if user[3] != "companion" || user[4] != "participant-7" || user[5] != "7" {
		t.Errorf("conversation metadata columns wrong: %v", user)
	}
	if user[6] != "line one, with a comma" {
		t.Errorf("text not preserved through csv quoting: %q", user[6])
	}
	if !strings.HasSuffix(user[7], " EST") {
		t.Errorf("timestamp not rendered in eastern time: %q", user[7])
	}
	if !strings.Contains(user[8], `"emotion_label":"fear"`) ||
		!strings.Contains(user[8], `"distress_score":0.8`) {
		t.Errorf("analysis json incomplete: %q", user[8])
	}

	assistant := rows[2]
	if assistant[2] != "assistant" {
		t.Errorf("assistant role column wrong: %v", assistant)
	}
	if assistant[8] != "" {
		t.Errorf("assistant row must have empty analysis, got %q", assistant[8])
	}
}

func TestAllCSVJoinsPerConversationMetadata(t *testing.T) {
	convos := []conversation.Conversation{
		{ID: "01CSVALLCONVERSATIONA00000", Variant: policy.Neutral},
		{ID: "01CSVALLCONVERSATIONB00000", Variant: policy.NonCompanion},
	}
	msgs := []conversation.Message{
		{ID: 1, ConversationID: convos[0].ID, Role: conversation.RoleUser, Text: "a"},
		{ID: 2, ConversationID: convos[1].ID, Role: conversation.RoleUser, Text: "b"},
	}

	out, err := AllCSV(convos, msgs)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	rows := parseCSV(t, out)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][3] != "neutral" || rows[2][3] != "non-companion" {
		t.Errorf("aiType columns wrong: %q, %q", rows[1][3], rows[2][3])
	}
}

func TestFormatESTZeroTime(t *testing.T) {
	if got := formatEST(time.Time{}); got != "" {
		t.Fatalf("zero time should render empty, got %q", got)
	}
}
