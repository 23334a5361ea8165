// Package export renders conversation transcripts as CSV for the research
// team. Timestamps are rendered in US Eastern time to match the lab's
// existing spreadsheets.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"time"

	"github.com/affectlab/affectchat/internal/conversation"
)

var header = []string{
	"conversationId", "messageId", "role", "aiType", "username", "userId",
	"text", "createdAt", "analysis",
}

var eastern = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

func formatEST(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(eastern).Format("2006-01-02 15:04:05") + " EST"
}

// ConversationCSV renders one conversation's messages, oldest first.
func ConversationCSV(convo *conversation.Conversation, msgs []conversation.Message) ([]byte, error) {
	meta := map[string]*conversation.Conversation{convo.ID: convo}
	return render(meta, msgs)
}

// AllCSV renders every message across all conversations.
func AllCSV(convos []conversation.Conversation, msgs []conversation.Message) ([]byte, error) {
	meta := make(map[string]*conversation.Conversation, len(convos))
	for i := range convos {
		meta[convos[i].ID] = &convos[i]
	}
	return render(meta, msgs)
}

func render(meta map[string]*conversation.Conversation, msgs []conversation.Message) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, m := range msgs {
		var variant, username, userID string
		if c, ok := meta[m.ConversationID]; ok {
			variant = string(c.Variant)
			if c.Username != nil {
				username = *c.Username
			}
			if c.UserID != nil {
				userID = strconv.FormatUint(*c.UserID, 10)
			}
		}

		var analysis string
		if m.Analysis != nil {
			b, err := json.Marshal(m.Analysis)
			if err != nil {
				return nil, err
			}
			analysis = string(b)
		}

		row := []string{
			m.ConversationID,
			strconv.FormatUint(m.ID, 10),
			m.Role,
			variant,
			username,
			userID,
			m.Text,
			formatEST(m.CreatedAt),
			analysis,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
