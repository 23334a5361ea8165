package conversation

import (
	"time"

	"github.com/affectlab/affectchat/internal/affect"
	"github.com/affectlab/affectchat/internal/policy"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is one study session. The variant is bound at creation and
// never changes; userId stays optional because participants are anonymous.
type Conversation struct {
	ID        string         `gorm:"primaryKey;size:26" json:"id"`
	Variant   policy.Variant `gorm:"type:varchar(16);not null;index" json:"variant"`
	Username  *string        `gorm:"type:varchar(64)" json:"username"`
	UserID    *uint64        `gorm:"index" json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`

	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Conversation) TableName() string { return "conversations" }

// Message is append-only. Analysis is populated for user messages and null
// for assistant messages; it is embedded JSON, owned by exactly this row.
type Message struct {
	ID             uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID string         `gorm:"size:26;not null;index" json:"conversation_id"`
	Role           string         `gorm:"type:varchar(16);not null" json:"role"`
	Text           string         `gorm:"type:text;not null" json:"text"`
	Analysis       *affect.Record `gorm:"serializer:json" json:"analysis"`
	CreatedAt      time.Time      `json:"created_at"`
}

func (Message) TableName() string { return "messages" }

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// TurnJob is one queued asynchronous turn. The conversation already exists
// when the job is enqueued; the worker runs the same pipeline as the
// synchronous path.
type TurnJob struct {
	ID             string         `gorm:"primaryKey;size:26"` // ULID length
	ConversationID string         `gorm:"size:26;index;not null"`
	Variant        policy.Variant `gorm:"type:varchar(16);not null"`
	Text           string         `gorm:"type:text;not null"`
	Status         JobStatus      `gorm:"type:varchar(16);index;not null"`

	// Filled when succeeded
	ResultMessageID *uint64 `gorm:"index"`

	// Filled when failed
	Error *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TurnJob) TableName() string { return "turn_jobs" }
