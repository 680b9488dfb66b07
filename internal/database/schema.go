package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AnsweringCall struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Operation  string `gorm:"size:20;not null;index"`
	DocumentId string `gorm:"index"`
	Outcome    string `gorm:"size:20;not null"`
	Attempts   int    `gorm:"not null;default:1"`
	LatencyMs  int64  `gorm:"not null;default:0"`

	PromptTokens     int64 `gorm:"not null;default:0"`
	CompletionTokens int64 `gorm:"not null;default:0"`
	TotalTokens      int64 `gorm:"not null;default:0"`

	// Metadata holds details that vary per outcome, such as the error text.
	Metadata datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`

	CreationTime time.Time `gorm:"index"`
}

// ErrorText is the recorded failure message, empty for successful calls.
func (c AnsweringCall) ErrorText() string {
	var metadata callMetadata
	if err := json.Unmarshal(c.Metadata, &metadata); err != nil {
		return ""
	}
	return metadata.Error
}
