package migration_0

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
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

	CreationTime time.Time `gorm:"index"`
}

func Migration(db *gorm.DB) error {
	return db.AutoMigrate(&AnsweringCall{})
}
