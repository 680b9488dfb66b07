package migration_1

import (
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AnsweringCall struct {
	Metadata datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`
}

func Migration(db *gorm.DB) error {
	if err := db.Migrator().AddColumn(&AnsweringCall{}, "metadata"); err != nil {
		return fmt.Errorf("error adding Metadata column: %w", err)
	}

	if err := db.Model(&AnsweringCall{}).
		Where("metadata IS NULL").
		Update("metadata", datatypes.JSON("{}")).Error; err != nil {
		return fmt.Errorf("error setting default value for Metadata: %w", err)
	}

	return nil
}

func Rollback(db *gorm.DB) error {
	if err := db.Migrator().DropColumn(&AnsweringCall{}, "metadata"); err != nil {
		return fmt.Errorf("error dropping Metadata column: %w", err)
	}

	return nil
}
