package migration_1

import (
	"path/filepath"
	"testing"
	"time"

	"pdf-insight/internal/database/versions/migration_0"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMigrationAddsMetadataToExistingRows(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "m.db")), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, migration_0.Migration(db))
	require.NoError(t, db.Create(&migration_0.AnsweringCall{
		Id:           uuid.New(),
		Operation:    "answer",
		DocumentId:   "doc-1",
		Outcome:      "ok",
		Attempts:     1,
		CreationTime: time.Now().UTC(),
	}).Error)

	require.NoError(t, Migration(db))
	assert.True(t, db.Migrator().HasColumn(&AnsweringCall{}, "metadata"))

	var metadata []string
	require.NoError(t, db.Table("answering_calls").Pluck("metadata", &metadata).Error)
	assert.Equal(t, []string{"{}"}, metadata)

	require.NoError(t, Rollback(db))
	assert.False(t, db.Migrator().HasColumn(&AnsweringCall{}, "metadata"))
}
