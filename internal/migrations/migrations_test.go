package migrations

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestUpAndDown(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	require.NoError(t, Up(ctx, sqlDB, "sqlite3", log))

	version, err := Version(ctx, sqlDB, "sqlite3", log)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	for _, table := range []string{"users", "credentials", "colleges", "assessments", "assessment_attempts", "certificates", "shortlist_entries"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	// Applying twice is a no-op
	require.NoError(t, Up(ctx, sqlDB, "sqlite3", log))

	_, err = sqlDB.ExecContext(ctx, `INSERT INTO users (id, name, email, role) VALUES ('u1', 'Nobody', 'n@example.com', 'janitor')`)
	assert.Error(t, err)

	_, err = sqlDB.ExecContext(ctx, `INSERT INTO shortlist_entries (id, recruiter_id, student_id, student_name, student_email, status) VALUES ('s1', 'r1', 'u1', 'A', 'a@example.com', 'ghosted')`)
	assert.Error(t, err)

	// Down only rolls back the latest migration
	require.NoError(t, Down(ctx, sqlDB, "sqlite3", log))
	assert.False(t, db.Migrator().HasTable("shortlist_entries"))
	assert.True(t, db.Migrator().HasTable("certificates"))

	version, err = Version(ctx, sqlDB, "sqlite3", log)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestUnknownDialect(t *testing.T) {
	err := Up(context.Background(), nil, "oracle-9i", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorContains(t, err, "unsupported migration dialect")
}
