package telemetry_test

import (
	"context"
	"testing"

	"github.com/condo/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type tracedRow struct {
	ID   uint
	Name string
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := openSQLite(t)
	plugin := telemetry.NewDBTracingPlugin(telemetry.DefaultDBTracingConfig(), zap.NewNop())
	require.NoError(t, plugin.Register(db))
	assert.Nil(t, db.Callback().Query().Get("otel_slow_query:query"))
}

func TestDBTracingPlugin_RecordsSpans(t *testing.T) {
	sr := setupTestTracer(t)
	db := openSQLite(t)

	cfg := telemetry.DefaultDBTracingConfig()
	cfg.Enabled = true
	require.NoError(t, telemetry.NewDBTracingPlugin(cfg, zap.NewNop()).Register(db))

	ctx, span := telemetry.StartSpan(context.Background(), "test.parent")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "a"}).Error)
	var rows []tracedRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	span.End()

	assert.Len(t, rows, 1)
	assert.GreaterOrEqual(t, len(sr.Ended()), 3)
}
