package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/megaprint/megaprint/internal/config"
	"github.com/megaprint/megaprint/internal/quotaconfig/domain"
	"github.com/megaprint/megaprint/internal/quotaconfig/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Setting{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	holder, err := config.NewQuotaDefaultsHolder()
	require.NoError(t, err)

	return New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     repository.Provide(),
		Defaults: holder,
	})
}

func TestGetSettingsFallsBackToDefaults(t *testing.T) {
	svc := newTestService(t)

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(30), settings.DailyLimit)
	assert.Equal(t, int64(150), settings.WeeklyLimit)
	assert.Equal(t, int64(50), settings.OverageUnitCostCents)
	assert.Equal(t, 0.50, settings.OverageUnitCost)
	assert.True(t, settings.ApplyToAllSellers)
}

func TestUpdateSettingsPartial(t *testing.T) {
	svc := newTestService(t)

	daily := int64(40)
	settings, err := svc.Update(context.Background(), domain.UpdateSettingsRequest{DailyLimit: &daily})
	require.NoError(t, err)
	assert.Equal(t, int64(40), settings.DailyLimit)
	// Untouched keys keep their defaults.
	assert.Equal(t, int64(150), settings.WeeklyLimit)
	assert.Equal(t, int64(50), settings.OverageUnitCostCents)
}

func TestUpdateSettingsNewestWins(t *testing.T) {
	svc := newTestService(t)

	cost := 0.75
	_, err := svc.Update(context.Background(), domain.UpdateSettingsRequest{OverageUnitCost: &cost})
	require.NoError(t, err)

	cost = 1.25
	settings, err := svc.Update(context.Background(), domain.UpdateSettingsRequest{OverageUnitCost: &cost})
	require.NoError(t, err)
	assert.Equal(t, int64(125), settings.OverageUnitCostCents)

	settings, err = svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(125), settings.OverageUnitCostCents)
	assert.Equal(t, 1.25, settings.OverageUnitCost)
}

func TestSettingsHistory(t *testing.T) {
	svc := newTestService(t)

	for _, cost := range []float64{0.75, 1.25} {
		c := cost
		_, err := svc.Update(context.Background(), domain.UpdateSettingsRequest{OverageUnitCost: &c})
		require.NoError(t, err)
	}

	revisions, err := svc.History(context.Background(), domain.HistoryRequest{Key: domain.KeyOverageUnitCostCents})
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	assert.Equal(t, "125", revisions[0].Value)
	assert.Equal(t, "75", revisions[1].Value)

	limited, err := svc.History(context.Background(), domain.HistoryRequest{Key: domain.KeyOverageUnitCostCents, Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "125", limited[0].Value)

	_, err = svc.History(context.Background(), domain.HistoryRequest{Key: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidKey)

	empty, err := svc.History(context.Background(), domain.HistoryRequest{Key: domain.KeyDailyLimit})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdateSettingsValidation(t *testing.T) {
	svc := newTestService(t)

	negative := int64(-1)
	_, err := svc.Update(context.Background(), domain.UpdateSettingsRequest{DailyLimit: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)

	badCost := -0.5
	_, err = svc.Update(context.Background(), domain.UpdateSettingsRequest{OverageUnitCost: &badCost})
	assert.ErrorIs(t, err, domain.ErrInvalidCost)

	_, err = svc.Update(context.Background(), domain.UpdateSettingsRequest{})
	assert.ErrorIs(t, err, domain.ErrEmptyUpdate)
}
