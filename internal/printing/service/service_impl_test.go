package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/megaprint/megaprint/internal/catalog/domain"
	catalogrepo "github.com/megaprint/megaprint/internal/catalog/repository"
	"github.com/megaprint/megaprint/internal/clock"
	"github.com/megaprint/megaprint/internal/config"
	debtdomain "github.com/megaprint/megaprint/internal/debt/domain"
	debtrepo "github.com/megaprint/megaprint/internal/debt/repository"
	"github.com/megaprint/megaprint/internal/printing/domain"
	"github.com/megaprint/megaprint/internal/printing/repository"
	quotadomain "github.com/megaprint/megaprint/internal/quota/domain"
	"github.com/megaprint/megaprint/internal/quota/provisional"
	quotarepo "github.com/megaprint/megaprint/internal/quota/repository"
	quotaservice "github.com/megaprint/megaprint/internal/quota/service"
	quotaconfigdomain "github.com/megaprint/megaprint/internal/quotaconfig/domain"
	quotaconfigrepo "github.com/megaprint/megaprint/internal/quotaconfig/repository"
	quotaconfigservice "github.com/megaprint/megaprint/internal/quotaconfig/service"
	sellerdomain "github.com/megaprint/megaprint/internal/seller/domain"
	sellerrepo "github.com/megaprint/megaprint/internal/seller/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	svc      domain.Service
	quota    quotadomain.Service
	settings quotaconfigdomain.Service
	db       *gorm.DB
	node     *snowflake.Node
	clock    *clock.FakeClock
	seller   sellerdomain.Seller
	item     catalogdomain.CatalogItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&sellerdomain.Seller{},
		&catalogdomain.CatalogItem{},
		&quotadomain.PrintCounter{},
		&quotaconfigdomain.Setting{},
		&debtdomain.DebtEntry{},
		&domain.PrintBatch{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	holder, err := config.NewQuotaDefaultsHolder()
	require.NoError(t, err)

	settings := quotaconfigservice.New(quotaconfigservice.Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     quotaconfigrepo.Provide(),
		Defaults: holder,
	})

	fakeClock := clock.NewFakeClock(time.Date(2026, 8, 26, 15, 0, 0, 0, time.UTC))

	quota := quotaservice.New(quotaservice.Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Cfg:         config.Config{QuotaUTCOffsetMinutes: 0},
		Clock:       fakeClock,
		Repo:        quotarepo.Provide(),
		Sellers:     sellerrepo.Provide(),
		Catalog:     catalogrepo.Provide(),
		Settings:    settings,
		Provisional: provisional.NewStore(),
	})

	now := time.Now().UTC()
	seller := sellerdomain.Seller{
		ID:        node.Generate(),
		Name:      "Print Seller",
		Email:     "prints@example.com",
		Status:    sellerdomain.StatusApproved,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, sellerrepo.Provide().Insert(context.Background(), db, &seller))

	item := catalogdomain.CatalogItem{
		ID:        node.Generate(),
		Name:      "Pool Flyer",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, catalogrepo.Provide().Insert(context.Background(), db, &item))

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fakeClock,
		Repo:     repository.Provide(),
		Sellers:  sellerrepo.Provide(),
		Catalog:  catalogrepo.Provide(),
		Quota:    quota,
		Settings: settings,
		Debts:    debtrepo.Provide(),
	})

	return &fixture{
		svc:      svc,
		quota:    quota,
		settings: settings,
		db:       db,
		node:     node,
		clock:    fakeClock,
		seller:   seller,
		item:     item,
	}
}

// batch builds a single-item confirmation against the fixture's pool item.
func (f *fixture) batch(units int64) domain.ConfirmRequest {
	return domain.ConfirmRequest{
		SellerID: f.seller.ID.String(),
		Items: []domain.ConfirmItem{
			{ItemID: f.item.ID.String(), Quantity: units},
		},
	}
}

func (f *fixture) setLimits(t *testing.T, daily, weekly int64, unitCost float64) {
	t.Helper()
	_, err := f.settings.Update(context.Background(), quotaconfigdomain.UpdateSettingsRequest{
		DailyLimit:      &daily,
		WeeklyLimit:     &weekly,
		OverageUnitCost: &unitCost,
	})
	require.NoError(t, err)
}

func TestConfirmWithinLimits(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Confirm(context.Background(), f.batch(10))
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.DailyUsed)
	assert.Equal(t, int64(10), result.WeeklyUsed)
	assert.Zero(t, result.ChargeCents)
	assert.Nil(t, result.Debt)
	require.NotNil(t, result.Batch)
	assert.Equal(t, int64(10), result.Batch.Units)
	assert.Zero(t, result.Batch.DebtEntryID)

	items, err := result.Batch.DecodeItems()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, f.item.ID, items[0].ItemID)
	assert.Equal(t, int64(10), items[0].Units)
}

func TestConfirmMultiItemBatch(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()

	second := catalogdomain.CatalogItem{
		ID:        f.node.Generate(),
		Name:      "Second Flyer",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, catalogrepo.Provide().Insert(context.Background(), f.db, &second))

	result, err := f.svc.Confirm(context.Background(), domain.ConfirmRequest{
		SellerID: f.seller.ID.String(),
		Items: []domain.ConfirmItem{
			{ItemID: f.item.ID.String(), Quantity: 4},
			{ItemID: second.ID.String(), Quantity: 0},
			{ItemID: second.ID.String(), Quantity: 6},
			{ItemID: f.item.ID.String(), Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), result.DailyUsed)
	require.NotNil(t, result.Batch)
	assert.Equal(t, int64(12), result.Batch.Units)

	// Zero-quantity entries drop out; repeated items merge.
	items, err := result.Batch.DecodeItems()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(6), items[0].Units)
	assert.Equal(t, int64(6), items[1].Units)

	counters, err := quotarepo.Provide().ListBySeller(context.Background(), f.db, f.seller.ID)
	require.NoError(t, err)
	// Seller-wide daily and weekly, plus both windows per item.
	assert.Len(t, counters, 6)
}

func TestConfirmEmptyBatchIsNoOp(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Confirm(context.Background(), f.batch(5))
	require.NoError(t, err)

	result, err := f.svc.Confirm(context.Background(), domain.ConfirmRequest{
		SellerID: f.seller.ID.String(),
	})
	require.NoError(t, err)
	assert.Nil(t, result.Batch)
	assert.Nil(t, result.Debt)
	assert.Equal(t, int64(5), result.DailyUsed)

	// All-zero quantities count as empty too.
	result, err = f.svc.Confirm(context.Background(), f.batch(0))
	require.NoError(t, err)
	assert.Nil(t, result.Batch)

	resp, err := f.svc.ListBatches(context.Background(), domain.ListBatchesRequest{
		SellerID: f.seller.ID.String(),
	})
	require.NoError(t, err)
	assert.Len(t, resp.Batches, 1)
}

func TestConfirmChargesDailyOverage(t *testing.T) {
	f := newFixture(t)
	f.setLimits(t, 30, 120, 0.50)

	result, err := f.svc.Confirm(context.Background(), f.batch(35))
	require.NoError(t, err)
	assert.Equal(t, int64(250), result.ChargeCents)
	assert.Equal(t, int64(5), result.ExcessUnits)
	require.NotNil(t, result.Debt)
	assert.Equal(t, debtdomain.KindDailyOverage, result.Debt.Kind)
	assert.Equal(t, debtdomain.StatePending, result.Debt.State)
	require.NotNil(t, result.Batch)
	assert.Equal(t, result.Debt.ID, result.Batch.DebtEntryID)

	entries, err := debtrepo.Provide().ListBySeller(context.Background(), f.db, f.seller.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(250), entries[0].AmountCents)
}

func TestConfirmChargesMarginallyAcrossBatches(t *testing.T) {
	f := newFixture(t)
	f.setLimits(t, 30, 150, 0.50)

	first, err := f.svc.Confirm(context.Background(), f.batch(20))
	require.NoError(t, err)
	assert.Zero(t, first.ChargeCents)

	// 20 already used: the next 30 push the day to 50, 20 beyond the limit.
	second, err := f.svc.Confirm(context.Background(), f.batch(30))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), second.ChargeCents)
	assert.Equal(t, int64(50), second.DailyUsed)

	// Only the second batch crossed the limit.
	entries, err := debtrepo.Provide().ListBySeller(context.Background(), f.db, f.seller.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestConfirmRequiresApprovedSeller(t *testing.T) {
	f := newFixture(t)

	pending := sellerdomain.Seller{
		ID:        f.node.Generate(),
		Name:      "Pending",
		Email:     "pending-print@example.com",
		Status:    sellerdomain.StatusPending,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, sellerrepo.Provide().Insert(context.Background(), f.db, &pending))

	req := f.batch(5)
	req.SellerID = pending.ID.String()
	_, err := f.svc.Confirm(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrSellerNotApproved)

	req.SellerID = f.node.Generate().String()
	_, err = f.svc.Confirm(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfirmValidatesUnits(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Confirm(context.Background(), f.batch(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidUnits)

	_, err = f.svc.Confirm(context.Background(), f.batch(domain.MaxBatchUnits+1))
	assert.ErrorIs(t, err, domain.ErrInvalidUnits)
}

func TestConfirmValidatesCatalogItem(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()

	inactive := catalogdomain.CatalogItem{
		ID:        f.node.Generate(),
		Name:      "Retired",
		Active:    false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, catalogrepo.Provide().Insert(context.Background(), f.db, &inactive))

	foreign := catalogdomain.CatalogItem{
		ID:        f.node.Generate(),
		Name:      "Someone else's",
		SellerID:  f.node.Generate(),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, catalogrepo.Provide().Insert(context.Background(), f.db, &foreign))

	confirm := func(itemID string) error {
		_, err := f.svc.Confirm(context.Background(), domain.ConfirmRequest{
			SellerID: f.seller.ID.String(),
			Items: []domain.ConfirmItem{
				{ItemID: itemID, Quantity: 5},
			},
		})
		return err
	}

	assert.ErrorIs(t, confirm(inactive.ID.String()), domain.ErrItemInactive)
	assert.ErrorIs(t, confirm(foreign.ID.String()), domain.ErrItemNotAvailable)
	assert.ErrorIs(t, confirm(f.node.Generate().String()), domain.ErrNotFound)
	assert.ErrorIs(t, confirm(""), domain.ErrInvalidID)

	// A bad item anywhere in the batch applies nothing.
	_, err := f.svc.Confirm(context.Background(), domain.ConfirmRequest{
		SellerID: f.seller.ID.String(),
		Items: []domain.ConfirmItem{
			{ItemID: f.item.ID.String(), Quantity: 3},
			{ItemID: inactive.ID.String(), Quantity: 2},
		},
	})
	assert.ErrorIs(t, err, domain.ErrItemInactive)

	counts, err := f.quota.Counts(context.Background(), quotadomain.CountsRequest{SellerID: f.seller.ID.String()})
	require.NoError(t, err)
	assert.Zero(t, counts.DailyUsed)
}

func TestConfirmConcurrentBatches(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Confirm(context.Background(), f.batch(10))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// Neither confirmation may lose the other's write.
	counts, err := f.quota.Counts(context.Background(), quotadomain.CountsRequest{SellerID: f.seller.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(20), counts.DailyUsed)
	assert.Equal(t, int64(20), counts.WeeklyUsed)

	resp, err := f.svc.ListBatches(context.Background(), domain.ListBatchesRequest{
		SellerID: f.seller.ID.String(),
	})
	require.NoError(t, err)
	assert.Len(t, resp.Batches, 2)
}

// duplicateKeyQuota fails ApplyTx the way the loser of a counter-creation
// race does on postgres, then delegates.
type duplicateKeyQuota struct {
	quotadomain.Service
	failures int
}

func (q *duplicateKeyQuota) ApplyTx(ctx context.Context, tx *gorm.DB, sellerID snowflake.ID, items []quotadomain.ItemUnits, now time.Time) (quotadomain.Totals, error) {
	if q.failures > 0 {
		q.failures--
		return quotadomain.Totals{}, errors.New(`ERROR: duplicate key value violates unique constraint "idx_print_counters_scope" (SQLSTATE 23505)`)
	}
	return q.Service.ApplyTx(ctx, tx, sellerID, items, now)
}

func TestConfirmRetriesCounterCreationRace(t *testing.T) {
	f := newFixture(t)

	flaky := &duplicateKeyQuota{Service: f.quota, failures: 1}
	svc := New(Params{
		DB:       f.db,
		Log:      zap.NewNop(),
		GenID:    f.node,
		Clock:    f.clock,
		Repo:     repository.Provide(),
		Sellers:  sellerrepo.Provide(),
		Catalog:  catalogrepo.Provide(),
		Quota:    flaky,
		Settings: f.settings,
		Debts:    debtrepo.Provide(),
	})

	result, err := svc.Confirm(context.Background(), f.batch(10))
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.DailyUsed)
	assert.Zero(t, flaky.failures)
}

func TestConfirmReleasesProvisionalTally(t *testing.T) {
	f := newFixture(t)

	_, err := f.quota.RecordProvisional(context.Background(), quotadomain.RecordProvisionalRequest{
		SellerID: f.seller.ID.String(),
		ItemID:   f.item.ID.String(),
		Units:    10,
	})
	require.NoError(t, err)

	_, err = f.svc.Confirm(context.Background(), f.batch(10))
	require.NoError(t, err)

	counts, err := f.quota.Counts(context.Background(), quotadomain.CountsRequest{SellerID: f.seller.ID.String()})
	require.NoError(t, err)
	assert.Zero(t, counts.ProvisionalDaily)
	assert.Equal(t, int64(10), counts.DailyUsed)
}

func TestConfirmSkipsChargeWhenQuotaDisabled(t *testing.T) {
	f := newFixture(t)
	disabled := false
	_, err := f.settings.Update(context.Background(), quotaconfigdomain.UpdateSettingsRequest{
		ApplyToAllSellers: &disabled,
	})
	require.NoError(t, err)

	result, err := f.svc.Confirm(context.Background(), f.batch(500))
	require.NoError(t, err)
	assert.Zero(t, result.ChargeCents)
	assert.Nil(t, result.Debt)
	assert.Equal(t, int64(500), result.DailyUsed)
}

func TestListBatches(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Confirm(context.Background(), f.batch(int64(i+1)))
		require.NoError(t, err)
	}

	resp, err := f.svc.ListBatches(context.Background(), domain.ListBatchesRequest{
		SellerID: f.seller.ID.String(),
	})
	require.NoError(t, err)
	assert.Len(t, resp.Batches, 3)
}
