package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/megaprint/megaprint/internal/clock"
	"github.com/megaprint/megaprint/internal/debt/domain"
	"github.com/megaprint/megaprint/internal/debt/repository"
	"github.com/megaprint/megaprint/internal/overage"
	sellerdomain "github.com/megaprint/megaprint/internal/seller/domain"
	sellerrepo "github.com/megaprint/megaprint/internal/seller/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	svc    domain.Service
	db     *gorm.DB
	node   *snowflake.Node
	clock  *clock.FakeClock
	seller sellerdomain.Seller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.DebtEntry{}, &sellerdomain.Seller{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2026, 8, 26, 15, 0, 0, 0, time.UTC))

	now := time.Now().UTC()
	seller := sellerdomain.Seller{
		ID:        node.Generate(),
		Name:      "Debtor",
		Email:     "debtor@example.com",
		Status:    sellerdomain.StatusApproved,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, sellerrepo.Provide().Insert(context.Background(), db, &seller))

	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		Clock:   fakeClock,
		Repo:    repository.Provide(),
		Sellers: sellerrepo.Provide(),
	})

	return &fixture{svc: svc, db: db, node: node, clock: fakeClock, seller: seller}
}

func (f *fixture) seedEntry(t *testing.T, sellerID snowflake.ID, amountCents int64) domain.DebtEntry {
	t.Helper()
	entry := domain.NewOverageEntry(f.node.Generate(), sellerID, overage.Charge{
		ExcessDaily: amountCents / 50,
		AmountCents: amountCents,
	}, "2026-08-26", f.clock.Now())
	require.NotNil(t, entry)
	require.NoError(t, repository.Provide().Insert(context.Background(), f.db, entry))
	return *entry
}

func TestNewOverageEntry(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	now := time.Now().UTC()

	entry := domain.NewOverageEntry(node.Generate(), node.Generate(), overage.Charge{
		ExcessDaily: 5,
		AmountCents: 250,
	}, "2026-08-26", now)
	require.NotNil(t, entry)
	assert.Equal(t, domain.KindDailyOverage, entry.Kind)
	assert.Equal(t, domain.StatePending, entry.State)
	assert.Equal(t, int64(5), entry.ExcessUnits)

	weekly := domain.NewOverageEntry(node.Generate(), node.Generate(), overage.Charge{
		ExcessWeekly: 3,
		AmountCents:  150,
	}, "2026-08-24", now)
	require.NotNil(t, weekly)
	assert.Equal(t, domain.KindWeeklyOverage, weekly.Kind)

	// Batches within limits never create ledger entries.
	assert.Nil(t, domain.NewOverageEntry(node.Generate(), node.Generate(), overage.Charge{}, "2026-08-26", now))
}

func TestDebtLifecycle(t *testing.T) {
	f := newFixture(t)
	entry := f.seedEntry(t, f.seller.ID, 250)

	submitted, err := f.svc.AttachProof(context.Background(), domain.AttachProofRequest{
		ID:                 entry.ID.String(),
		PaymentMethod:      "transfer",
		ReferenceCode:      "TX-1001",
		ProofAttachmentRef: "uploads/tx-1001.png",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatePendingVerification, submitted.State)
	assert.Nil(t, submitted.ResolvedAt)

	paid, err := f.svc.Approve(context.Background(), domain.ReviewDebtRequest{ID: entry.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, domain.StatePaid, paid.State)
	require.NotNil(t, paid.ResolvedAt)

	// A retried approve on a settled entry reports the stale state so the
	// caller knows it was already applied.
	_, err = f.svc.Approve(context.Background(), domain.ReviewDebtRequest{ID: entry.ID.String()})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	// Settled entries no longer accept payment proof.
	_, err = f.svc.AttachProof(context.Background(), domain.AttachProofRequest{
		ID:            entry.ID.String(),
		PaymentMethod: "transfer",
		ReferenceCode: "TX-9999",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	unchanged, err := f.svc.ListBySeller(context.Background(), domain.ListSellerDebtRequest{SellerID: f.seller.ID.String()})
	require.NoError(t, err)
	require.Len(t, unchanged.Entries, 1)
	assert.Equal(t, "TX-1001", unchanged.Entries[0].ReferenceCode)
	assert.Equal(t, domain.StatePaid, unchanged.Entries[0].State)
}

func TestRejectedDebtCanBeResubmitted(t *testing.T) {
	f := newFixture(t)
	entry := f.seedEntry(t, f.seller.ID, 500)

	_, err := f.svc.AttachProof(context.Background(), domain.AttachProofRequest{
		ID:            entry.ID.String(),
		PaymentMethod: "cash",
		ReferenceCode: "CASH-1",
	})
	require.NoError(t, err)

	rejected, err := f.svc.Reject(context.Background(), domain.ReviewDebtRequest{ID: entry.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, domain.StateRejected, rejected.State)
	require.NotNil(t, rejected.ResolvedAt)

	resubmitted, err := f.svc.AttachProof(context.Background(), domain.AttachProofRequest{
		ID:            entry.ID.String(),
		PaymentMethod: "transfer",
		ReferenceCode: "TX-2002",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatePendingVerification, resubmitted.State)
	assert.Nil(t, resubmitted.ResolvedAt)
	assert.Equal(t, "TX-2002", resubmitted.ReferenceCode)
}

func TestAttachProofInvalidStates(t *testing.T) {
	f := newFixture(t)
	entry := f.seedEntry(t, f.seller.ID, 100)

	_, err := f.svc.AttachProof(context.Background(), domain.AttachProofRequest{
		ID:            entry.ID.String(),
		PaymentMethod: "transfer",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)

	_, err = f.svc.AttachProof(context.Background(), domain.AttachProofRequest{
		ID:            entry.ID.String(),
		PaymentMethod: "transfer",
		ReferenceCode: "TX-1",
	})
	require.NoError(t, err)

	// Already under review.
	_, err = f.svc.AttachProof(context.Background(), domain.AttachProofRequest{
		ID:            entry.ID.String(),
		PaymentMethod: "transfer",
		ReferenceCode: "TX-2",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestApproveRequiresReview(t *testing.T) {
	f := newFixture(t)
	entry := f.seedEntry(t, f.seller.ID, 100)

	_, err := f.svc.Approve(context.Background(), domain.ReviewDebtRequest{ID: entry.ID.String()})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.svc.Approve(context.Background(), domain.ReviewDebtRequest{ID: f.node.Generate().String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListAggregates(t *testing.T) {
	f := newFixture(t)

	other := sellerdomain.Seller{
		ID:        f.node.Generate(),
		Name:      "Second Debtor",
		Email:     "second@example.com",
		Status:    sellerdomain.StatusApproved,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, sellerrepo.Provide().Insert(context.Background(), f.db, &other))

	f.seedEntry(t, f.seller.ID, 250)
	f.seedEntry(t, f.seller.ID, 150)
	paid := f.seedEntry(t, other.ID, 1000)
	f.seedEntry(t, other.ID, 100)

	_, err := f.svc.AttachProof(context.Background(), domain.AttachProofRequest{
		ID:            paid.ID.String(),
		PaymentMethod: "transfer",
		ReferenceCode: "TX-3",
	})
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), domain.ReviewDebtRequest{ID: paid.ID.String()})
	require.NoError(t, err)

	resp, err := f.svc.List(context.Background(), domain.ListDebtRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Entries, 4)
	// Settled debt drops out of the aggregates.
	assert.Equal(t, int64(500), resp.TotalDebtCents)
	assert.Equal(t, int64(2), resp.SellersWithDebt)
	assert.Equal(t, int64(250), resp.AveragePerSellerCents)

	bySeller, err := f.svc.ListBySeller(context.Background(), domain.ListSellerDebtRequest{SellerID: f.seller.ID.String()})
	require.NoError(t, err)
	assert.Len(t, bySeller.Entries, 2)
	assert.Equal(t, int64(400), bySeller.OpenTotalCents)
}
