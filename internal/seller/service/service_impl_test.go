package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/megaprint/megaprint/internal/seller/domain"
	"github.com/megaprint/megaprint/internal/seller/repository"
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
	require.NoError(t, db.AutoMigrate(&domain.Seller{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreateSeller(t *testing.T) {
	svc := newTestService(t)

	seller, err := svc.Create(context.Background(), domain.CreateSellerRequest{
		Name:  "Maria Lopez",
		Email: "maria@example.com",
		Phone: "555-0101",
	})
	require.NoError(t, err)
	assert.NotZero(t, seller.ID)
	assert.Equal(t, domain.StatusPending, seller.Status)

	fetched, err := svc.GetByID(context.Background(), domain.GetSellerRequest{ID: seller.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, seller.ID, fetched.ID)
	assert.Equal(t, "maria@example.com", fetched.Email)
}

func TestCreateSellerValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateSellerRequest{Email: "a@b.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(context.Background(), domain.CreateSellerRequest{Name: "No Email"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Create(context.Background(), domain.CreateSellerRequest{Name: "Bad Email", Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestCreateSellerDuplicateEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateSellerRequest{
		Name:  "First",
		Email: "dup@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), domain.CreateSellerRequest{
		Name:  "Second",
		Email: "DUP@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestApproveSeller(t *testing.T) {
	svc := newTestService(t)

	seller, err := svc.Create(context.Background(), domain.CreateSellerRequest{
		Name:  "Pending Seller",
		Email: "pending@example.com",
	})
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), domain.ReviewSellerRequest{ID: seller.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Status)

	// A decided application cannot be reviewed again.
	_, err = svc.Approve(context.Background(), domain.ReviewSellerRequest{ID: seller.ID.String()})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = svc.Reject(context.Background(), domain.ReviewSellerRequest{ID: seller.ID.String()})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRejectSeller(t *testing.T) {
	svc := newTestService(t)

	seller, err := svc.Create(context.Background(), domain.CreateSellerRequest{
		Name:  "Applicant",
		Email: "applicant@example.com",
	})
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), domain.ReviewSellerRequest{ID: seller.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
}

func TestReviewSellerNotFound(t *testing.T) {
	svc := newTestService(t)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), domain.ReviewSellerRequest{ID: node.Generate().String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Approve(context.Background(), domain.ReviewSellerRequest{ID: "not-a-number"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestListSellersByStatus(t *testing.T) {
	svc := newTestService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), domain.CreateSellerRequest{
			Name:  fmt.Sprintf("Seller %d", i),
			Email: fmt.Sprintf("seller%d@example.com", i),
		})
		require.NoError(t, err)
	}

	resp, err := svc.List(context.Background(), domain.ListSellerRequest{Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, resp.Sellers, 3)

	resp, err = svc.List(context.Background(), domain.ListSellerRequest{Status: "approved"})
	require.NoError(t, err)
	assert.Empty(t, resp.Sellers)
}
