package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/megaprint/megaprint/internal/catalog/domain"
	"github.com/megaprint/megaprint/internal/catalog/repository"
	sellerdomain "github.com/megaprint/megaprint/internal/seller/domain"
	sellerrepo "github.com/megaprint/megaprint/internal/seller/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	svc  domain.Service
	db   *gorm.DB
	node *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.CatalogItem{}, &sellerdomain.Seller{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    repository.Provide(),
		Sellers: sellerrepo.Provide(),
	})

	return &fixture{svc: svc, db: db, node: node}
}

func (f *fixture) seedSeller(t *testing.T) sellerdomain.Seller {
	t.Helper()
	now := time.Now().UTC()
	seller := sellerdomain.Seller{
		ID:        f.node.Generate(),
		Name:      "Shop Seller",
		Email:     fmt.Sprintf("%d@example.com", f.node.Generate()),
		Status:    sellerdomain.StatusApproved,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, sellerrepo.Provide().Insert(context.Background(), f.db, &seller))
	return seller
}

func TestCreateCatalogItem(t *testing.T) {
	f := newFixture(t)

	item, err := f.svc.Create(context.Background(), domain.CreateItemRequest{
		Name:     "Sunset Poster",
		Category: "posters",
		FileRef:  "designs/sunset.pdf",
	})
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.True(t, item.Active)
	assert.Zero(t, item.SellerID)

	_, err = f.svc.Create(context.Background(), domain.CreateItemRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestAssignCatalogItem(t *testing.T) {
	f := newFixture(t)
	seller := f.seedSeller(t)

	item, err := f.svc.Create(context.Background(), domain.CreateItemRequest{Name: "Logo Tee"})
	require.NoError(t, err)

	assigned, err := f.svc.Assign(context.Background(), domain.AssignItemRequest{
		ID:       item.ID.String(),
		SellerID: seller.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, seller.ID, assigned.SellerID)

	// Empty seller returns the item to the shared pool.
	pooled, err := f.svc.Assign(context.Background(), domain.AssignItemRequest{ID: item.ID.String()})
	require.NoError(t, err)
	assert.Zero(t, pooled.SellerID)
}

func TestAssignCatalogItemUnknownSeller(t *testing.T) {
	f := newFixture(t)

	item, err := f.svc.Create(context.Background(), domain.CreateItemRequest{Name: "Mug"})
	require.NoError(t, err)

	_, err = f.svc.Assign(context.Background(), domain.AssignItemRequest{
		ID:       item.ID.String(),
		SellerID: f.node.Generate().String(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSeller)
}

func TestListCatalogItems(t *testing.T) {
	f := newFixture(t)
	seller := f.seedSeller(t)

	poster, err := f.svc.Create(context.Background(), domain.CreateItemRequest{Name: "Poster", Category: "posters"})
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), domain.CreateItemRequest{Name: "Sticker", Category: "stickers"})
	require.NoError(t, err)

	_, err = f.svc.Assign(context.Background(), domain.AssignItemRequest{
		ID:       poster.ID.String(),
		SellerID: seller.ID.String(),
	})
	require.NoError(t, err)

	resp, err := f.svc.List(context.Background(), domain.ListItemRequest{SellerID: seller.ID.String()})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Poster", resp.Items[0].Name)

	resp, err = f.svc.List(context.Background(), domain.ListItemRequest{PoolOnly: true})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Sticker", resp.Items[0].Name)
}

func TestSetCatalogItemActive(t *testing.T) {
	f := newFixture(t)

	item, err := f.svc.Create(context.Background(), domain.CreateItemRequest{Name: "Retired Design"})
	require.NoError(t, err)

	updated, err := f.svc.SetActive(context.Background(), domain.SetItemActiveRequest{ID: item.ID.String(), Active: false})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	resp, err := f.svc.List(context.Background(), domain.ListItemRequest{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}
