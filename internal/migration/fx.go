package migration

import (
	"strings"

	catalogdomain "github.com/megaprint/megaprint/internal/catalog/domain"
	debtdomain "github.com/megaprint/megaprint/internal/debt/domain"
	printingdomain "github.com/megaprint/megaprint/internal/printing/domain"
	quotadomain "github.com/megaprint/megaprint/internal/quota/domain"
	quotaconfigdomain "github.com/megaprint/megaprint/internal/quotaconfig/domain"
	sellerdomain "github.com/megaprint/megaprint/internal/seller/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		if !strings.EqualFold(conn.Dialector.Name(), "postgres") {
			// Embedded SQL migrations target postgres. Other dialects are
			// used for local development and tests only.
			return conn.AutoMigrate(
				&sellerdomain.Seller{},
				&catalogdomain.CatalogItem{},
				&quotadomain.PrintCounter{},
				&printingdomain.PrintBatch{},
				&debtdomain.DebtEntry{},
				&quotaconfigdomain.Setting{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
