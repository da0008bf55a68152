package debt

import (
	"github.com/megaprint/megaprint/internal/debt/repository"
	"github.com/megaprint/megaprint/internal/debt/service"
	"go.uber.org/fx"
)

var Module = fx.Module("debt.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
