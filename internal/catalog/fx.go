package catalog

import (
	"github.com/megaprint/megaprint/internal/catalog/repository"
	"github.com/megaprint/megaprint/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
