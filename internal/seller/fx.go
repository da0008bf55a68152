package seller

import (
	"github.com/megaprint/megaprint/internal/seller/repository"
	"github.com/megaprint/megaprint/internal/seller/service"
	"go.uber.org/fx"
)

var Module = fx.Module("seller.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
