package quota

import (
	"github.com/megaprint/megaprint/internal/quota/provisional"
	"github.com/megaprint/megaprint/internal/quota/repository"
	"github.com/megaprint/megaprint/internal/quota/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quota.service",
	fx.Provide(provisional.NewStore),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
