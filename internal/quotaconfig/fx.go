package quotaconfig

import (
	"github.com/megaprint/megaprint/internal/quotaconfig/repository"
	"github.com/megaprint/megaprint/internal/quotaconfig/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quotaconfig.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
