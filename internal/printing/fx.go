package printing

import (
	"github.com/megaprint/megaprint/internal/printing/repository"
	"github.com/megaprint/megaprint/internal/printing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("printing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
