package pricingsettings

import (
	"github.com/atelierlabs/fotura/internal/freeze"
	settingsdomain "github.com/atelierlabs/fotura/internal/pricingsettings/domain"
	"github.com/atelierlabs/fotura/internal/pricingsettings/repository"
	"github.com/atelierlabs/fotura/internal/pricingsettings/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricingsettings.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(s settingsdomain.Service) freeze.LiveSource { return s }),
)
