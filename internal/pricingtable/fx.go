package pricingtable

import (
	"github.com/atelierlabs/fotura/internal/pricingtable/repository"
	"github.com/atelierlabs/fotura/internal/pricingtable/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricingtable.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
