package category

import (
	"github.com/atelierlabs/fotura/internal/category/repository"
	"github.com/atelierlabs/fotura/internal/category/service"
	"go.uber.org/fx"
)

var Module = fx.Module("category.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
