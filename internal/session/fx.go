package session

import (
	"github.com/atelierlabs/fotura/internal/session/repository"
	"github.com/atelierlabs/fotura/internal/session/service"
	"go.uber.org/fx"
)

var Module = fx.Module("session.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
