package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/atelierlabs/fotura/internal/category"
	"github.com/atelierlabs/fotura/internal/clock"
	"github.com/atelierlabs/fotura/internal/config"
	"github.com/atelierlabs/fotura/internal/freeze"
	"github.com/atelierlabs/fotura/internal/logger"
	"github.com/atelierlabs/fotura/internal/migration"
	"github.com/atelierlabs/fotura/internal/pricing"
	"github.com/atelierlabs/fotura/internal/pricingsettings"
	"github.com/atelierlabs/fotura/internal/pricingtable"
	"github.com/atelierlabs/fotura/internal/recalc"
	"github.com/atelierlabs/fotura/internal/server"
	"github.com/atelierlabs/fotura/internal/session"
	"github.com/atelierlabs/fotura/pkg/db"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),
		fx.Provide(newDBConfig),
		db.Module,
		migration.Module,

		// Pricing domains
		pricing.Module,
		pricingtable.Module,
		category.Module,
		pricingsettings.Module,
		freeze.Module,
		session.Module,
		recalc.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func newDBConfig(cfg config.Config) db.Config {
	return db.Config{
		Type:            cfg.DBType,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		SSLMode:         cfg.DBSSLMode,
		Path:            cfg.DBPath,
		MaxIdleConn:     cfg.DBMaxIdleConn,
		MaxOpenConn:     cfg.DBMaxOpenConn,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	}
}
