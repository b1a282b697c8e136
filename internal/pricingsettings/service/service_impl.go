package service

import (
	"context"
	"strings"

	categorydomain "github.com/atelierlabs/fotura/internal/category/domain"
	"github.com/atelierlabs/fotura/internal/clock"
	"github.com/atelierlabs/fotura/internal/pricing"
	settingsdomain "github.com/atelierlabs/fotura/internal/pricingsettings/domain"
	tabledomain "github.com/atelierlabs/fotura/internal/pricingtable/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	Repo         settingsdomain.Repository
	TableRepo    tabledomain.Repository
	TableSvc     tabledomain.Service
	CategoryRepo categorydomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	repo         settingsdomain.Repository
	tableRepo    tabledomain.Repository
	tableSvc     tabledomain.Service
	categoryRepo categorydomain.Repository
}

func New(p Params) settingsdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("pricingsettings.service"),
		clock:        p.Clock,
		repo:         p.Repo,
		tableRepo:    p.TableRepo,
		tableSvc:     p.TableSvc,
		categoryRepo: p.CategoryRepo,
	}
}

func (s *Service) Get(ctx context.Context) (*settingsdomain.Response, error) {
	settings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, settings)
}

func (s *Service) Update(ctx context.Context, req settingsdomain.UpdateRequest) (*settingsdomain.Response, error) {
	mode, ok := pricing.ParseMode(req.Mode)
	if !ok {
		return nil, settingsdomain.ErrInvalidMode
	}

	settings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	settings.Mode = string(mode)

	if req.FixedValue != nil {
		value, clamped := pricing.DecimalFromFloat(*req.FixedValue)
		if clamped || value.IsNegative() {
			return nil, settingsdomain.ErrInvalidFixedValue
		}
		settings.FixedValue = value
	}

	if req.GlobalTableID != nil {
		raw := strings.TrimSpace(*req.GlobalTableID)
		if raw == "" {
			settings.GlobalTableID = nil
		} else {
			tableID, err := snowflake.ParseString(raw)
			if err != nil {
				return nil, settingsdomain.ErrInvalidTable
			}
			table, err := s.tableRepo.FindByID(ctx, s.db, tableID)
			if err != nil {
				return nil, err
			}
			if table == nil {
				return nil, settingsdomain.ErrInvalidTable
			}
			settings.GlobalTableID = &tableID
		}
	}

	// Switching to global-table mode without any table configured creates
	// the example table and links it. Documented convenience; the admin UI
	// expects a usable table to appear.
	if mode == pricing.ModeGlobalTable && settings.GlobalTableID == nil {
		example, err := s.tableSvc.CreateExample(ctx)
		if err != nil {
			return nil, err
		}
		exampleID, err := snowflake.ParseString(example.ID)
		if err != nil {
			return nil, err
		}
		settings.GlobalTableID = &exampleID
		s.log.Info("auto-created example table on mode switch",
			zap.String("table_id", example.ID),
		)
	}

	settings.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, s.db, settings); err != nil {
		return nil, err
	}

	return s.toResponse(ctx, settings)
}

func (s *Service) LiveContext(ctx context.Context, hints categorydomain.Hints) (pricing.Context, error) {
	settings, err := s.load(ctx)
	if err != nil {
		return pricing.Context{}, err
	}

	mode, ok := pricing.ParseMode(settings.Mode)
	if !ok {
		mode = pricing.ModeFixed
	}

	switch mode {
	case pricing.ModeFixed:
		return pricing.Context{Mode: mode, FixedValue: settings.FixedValue}, nil

	case pricing.ModeGlobalTable:
		if settings.GlobalTableID == nil {
			s.log.Warn("global-table mode without a table, pricing at zero")
			return pricing.Context{Mode: mode}, nil
		}
		table, err := s.tableRepo.FindByID(ctx, s.db, *settings.GlobalTableID)
		if err != nil {
			return pricing.Context{}, err
		}
		if table == nil {
			s.log.Warn("configured global table missing, pricing at zero",
				zap.String("table_id", settings.GlobalTableID.String()),
			)
			return pricing.Context{Mode: mode}, nil
		}
		return pricing.Context{
			Mode:      mode,
			TableName: table.Name,
			Ranges:    tabledomain.CloneRanges(table.Ranges),
		}, nil

	default: // per-category
		categories, err := s.categoryRepo.List(ctx, s.db)
		if err != nil {
			return pricing.Context{}, err
		}
		category := categorydomain.Resolve(categories, hints)
		if category == nil || category.PricingTableID == nil {
			return pricing.Context{Mode: mode}, nil
		}
		table, err := s.tableRepo.FindByID(ctx, s.db, *category.PricingTableID)
		if err != nil {
			return pricing.Context{}, err
		}
		if table == nil {
			return pricing.Context{Mode: mode}, nil
		}
		return pricing.Context{
			Mode:      mode,
			TableName: table.Name,
			Ranges:    tabledomain.CloneRanges(table.Ranges),
		}, nil
	}
}

// load returns the singleton row, defaulting to fixed-at-zero before the
// first save so calculation paths always have a mode to work with.
func (s *Service) load(ctx context.Context) (*settingsdomain.Settings, error) {
	settings, err := s.repo.Get(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = &settingsdomain.Settings{
			ID:         settingsdomain.SettingsRowID,
			Mode:       string(pricing.ModeFixed),
			FixedValue: decimal.Zero,
			UpdatedAt:  s.clock.Now(),
		}
	}
	return settings, nil
}

func (s *Service) toResponse(ctx context.Context, settings *settingsdomain.Settings) (*settingsdomain.Response, error) {
	resp := &settingsdomain.Response{
		Mode:       settings.Mode,
		FixedValue: settings.FixedValue.StringFixed(2),
		UpdatedAt:  settings.UpdatedAt,
	}
	if settings.GlobalTableID != nil {
		resp.GlobalTableID = settings.GlobalTableID.String()
		table, err := s.tableSvc.Get(ctx, resp.GlobalTableID)
		if err == nil {
			resp.GlobalTable = table
		} else if err != tabledomain.ErrNotFound {
			return nil, err
		}
	}
	return resp, nil
}
