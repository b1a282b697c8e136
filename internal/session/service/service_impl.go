package service

import (
	"context"
	"strings"

	categorydomain "github.com/atelierlabs/fotura/internal/category/domain"
	"github.com/atelierlabs/fotura/internal/clock"
	"github.com/atelierlabs/fotura/internal/freeze"
	"github.com/atelierlabs/fotura/internal/pricing"
	sessiondomain "github.com/atelierlabs/fotura/internal/session/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         sessiondomain.Repository
	CategoryRepo categorydomain.Repository
	Resolver     *freeze.Resolver
	Engine       *pricing.Engine
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         sessiondomain.Repository
	categoryRepo categorydomain.Repository
	resolver     *freeze.Resolver
	engine       *pricing.Engine
}

func New(p Params) sessiondomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("session.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		categoryRepo: p.CategoryRepo,
		resolver:     p.Resolver,
		engine:       p.Engine,
	}
}

func (s *Service) Create(ctx context.Context, req sessiondomain.CreateRequest) (*sessiondomain.Response, error) {
	clientName := strings.TrimSpace(req.ClientName)
	if clientName == "" {
		return nil, sessiondomain.ErrInvalidClient
	}

	quantity := pricing.SanitizeQuantity(req.ExtraPhotoQuantity)

	now := s.clock.Now()
	entity := &sessiondomain.Session{
		ID:                 s.genID.Generate(),
		ClientName:         clientName,
		CategoryPosition:   categorydomain.NoPosition,
		ExtraPhotoQuantity: quantity,
		UnitPrice:          decimal.Zero,
		TotalPrice:         decimal.Zero,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if raw := strings.TrimSpace(req.CategoryID); raw != "" {
		categoryID, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, sessiondomain.ErrInvalidCategory
		}
		category, err := s.categoryRepo.FindByID(ctx, s.db, categoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, sessiondomain.ErrInvalidCategory
		}
		entity.CategoryID = &categoryID
		entity.CategoryName = category.Name
		entity.CategoryPosition = category.Position
	}

	// The snapshot is captured at creation time so later configuration
	// edits never touch this session.
	snap, err := s.resolver.CaptureLive(ctx, hintsFor(entity), now)
	if err != nil {
		return nil, err
	}

	if req.ManualHistorical {
		if req.UnitPrice == nil || req.TotalPrice == nil {
			return nil, sessiondomain.ErrMissingManualData
		}
		unit, clampedUnit := pricing.DecimalFromFloat(*req.UnitPrice)
		total, clampedTotal := pricing.DecimalFromFloat(*req.TotalPrice)
		if clampedUnit || clampedTotal || unit.IsNegative() || total.IsNegative() {
			return nil, sessiondomain.ErrInvalidPrice
		}
		snap.Source = freeze.SourceManualHistorical
		entity.UnitPrice = unit
		entity.TotalPrice = total
	} else {
		result := s.engine.Compute(quantity, snap.Context())
		entity.UnitPrice = result.UnitPrice
		entity.TotalPrice = result.TotalPrice
	}

	payload, err := snap.Marshal()
	if err != nil {
		return nil, err
	}
	entity.FrozenRules = datatypes.JSON(payload)

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		return nil, err
	}

	s.log.Info("session created with frozen pricing rules",
		zap.String("session_id", entity.ID.String()),
		zap.String("mode", string(snap.Mode)),
		zap.Bool("manual_historical", req.ManualHistorical),
	)
	return s.toResponse(entity), nil
}

func (s *Service) List(ctx context.Context) ([]sessiondomain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]sessiondomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *s.toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*sessiondomain.Response, error) {
	entity, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(entity), nil
}

func (s *Service) Preview(ctx context.Context, id string, quantity int) (*sessiondomain.Computation, error) {
	entity, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	comp := &sessiondomain.Computation{
		SessionID:   entity.ID.String(),
		Quantity:    quantity,
		CachedUnit:  entity.UnitPrice,
		CachedTotal: entity.TotalPrice,
	}

	// The manual-historical guard runs before anything else; such sessions
	// never enter a compute path.
	if freeze.IsManualHistorical(entity.FrozenRules) {
		comp.ManualHistorical = true
		return comp, nil
	}

	res, err := s.resolver.Resolve(ctx, entity.FrozenRules, hintsFor(entity))
	if err != nil {
		return nil, err
	}

	comp.NeedsMigration = res.NeedsMigration
	comp.ManualHistorical = res.ManualHistorical
	if comp.ManualHistorical {
		return comp, nil
	}

	if res.Snapshot != nil {
		comp.ContextHash = res.Snapshot.Hash()
	} else {
		comp.ContextHash = freeze.HashContext(res.Context)
		comp.Snapshot = freeze.Capture(res.Context, s.clock.Now())
	}

	comp.Result = s.engine.Compute(quantity, res.Context)
	return comp, nil
}

func (s *Service) Apply(ctx context.Context, comp *sessiondomain.Computation, silent bool) (*sessiondomain.Response, error) {
	if comp.ManualHistorical {
		return nil, sessiondomain.ErrManualHistorical
	}

	sessionID, err := parseID(comp.SessionID)
	if err != nil {
		return nil, sessiondomain.ErrInvalidID
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Snapshot capture must land before any recomputed value derived
		// from live configuration, so a concurrent configuration edit can
		// never leave persisted values without the rules that produced them.
		if comp.NeedsMigration && comp.Snapshot != nil {
			payload, err := comp.Snapshot.Marshal()
			if err != nil {
				return err
			}
			if err := s.repo.SetFrozenRules(ctx, tx, sessionID, datatypes.JSON(payload), now); err != nil {
				return err
			}
		}
		return s.repo.UpdateValues(ctx, tx, sessionID, comp.Result.UnitPrice, comp.Result.TotalPrice, now)
	})
	if err != nil {
		return nil, err
	}

	if silent {
		s.log.Debug("session values recalculated",
			zap.String("session_id", comp.SessionID),
			zap.Int("quantity", comp.Quantity),
			zap.String("total", comp.Result.TotalPrice.StringFixed(2)),
		)
	} else {
		s.log.Info("session values updated",
			zap.String("session_id", comp.SessionID),
			zap.Int("quantity", comp.Quantity),
			zap.String("unit", comp.Result.UnitPrice.StringFixed(2)),
			zap.String("total", comp.Result.TotalPrice.StringFixed(2)),
			zap.Bool("migrated", comp.NeedsMigration),
		)
	}

	return s.Get(ctx, comp.SessionID)
}

func (s *Service) SetQuantity(ctx context.Context, id string, quantity int) (*sessiondomain.Response, error) {
	if quantity < 0 {
		quantity = 0
	}

	entity, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateQuantity(ctx, s.db, entity.ID, quantity, s.clock.Now()); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) SetManualPrice(ctx context.Context, id string, unitPrice, totalPrice float64) (*sessiondomain.Response, error) {
	entity, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	unit, clampedUnit := pricing.DecimalFromFloat(unitPrice)
	total, clampedTotal := pricing.DecimalFromFloat(totalPrice)
	if clampedUnit || clampedTotal || unit.IsNegative() || total.IsNegative() {
		return nil, sessiondomain.ErrInvalidPrice
	}

	now := s.clock.Now()
	if err := s.repo.UpdateValues(ctx, s.db, entity.ID, unit, total, now); err != nil {
		return nil, err
	}

	s.log.Info("session price edited manually",
		zap.String("session_id", id),
		zap.String("unit", unit.StringFixed(2)),
		zap.String("total", total.StringFixed(2)),
	)
	return s.Get(ctx, id)
}

func (s *Service) MigrateLegacy(ctx context.Context) (int, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return 0, err
	}

	migrated := 0
	for i := range items {
		entity := &items[i]

		if freeze.IsManualHistorical(entity.FrozenRules) {
			continue
		}

		res, err := s.resolver.Resolve(ctx, entity.FrozenRules, hintsFor(entity))
		if err != nil {
			return migrated, err
		}
		if !res.NeedsMigration {
			continue
		}

		snap := freeze.Capture(res.Context, s.clock.Now())
		payload, err := snap.Marshal()
		if err != nil {
			return migrated, err
		}
		if err := s.repo.SetFrozenRules(ctx, s.db, entity.ID, datatypes.JSON(payload), s.clock.Now()); err != nil {
			return migrated, err
		}
		migrated++
	}

	if migrated > 0 {
		s.log.Info("legacy sessions migrated to frozen rules", zap.Int("count", migrated))
	}
	return migrated, nil
}

func (s *Service) find(ctx context.Context, id string) (*sessiondomain.Session, error) {
	sessionID, err := parseID(id)
	if err != nil {
		return nil, sessiondomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, sessionID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, sessiondomain.ErrNotFound
	}
	return entity, nil
}

func (s *Service) toResponse(e *sessiondomain.Session) *sessiondomain.Response {
	resp := &sessiondomain.Response{
		ID:                 e.ID.String(),
		ClientName:         e.ClientName,
		CategoryName:       e.CategoryName,
		ExtraPhotoQuantity: e.ExtraPhotoQuantity,
		UnitPrice:          e.UnitPrice.StringFixed(2),
		TotalPrice:         e.TotalPrice.StringFixed(2),
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
	if e.CategoryID != nil {
		resp.CategoryID = e.CategoryID.String()
	}
	if snap, ok := freeze.Normalize(e.FrozenRules); ok && snap.Valid() {
		resp.Frozen = true
		resp.FrozenMode = string(snap.Mode)
		resp.ManualHistorical = snap.Source == freeze.SourceManualHistorical
	}
	return resp
}

func hintsFor(e *sessiondomain.Session) categorydomain.Hints {
	hints := categorydomain.Hints{
		Name:     e.CategoryName,
		Position: e.CategoryPosition,
	}
	if e.CategoryID != nil {
		hints.ID = int64(*e.CategoryID)
	}
	return hints
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
