package service

import (
	"context"
	"strings"

	categorydomain "github.com/atelierlabs/fotura/internal/category/domain"
	"github.com/atelierlabs/fotura/internal/clock"
	tabledomain "github.com/atelierlabs/fotura/internal/pricingtable/domain"
	"github.com/atelierlabs/fotura/pkg/db"
	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      categorydomain.Repository
	TableRepo tabledomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      categorydomain.Repository
	tableRepo tabledomain.Repository
}

func New(p Params) categorydomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("category.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		tableRepo: p.TableRepo,
	}
}

func (s *Service) Create(ctx context.Context, req categorydomain.CreateRequest) (*categorydomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, categorydomain.ErrInvalidName
	}

	tableID, err := s.optionalTableID(ctx, req.PricingTableID)
	if err != nil {
		return nil, err
	}

	position, err := s.repo.NextPosition(ctx, s.db)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	entity := &categorydomain.Category{
		ID:             s.genID.Generate(),
		Name:           name,
		Slug:           slug.Make(name),
		PricingTableID: tableID,
		Position:       position,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, categorydomain.ErrDuplicate
		}
		return nil, err
	}

	return toResponse(entity), nil
}

func (s *Service) List(ctx context.Context) ([]categorydomain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]categorydomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*categorydomain.Response, error) {
	categoryID, err := parseID(id)
	if err != nil {
		return nil, categorydomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, categoryID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, categorydomain.ErrNotFound
	}
	return toResponse(entity), nil
}

func (s *Service) Update(ctx context.Context, id string, req categorydomain.UpdateRequest) (*categorydomain.Response, error) {
	categoryID, err := parseID(id)
	if err != nil {
		return nil, categorydomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, categoryID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, categorydomain.ErrNotFound
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		entity.Name = name
		entity.Slug = slug.Make(name)
	}

	if req.PricingTableID != nil {
		tableID, err := s.optionalTableID(ctx, *req.PricingTableID)
		if err != nil {
			return nil, err
		}
		entity.PricingTableID = tableID
	}

	entity.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, entity); err != nil {
		return nil, err
	}
	return toResponse(entity), nil
}

func (s *Service) ResolveForHints(ctx context.Context, hints categorydomain.Hints) (*categorydomain.Category, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return categorydomain.Resolve(items, hints), nil
}

// optionalTableID validates the referenced pricing table when one is given.
// An empty id clears the assignment.
func (s *Service) optionalTableID(ctx context.Context, raw string) (*snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	tableID, err := parseID(raw)
	if err != nil {
		return nil, categorydomain.ErrInvalidTable
	}

	table, err := s.tableRepo.FindByID(ctx, s.db, tableID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, categorydomain.ErrInvalidTable
	}
	return &tableID, nil
}

func toResponse(c *categorydomain.Category) *categorydomain.Response {
	resp := &categorydomain.Response{
		ID:        c.ID.String(),
		Name:      c.Name,
		Slug:      c.Slug,
		Position:  c.Position,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.PricingTableID != nil {
		resp.PricingTableID = c.PricingTableID.String()
	}
	return resp
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
