package service

import (
	"context"
	"sort"
	"strings"

	"github.com/atelierlabs/fotura/internal/clock"
	"github.com/atelierlabs/fotura/internal/config"
	tabledomain "github.com/atelierlabs/fotura/internal/pricingtable/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Defaults *config.DefaultsHolder
	Repo     tabledomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	defaults *config.DefaultsHolder
	repo     tabledomain.Repository
}

func New(p Params) tabledomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("pricingtable.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		defaults: p.Defaults,
		repo:     p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req tabledomain.CreateRequest) (*tabledomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, tabledomain.ErrInvalidName
	}
	if err := validateRanges(req.Ranges); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	entity := &tabledomain.Table{
		ID:        s.genID.Generate(),
		Name:      name,
		Ranges:    datatypes.NewJSONSlice(sortedRanges(req.Ranges)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		return nil, err
	}

	return toResponse(entity), nil
}

// CreateExample builds the starter table offered when a studio has no table
// yet. The range set comes from the hot-reloadable pricing defaults.
func (s *Service) CreateExample(ctx context.Context) (*tabledomain.Response, error) {
	defaults := s.defaults.Current()

	ranges := make([]tabledomain.Range, 0, len(defaults.ExampleRanges))
	for _, r := range defaults.ExampleRanges {
		ranges = append(ranges, tabledomain.Range{
			Min:       r.Min,
			Max:       copyIntPtr(r.Max),
			UnitPrice: decimal.NewFromFloat(r.UnitPrice),
		})
	}

	resp, err := s.Create(ctx, tabledomain.CreateRequest{
		Name:   defaults.ExampleTableName,
		Ranges: ranges,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("example pricing table created",
		zap.String("table_id", resp.ID),
		zap.Int("ranges", len(resp.Ranges)),
	)
	return resp, nil
}

func (s *Service) List(ctx context.Context) ([]tabledomain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]tabledomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*tabledomain.Response, error) {
	tableID, err := parseID(id)
	if err != nil {
		return nil, tabledomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, tableID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, tabledomain.ErrNotFound
	}
	return toResponse(entity), nil
}

func (s *Service) Update(ctx context.Context, id string, req tabledomain.UpdateRequest) (*tabledomain.Response, error) {
	tableID, err := parseID(id)
	if err != nil {
		return nil, tabledomain.ErrInvalidID
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, tabledomain.ErrInvalidName
	}
	if err := validateRanges(req.Ranges); err != nil {
		return nil, err
	}

	entity, err := s.repo.FindByID(ctx, s.db, tableID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, tabledomain.ErrNotFound
	}

	entity.Name = name
	entity.Ranges = datatypes.NewJSONSlice(sortedRanges(req.Ranges))
	entity.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, entity); err != nil {
		return nil, err
	}
	return toResponse(entity), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	tableID, err := parseID(id)
	if err != nil {
		return tabledomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, tableID)
	if err != nil {
		return err
	}
	if entity == nil {
		return tabledomain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, tableID)
}

// validateRanges rejects structurally bad ranges. Contiguity between ranges
// is intentionally not enforced; gap handling happens at resolution time.
func validateRanges(ranges []tabledomain.Range) error {
	for _, r := range ranges {
		if r.Min < 1 {
			return tabledomain.ErrInvalidRangeMin
		}
		if r.Max != nil && *r.Max < r.Min {
			return tabledomain.ErrInvalidRangeMax
		}
		if r.UnitPrice.IsNegative() {
			return tabledomain.ErrInvalidUnit
		}
	}
	return nil
}

func sortedRanges(ranges []tabledomain.Range) []tabledomain.Range {
	out := tabledomain.CloneRanges(ranges)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Min < out[j].Min })
	return out
}

func toResponse(t *tabledomain.Table) *tabledomain.Response {
	return &tabledomain.Response{
		ID:        t.ID.String(),
		Name:      t.Name,
		Ranges:    tabledomain.CloneRanges(t.Ranges),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func copyIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
