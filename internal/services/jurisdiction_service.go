package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lexgraph-backend/internal/data/repos"
	types "github.com/yungbote/lexgraph-backend/internal/domain"
	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
	"github.com/yungbote/lexgraph-backend/internal/jurisdiction"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

type JurisdictionService interface {
	Create(ctx context.Context, in JurisdictionInput) (uuid.UUID, error)
	// Seed installs the default tree and returns how many rows were new.
	Seed(ctx context.Context) (int, error)
	List(ctx context.Context) ([]*types.Jurisdiction, error)
	GetByCode(ctx context.Context, code string) (*types.Jurisdiction, error)
	DefaultsForRole(ctx context.Context, role jurisdiction.Role) ([]*types.Jurisdiction, error)

	// Lookup adapts the store for the jurisdiction selector.
	Lookup() jurisdiction.Lookup
}

type JurisdictionInput struct {
	Code       string      `json:"code" validate:"required,max=64"`
	Name       string      `json:"name" validate:"required"`
	Layer      types.Layer `json:"layer" validate:"required,layer"`
	ParentCode string      `json:"parent_code,omitempty"`
}

// DefaultJurisdictions is the seeded tree, parents before children.
var DefaultJurisdictions = []JurisdictionInput{
	{Code: "INTERNATIONAL", Name: "International Law", Layer: domain.LayerInternational},
	{Code: "EU", Name: "European Union", Layer: domain.LayerRegional, ParentCode: "INTERNATIONAL"},
	{Code: "UA", Name: "Ukraine (National)", Layer: domain.LayerNational, ParentCode: "INTERNATIONAL"},
	{Code: "UA_OBLAST", Name: "Ukrainian Oblast", Layer: domain.LayerSubnational, ParentCode: "UA"},
	{Code: "UA_CITY", Name: "Ukrainian City", Layer: domain.LayerSubnational, ParentCode: "UA"},
	{Code: "US", Name: "U.S. Federal", Layer: domain.LayerNational, ParentCode: "INTERNATIONAL"},
	{Code: "US_CIRCUIT", Name: "U.S. Circuit", Layer: domain.LayerSubnational, ParentCode: "US"},
	{Code: "US_STATE", Name: "U.S. State", Layer: domain.LayerSubnational, ParentCode: "US"},
}

type jurisdictionService struct {
	db    *gorm.DB
	log   *logger.Logger
	repos repos.Set
}

func NewJurisdictionService(db *gorm.DB, baseLog *logger.Logger, set repos.Set) JurisdictionService {
	return &jurisdictionService{
		db:    db,
		log:   baseLog.With("service", "JurisdictionService"),
		repos: set,
	}
}

func (s *jurisdictionService) Create(ctx context.Context, in JurisdictionInput) (uuid.UUID, error) {
	if err := validateInput(in); err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.buildRow(dbc, in)
		if err != nil {
			return err
		}
		if err := s.repos.Jurisdiction.Create(dbc, row); err != nil {
			return err
		}
		id = row.ID
		return nil
	})
	return id, err
}

func (s *jurisdictionService) Seed(ctx context.Context) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		for _, in := range DefaultJurisdictions {
			existing, err := s.repos.Jurisdiction.GetByCode(dbc, in.Code)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			row, err := s.buildRow(dbc, in)
			if err != nil {
				return err
			}
			n, err := s.repos.Jurisdiction.CreateIgnoreDuplicates(dbc, []*types.Jurisdiction{row})
			if err != nil {
				return err
			}
			created += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("jurisdiction tree seeded", "created", created)
	return created, nil
}

// buildRow resolves the parent and enforces that it sits strictly above the child.
func (s *jurisdictionService) buildRow(dbc dbctx.Context, in JurisdictionInput) (*types.Jurisdiction, error) {
	row := &types.Jurisdiction{
		Code:  strings.ToUpper(strings.TrimSpace(in.Code)),
		Name:  strings.TrimSpace(in.Name),
		Layer: in.Layer,
	}
	parentCode := strings.ToUpper(strings.TrimSpace(in.ParentCode))
	if parentCode == "" {
		return row, nil
	}
	parent, err := s.repos.Jurisdiction.GetByCode(dbc, parentCode)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, domain.NewValidationError(fmt.Sprintf("parent jurisdiction %s does not exist", parentCode))
	}
	if !parent.Layer.Above(row.Layer) {
		return nil, domain.NewValidationError(fmt.Sprintf(
			"parent %s (%s) must be above %s (%s)", parent.Code, parent.Layer, row.Code, row.Layer))
	}
	row.ParentID = &parent.ID
	return row, nil
}

func (s *jurisdictionService) List(ctx context.Context) ([]*types.Jurisdiction, error) {
	return s.repos.Jurisdiction.List(dbctx.Context{Ctx: ctx})
}

func (s *jurisdictionService) GetByCode(ctx context.Context, code string) (*types.Jurisdiction, error) {
	j, err := s.repos.Jurisdiction.GetByCode(dbctx.Context{Ctx: ctx}, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, domain.NotFound("jurisdiction", code)
	}
	return j, nil
}

func (s *jurisdictionService) DefaultsForRole(ctx context.Context, role jurisdiction.Role) ([]*types.Jurisdiction, error) {
	if !role.Valid() {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown role %q", role))
	}
	codes := jurisdiction.DefaultCodesForRole(role)
	if len(codes) == 0 {
		return []*types.Jurisdiction{}, nil
	}
	return s.repos.Jurisdiction.GetByCodes(dbctx.Context{Ctx: ctx}, codes)
}

func (s *jurisdictionService) Lookup() jurisdiction.Lookup {
	return jurisdictionLookup{repo: s.repos.Jurisdiction}
}

type jurisdictionLookup struct {
	repo repos.JurisdictionRepo
}

func (l jurisdictionLookup) ByIDs(ctx context.Context, ids []uuid.UUID) ([]jurisdiction.Item, error) {
	rows, err := l.repo.GetByIDs(dbctx.Context{Ctx: ctx}, ids)
	if err != nil {
		return nil, err
	}
	// The selector expects request order.
	byID := make(map[uuid.UUID]*types.Jurisdiction, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	out := make([]jurisdiction.Item, 0, len(rows))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, toItem(r))
		}
	}
	return out, nil
}

func (l jurisdictionLookup) ByCodes(ctx context.Context, codes []string) ([]jurisdiction.Item, error) {
	rows, err := l.repo.GetByCodes(dbctx.Context{Ctx: ctx}, codes)
	if err != nil {
		return nil, err
	}
	out := make([]jurisdiction.Item, 0, len(rows))
	for _, r := range rows {
		out = append(out, toItem(r))
	}
	return out, nil
}

func toItem(j *types.Jurisdiction) jurisdiction.Item {
	return jurisdiction.Item{ID: j.ID, Code: j.Code, Name: j.Name, Layer: j.Layer}
}
