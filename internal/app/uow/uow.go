package uow

import (
	"context"

	"stayquote/internal/domain/availability"
	"stayquote/internal/domain/catalog"
	"stayquote/internal/domain/content"
	"stayquote/internal/domain/inquiry"
	"stayquote/internal/domain/pricing"
	"stayquote/internal/domain/stayrules"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	BlockedRanges() availability.Repository
	StayRules() stayrules.Repository
	Seasons() pricing.SeasonRepository
	Inquiries() inquiry.Repository
	Content() content.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}

// Catalog exposes the unit's catalog repositories as read-only sources.
func Catalog(unit UnitOfWork) catalog.Sources {
	return catalogSources{unit: unit}
}

type catalogSources struct {
	unit UnitOfWork
}

func (s catalogSources) BlockedRanges() availability.Reader { return s.unit.BlockedRanges() }
func (s catalogSources) StayRules() stayrules.Reader        { return s.unit.StayRules() }
func (s catalogSources) Seasons() pricing.SeasonReader      { return s.unit.Seasons() }
