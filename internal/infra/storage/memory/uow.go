package memory

import (
	"context"
	"errors"
	"sync"

	"stayquote/internal/app/uow"
	domainavailability "stayquote/internal/domain/availability"
	domaincontent "stayquote/internal/domain/content"
	domaininquiry "stayquote/internal/domain/inquiry"
	domainpricing "stayquote/internal/domain/pricing"
	domainstayrules "stayquote/internal/domain/stayrules"
)

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory hands out units over shared in-memory repositories. Writable units are
// serialized so check-then-write sequences (overlap checks) cannot interleave.
type Factory struct {
	BlockedRangesRepo domainavailability.Repository
	StayRulesRepo     domainstayrules.Repository
	SeasonsRepo       domainpricing.SeasonRepository
	InquiriesRepo     domaininquiry.Repository
	ContentRepo       domaincontent.Repository

	writeMu *sync.Mutex
}

func NewFactory(blocked domainavailability.Repository, rules domainstayrules.Repository, seasons domainpricing.SeasonRepository, inquiries domaininquiry.Repository) *Factory {
	return &Factory{
		BlockedRangesRepo: blocked,
		StayRulesRepo:     rules,
		SeasonsRepo:       seasons,
		InquiriesRepo:     inquiries,
		ContentRepo:       NewContentRepository(),
		writeMu:           &sync.Mutex{},
	}
}

func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.BlockedRangesRepo == nil || f.StayRulesRepo == nil || f.SeasonsRepo == nil || f.InquiriesRepo == nil || f.ContentRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	unit := &Unit{factory: f}
	if !opts.ReadOnly && f.writeMu != nil {
		f.writeMu.Lock()
		unit.release = f.writeMu.Unlock
	}
	return unit, nil
}

// Unit is a uow.UnitOfWork over the factory's repositories. Writes are applied immediately;
// Rollback only releases the write lock.
type Unit struct {
	factory *Factory
	release func()
	once    sync.Once
}

func (u *Unit) BlockedRanges() domainavailability.Repository { return u.factory.BlockedRangesRepo }

func (u *Unit) StayRules() domainstayrules.Repository { return u.factory.StayRulesRepo }

func (u *Unit) Seasons() domainpricing.SeasonRepository { return u.factory.SeasonsRepo }

func (u *Unit) Inquiries() domaininquiry.Repository { return u.factory.InquiriesRepo }

func (u *Unit) Content() domaincontent.Repository { return u.factory.ContentRepo }

func (u *Unit) Commit(ctx context.Context) error {
	u.done()
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.done()
	return nil
}

func (u *Unit) done() {
	u.once.Do(func() {
		if u.release != nil {
			u.release()
		}
	})
}
