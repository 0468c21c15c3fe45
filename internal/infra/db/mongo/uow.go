package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"stayquote/internal/app/uow"
	domainavailability "stayquote/internal/domain/availability"
	domaincontent "stayquote/internal/domain/content"
	domaininquiry "stayquote/internal/domain/inquiry"
	domainpricing "stayquote/internal/domain/pricing"
	domainstayrules "stayquote/internal/domain/stayrules"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	BlockedRangesRepo domainavailability.Repository
	StayRulesRepo     domainstayrules.Repository
	SeasonsRepo       domainpricing.SeasonRepository
	InquiriesRepo     domaininquiry.Repository
	ContentRepo       domaincontent.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// NewFactory builds the repositories over db and returns a factory using them.
func NewFactory(ctx context.Context, db *mongo.Database) Factory {
	return Factory{
		DB:                db,
		BlockedRangesRepo: NewBlockedRangeRepository(ctx, db),
		StayRulesRepo:     NewStayRuleRepository(ctx, db),
		SeasonsRepo:       NewSeasonRepository(ctx, db),
		InquiriesRepo:     NewInquiryRepository(ctx, db),
		ContentRepo:       NewContentRepository(db),
	}
}

// Begin starts a MongoDB session/transaction. Writes use snapshot isolation so
// overlap checks and the insert that follows see a consistent catalog.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadConcern(readconcern.Majority())
	} else {
		txnOpts = txnOpts.SetReadConcern(readconcern.Snapshot())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:   session,
		blocked:   f.BlockedRangesRepo,
		rules:     f.StayRulesRepo,
		seasons:   f.SeasonsRepo,
		inquiries: f.InquiriesRepo,
		content:   f.ContentRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

	blocked   domainavailability.Repository
	rules     domainstayrules.Repository
	seasons   domainpricing.SeasonRepository
	inquiries domaininquiry.Repository
	content   domaincontent.Repository
}

func (u *Unit) BlockedRanges() domainavailability.Repository { return u.blocked }

func (u *Unit) StayRules() domainstayrules.Repository { return u.rules }

func (u *Unit) Seasons() domainpricing.SeasonRepository { return u.seasons }

func (u *Unit) Inquiries() domaininquiry.Repository { return u.inquiries }

func (u *Unit) Content() domaincontent.Repository { return u.content }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
