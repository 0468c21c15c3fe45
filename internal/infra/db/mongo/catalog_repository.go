package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "stayquote/internal/domain/availability"
	domainpricing "stayquote/internal/domain/pricing"
	"stayquote/internal/domain/shared/daterange"
	domainstayrules "stayquote/internal/domain/stayrules"
)

var (
	ErrDuplicateID = errors.New("mongo: document with this id already exists")
	// ErrConcurrentCatalogWrite reports a write that lost a race with another
	// transaction changing the same catalog collection; the caller may retry.
	ErrConcurrentCatalogWrite = errors.New("mongo: catalog changed concurrently, retry")
)

const (
	blockedRangesCollection = "catalog_blocked_ranges"
	stayRulesCollection     = "catalog_stay_rules"
	seasonsCollection       = "catalog_pricing_seasons"
	catalogMetaCollection   = "catalog_meta"
)

const writeConflictCode = 112

// catalogVersion is a counter document per overlap-checked collection.
// Every insert bumps it inside the caller's transaction, so two snapshot
// transactions that listed the same collection cannot both commit an insert.
type catalogVersion struct {
	col *mongo.Collection
	id  string
}

func newCatalogVersion(ctx context.Context, db *mongo.Database, id string) catalogVersion {
	v := catalogVersion{col: db.Collection(catalogMetaCollection), id: id}
	_, _ = v.col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$setOnInsert": bson.M{"version": int64(0)}},
		options.Update().SetUpsert(true))
	return v
}

func (v catalogVersion) bump(ctx context.Context) error {
	_, err := v.col.UpdateOne(ctx, bson.M{"_id": v.id},
		bson.M{"$inc": bson.M{"version": int64(1)}, "$currentDate": bson.M{"updated_at": true}},
		options.Update().SetUpsert(true))
	return conflictErr(err)
}

func isWriteConflict(err error) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(writeConflictCode)
}

func conflictErr(err error) error {
	if err != nil && isWriteConflict(err) {
		return fmt.Errorf("%w: %v", ErrConcurrentCatalogWrite, err)
	}
	return err
}

// windowFilter matches documents whose [start, end) shares a day with window.
func windowFilter(window daterange.DateRange) bson.M {
	if window.IsZero() {
		return bson.M{}
	}
	return bson.M{
		"start": bson.M{"$lt": window.End},
		"end":   bson.M{"$gt": window.Start},
	}
}

func byStartOptions() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "start", Value: 1}, {Key: "_id", Value: 1}})
}

func ensureStartIndex(ctx context.Context, col *mongo.Collection) {
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "start", Value: 1}, {Key: "end", Value: 1}}})
}

func insertErr(kind string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", kind, ErrDuplicateID)
	}
	return err
}

func findAll[D any, T any](ctx context.Context, col *mongo.Collection, filter bson.M, convert func(D) T) ([]T, error) {
	cur, err := col.Find(ctx, filter, byStartOptions())
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		out = append(out, convert(d))
	}
	return out, nil
}

func deleteOne[D any](ctx context.Context, col *mongo.Collection, id string, notFound error) (D, error) {
	var doc D
	if err := col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return doc, notFound
		}
		return doc, err
	}
	return doc, nil
}

type BlockedRangeRepository struct {
	col *mongo.Collection
}

func NewBlockedRangeRepository(ctx context.Context, db *mongo.Database) *BlockedRangeRepository {
	col := db.Collection(blockedRangesCollection)
	ensureStartIndex(ctx, col)
	return &BlockedRangeRepository{col: col}
}

func (r *BlockedRangeRepository) List(ctx context.Context, window daterange.DateRange) ([]domainavailability.BlockedRange, error) {
	return findAll(ctx, r.col, windowFilter(window), blockedRangeDocument.toDomain)
}

func (r *BlockedRangeRepository) Add(ctx context.Context, block domainavailability.BlockedRange) error {
	_, err := r.col.InsertOne(ctx, newBlockedRangeDocument(block))
	return insertErr("blocked range", err)
}

func (r *BlockedRangeRepository) Delete(ctx context.Context, id domainavailability.BlockedRangeID) (domainavailability.BlockedRange, error) {
	doc, err := deleteOne[blockedRangeDocument](ctx, r.col, string(id), domainavailability.ErrRangeNotFound)
	if err != nil {
		return domainavailability.BlockedRange{}, err
	}
	return doc.toDomain(), nil
}

type blockedRangeDocument struct {
	ID        string    `bson:"_id"`
	Start     time.Time `bson:"start"`
	End       time.Time `bson:"end"`
	Reason    string    `bson:"reason,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

func newBlockedRangeDocument(b domainavailability.BlockedRange) blockedRangeDocument {
	return blockedRangeDocument{
		ID:        string(b.ID),
		Start:     b.Range.Start,
		End:       b.Range.End,
		Reason:    b.Reason,
		CreatedAt: b.CreatedAt,
	}
}

func (d blockedRangeDocument) toDomain() domainavailability.BlockedRange {
	return domainavailability.BlockedRange{
		ID:        domainavailability.BlockedRangeID(d.ID),
		Range:     storedRange(d.Start, d.End),
		Reason:    d.Reason,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

type StayRuleRepository struct {
	col     *mongo.Collection
	version catalogVersion
}

func NewStayRuleRepository(ctx context.Context, db *mongo.Database) *StayRuleRepository {
	col := db.Collection(stayRulesCollection)
	ensureStartIndex(ctx, col)
	return &StayRuleRepository{col: col, version: newCatalogVersion(ctx, db, stayRulesCollection)}
}

func (r *StayRuleRepository) List(ctx context.Context, window daterange.DateRange) ([]domainstayrules.Rule, error) {
	return findAll(ctx, r.col, windowFilter(window), stayRuleDocument.toDomain)
}

func (r *StayRuleRepository) Add(ctx context.Context, rule domainstayrules.Rule) error {
	if err := r.version.bump(ctx); err != nil {
		return fmt.Errorf("stay rule: %w", err)
	}
	_, err := r.col.InsertOne(ctx, newStayRuleDocument(rule))
	return insertErr("stay rule", conflictErr(err))
}

func (r *StayRuleRepository) Delete(ctx context.Context, id domainstayrules.RuleID) (domainstayrules.Rule, error) {
	doc, err := deleteOne[stayRuleDocument](ctx, r.col, string(id), domainstayrules.ErrRuleNotFound)
	if err != nil {
		return domainstayrules.Rule{}, err
	}
	return doc.toDomain(), nil
}

type stayRuleDocument struct {
	ID                 string    `bson:"_id"`
	Name               string    `bson:"name"`
	Start              time.Time `bson:"start"`
	End                time.Time `bson:"end"`
	Priority           int       `bson:"priority"`
	MinNights          int       `bson:"min_nights"`
	EnforceExactNights bool      `bson:"enforce_exact_nights"`
	ExactNights        *int      `bson:"exact_nights,omitempty"`
	AllowedCheckIn     []int     `bson:"allowed_check_in_dow,omitempty"`
	AllowedCheckOut    []int     `bson:"allowed_check_out_dow,omitempty"`
	CreatedAt          time.Time `bson:"created_at"`
}

func newStayRuleDocument(r domainstayrules.Rule) stayRuleDocument {
	return stayRuleDocument{
		ID:                 string(r.ID),
		Name:               r.Name,
		Start:              r.Range.Start,
		End:                r.Range.End,
		Priority:           r.Priority,
		MinNights:          r.MinNights,
		EnforceExactNights: r.EnforceExactNights,
		ExactNights:        r.ExactNights,
		AllowedCheckIn:     r.AllowedCheckIn,
		AllowedCheckOut:    r.AllowedCheckOut,
		CreatedAt:          r.CreatedAt,
	}
}

func (d stayRuleDocument) toDomain() domainstayrules.Rule {
	return domainstayrules.Rule{
		ID:                 domainstayrules.RuleID(d.ID),
		Name:               d.Name,
		Range:              storedRange(d.Start, d.End),
		Priority:           d.Priority,
		MinNights:          d.MinNights,
		EnforceExactNights: d.EnforceExactNights,
		ExactNights:        d.ExactNights,
		AllowedCheckIn:     d.AllowedCheckIn,
		AllowedCheckOut:    d.AllowedCheckOut,
		CreatedAt:          d.CreatedAt.UTC(),
	}
}

type SeasonRepository struct {
	col     *mongo.Collection
	version catalogVersion
}

func NewSeasonRepository(ctx context.Context, db *mongo.Database) *SeasonRepository {
	col := db.Collection(seasonsCollection)
	ensureStartIndex(ctx, col)
	return &SeasonRepository{col: col, version: newCatalogVersion(ctx, db, seasonsCollection)}
}

func (r *SeasonRepository) List(ctx context.Context, window daterange.DateRange) ([]domainpricing.Season, error) {
	return findAll(ctx, r.col, windowFilter(window), seasonDocument.toDomain)
}

func (r *SeasonRepository) Add(ctx context.Context, season domainpricing.Season) error {
	if err := r.version.bump(ctx); err != nil {
		return fmt.Errorf("pricing season: %w", err)
	}
	_, err := r.col.InsertOne(ctx, newSeasonDocument(season))
	return insertErr("pricing season", conflictErr(err))
}

func (r *SeasonRepository) Delete(ctx context.Context, id domainpricing.SeasonID) (domainpricing.Season, error) {
	doc, err := deleteOne[seasonDocument](ctx, r.col, string(id), domainpricing.ErrSeasonNotFound)
	if err != nil {
		return domainpricing.Season{}, err
	}
	return doc.toDomain(), nil
}

// seasonDocument keeps nightly amounts in minor units of Currency.
type seasonDocument struct {
	ID         string    `bson:"_id"`
	Name       string    `bson:"name"`
	Start      time.Time `bson:"start"`
	End        time.Time `bson:"end"`
	Currency   string    `bson:"currency"`
	NightlyMin *int64    `bson:"nightly_min,omitempty"`
	NightlyMax *int64    `bson:"nightly_max,omitempty"`
	CreatedAt  time.Time `bson:"created_at"`
}

func newSeasonDocument(s domainpricing.Season) seasonDocument {
	return seasonDocument{
		ID:         string(s.ID),
		Name:       s.Name,
		Start:      s.Range.Start,
		End:        s.Range.End,
		Currency:   s.Currency,
		NightlyMin: s.NightlyMin,
		NightlyMax: s.NightlyMax,
		CreatedAt:  s.CreatedAt,
	}
}

func (d seasonDocument) toDomain() domainpricing.Season {
	return domainpricing.Season{
		ID:         domainpricing.SeasonID(d.ID),
		Name:       d.Name,
		Range:      storedRange(d.Start, d.End),
		Currency:   d.Currency,
		NightlyMin: d.NightlyMin,
		NightlyMax: d.NightlyMax,
		CreatedAt:  d.CreatedAt.UTC(),
	}
}

// storedRange restores calendar days; the driver decodes datetimes in local time.
func storedRange(start, end time.Time) daterange.DateRange {
	return daterange.DateRange{Start: daterange.Day(start.UTC()), End: daterange.Day(end.UTC())}
}

var (
	_ domainavailability.Repository  = (*BlockedRangeRepository)(nil)
	_ domainstayrules.Repository     = (*StayRuleRepository)(nil)
	_ domainpricing.SeasonRepository = (*SeasonRepository)(nil)
)
