package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaininquiry "stayquote/internal/domain/inquiry"
	domainpricing "stayquote/internal/domain/pricing"
	"stayquote/internal/domain/shared/money"
)

const inquiriesCollection = "agg_inquiry"

type InquiryRepository struct {
	col *mongo.Collection
}

func NewInquiryRepository(ctx context.Context, db *mongo.Database) *InquiryRepository {
	col := db.Collection(inquiriesCollection)
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}})
	return &InquiryRepository{col: col}
}

func (r *InquiryRepository) ByID(ctx context.Context, id domaininquiry.InquiryID) (*domaininquiry.Inquiry, error) {
	var doc inquiryDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaininquiry.ErrInquiryNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save upserts guarded by the loaded version; a lost race surfaces as ErrVersionConflict.
func (r *InquiryRepository) Save(ctx context.Context, inq *domaininquiry.Inquiry) error {
	doc := newInquiryDocument(inq)
	filter := bson.M{"_id": doc.ID, "version": inq.Version}
	doc.Version = inq.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domaininquiry.ErrVersionConflict
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domaininquiry.ErrVersionConflict
	}
	inq.Version = doc.Version
	return nil
}

func (r *InquiryRepository) List(ctx context.Context, filter domaininquiry.ListFilter) ([]*domaininquiry.Inquiry, int, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var docs []inquiryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	out := make([]*domaininquiry.Inquiry, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, int(total), nil
}

type inquiryDocument struct {
	ID              string            `bson:"_id"`
	CheckIn         time.Time         `bson:"check_in"`
	CheckOut        time.Time         `bson:"check_out"`
	Guests          int               `bson:"guests"`
	FullName        string            `bson:"full_name"`
	Email           string            `bson:"email"`
	Phone           string            `bson:"phone,omitempty"`
	PrefersWhatsApp bool              `bson:"prefers_whatsapp"`
	Pets            bool              `bson:"pets"`
	PetsDetails     string            `bson:"pets_details,omitempty"`
	Event           bool              `bson:"event"`
	EventDetails    string            `bson:"event_details,omitempty"`
	ArrivalTime     string            `bson:"arrival_time,omitempty"`
	SpecialRequests string            `bson:"special_requests,omitempty"`
	SourcePage      string            `bson:"source_page,omitempty"`
	Estimate        *estimateDocument `bson:"estimate,omitempty"`
	Status          string            `bson:"status"`
	CreatedAt       time.Time         `bson:"created_at"`
	UpdatedAt       time.Time         `bson:"updated_at"`
	Version         int64             `bson:"version"`
}

type estimateDocument struct {
	Currency string            `bson:"currency"`
	Min      int64             `bson:"min"`
	Max      int64             `bson:"max"`
	Nights   int               `bson:"nights"`
	MinLines []segmentDocument `bson:"min_segments"`
	MaxLines []segmentDocument `bson:"max_segments"`
}

type segmentDocument struct {
	Kind     string    `bson:"kind"`
	Start    time.Time `bson:"start"`
	End      time.Time `bson:"end"`
	Amount   int64     `bson:"amount"`
	SeasonID string    `bson:"season_id"`
}

func newInquiryDocument(inq *domaininquiry.Inquiry) inquiryDocument {
	return inquiryDocument{
		ID:              string(inq.ID),
		CheckIn:         inq.Stay.Start,
		CheckOut:        inq.Stay.End,
		Guests:          inq.Guests,
		FullName:        inq.Contact.FullName,
		Email:           inq.Contact.Email,
		Phone:           inq.Contact.Phone,
		PrefersWhatsApp: inq.Contact.PrefersWhatsApp,
		Pets:            inq.Extras.Pets,
		PetsDetails:     inq.Extras.PetsDetails,
		Event:           inq.Extras.Event,
		EventDetails:    inq.Extras.EventDetails,
		ArrivalTime:     inq.Extras.ArrivalTime,
		SpecialRequests: inq.Extras.SpecialRequests,
		SourcePage:      inq.Extras.SourcePage,
		Estimate:        newEstimateDocument(inq.Estimate),
		Status:          string(inq.Status),
		CreatedAt:       inq.CreatedAt,
		UpdatedAt:       inq.UpdatedAt,
		Version:         inq.Version,
	}
}

func (d inquiryDocument) toAggregate() *domaininquiry.Inquiry {
	return &domaininquiry.Inquiry{
		ID:     domaininquiry.InquiryID(d.ID),
		Stay:   storedRange(d.CheckIn, d.CheckOut),
		Guests: d.Guests,
		Contact: domaininquiry.Contact{
			FullName:        d.FullName,
			Email:           d.Email,
			Phone:           d.Phone,
			PrefersWhatsApp: d.PrefersWhatsApp,
		},
		Extras: domaininquiry.Extras{
			Pets:            d.Pets,
			PetsDetails:     d.PetsDetails,
			Event:           d.Event,
			EventDetails:    d.EventDetails,
			ArrivalTime:     d.ArrivalTime,
			SpecialRequests: d.SpecialRequests,
			SourcePage:      d.SourcePage,
		},
		Estimate:  d.Estimate.toDomain(),
		Status:    domaininquiry.Status(d.Status),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
		Version:   d.Version,
	}
}

func newEstimateDocument(e *domainpricing.PriceEstimate) *estimateDocument {
	if e == nil {
		return nil
	}
	return &estimateDocument{
		Currency: e.Currency,
		Min:      e.Min.Amount,
		Max:      e.Max.Amount,
		Nights:   e.Breakdown.Min.Nights,
		MinLines: newSegmentDocuments(e.Breakdown.Min.Segments),
		MaxLines: newSegmentDocuments(e.Breakdown.Max.Segments),
	}
}

func newSegmentDocuments(segments []domainpricing.Segment) []segmentDocument {
	out := make([]segmentDocument, 0, len(segments))
	for _, s := range segments {
		out = append(out, segmentDocument{
			Kind:     string(s.Kind),
			Start:    s.Start,
			End:      s.End,
			Amount:   s.Price.Amount,
			SeasonID: string(s.SeasonID),
		})
	}
	return out
}

func (d *estimateDocument) toDomain() *domainpricing.PriceEstimate {
	if d == nil {
		return nil
	}
	minTotal := money.Money{Amount: d.Min, Currency: d.Currency}
	maxTotal := money.Money{Amount: d.Max, Currency: d.Currency}
	return &domainpricing.PriceEstimate{
		Min:      minTotal,
		Max:      maxTotal,
		Currency: d.Currency,
		Breakdown: domainpricing.Breakdowns{
			Min: domainpricing.Breakdown{Total: minTotal, Currency: d.Currency, Nights: d.Nights, Segments: segmentsToDomain(d.MinLines, d.Currency)},
			Max: domainpricing.Breakdown{Total: maxTotal, Currency: d.Currency, Nights: d.Nights, Segments: segmentsToDomain(d.MaxLines, d.Currency)},
		},
	}
}

func segmentsToDomain(docs []segmentDocument, currency string) []domainpricing.Segment {
	out := make([]domainpricing.Segment, 0, len(docs))
	for _, s := range docs {
		out = append(out, domainpricing.Segment{
			Kind:     domainpricing.SegmentKind(s.Kind),
			Start:    s.Start.UTC(),
			End:      s.End.UTC(),
			Price:    money.Money{Amount: s.Amount, Currency: currency},
			SeasonID: domainpricing.SeasonID(s.SeasonID),
		})
	}
	return out
}

var _ domaininquiry.Repository = (*InquiryRepository)(nil)
