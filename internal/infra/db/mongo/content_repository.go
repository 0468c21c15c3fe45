package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincontent "stayquote/internal/domain/content"
)

const contentCollection = "site_content"

// ContentRepository stores one document per managed key, keyed by _id.
type ContentRepository struct {
	col *mongo.Collection
}

func NewContentRepository(db *mongo.Database) *ContentRepository {
	return &ContentRepository{col: db.Collection(contentCollection)}
}

func (r *ContentRepository) Get(ctx context.Context, key string) (domaincontent.Block, error) {
	var doc contentDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domaincontent.Block{}, domaincontent.ErrBlockNotFound
		}
		return domaincontent.Block{}, err
	}
	return doc.toDomain(), nil
}

func (r *ContentRepository) List(ctx context.Context) ([]domaincontent.Block, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []contentDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domaincontent.Block, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ContentRepository) Save(ctx context.Context, b domaincontent.Block) error {
	doc := newContentDocument(b)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.Key}, doc, options.Replace().SetUpsert(true))
	return err
}

// contentDocument nests the text under value so new attributes can join it later.
type contentDocument struct {
	Key       string       `bson:"_id"`
	Kind      string       `bson:"kind"`
	Value     contentValue `bson:"value"`
	UpdatedAt time.Time    `bson:"updated_at"`
}

type contentValue struct {
	Text string `bson:"text"`
}

func newContentDocument(b domaincontent.Block) contentDocument {
	return contentDocument{
		Key:       b.Key,
		Kind:      string(b.Kind),
		Value:     contentValue{Text: b.Text},
		UpdatedAt: b.UpdatedAt,
	}
}

func (d contentDocument) toDomain() domaincontent.Block {
	return domaincontent.Block{
		Key:       d.Key,
		Kind:      domaincontent.Kind(d.Kind),
		Text:      d.Value.Text,
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

var _ domaincontent.Repository = (*ContentRepository)(nil)
