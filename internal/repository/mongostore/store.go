// Package mongostore maps collections to MongoDB collections with the document id as _id.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"evalue-storefront/config"
	"evalue-storefront/internal/domain"
	"evalue-storefront/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	driverName = "mongo"
	updatedAt  = "_updatedAt"
)

// Connect opens a client and verifies it with a ping.
func Connect(ctx context.Context, cfg config.StoreConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.MongoTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI).SetTimeout(cfg.MongoTimeout))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("unable to ping mongodb: %w", err)
	}
	return client, nil
}

type Store struct {
	db *mongo.Database
}

func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

func (s *Store) GetAll(ctx context.Context, collection string) (docs []domain.Document, err error) {
	start := time.Now()
	defer func() { logger.StoreOp(ctx, driverName, "get_all", collection, "", time.Since(start), err) }()

	cur, err := s.db.Collection(collection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, domain.Unavailable("mongostore find", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			logger.WithContext(ctx).Warn().Err(err).Str("collection", collection).Msg("Skipping undecodable document")
			continue
		}
		docs = append(docs, toDocument(raw))
	}
	if err := cur.Err(); err != nil {
		return nil, domain.Unavailable("mongostore cursor", err)
	}
	return docs, nil
}

func (s *Store) GetOne(ctx context.Context, collection, id string) (doc *domain.Document, err error) {
	start := time.Now()
	defer func() { logger.StoreOp(ctx, driverName, "get_one", collection, id, time.Since(start), err) }()

	var raw bson.M
	err = s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.Unavailable("mongostore find one", err)
	}
	d := toDocument(raw)
	return &d, nil
}

// UpsertMerge runs a one-stage pipeline update whose $set stage holds one
// dotted path per leaf of partial, so sibling keys survive.
func (s *Store) UpsertMerge(ctx context.Context, collection, id string, partial map[string]any) (err error) {
	start := time.Now()
	defer func() { logger.StoreOp(ctx, driverName, "upsert_merge", collection, id, time.Since(start), err) }()

	set := bson.M{updatedAt: bson.M{"$literal": time.Now().UTC()}}
	flatten("", partial, set)

	_, err = s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.A{bson.M{"$set": set}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return domain.Unavailable("mongostore upsert", err)
	}
	return nil
}

func (s *Store) DeleteField(ctx context.Context, collection, id string, path domain.FieldPath) (err error) {
	start := time.Now()
	defer func() { logger.StoreOp(ctx, driverName, "delete_field", collection, id, time.Since(start), err) }()

	if len(path) == 0 {
		return nil
	}
	_, err = s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$unset": bson.M{path.String(): ""}},
	)
	if err != nil {
		return domain.Unavailable("mongostore unset", err)
	}
	return nil
}

// flatten writes pipeline expressions for the leaves of m into out under
// dotted keys. Leaf values are $literal. An empty map keeps a stored
// sub-document and only replaces a missing or non-document value.
func flatten(prefix string, m map[string]any, out bson.M) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		nested, ok := v.(map[string]any)
		switch {
		case ok && len(nested) > 0:
			flatten(key, nested, out)
		case ok:
			out[key] = keepDocument(key)
		default:
			out[key] = bson.M{"$literal": v}
		}
	}
}

func keepDocument(key string) bson.M {
	field := "$" + key
	return bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{bson.M{"$type": field}, "object"}},
		field,
		bson.M{"$literal": bson.M{}},
	}}
}

func toDocument(raw bson.M) domain.Document {
	id := fmt.Sprint(raw["_id"])
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		id = oid.Hex()
	}
	data := make(map[string]any, len(raw))
	for k, v := range raw {
		if strings.HasPrefix(k, "_") {
			continue
		}
		data[k] = normalize(v)
	}
	return domain.Document{ID: id, Data: data}
}

// normalize converts driver types into plain maps and slices.
func normalize(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalize(item)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	case primitive.DateTime:
		return t.Time()
	case primitive.Decimal128:
		return t.String()
	}
	return v
}
