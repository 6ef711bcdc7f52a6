// Package store implements the metadata adapter over the stocks collection.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stockflow/apperr"
	"stockflow/logger"
	"stockflow/models"
)

// MaxPageSize bounds the limit parameter of a listing query.
const MaxPageSize = 100

// SortSpec orders a metadata query by a single field. The field name uses
// the model's attribute naming; mapping to storage naming happens here.
type SortSpec struct {
	Field      string
	Descending bool
}

// stockDoc is the storage-side shape of a metadata record. The object id is
// converted to its hex form on the way out so the rest of the system treats
// identifiers as opaque strings.
type stockDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	models.Stock `bson:",inline"`
}

func (d stockDoc) toModel() models.Stock {
	stock := d.Stock
	stock.ID = d.ID.Hex()
	return stock
}

// MetadataStore reads stock metadata records. Records are seeded out of
// band and never mutated by request handling.
type MetadataStore struct {
	col *mongo.Collection
	log *logger.Log
}

func NewMetadataStore(db *mongo.Database, collection string, log *logger.Log) *MetadataStore {
	return &MetadataStore{
		col: db.Collection(collection),
		log: log,
	}
}

// List returns one page of metadata records plus the full unfiltered record
// count. Page bounds are validated against that count before the page query
// is issued.
func (s *MetadataStore) List(ctx context.Context, skip, limit int64, sort SortSpec) ([]models.Stock, int64, error) {
	total, err := s.col.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Transient, err, "failed to count stock metadata")
	}

	if err := ValidatePage(skip, limit, total); err != nil {
		return nil, 0, err
	}

	// SetLimit(0) means unlimited to the driver, so the empty page is
	// answered here without issuing the query.
	if limit == 0 {
		return []models.Stock{}, total, nil
	}

	order := 1
	if sort.Descending {
		order = -1
	}

	opts := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: storageField(sort.Field), Value: order}})

	cursor, err := s.col.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Transient, err, "failed to query stock metadata")
	}
	defer cursor.Close(ctx)

	var docs []stockDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, apperr.Wrap(apperr.Internal, err, "failed to decode stock metadata")
	}

	stocks := make([]models.Stock, 0, len(docs))
	for _, doc := range docs {
		stocks = append(stocks, doc.toModel())
	}

	return stocks, total, nil
}

// GetByID resolves a single metadata record. A malformed identifier is an
// InvalidParameter failure; a valid-but-absent identifier returns (nil, nil)
// so callers can distinguish absence from errors.
func (s *MetadataStore) GetByID(ctx context.Context, id string) (*models.Stock, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidParameter, err, "invalid stock id %q", id)
	}

	var doc stockDoc
	err = s.col.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, err, "failed to look up stock %q", id)
	}

	stock := doc.toModel()
	return &stock, nil
}

// ValidatePage checks pagination bounds against the full record count.
func ValidatePage(skip, limit, total int64) error {
	if skip < 0 || skip > total {
		return apperr.New(apperr.InvalidParameter, "invalid skip value %d", skip)
	}
	if limit < 0 || limit > MaxPageSize {
		return apperr.New(apperr.InvalidParameter, "invalid limit value %d", limit)
	}
	return nil
}

// storageField maps model attribute names to their storage counterparts.
func storageField(name string) string {
	if name == "id" {
		return "_id"
	}
	return name
}
