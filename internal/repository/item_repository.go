package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"secondchance/internal/db"
	apperrors "secondchance/internal/errors"
	"secondchance/internal/model"
)

// ItemRepository defines item persistence operations.
type ItemRepository interface {
	List(ctx context.Context) ([]model.Item, error)
	Search(ctx context.Context, filter model.ItemFilter) ([]model.Item, error)
	FindByID(ctx context.Context, id string) (*model.Item, error)
	NextID(ctx context.Context) (string, error)
	Insert(ctx context.Context, item *model.Item) error
	Update(ctx context.Context, item *model.Item) (*model.Item, error)
	Delete(ctx context.Context, id string) error
	Upsert(ctx context.Context, item *model.Item) (created bool, err error)
}

type itemRepository struct {
	col *mongo.Collection
}

// NewItemRepository builds a MongoDB-backed repository.
func NewItemRepository(database *mongo.Database) ItemRepository {
	return &itemRepository{col: database.Collection(db.ItemsCollection)}
}

func (r *itemRepository) List(ctx context.Context) ([]model.Item, error) {
	return r.find(ctx, bson.M{})
}

func (r *itemRepository) Search(ctx context.Context, filter model.ItemFilter) ([]model.Item, error) {
	return r.find(ctx, SearchQuery(filter))
}

// SearchQuery translates filter into a MongoDB query document.
func SearchQuery(filter model.ItemFilter) bson.M {
	query := bson.M{}
	if filter.Name != "" {
		query["name"] = bson.M{"$regex": regexp.QuoteMeta(filter.Name), "$options": "i"}
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Condition != "" {
		query["condition"] = filter.Condition
	}
	if filter.MaxAgeYears != nil {
		query["age_years"] = bson.M{"$lte": *filter.MaxAgeYears}
	}
	return query
}

func (r *itemRepository) find(ctx context.Context, query bson.M) ([]model.Item, error) {
	cur, err := r.col.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cur.Close(ctx)

	items := []model.Item{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	return items, nil
}

func (r *itemRepository) FindByID(ctx context.Context, id string) (*model.Item, error) {
	var item model.Item
	if err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrItemNotFound
		}
		return nil, fmt.Errorf("mongo find one: %w", err)
	}
	return &item, nil
}

// NextID returns the highest numeric id plus one. Ids are strings, so the
// sort uses a numeric collation.
func (r *itemRepository) NextID(ctx context.Context) (string, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "id", Value: -1}}).
		SetCollation(&options.Collation{Locale: "en", NumericOrdering: true}).
		SetProjection(bson.M{"id": 1})

	var last model.Item
	err := r.col.FindOne(ctx, bson.M{}, opts).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "1", nil
	}
	if err != nil {
		return "", fmt.Errorf("mongo last id: %w", err)
	}

	n, err := strconv.Atoi(last.ID)
	if err != nil {
		return "", fmt.Errorf("non-numeric item id %q: %w", last.ID, err)
	}
	return strconv.Itoa(n + 1), nil
}

func (r *itemRepository) Insert(ctx context.Context, item *model.Item) error {
	res, err := r.col.InsertOne(ctx, item)
	if err != nil {
		return fmt.Errorf("mongo insert: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		item.ObjectID = oid
	}
	return nil
}

// Update replaces the mutable fields of item and returns the stored document.
func (r *itemRepository) Update(ctx context.Context, item *model.Item) (*model.Item, error) {
	set := bson.M{
		"category":    item.Category,
		"condition":   item.Condition,
		"age_days":    item.AgeDays,
		"age_years":   item.AgeYears,
		"description": item.Description,
		"updatedAt":   item.UpdatedAt,
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.Item
	err := r.col.FindOneAndUpdate(ctx, bson.M{"id": item.ID}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrItemNotFound
		}
		return nil, fmt.Errorf("mongo update: %w", err)
	}
	return &updated, nil
}

func (r *itemRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrItemNotFound
	}
	return nil
}

// Upsert replaces the item with the same id, inserting it when absent.
func (r *itemRepository) Upsert(ctx context.Context, item *model.Item) (bool, error) {
	opts := options.Replace().SetUpsert(true)
	res, err := r.col.ReplaceOne(ctx, bson.M{"id": item.ID}, item, opts)
	if err != nil {
		return false, fmt.Errorf("mongo upsert %s: %w", item.ID, err)
	}
	return res.UpsertedCount > 0, nil
}
