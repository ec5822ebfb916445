package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "bookingdesk/internal/bookings/errors"
	"bookingdesk/pkg/config"
	"bookingdesk/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type BookingRepository interface {
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	Find(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error)
	Count(ctx context.Context, filter model.BookingFilter) (int64, error)
	// Save replaces the stored booking only if its version still equals
	// expectedVersion.
	Save(ctx context.Context, booking *model.Booking, expectedVersion int64) error
	CountRepeatClients(ctx context.Context, filter model.BookingFilter, threshold int) (int64, error)
}

type mongoBookingRepository struct {
	collection   *mongo.Collection
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	read, write := operationTimeouts(cfg.Settings)
	return &mongoBookingRepository{
		collection:   db.Collection(CollectionName),
		readTimeout:  read,
		writeTimeout: write,
	}
}

// operationTimeouts bounds store calls by the Mongo settings only; the HTTP
// server timeouts play no part.
func operationTimeouts(settings config.Settings) (read, write time.Duration) {
	read, write = settings.MongoReadTimeout, settings.MongoWriteTimeout
	if read <= 0 {
		read = config.DefaultMongoOperationTimeout
	}
	if write <= 0 {
		write = config.DefaultMongoOperationTimeout
	}
	return read, write
}

// withTimeout never extends a deadline the caller already set.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) Find(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, BuildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, BuildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) Save(ctx context.Context, booking *model.Booking, expectedVersion int64) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(booking.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, booking.ID)
	}

	// _id is carried by the filter; the replacement must not try to rewrite it.
	replacement := booking.Clone()
	replacement.ID = ""

	filter := bson.M{"_id": objectID, "version": expectedVersion}
	result, err := r.collection.ReplaceOne(ctx, filter, replacement)
	if err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}

	if result.MatchedCount == 0 {
		exists, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
		if err != nil {
			return fmt.Errorf("failed to save booking: %w", err)
		}
		if exists == 0 {
			return bookingserrors.ErrNotFound
		}
		return bookingserrors.ErrVersionConflict
	}

	return nil
}

func (r *mongoBookingRepository) CountRepeatClients(ctx context.Context, filter model.BookingFilter, threshold int) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, RepeatClientPipeline(filter, threshold))
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate repeat clients: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode repeat clients: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func BuildFilter(f model.BookingFilter) bson.M {
	filter := bson.M{}

	if f.StoreID != "" {
		filter["store_id"] = f.StoreID
	}
	if f.StaffID != "" {
		filter["staff_id"] = f.StaffID
	}
	if f.Kind != "" {
		filter["kind"] = f.Kind
	}

	switch len(f.Statuses) {
	case 0:
	case 1:
		filter["status"] = f.Statuses[0]
	default:
		filter["status"] = bson.M{"$in": f.Statuses}
	}

	if f.CreatedFrom != nil || f.CreatedTo != nil {
		created := bson.M{}
		if f.CreatedFrom != nil {
			created["$gte"] = *f.CreatedFrom
		}
		if f.CreatedTo != nil {
			created["$lt"] = *f.CreatedTo
		}
		filter["created_at"] = created
	}

	return filter
}

// RepeatClientPipeline groups the bookings matched by filter by client
// identity (email, falling back to phone) and counts identities seen at least
// threshold times. Cancelled bookings are skipped unless filter names statuses.
func RepeatClientPipeline(filter model.BookingFilter, threshold int) mongo.Pipeline {
	match := BuildFilter(filter)
	if len(filter.Statuses) == 0 {
		match["status"] = bson.M{"$ne": model.StatusCancelled}
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$project", Value: bson.M{
			"identity": bson.M{"$ifNull": bson.A{"$client.email", "$client.phone"}},
		}}},
		{{Key: "$match", Value: bson.M{"identity": bson.M{"$nin": bson.A{nil, ""}}}}},
		{{Key: "$group", Value: bson.M{"_id": "$identity", "visits": bson.M{"$sum": 1}}}},
		{{Key: "$match", Value: bson.M{"visits": bson.M{"$gte": threshold}}}},
		{{Key: "$count", Value: "total"}},
	}
}
