package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "slotbook/internal/bookings/errors"
	mongodb "slotbook/pkg/db/mongo"
	"slotbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "bookings"
)

// TimeFilter narrows an owner's bookings by booking_time. A nil bound is
// open.
type TimeFilter struct {
	Before *time.Time
	From   *time.Time
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByOwner(ctx context.Context, userID string, filter TimeFilter) ([]*model.Booking, error)
	Save(ctx context.Context, booking *model.Booking) error
}

type mongoBookingRepository struct {
	collection *mongo.Collection
	timeouts   mongodb.Timeouts
}

func NewMongoBookingRepository(db *mongo.Database, timeouts mongodb.Timeouts) BookingRepository {
	return &mongoBookingRepository{
		collection: db.Collection(CollectionName),
		timeouts:   timeouts,
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.timeouts.Write)
	defer cancel()

	booking.ID = ""
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.timeouts.Read)
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

func (r *mongoBookingRepository) FindByOwner(ctx context.Context, userID string, filter TimeFilter) ([]*model.Booking, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.timeouts.Read)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "booking_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, buildOwnerFilter(userID, filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// Save overwrites the mutable fields of an existing booking. The owner and
// creation timestamp are never rewritten.
func (r *mongoBookingRepository) Save(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.timeouts.Write)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(booking.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, booking.ID)
	}

	set := bson.M{
		"booking_time": booking.BookingTime,
		"description":  booking.Description,
		"is_recurring": booking.IsRecurring,
		"is_cancelled": booking.IsCancelled,
	}
	unset := bson.M{}
	if booking.EndTime != nil {
		set["end_time"] = *booking.EndTime
	} else {
		unset["end_time"] = ""
	}
	if booking.RecurrenceInterval != nil {
		set["recurrence_interval"] = *booking.RecurrenceInterval
	} else {
		unset["recurrence_interval"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func buildOwnerFilter(userID string, filter TimeFilter) bson.M {
	query := bson.M{"user_id": userID}

	timeRange := bson.M{}
	if filter.Before != nil {
		timeRange["$lt"] = *filter.Before
	}
	if filter.From != nil {
		timeRange["$gte"] = *filter.From
	}
	if len(timeRange) > 0 {
		query["booking_time"] = timeRange
	}
	return query
}
