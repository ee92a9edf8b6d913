package repository

import (
	"context"
	"testing"
	"time"

	bookingserrors "slotbook/internal/bookings/errors"
	mongodb "slotbook/pkg/db/mongo"
	"slotbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

var testTimeouts = mongodb.Timeouts{Read: time.Second, Write: time.Second}

func bookingDoc(id primitive.ObjectID, userID string, at time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "user_id", Value: userID},
		{Key: "date_of_booking", Value: at.Add(-time.Hour)},
		{Key: "booking_time", Value: at},
		{Key: "end_time", Value: at.Add(time.Hour)},
		{Key: "description", Value: "haircut"},
		{Key: "is_recurring", Value: false},
		{Key: "is_cancelled", Value: false},
	}
}

func TestMongoBookingRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "db." + CollectionName
	owner := primitive.NewObjectID().Hex()
	at := time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)

	mt.Run("create assigns id", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testTimeouts)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		booking := &model.Booking{UserID: owner, BookingTime: at, Description: "x"}
		require.NoError(mt, repo.Create(context.Background(), booking))
		assert.Len(mt, booking.ID, 24)
	})

	mt.Run("find by id", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testTimeouts)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bookingDoc(oid, owner, at)))

		booking, err := repo.FindByID(context.Background(), oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), booking.ID)
		assert.Equal(mt, owner, booking.UserID)
		assert.True(mt, booking.BookingTime.Equal(at))
		require.NotNil(mt, booking.EndTime)
		assert.True(mt, booking.EndTime.Equal(at.Add(time.Hour)))
		assert.Nil(mt, booking.RecurrenceInterval)
	})

	mt.Run("find by id not found", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testTimeouts)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, bookingserrors.ErrNotFound)
	})

	mt.Run("find by id malformed", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testTimeouts)

		_, err := repo.FindByID(context.Background(), "not-an-object-id")
		assert.ErrorIs(mt, err, bookingserrors.ErrInvalidID)
	})

	mt.Run("find by owner", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testTimeouts)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bookingDoc(primitive.NewObjectID(), owner, at),
			bookingDoc(primitive.NewObjectID(), owner, at.Add(24*time.Hour)),
		))

		bookings, err := repo.FindByOwner(context.Background(), owner, TimeFilter{})
		require.NoError(mt, err)
		assert.Len(mt, bookings, 2)
	})

	mt.Run("find by owner empty is not nil", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testTimeouts)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		bookings, err := repo.FindByOwner(context.Background(), owner, TimeFilter{})
		require.NoError(mt, err)
		assert.NotNil(mt, bookings)
		assert.Empty(mt, bookings)
	})

	mt.Run("save", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testTimeouts)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		booking := &model.Booking{ID: primitive.NewObjectID().Hex(), UserID: owner, BookingTime: at, IsCancelled: true}
		assert.NoError(mt, repo.Save(context.Background(), booking))
	})

	mt.Run("save missing booking", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testTimeouts)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.Save(context.Background(), &model.Booking{ID: primitive.NewObjectID().Hex()})
		assert.ErrorIs(mt, err, bookingserrors.ErrNotFound)
	})

	mt.Run("save malformed id", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testTimeouts)

		err := repo.Save(context.Background(), &model.Booking{ID: "bad"})
		assert.ErrorIs(mt, err, bookingserrors.ErrInvalidID)
	})
}

func TestBuildOwnerFilter(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter TimeFilter
		want   bson.M
	}{
		{
			name:   "all",
			filter: TimeFilter{},
			want:   bson.M{"user_id": "u1"},
		},
		{
			name:   "history",
			filter: TimeFilter{Before: &now},
			want:   bson.M{"user_id": "u1", "booking_time": bson.M{"$lt": now}},
		},
		{
			name:   "upcoming",
			filter: TimeFilter{From: &now},
			want:   bson.M{"user_id": "u1", "booking_time": bson.M{"$gte": now}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildOwnerFilter("u1", tt.filter))
		})
	}
}
