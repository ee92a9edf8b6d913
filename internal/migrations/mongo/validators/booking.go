package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"date_of_booking",
			"booking_time",
			"description",
			"is_recurring",
			"is_cancelled",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"date_of_booking": bson.M{
				"bsonType": "date",
			},

			"booking_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 255,
			},

			"is_recurring": bson.M{
				"bsonType": "bool",
			},

			"recurrence_interval": bson.M{
				"bsonType": "string",
				"enum": []string{
					"daily",
					"weekly",
					"monthly",
					"yearly",
				},
			},

			"is_cancelled": bson.M{
				"bsonType": "bool",
			},
		},
	},
}
