package validators

import "go.mongodb.org/mongo-driver/bson"

var bookingStatuses = []string{
	"pending",
	"confirmed",
	"in_progress",
	"completed",
	"cancelled",
}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"status",
			"kind",
			"store_id",
			"scheduled_start",
			"payment_status",
			"history",
			"version",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     bookingStatuses,
			},

			"kind": bson.M{
				"bsonType": "string",
				"enum":     []string{"service", "offer"},
			},

			"store_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"staff_id": bson.M{
				"bsonType": "string",
			},

			"client": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"name":  bson.M{"bsonType": "string"},
					"email": bson.M{"bsonType": "string"},
					"phone": bson.M{"bsonType": "string"},
				},
			},

			"scheduled_start": bson.M{
				"bsonType": "date",
			},

			"scheduled_end": bson.M{
				"bsonType": "date",
			},

			"duration_minutes": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  1440,
			},

			"checked_in_at":        bson.M{"bsonType": "date"},
			"service_started_at":   bson.M{"bsonType": "date"},
			"service_end_deadline": bson.M{"bsonType": "date"},
			"completed_at":         bson.M{"bsonType": "date"},
			"cancelled_at":         bson.M{"bsonType": "date"},

			"payment_status": bson.M{
				"bsonType": "string",
				"enum":     []string{"not_paid", "deposit", "complete"},
			},

			"deposit_amount": bson.M{
				"bsonType": "double",
				"minimum":  0,
			},

			"total_amount": bson.M{
				"bsonType": "double",
				"minimum":  0,
			},

			"cancellation_reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"history": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"action", "timestamp", "actor"},
					"properties": bson.M{
						"action":    bson.M{"bsonType": "string"},
						"timestamp": bson.M{"bsonType": "date"},
						"actor":     bson.M{"bsonType": "string"},
						"notes":     bson.M{"bsonType": "string"},
					},
				},
			},

			"version": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
