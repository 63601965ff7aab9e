package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"company_id", "name", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"company_id": bson.M{"bsonType": "string", "minLength": 1},
			"name":       bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
			"email":      bson.M{"bsonType": []string{"string", "null"}},
			"is_active":  bson.M{"bsonType": "bool"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}

var AuditEventValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"company_id", "location_id", "event_type", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"event_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"booking_created", "booking_cancelled"},
			},
			"event_data": bson.M{"bsonType": "object"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}

var MailValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"to", "message", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"to": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items":    bson.M{"bsonType": "string"},
			},
			"message": bson.M{
				"bsonType": "object",
				"required": []string{"subject", "html"},
			},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}

var BookingLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "owner", "expires_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"owner":      bson.M{"bsonType": "string"},
			"expires_at": bson.M{"bsonType": "date"},
		},
	},
}
