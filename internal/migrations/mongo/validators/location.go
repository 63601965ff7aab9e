package validators

import "go.mongodb.org/mongo-driver/bson"

var LocationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"company_id", "name", "capacity", "access_code", "is_active", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "objectId"},
			"company_id": bson.M{"bsonType": "string", "minLength": 1},
			"name":       bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
			"address":    bson.M{"bsonType": "string", "maxLength": 200},
			"capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  500,
			},
			"access_code": bson.M{
				"bsonType": "string",
				"pattern":  `^[A-Z0-9-]{6,8}$`,
			},
			"pin":        bson.M{"bsonType": "string", "pattern": `^\d{4}$`},
			"is_active":  bson.M{"bsonType": "bool"},
			"settings":   bson.M{"bsonType": "object"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
