package validators

import "go.mongodb.org/mongo-driver/bson"

var CompanyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "domain", "admin_email", "trial_status", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":              bson.M{"bsonType": "objectId"},
			"name":             bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
			"domain":           bson.M{"bsonType": "string", "minLength": 3},
			"admin_email":      bson.M{"bsonType": "string", "pattern": `^[^@\s]+@[^@\s]+$`},
			"email_verified":   bson.M{"bsonType": "bool"},
			"trial_start_date": bson.M{"bsonType": "date"},
			"trial_end_date":   bson.M{"bsonType": "date"},
			"trial_status": bson.M{
				"bsonType": "string",
				"enum":     []string{"pending", "active", "expiring", "grace_period", "expired"},
			},
			"extension_days": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
			"created_at":     bson.M{"bsonType": "date"},
		},
	},
}
