package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections_EveryCollectionHasSchemaAndIndexes(t *testing.T) {
	collections := Collections()
	for _, name := range []string{"locations", "bookings", "users", "analytics_events", "booking_locks", "companies", "mail"} {
		def, ok := collections[name]
		require.True(t, ok, name)
		assert.NotEmpty(t, def.Indexes, name)
		assert.Contains(t, def.Validator, "$jsonSchema", name)
	}
}

func TestLocationsIndexes_AccessCodeUnique(t *testing.T) {
	idx := LocationsIndexes[0]
	assert.Equal(t, bson.D{{Key: "access_code", Value: 1}}, idx.Keys)
	require.NotNil(t, idx.Options)
	require.NotNil(t, idx.Options.Unique)
	assert.True(t, *idx.Options.Unique)
}

func TestCompaniesIndexes_DomainAndEmailUnique(t *testing.T) {
	unique := map[string]bool{}
	for _, idx := range CompaniesIndexes {
		if idx.Options != nil && idx.Options.Unique != nil && *idx.Options.Unique {
			keys := idx.Keys.(bson.D)
			unique[keys[0].Key] = true
		}
	}
	assert.True(t, unique["domain"])
	assert.True(t, unique["admin_email"])
}

func TestBookingLocksIndexes_Expire(t *testing.T) {
	opts := BookingLocksIndexes[0].Options
	require.NotNil(t, opts)
	require.NotNil(t, opts.ExpireAfterSeconds)
	assert.Equal(t, int32(0), *opts.ExpireAfterSeconds)
}
