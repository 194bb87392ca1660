package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStringListDecodesLegacyString(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"tags": "phone, apple ,,phone"})
	require.NoError(t, err)

	var p Product
	require.NoError(t, bson.Unmarshal(raw, &p))
	assert.Equal(t, StringList{"phone", "apple"}, p.Tags)
}

func TestStringListDecodesArray(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"tags": []string{"laptop", " gaming "}})
	require.NoError(t, err)

	var p Product
	require.NoError(t, bson.Unmarshal(raw, &p))
	assert.Equal(t, StringList{"laptop", "gaming"}, p.Tags)
}

func TestUserDefaultAddress(t *testing.T) {
	u := User{ShippingAddresses: []ShippingAddress{
		{ID: "a", AddressLine: "1 First St"},
		{ID: "b", AddressLine: "2 Second St", IsDefault: true},
	}}
	addr, ok := u.DefaultAddress()
	require.True(t, ok)
	assert.Equal(t, "b", addr.ID)

	u.ShippingAddresses[1].IsDefault = false
	addr, ok = u.DefaultAddress()
	require.True(t, ok)
	assert.Equal(t, "a", addr.ID)

	_, ok = (&User{}).DefaultAddress()
	assert.False(t, ok)
}

func TestIsValidOrderStatus(t *testing.T) {
	assert.True(t, IsValidOrderStatus(OrderStatusShipped))
	assert.False(t, IsValidOrderStatus("shipped"))
	assert.False(t, IsValidOrderStatus(""))
}
