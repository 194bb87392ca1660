package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

func addressBookUser() *models.User {
	return &models.User{
		FullName:        "Nguyen Van A",
		ShippingAddress: "12 Legacy Road",
		ShippingAddresses: []models.ShippingAddress{
			{ID: "home", FullName: "A Home", Phone: "0901", AddressLine: "1 Home St", City: "Hanoi"},
			{ID: "work", FullName: "A Work", Phone: "0902", AddressLine: "2 Work St", IsDefault: true},
		},
	}
}

func TestResolveShippingInlineWins(t *testing.T) {
	got, err := ResolveShipping(addressBookUser(), "home", &AddressInput{AddressLine: "9 Inline Ave", Ward: "W1"})
	require.NoError(t, err)
	assert.Equal(t, models.ShippingSnapshot{
		FullName:    "Nguyen Van A",
		Phone:       "",
		AddressLine: "9 Inline Ave",
		Ward:        "W1",
	}, got)
}

func TestResolveShippingInlineWithoutAddressLineIsIgnored(t *testing.T) {
	got, err := ResolveShipping(addressBookUser(), "home", &AddressInput{FullName: "Someone", AddressLine: "  "})
	require.NoError(t, err)
	assert.Equal(t, "1 Home St", got.AddressLine)
}

func TestResolveShippingSavedID(t *testing.T) {
	got, err := ResolveShipping(addressBookUser(), "home", nil)
	require.NoError(t, err)
	assert.Equal(t, models.ShippingSnapshot{
		FullName:    "A Home",
		Phone:       "0901",
		AddressLine: "1 Home St",
		City:        "Hanoi",
	}, got)
}

func TestResolveShippingUnknownIDIsNotFound(t *testing.T) {
	_, err := ResolveShipping(addressBookUser(), "missing", nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestResolveShippingDefaultThenFirst(t *testing.T) {
	user := addressBookUser()
	got, err := ResolveShipping(user, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "2 Work St", got.AddressLine)

	user.ShippingAddresses[1].IsDefault = false
	got, err = ResolveShipping(user, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "1 Home St", got.AddressLine)
}

func TestResolveShippingLegacyString(t *testing.T) {
	user := &models.User{FullName: "Tran B", ShippingAddress: "12 Legacy Road"}
	got, err := ResolveShipping(user, "", nil)
	require.NoError(t, err)
	assert.Equal(t, models.ShippingSnapshot{FullName: "Tran B", AddressLine: "12 Legacy Road"}, got)
}

func TestResolveShippingBlankLegacyStringIsAbsent(t *testing.T) {
	user := &models.User{FullName: "Tran B", ShippingAddress: " \t "}
	_, err := ResolveShipping(user, "", &AddressInput{AddressLine: "   "})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}

func TestResolveShippingNothingIsBadRequest(t *testing.T) {
	_, err := ResolveShipping(&models.User{FullName: "Le C"}, "", nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}
