package order

import (
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// AddressInput is an address typed in at checkout.
type AddressInput struct {
	FullName    string `json:"fullName"`
	Phone       string `json:"phone"`
	AddressLine string `json:"addressLine"`
	Ward        string `json:"ward"`
	District    string `json:"district"`
	City        string `json:"city"`
	Note        string `json:"note"`
}

// ResolveShipping picks the delivery address for an order. First match wins:
// an inline address with an address line, then the saved address addressID,
// then the default (or first) saved address, then the legacy free-text field.
// A whitespace-only address line counts as absent.
func ResolveShipping(user *models.User, addressID string, inline *AddressInput) (models.ShippingSnapshot, error) {
	if inline != nil && strings.TrimSpace(inline.AddressLine) != "" {
		fullName := inline.FullName
		if fullName == "" {
			fullName = user.FullName
		}
		return models.ShippingSnapshot{
			FullName:    fullName,
			Phone:       inline.Phone,
			AddressLine: inline.AddressLine,
			Ward:        inline.Ward,
			District:    inline.District,
			City:        inline.City,
			Note:        inline.Note,
		}, nil
	}

	if addressID != "" {
		addr, _, ok := user.FindAddress(addressID)
		if !ok {
			return models.ShippingSnapshot{}, apperr.NotFound("shipping address %s not found", addressID)
		}
		return snapshotOf(addr), nil
	}

	if addr, ok := user.DefaultAddress(); ok {
		return snapshotOf(addr), nil
	}

	if strings.TrimSpace(user.ShippingAddress) != "" {
		return models.ShippingSnapshot{
			FullName:    user.FullName,
			AddressLine: user.ShippingAddress,
		}, nil
	}

	return models.ShippingSnapshot{}, apperr.BadRequest("please choose a shipping address before placing the order")
}

func snapshotOf(addr models.ShippingAddress) models.ShippingSnapshot {
	return models.ShippingSnapshot{
		FullName:    addr.FullName,
		Phone:       addr.Phone,
		AddressLine: addr.AddressLine,
		Ward:        addr.Ward,
		District:    addr.District,
		City:        addr.City,
		Note:        addr.Note,
	}
}
