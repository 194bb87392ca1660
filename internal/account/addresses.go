package account

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// AddressInput is an address book entry as submitted by the user.
// IsDefault is a pointer so that updates can leave the flag alone.
type AddressInput struct {
	Label       *string
	FullName    *string
	Phone       *string
	AddressLine *string
	Ward        *string
	District    *string
	City        *string
	Note        *string
	IsDefault   *bool
}

func (s *Service) ListAddresses(ctx context.Context, userID primitive.ObjectID) ([]models.ShippingAddress, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ShippingAddresses == nil {
		return []models.ShippingAddress{}, nil
	}
	return user.ShippingAddresses, nil
}

// AddAddress appends an entry. The first address becomes the default unless
// the input says otherwise; a new default clears every other flag.
func (s *Service) AddAddress(ctx context.Context, userID primitive.ObjectID, in AddressInput) ([]models.ShippingAddress, error) {
	if in.FullName == nil || strings.TrimSpace(*in.FullName) == "" ||
		in.AddressLine == nil || strings.TrimSpace(*in.AddressLine) == "" {
		return nil, apperr.BadRequest("fullName and addressLine are required")
	}
	return s.editAddresses(ctx, userID, func(book []models.ShippingAddress) ([]models.ShippingAddress, error) {
		return addAddress(book, s.newAddressID(), in), nil
	})
}

// UpdateAddress patches one entry. Setting isDefault makes it the only default.
func (s *Service) UpdateAddress(ctx context.Context, userID primitive.ObjectID, addressID string, in AddressInput) ([]models.ShippingAddress, error) {
	return s.editAddresses(ctx, userID, func(book []models.ShippingAddress) ([]models.ShippingAddress, error) {
		return updateAddress(book, addressID, in)
	})
}

// RemoveAddress deletes an entry. Removing the default promotes the first
// remaining address.
func (s *Service) RemoveAddress(ctx context.Context, userID primitive.ObjectID, addressID string) ([]models.ShippingAddress, error) {
	return s.editAddresses(ctx, userID, func(book []models.ShippingAddress) ([]models.ShippingAddress, error) {
		return removeAddress(book, addressID)
	})
}

func (s *Service) SetDefaultAddress(ctx context.Context, userID primitive.ObjectID, addressID string) ([]models.ShippingAddress, error) {
	return s.editAddresses(ctx, userID, func(book []models.ShippingAddress) ([]models.ShippingAddress, error) {
		return setDefault(book, addressID)
	})
}

func (s *Service) editAddresses(
	ctx context.Context,
	userID primitive.ObjectID,
	edit func([]models.ShippingAddress) ([]models.ShippingAddress, error),
) ([]models.ShippingAddress, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	book, err := edit(append([]models.ShippingAddress(nil), user.ShippingAddresses...))
	if err != nil {
		return nil, err
	}
	if err := s.users.SetAddresses(ctx, userID, book); err != nil {
		return nil, err
	}
	return book, nil
}

func newAddressID() string {
	return uuid.NewString()
}

func addAddress(book []models.ShippingAddress, id string, in AddressInput) []models.ShippingAddress {
	addr := models.ShippingAddress{ID: id}
	applyAddress(&addr, in)
	addr.IsDefault = len(book) == 0
	if in.IsDefault != nil {
		addr.IsDefault = *in.IsDefault
	}
	if addr.IsDefault {
		clearDefaults(book)
	}
	return append(book, addr)
}

func updateAddress(book []models.ShippingAddress, id string, in AddressInput) ([]models.ShippingAddress, error) {
	i := indexOf(book, id)
	if i < 0 {
		return nil, apperr.NotFound("address %s not found", id)
	}
	patched := book[i]
	applyAddress(&patched, in)
	if (in.FullName != nil && patched.FullName == "") || (in.AddressLine != nil && patched.AddressLine == "") {
		return nil, apperr.BadRequest("fullName and addressLine must not be empty")
	}
	book[i] = patched
	if in.IsDefault != nil {
		if *in.IsDefault {
			clearDefaults(book)
		}
		book[i].IsDefault = *in.IsDefault
	}
	return book, nil
}

func removeAddress(book []models.ShippingAddress, id string) ([]models.ShippingAddress, error) {
	i := indexOf(book, id)
	if i < 0 {
		return nil, apperr.NotFound("address %s not found", id)
	}
	removed := book[i]
	book = append(book[:i], book[i+1:]...)
	if removed.IsDefault && len(book) > 0 {
		book[0].IsDefault = true
	}
	return book, nil
}

func setDefault(book []models.ShippingAddress, id string) ([]models.ShippingAddress, error) {
	i := indexOf(book, id)
	if i < 0 {
		return nil, apperr.NotFound("address %s not found", id)
	}
	clearDefaults(book)
	book[i].IsDefault = true
	return book, nil
}

func applyAddress(addr *models.ShippingAddress, in AddressInput) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&addr.Label, in.Label)
	set(&addr.FullName, in.FullName)
	set(&addr.Phone, in.Phone)
	set(&addr.AddressLine, in.AddressLine)
	set(&addr.Ward, in.Ward)
	set(&addr.District, in.District)
	set(&addr.City, in.City)
	set(&addr.Note, in.Note)
}

func clearDefaults(book []models.ShippingAddress) {
	for i := range book {
		book[i].IsDefault = false
	}
}

func indexOf(book []models.ShippingAddress, id string) int {
	for i, addr := range book {
		if addr.ID == id {
			return i
		}
	}
	return -1
}
