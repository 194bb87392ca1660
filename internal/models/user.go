package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ShippingAddress is a single entry of a user's address book.
type ShippingAddress struct {
	ID          string `bson:"id" json:"id"`
	Label       string `bson:"label,omitempty" json:"label,omitempty"`
	FullName    string `bson:"fullName" json:"fullName"`
	Phone       string `bson:"phone" json:"phone"`
	AddressLine string `bson:"addressLine" json:"addressLine"`
	Ward        string `bson:"ward,omitempty" json:"ward,omitempty"`
	District    string `bson:"district,omitempty" json:"district,omitempty"`
	City        string `bson:"city,omitempty" json:"city,omitempty"`
	Note        string `bson:"note,omitempty" json:"note,omitempty"`
	IsDefault   bool   `bson:"isDefault" json:"isDefault"`
}

// User is the account document. Point is only mutated by order placement.
type User struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Email             string               `bson:"email" json:"email"`
	PasswordHash      string               `bson:"password,omitempty" json:"-"`
	FullName          string               `bson:"fullname" json:"fullname"`
	Role              string               `bson:"role,omitempty" json:"role,omitempty"`
	Gender            string               `bson:"gender,omitempty" json:"gender,omitempty"`
	Avatar            string               `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Point             int64                `bson:"point" json:"point"`
	ShippingAddress   string               `bson:"shippingAddress,omitempty" json:"shippingAddress,omitempty"`
	ShippingAddresses []ShippingAddress    `bson:"shippingAddresses" json:"shippingAddresses"`
	Favourites        []primitive.ObjectID `bson:"favourites" json:"favourites"`
	CreatedAt         time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// DefaultAddress returns the address flagged as default, or the first entry
// when none is flagged.
func (u *User) DefaultAddress() (ShippingAddress, bool) {
	for _, addr := range u.ShippingAddresses {
		if addr.IsDefault {
			return addr, true
		}
	}
	if len(u.ShippingAddresses) > 0 {
		return u.ShippingAddresses[0], true
	}
	return ShippingAddress{}, false
}

// FindAddress looks up an address book entry by id.
func (u *User) FindAddress(id string) (ShippingAddress, int, bool) {
	for i, addr := range u.ShippingAddresses {
		if addr.ID == id {
			return addr, i, true
		}
	}
	return ShippingAddress{}, -1, false
}
