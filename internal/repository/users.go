package repository

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

type UserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection), now: time.Now}
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := decodeOne(r.coll.FindOne(ctx, bson.M{"_id": id}), &user, "user", id.Hex()); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	if err := decodeOne(r.coll.FindOne(ctx, bson.M{"email": email}), &user, "user", email); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts user and fills its ID. A taken email is a Conflict.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := r.now()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ShippingAddresses == nil {
		user.ShippingAddresses = []models.ShippingAddress{}
	}
	if user.Favourites == nil {
		user.Favourites = []primitive.ObjectID{}
	}

	res, err := r.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("email %s is already registered", user.Email)
	}
	if err != nil {
		return errors.Wrap(err, "insert user")
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, newestFirst())
	if err != nil {
		return nil, errors.Wrap(err, "find users")
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "decode users")
	}
	return users, nil
}

// UserPatch carries the profile fields an admin or the owner may change.
type UserPatch struct {
	FullName        *string
	Gender          *string
	Avatar          *string
	Role            *string
	ShippingAddress *string
}

func (r *UserRepository) Update(ctx context.Context, id primitive.ObjectID, patch UserPatch) (*models.User, error) {
	set := bson.M{"updatedAt": r.now()}
	if patch.FullName != nil {
		set["fullname"] = *patch.FullName
	}
	if patch.Gender != nil {
		set["gender"] = *patch.Gender
	}
	if patch.Avatar != nil {
		set["avatar"] = *patch.Avatar
	}
	if patch.Role != nil {
		set["role"] = *patch.Role
	}
	if patch.ShippingAddress != nil {
		set["shippingAddress"] = *patch.ShippingAddress
	}
	if err := r.updateByID(ctx, id, bson.M{"$set": set}); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete user")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("user %s not found", id.Hex())
	}
	return nil
}

// UpdatePoint overwrites the loyalty balance.
func (r *UserRepository) UpdatePoint(ctx context.Context, id primitive.ObjectID, point int64) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"point": point, "updatedAt": r.now()}})
}

func (r *UserRepository) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"password": hash, "updatedAt": r.now()}})
}

// SetAddresses replaces the whole address book.
func (r *UserRepository) SetAddresses(ctx context.Context, id primitive.ObjectID, addresses []models.ShippingAddress) error {
	if addresses == nil {
		addresses = []models.ShippingAddress{}
	}
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"shippingAddresses": addresses, "updatedAt": r.now()}})
}

func (r *UserRepository) AddFavourite(ctx context.Context, id, productID primitive.ObjectID) error {
	return r.updateByID(ctx, id, bson.M{
		"$addToSet": bson.M{"favourites": productID},
		"$set":      bson.M{"updatedAt": r.now()},
	})
}

func (r *UserRepository) RemoveFavourite(ctx context.Context, id, productID primitive.ObjectID) error {
	return r.updateByID(ctx, id, bson.M{
		"$pull": bson.M{"favourites": productID},
		"$set":  bson.M{"updatedAt": r.now()},
	})
}

func (r *UserRepository) updateByID(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.coll.UpdateByID(ctx, id, update)
	if err != nil {
		return errors.Wrap(err, "update user")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user %s not found", id.Hex())
	}
	return nil
}
