// Package account handles sign-up, sign-in, profiles, favourites and the
// per-user address book.
package account

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repository"
)

type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, patch repository.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	SetAddresses(ctx context.Context, id primitive.ObjectID, addresses []models.ShippingAddress) error
	AddFavourite(ctx context.Context, id, productID primitive.ObjectID) error
	RemoveFavourite(ctx context.Context, id, productID primitive.ObjectID) error
}

type ProductLookup interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
}

// PasswordMailer queues the email that carries a generated password.
type PasswordMailer interface {
	Password(to, name, password string)
}

// AuthResult is returned by every flow that signs a user in.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type RegisterInput struct {
	Email           string
	Password        string
	FullName        string
	Gender          string
	ShippingAddress string
}

type Service struct {
	users    UserStore
	products ProductLookup
	mail     PasswordMailer
	tokens   *TokenIssuer
	lg       *zap.Logger

	hashCost     int
	newPassword  func() (string, error)
	newAddressID func() string
}

func NewService(users UserStore, products ProductLookup, mail PasswordMailer, tokens *TokenIssuer, lg *zap.Logger) *Service {
	return &Service{
		users:        users,
		products:     products,
		mail:         mail,
		tokens:       tokens,
		lg:           lg,
		hashCost:     bcrypt.DefaultCost,
		newPassword:  randomPassword,
		newAddressID: newAddressID,
	}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || strings.TrimSpace(in.Password) == "" {
		return nil, apperr.BadRequest("email and password are required")
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:           email,
		PasswordHash:    hash,
		FullName:        strings.TrimSpace(in.FullName),
		Gender:          strings.TrimSpace(in.Gender),
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		Role:            models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.lg.Info("User registered", zap.String("user_id", user.ID.Hex()))
	return s.signIn(user)
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	return s.signIn(user)
}

func (s *Service) Me(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *Service) ChangePassword(ctx context.Context, id primitive.ObjectID, current, next string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return apperr.BadRequest("current password is incorrect")
	}
	if current == next {
		return apperr.BadRequest("new password must differ from the current one")
	}
	if strings.TrimSpace(next) == "" {
		return apperr.BadRequest("new password is required")
	}
	hash, err := s.hash(next)
	if err != nil {
		return err
	}
	return s.users.SetPassword(ctx, id, hash)
}

// ForgotPassword replaces the password with a random one and mails it.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.NotFound("email not found")
	}
	if err != nil {
		return err
	}
	password, err := s.resetPassword(ctx, user.ID)
	if err != nil {
		return err
	}
	s.mail.Password(user.Email, user.FullName, password)
	return nil
}

// Guest signs in a checkout-only shopper, creating the account on first use
// and refreshing its legacy address otherwise.
func (s *Service) Guest(ctx context.Context, email, shippingAddress string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperr.BadRequest("email is required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case apperr.Is(err, apperr.KindNotFound):
		user, err = s.createWithGeneratedPassword(ctx, email, "Guest User", shippingAddress)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		addr := strings.TrimSpace(shippingAddress)
		user, err = s.users.Update(ctx, user.ID, repository.UserPatch{ShippingAddress: &addr})
		if err != nil {
			return nil, err
		}
	}
	return s.signIn(user)
}

// QuickRegister creates an account with a generated password. An existing
// email is a Conflict.
func (s *Service) QuickRegister(ctx context.Context, email, fullName, address string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperr.BadRequest("email is required")
	}
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, apperr.Conflict("email %s is already registered", email)
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	user, err := s.createWithGeneratedPassword(ctx, email, fullName, address)
	if err != nil {
		return nil, err
	}
	return s.signIn(user)
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *Service) Update(ctx context.Context, id primitive.ObjectID, patch repository.UserPatch) (*models.User, error) {
	if patch.Role != nil && *patch.Role != models.RoleUser && *patch.Role != models.RoleAdmin {
		return nil, apperr.BadRequest("invalid role %q", *patch.Role)
	}
	return s.users.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.users.Delete(ctx, id)
}

// ToggleFavourite adds productID to the favourites, or removes it when
// already present, and returns the resulting favourite products.
func (s *Service) ToggleFavourite(ctx context.Context, id, productID primitive.ObjectID) ([]models.Product, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	present := false
	for _, fav := range user.Favourites {
		if fav == productID {
			present = true
			break
		}
	}
	if present {
		err = s.users.RemoveFavourite(ctx, id, productID)
	} else {
		if _, err := s.products.FindByID(ctx, productID); err != nil {
			return nil, err
		}
		err = s.users.AddFavourite(ctx, id, productID)
	}
	if err != nil {
		return nil, err
	}
	return s.Favourites(ctx, id)
}

// Favourites returns the favourite products in the order they were added.
func (s *Service) Favourites(ctx context.Context, id primitive.ObjectID) ([]models.Product, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	products, err := s.products.FindByIDs(ctx, user.Favourites)
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	ordered := make([]models.Product, 0, len(products))
	for _, fav := range user.Favourites {
		if p, ok := byID[fav]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func (s *Service) createWithGeneratedPassword(ctx context.Context, email, fullName, address string) (*models.User, error) {
	password, err := s.newPassword()
	if err != nil {
		return nil, errors.Wrap(err, "generate password")
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:           email,
		PasswordHash:    hash,
		FullName:        strings.TrimSpace(fullName),
		ShippingAddress: strings.TrimSpace(address),
		Role:            models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.mail.Password(user.Email, user.FullName, password)
	s.lg.Info("Account created with generated password", zap.String("user_id", user.ID.Hex()))
	return user, nil
}

func (s *Service) resetPassword(ctx context.Context, id primitive.ObjectID) (string, error) {
	password, err := s.newPassword()
	if err != nil {
		return "", errors.Wrap(err, "generate password")
	}
	hash, err := s.hash(password)
	if err != nil {
		return "", err
	}
	if err := s.users.SetPassword(ctx, id, hash); err != nil {
		return "", err
	}
	return password, nil
}

func (s *Service) signIn(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomPassword() (string, error) {
	buf := make([]byte, 10)
	limit := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
