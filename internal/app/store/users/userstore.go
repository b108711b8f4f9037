package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/groomhub/internal/app/system/normalize"
	"github.com/dalemusser/groomhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// Account status values stored in users.status.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetDriverByID loads a user by ObjectID, returning an error if the user
// does not exist or is not a driver.
func (s *Store) GetDriverByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "role": "driver"}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListDrivers returns all active drivers sorted by name. Used to populate
// assignment dropdowns on the dispatch board.
func (s *Store) ListDrivers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{
		"role":   "driver",
		"status": bson.M{"$ne": StatusDisabled},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var drivers []models.User
	if err := cur.All(ctx, &drivers); err != nil {
		return nil, err
	}
	return drivers, nil
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "superadmin"|"admin"|"manager"|"agent"|"driver"`)
	errBadStatus      = errors.New(`status must be "active"|"disabled"`)
	errBadAuthMethod  = errors.New(`auth_method must be "password"|"google"`)
	errAgentNumber    = errors.New("agent must have an agent_number")
)

// Create inserts a new user after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	// Normalize core fields
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	if u.Status == "" {
		u.Status = StatusActive
	}

	switch u.Role {
	case "superadmin", "admin", "manager", "agent", "driver":
		// ok
	default:
		return models.User{}, errBadRole
	}

	switch u.Status {
	case StatusActive, StatusDisabled:
		// ok
	default:
		return models.User{}, errBadStatus
	}

	if u.AuthMethod != "" && !models.IsValidAuthMethod(u.AuthMethod) {
		return models.User{}, errBadAuthMethod
	}

	// Agents must be linked to a telephony line
	if u.Role == "agent" && u.AgentNumber == "" {
		return models.User{}, errAgentNumber
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// VerifyPassword checks a plaintext password against the stored bcrypt hash.
// Returns false for Google-only accounts, which have no hash.
func VerifyPassword(u *models.User, password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetPassword hashes and stores a new password for the user.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_hash": string(hash),
		"auth_method":   models.AuthPassword,
		"updated_at":    time.Now(),
	}})
	return err
}

// EnsureSuperAdmin makes sure the configured superadmin email owns a
// superadmin account. Existing accounts are promoted; a missing account is
// created without a password so the owner signs in with Google first.
func (s *Store) EnsureSuperAdmin(ctx context.Context, email string) error {
	email = normalize.Email(email)
	if email == "" {
		return nil
	}

	existing, err := s.GetByEmail(ctx, email)
	if err == nil {
		if existing.Role == "superadmin" {
			return nil
		}
		_, err = s.c.UpdateOne(ctx, bson.M{"_id": existing.ID}, bson.M{"$set": bson.M{
			"role":       "superadmin",
			"updated_at": time.Now(),
		}})
		return err
	}
	if err != mongo.ErrNoDocuments {
		return err
	}

	_, err = s.Create(ctx, models.User{
		FullName:   "Super Admin",
		Email:      email,
		AuthMethod: models.AuthGoogle,
		Role:       "superadmin",
	})
	if err == ErrDuplicateEmail {
		return nil
	}
	return err
}

// EmailExistsForOther checks if an email already exists for a user other than the given ID.
func (s *Store) EmailExistsForOther(ctx context.Context, email string, excludeID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"email": normalize.Email(email),
		"_id":   bson.M{"$ne": excludeID},
	}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}
