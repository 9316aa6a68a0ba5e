package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/feedforward-app/feedforward-services/api/internal/survey/application"
	"github.com/feedforward-app/feedforward-services/api/internal/survey/domain"
)

// UserRepository persists users and their credit balances.
type UserRepository struct {
	users *mongo.Collection
}

// NewUserRepository binds the repository to the user collection.
func NewUserRepository(db *mongo.Database, userCollection string) *UserRepository {
	return &UserRepository{users: db.Collection(userCollection)}
}

// EnsureUser upserts the authenticated subject on first contact. New users
// start with zero credits; an existing record is returned untouched.
func (r *UserRepository) EnsureUser(ctx context.Context, id string) (*domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("user id is required")
	}

	update := bson.M{
		"$setOnInsert": bson.M{
			"credits":   0,
			"createdAt": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc UserDocument
	if err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		return nil, err
	}
	return mapUserDocument(doc), nil
}

// FindByID loads a user record.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var doc UserDocument
	err := r.users.FindOne(ctx, bson.M{"_id": strings.TrimSpace(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, application.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return mapUserDocument(doc), nil
}

// AddCredits increments the balance and returns the updated user.
func (r *UserRepository) AddCredits(ctx context.Context, id string, amount int) (*domain.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc UserDocument
	err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": strings.TrimSpace(id)}, bson.M{"$inc": bson.M{"credits": amount}}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, application.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return mapUserDocument(doc), nil
}

// DeductCredit takes one credit off the balance. The balance check and the
// decrement are one conditional operation, so concurrent sends cannot drive
// the balance negative; an unmatched filter maps to ErrInsufficientCredits.
func (r *UserRepository) DeductCredit(ctx context.Context, id string) (*domain.User, error) {
	filter := bson.M{
		"_id":     strings.TrimSpace(id),
		"credits": bson.M{"$gte": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc UserDocument
	err := r.users.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"credits": -1}}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, application.ErrInsufficientCredits
	}
	if err != nil {
		return nil, err
	}
	return mapUserDocument(doc), nil
}

func mapUserDocument(doc UserDocument) *domain.User {
	return &domain.User{ID: doc.ID, Credits: doc.Credits}
}
