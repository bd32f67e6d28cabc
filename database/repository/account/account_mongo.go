package accountRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"authlink/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "accounts"

type MongoAccountRepo struct {
	coll *mongo.Collection
}

// NewMongoAccountRepo uses the accounts collection of db and ensures its indexes.
func NewMongoAccountRepo(db *mongo.Database) (AccountRepository, error) {
	repo := &MongoAccountRepo{coll: db.Collection(collectionName)}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoAccountRepo) Upsert(account *models.Account) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	account.UpdatedAt = now
	update := bson.M{
		"$set": bson.M{
			"email":       account.Email,
			"phoneNumber": account.PhoneNumber,
			"providers":   account.Providers,
			"emailLinked": account.EmailLinked,
			"phoneLinked": account.PhoneLinked,
			"updated_at":  now,
		},
		"$setOnInsert": bson.M{"uid": account.UID, "created_at": now},
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"uid": account.UID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}
	return nil
}

func (r *MongoAccountRepo) GetByUID(uid string) (*models.Account, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var account models.Account
	err := r.coll.FindOne(ctx, bson.M{"uid": uid}).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}
	return &account, nil
}

func (r *MongoAccountRepo) CountLinked() (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"emailLinked": true, "phoneLinked": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count linked accounts: %w", err)
	}
	return n, nil
}
