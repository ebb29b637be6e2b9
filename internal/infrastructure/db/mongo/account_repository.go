package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskbridge/marketplace-api/internal/core/domain"
)

const (
	collectionClients = "clients"
	collectionVendors = "vendors"
)

// CollectionFor returns the collection that stores accounts of kind.
func CollectionFor(kind domain.AccountKind) string {
	if kind == domain.KindVendor {
		return collectionVendors
	}
	return collectionClients
}

// AccountRepository implements ports.AccountRepository on one collection.
type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database, kind domain.AccountKind) *AccountRepository {
	return &AccountRepository{coll: db.Collection(CollectionFor(kind))}
}

type mongoAccount struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	FullName     string               `bson:"fullName"`
	Email        string               `bson:"email"`
	Password     string               `bson:"password,omitempty"`
	RefreshToken string               `bson:"refreshToken,omitempty"`
	Requests     []primitive.ObjectID `bson:"requests"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

func (m *mongoAccount) toDomain() *domain.Account {
	requests := make([]string, len(m.Requests))
	for i, id := range m.Requests {
		requests[i] = id.Hex()
	}
	return &domain.Account{
		ID:           m.ID.Hex(),
		FullName:     m.FullName,
		Email:        m.Email,
		Password:     m.Password,
		RefreshToken: m.RefreshToken,
		Requests:     requests,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

// projection excludes the given fields from a read.
func projection(omit []domain.AccountField) bson.M {
	if len(omit) == 0 {
		return nil
	}
	p := bson.M{}
	for _, f := range omit {
		p[string(f)] = 0
	}
	return p
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoAccount{
		ID:        primitive.NewObjectID(),
		FullName:  account.FullName,
		Email:     account.Email,
		Password:  account.Password,
		Requests:  []primitive.ObjectID{},
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email}, nil)
}

func (r *AccountRepository) FindByID(ctx context.Context, id string, omit ...domain.AccountField) (*domain.Account, error) {
	oid, err := objectID(id, domain.ErrAccountNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, omit)
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M, omit []domain.AccountField) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne()
	if p := projection(omit); p != nil {
		opts.SetProjection(p)
	}

	var doc mongoAccount
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateRefreshToken sets or, for an empty token, unsets the refresh token.
func (r *AccountRepository) UpdateRefreshToken(ctx context.Context, id, token string) (*domain.Account, error) {
	oid, err := objectID(id, domain.ErrAccountNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{"refreshToken": token, "updatedAt": now}}
	if token == "" {
		update = bson.M{
			"$unset": bson.M{"refreshToken": ""},
			"$set":   bson.M{"updatedAt": now},
		}
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(projection([]domain.AccountField{domain.FieldPassword}))

	var doc mongoAccount
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("update refresh token: %w", err)
	}
	return doc.toDomain(), nil
}

// AppendRequest adds requestID to the account's requests. $addToSet keeps the
// append idempotent so repair retries never duplicate entries.
func (r *AccountRepository) AppendRequest(ctx context.Context, accountID, requestID string) error {
	oid, err := objectID(accountID, domain.ErrAccountNotFound)
	if err != nil {
		return err
	}
	rid, err := objectID(requestID, domain.ErrRequestNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$addToSet": bson.M{"requests": rid},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("append request: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index the registration flow relies on.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	return err
}
