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

const collectionRequests = "requests"

type RequestRepository struct {
	col *mongo.Collection
}

func NewRequestRepository(db *mongo.Database) *RequestRepository {
	return &RequestRepository{col: db.Collection(collectionRequests)}
}

type mongoRequest struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	ClientID    primitive.ObjectID  `bson:"clientId"`
	VendorID    *primitive.ObjectID `bson:"vendorId"`
	Title       string              `bson:"requestTitle,omitempty"`
	Description string              `bson:"requestDescription,omitempty"`
	Image       string              `bson:"requestImage,omitempty"`
	Status      string              `bson:"status,omitempty"`
	Category    string              `bson:"category,omitempty"`
	Budget      *float64            `bson:"budget,omitempty"`
	Attachments []string            `bson:"attachments,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt"`
}

func (m *mongoRequest) toDomain() *domain.Request {
	var vendorID *string
	if m.VendorID != nil {
		hex := m.VendorID.Hex()
		vendorID = &hex
	}
	return &domain.Request{
		ID:       m.ID.Hex(),
		ClientID: m.ClientID.Hex(),
		VendorID: vendorID,
		RequestFields: domain.RequestFields{
			Title:       m.Title,
			Description: m.Description,
			Image:       m.Image,
			Status:      m.Status,
			Category:    m.Category,
			Budget:      m.Budget,
			Attachments: m.Attachments,
		},
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// Create inserts a new request document. The vendor is always left unset.
func (r *RequestRepository) Create(ctx context.Context, req *domain.Request) (*domain.Request, error) {
	clientID, err := objectID(req.ClientID, domain.Validation("Invalid client id"))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoRequest{
		ID:          primitive.NewObjectID(),
		ClientID:    clientID,
		VendorID:    nil,
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Status:      req.Status,
		Category:    req.Category,
		Budget:      req.Budget,
		Attachments: req.Attachments,
		CreatedAt:   req.CreatedAt,
		UpdatedAt:   req.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert request: %w", err)
	}
	return doc.toDomain(), nil
}

// Replace overwrites the mutable fields of a request owned by clientID.
func (r *RequestRepository) Replace(ctx context.Context, id, clientID string, fields domain.RequestFields) (*domain.Request, error) {
	oid, err := objectID(id, domain.Validation("Invalid request id"))
	if err != nil {
		return nil, err
	}
	owner, err := objectID(clientID, domain.ErrRequestNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoRequest
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "clientId": owner},
		replaceUpdate(fields, time.Now().UTC()),
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("replace request: %w", err)
	}
	return doc.toDomain(), nil
}

// ListByClient returns the client's requests, newest first.
func (r *RequestRepository) ListByClient(ctx context.Context, clientID string) ([]*domain.Request, error) {
	owner, err := objectID(clientID, domain.ErrAccountNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"clientId": owner}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoRequest
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode requests: %w", err)
	}

	out := make([]*domain.Request, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes on the requests collection.
func (r *RequestRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "vendorId", Value: 1}}},
	})
	return err
}

// replaceUpdate builds a full-replace update for the mutable field group:
// present fields are $set, absent ones are $unset.
func replaceUpdate(f domain.RequestFields, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	unset := bson.M{}

	put := func(key string, present bool, value any) {
		if present {
			set[key] = value
		} else {
			unset[key] = ""
		}
	}
	put("requestTitle", f.Title != "", f.Title)
	put("requestDescription", f.Description != "", f.Description)
	put("requestImage", f.Image != "", f.Image)
	put("status", f.Status != "", f.Status)
	put("category", f.Category != "", f.Category)
	put("budget", f.Budget != nil, f.Budget)
	put("attachments", len(f.Attachments) > 0, f.Attachments)

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}
