// internal/app/store/messages/messagestore.go
package messagestore

import (
	"context"
	"time"

	"github.com/dalemusser/ecahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("messages")}
}

func (s *Store) Create(ctx context.Context, m models.Message) (models.Message, error) {
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// Inbox returns messages addressed to role, newest first, skipping the
// first offset. limit <= 0 means no limit.
func (s *Store) Inbox(ctx context.Context, role models.Role, limit, offset int64) ([]models.Message, error) {
	return s.list(ctx, bson.M{"recipient_roles": role}, limit, offset)
}

// Sent returns messages written by senderID, newest first.
func (s *Store) Sent(ctx context.Context, senderID primitive.ObjectID, limit, offset int64) ([]models.Message, error) {
	return s.list(ctx, bson.M{"sender_id": senderID}, limit, offset)
}

func (s *Store) list(ctx context.Context, q bson.M, limit, offset int64) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Message{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
