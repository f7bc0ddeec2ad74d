package repo

import (
	"context"
	"fmt"

	"github.com/beka-birhanu/vinom-autoplayer/game"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxRecentTurns = 500

// TurnRepo journals the turns played by agents.
type TurnRepo struct {
	collection *mongo.Collection
}

// NewTurnRepo creates a new TurnRepo with the given MongoDB client, database name, and collection name.
func NewTurnRepo(client *mongo.Client, dbName, collectionName string) *TurnRepo {
	return &TurnRepo{
		collection: client.Database(dbName).Collection(collectionName),
	}
}

// EnsureIndexes creates the (agentId, number) index used by Recent.
func (t *TurnRepo) EnsureIndexes(ctx context.Context) error {
	_, err := t.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "agentId", Value: 1}, {Key: "number", Value: -1}},
	})
	return err
}

// Save inserts a turn record.
func (t *TurnRepo) Save(ctx context.Context, record *game.TurnRecord) error {
	if _, err := t.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("saving turn %d: %w", record.Number, err)
	}
	return nil
}

// Recent returns up to limit records of an agent, newest first.
func (t *TurnRepo) Recent(ctx context.Context, agentID uuid.UUID, limit int64) ([]*game.TurnRecord, error) {
	if limit <= 0 || limit > maxRecentTurns {
		limit = maxRecentTurns
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "number", Value: -1}}).
		SetLimit(limit)
	cursor, err := t.collection.Find(ctx, bson.M{"agentId": agentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("finding turns: %w", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	records := make([]*game.TurnRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decoding turns: %w", err)
	}
	return records, nil
}
