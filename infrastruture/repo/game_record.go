package repo

import (
	"context"
	"errors"

	dmn "github.com/beka-birhanu/wumpus-api/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GameRecordRepo handles the persistence of finished games.
type GameRecordRepo struct {
	collection *mongo.Collection
}

// NewGameRecordRepo creates a new GameRecordRepo with the given MongoDB client, database name, and collection name.
func NewGameRecordRepo(client *mongo.Client, dbName, collectionName string) *GameRecordRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &GameRecordRepo{
		collection: collection,
	}
}

// Save inserts or replaces a game record.
func (g *GameRecordRepo) Save(ctx context.Context, record *dmn.GameRecord) error {
	filter := bson.M{"_id": record.ID}
	opts := options.Replace().SetUpsert(true)
	if _, err := g.collection.ReplaceOne(ctx, filter, record, opts); err != nil {
		return errors.New("unexpected error: " + err.Error())
	}
	return nil
}

// Recent retrieves up to limit records, the most recently ended first.
func (g *GameRecordRepo) Recent(ctx context.Context, limit int) ([]*dmn.GameRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "endedAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := g.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.New("unexpected error: " + err.Error())
	}
	defer cursor.Close(ctx)

	records := make([]*dmn.GameRecord, 0, limit)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, errors.New("unexpected error: " + err.Error())
	}
	return records, nil
}
