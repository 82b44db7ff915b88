package database

import (
	"context"
	"fmt"
	"time"

	"chirp/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client
var DB *mongo.Database

const (
	UsersCollection  = "users"
	TweetsCollection = "tweets"
	PollsCollection  = "polls"
)

func ConnectMongo(uri, dbName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var err error
	Client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}

	if err := Client.Ping(ctx, nil); err != nil {
		_ = Client.Disconnect(ctx)
		Client = nil
		return err
	}

	DB = Client.Database(dbName)
	return nil
}

func DisconnectMongo() error {
	if Client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return Client.Disconnect(ctx)
}

// EnsureIndexes creates the unique identity indexes and the timeline indexes.
func EnsureIndexes(ctx context.Context) error {
	users := DB.Collection(UsersCollection)
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	tweets := DB.Collection(TweetsCollection)
	_, err = tweets.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "inReplyToTweet", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("tweets indexes: %w", err)
	}
	return nil
}

// NewStore wires the MongoDB collections into a store.Store.
func NewStore() store.Store {
	return store.Store{
		Users:  store.NewMongoUsers(DB.Collection(UsersCollection)),
		Tweets: store.NewMongoTweets(DB.Collection(TweetsCollection)),
		Polls:  store.NewMongoPolls(DB.Collection(PollsCollection)),
	}
}
