package store

import (
	"context"
	"errors"
	"regexp"
	"time"

	"chirp/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newestFirst is the total timeline order.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

type mongoTweets struct {
	coll *mongo.Collection
}

func NewMongoTweets(coll *mongo.Collection) Tweets {
	return &mongoTweets{coll: coll}
}

func (r *mongoTweets) Create(ctx context.Context, t *models.Tweet) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	if t.Media == nil {
		t.Media = []string{}
	}
	if t.Likes == nil {
		t.Likes = []primitive.ObjectID{}
	}
	if t.Retweets == nil {
		t.Retweets = []primitive.ObjectID{}
	}
	if t.Comments == nil {
		t.Comments = []models.Comment{}
	}
	_, err := r.coll.InsertOne(ctx, t)
	return err
}

func (r *mongoTweets) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	var t models.Tweet
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *mongoTweets) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Tweet, error) {
	if len(ids) == 0 {
		return []models.Tweet{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (r *mongoTweets) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoTweets) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Tweet, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tweets := []models.Tweet{}
	if err := cursor.All(ctx, &tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}

func (r *mongoTweets) Find(ctx context.Context, f TweetFilter) ([]models.Tweet, error) {
	filter := bson.M{}
	if f.Authors != nil {
		filter["user"] = bson.M{"$in": f.Authors}
	}
	if f.Replies != nil {
		filter["inReplyToTweet"] = bson.M{"$exists": *f.Replies}
	}
	if f.InReplyToTweet != nil {
		filter["inReplyToTweet"] = *f.InReplyToTweet
	}
	if f.Query != "" {
		filter["content"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
	}

	opts := options.Find().SetSort(newestFirst)
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	return r.find(ctx, filter, opts)
}

func (r *mongoTweets) CountByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"user": author})
}

func (r *mongoTweets) ToggleMember(ctx context.Context, id primitive.ObjectID, field string, userID primitive.ObjectID) (bool, error) {
	now := time.Now().UTC()

	// Add only when absent; the filter makes the check and the write one operation.
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, field: bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{field: userID}, "$set": bson.M{"updatedAt": now}},
	)
	if err != nil {
		return false, err
	}
	if res.ModifiedCount == 1 {
		return true, nil
	}

	res, err = r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{field: userID}, "$set": bson.M{"updatedAt": now}},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

func (r *mongoTweets) PushComment(ctx context.Context, id primitive.ObjectID, c models.Comment) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"comments": c}, "$set": bson.M{"updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
