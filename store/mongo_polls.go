package store

import (
	"context"
	"errors"
	"fmt"

	"chirp/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPolls struct {
	coll *mongo.Collection
}

func NewMongoPolls(coll *mongo.Collection) Polls {
	return &mongoPolls{coll: coll}
}

func (r *mongoPolls) Create(ctx context.Context, p *models.Poll) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, p)
	return err
}

func (r *mongoPolls) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Poll, error) {
	var p models.Poll
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *mongoPolls) IncVote(ctx context.Context, id primitive.ObjectID, option int) (*models.Poll, error) {
	path := fmt.Sprintf("options.%d", option)

	var p models.Poll
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, path: bson.M{"$exists": true}},
		bson.M{"$inc": bson.M{path + ".votes": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
