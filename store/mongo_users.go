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

type mongoUsers struct {
	coll *mongo.Collection
}

func NewMongoUsers(coll *mongo.Collection) Users {
	return &mongoUsers{coll: coll}
}

func (r *mongoUsers) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Following == nil {
		u.Following = []primitive.ObjectID{}
	}
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
	}
	_, err := r.coll.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *mongoUsers) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := r.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *mongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *mongoUsers) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": login},
		bson.M{"email": login},
	}})
}

func (r *mongoUsers) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"username": username},
	}})
}

func (r *mongoUsers) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.User, error) {
	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *mongoUsers) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *mongoUsers) updateSet(ctx context.Context, id primitive.ObjectID, op, field string, value primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		op:     bson.M{field: value},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUsers) AddFollowing(ctx context.Context, id, target primitive.ObjectID) error {
	return r.updateSet(ctx, id, "$addToSet", "following", target)
}

func (r *mongoUsers) RemoveFollowing(ctx context.Context, id, target primitive.ObjectID) error {
	return r.updateSet(ctx, id, "$pull", "following", target)
}

func (r *mongoUsers) AddFollower(ctx context.Context, id, follower primitive.ObjectID) error {
	return r.updateSet(ctx, id, "$addToSet", "followers", follower)
}

func (r *mongoUsers) RemoveFollower(ctx context.Context, id, follower primitive.ObjectID) error {
	return r.updateSet(ctx, id, "$pull", "followers", follower)
}

func (r *mongoUsers) Suggest(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]models.User, error) {
	if exclude == nil {
		exclude = []primitive.ObjectID{}
	}
	return r.find(ctx,
		bson.M{"_id": bson.M{"$nin": exclude}},
		options.Find().SetLimit(int64(limit)),
	)
}

func (r *mongoUsers) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return r.find(ctx,
		bson.M{"$or": bson.A{
			bson.M{"username": re},
			bson.M{"bio": re},
		}},
		options.Find().SetLimit(int64(limit)),
	)
}

func (r *mongoUsers) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd models.ProfileUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.ProfilePicture != nil {
		set["profilePicture"] = *upd.ProfilePicture
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.Website != nil {
		set["website"] = *upd.Website
	}

	var u models.User
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
