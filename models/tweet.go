package models

import (
	"bytes"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxContentLength = 280
	MaxMediaItems    = 4
)

type Tweet struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID  primitive.ObjectID `bson:"user" json:"userId"`
	Content string             `bson:"content" json:"content"`
	Media   []string           `bson:"media" json:"media"`

	Likes    []primitive.ObjectID `bson:"likes" json:"likes"`
	Retweets []primitive.ObjectID `bson:"retweets" json:"retweets"`
	Comments []Comment           `bson:"comments" json:"comments"`

	QuoteTweet     *primitive.ObjectID `bson:"quoteTweet,omitempty" json:"quoteTweetId,omitempty"`
	InReplyToTweet *primitive.ObjectID `bson:"inReplyToTweet,omitempty" json:"inReplyToTweetId,omitempty"`
	// Author of InReplyToTweet as it was when the reply was created.
	InReplyToUser *primitive.ObjectID `bson:"inReplyToUser,omitempty" json:"inReplyToUserId,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsReply reports whether t answers another tweet.
func (t *Tweet) IsReply() bool {
	return t.InReplyToTweet != nil
}

func (t *Tweet) LikedBy(userID primitive.ObjectID) bool {
	return containsID(t.Likes, userID)
}

func (t *Tweet) RetweetedBy(userID primitive.ObjectID) bool {
	return containsID(t.Retweets, userID)
}

type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"user" json:"userId"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// NewerFirst orders a before b on the home timeline: createdAt descending,
// then id descending so equal timestamps still produce a total order.
func NewerFirst(a, b *Tweet) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return CompareIDs(a.ID, b.ID) > 0
}

// CompareIDs compares two ObjectIDs byte-wise. ObjectIDs minted by one process
// increase monotonically.
func CompareIDs(a, b primitive.ObjectID) int {
	return bytes.Compare(a[:], b[:])
}
