package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserSummary is the slice of a user joined into tweet responses.
type UserSummary struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Username       string             `bson:"username" json:"username"`
	ProfilePicture string             `bson:"profilePicture" json:"profilePicture"`
	Bio            string             `bson:"bio,omitempty" json:"bio,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, ProfilePicture: u.ProfilePicture, Bio: u.Bio}
}

// Profile is a user as shown on their profile page, password excluded.
type Profile struct {
	ID             primitive.ObjectID `json:"id"`
	Username       string             `json:"username"`
	Email          string             `json:"email"`
	Bio            string             `json:"bio"`
	ProfilePicture string             `json:"profilePicture"`
	Location       string             `json:"location"`
	Website        string             `json:"website"`
	Following      []UserSummary      `json:"following"`
	Followers      []UserSummary      `json:"followers"`
	TweetCount     int64              `json:"tweetCount"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// Entities are extracted from tweet content when it is rendered; stored
// content is never rewritten.
type Entities struct {
	Hashtags []string `json:"hashtags"`
	Mentions []string `json:"mentions"`
	URLs     []string `json:"urls"`
}

// TweetView is a tweet joined with the users and tweets it references.
// A nil QuoteTweet or InReplyToTweet with a non-nil id means the referenced
// tweet no longer exists.
type TweetView struct {
	ID       primitive.ObjectID   `json:"id"`
	User     *UserSummary         `json:"user"`
	Content  string               `json:"content"`
	Media    []string             `json:"media"`
	Likes    []primitive.ObjectID `json:"likes"`
	Retweets []primitive.ObjectID `json:"retweets"`
	Comments []CommentView        `json:"comments"`
	Entities Entities             `json:"entities"`

	QuoteTweetID     *primitive.ObjectID `json:"quoteTweetId,omitempty"`
	QuoteTweet       *TweetView          `json:"quoteTweet,omitempty"`
	InReplyToTweetID *primitive.ObjectID `json:"inReplyToTweetId,omitempty"`
	InReplyToTweet   *TweetView          `json:"inReplyToTweet,omitempty"`
	InReplyToUser    *UserSummary        `json:"inReplyToUser,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CommentView struct {
	ID        primitive.ObjectID `json:"id"`
	User      *UserSummary       `json:"user"`
	Content   string             `json:"content"`
	CreatedAt time.Time          `json:"createdAt"`
}
