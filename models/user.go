package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`

	// Profile fields
	Bio            string `bson:"bio" json:"bio"`
	ProfilePicture string `bson:"profilePicture" json:"profilePicture"`
	Location       string `bson:"location" json:"location"`
	Website        string `bson:"website" json:"website"`

	// Follow graph. A in B.Followers iff B in A.Following.
	Following []primitive.ObjectID `bson:"following" json:"following"`
	Followers []primitive.ObjectID `bson:"followers" json:"followers"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsFollowing reports whether u follows target.
func (u *User) IsFollowing(target primitive.ObjectID) bool {
	return containsID(u.Following, target)
}

// ProfileUpdate holds the only user fields a profile update may touch.
// A nil field is left unchanged.
type ProfileUpdate struct {
	Bio            *string `json:"bio" bson:"bio,omitempty"`
	ProfilePicture *string `json:"profilePicture" bson:"profilePicture,omitempty"`
	Location       *string `json:"location" bson:"location,omitempty"`
	Website        *string `json:"website" bson:"website,omitempty"`
}

// Empty reports whether no allowed field is set.
func (p ProfileUpdate) Empty() bool {
	return p.Bio == nil && p.ProfilePicture == nil && p.Location == nil && p.Website == nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
