package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidLikeTarget is returned when a like does not reference exactly one target
var ErrInvalidLikeTarget = errors.New("like must reference exactly one of comment, video or tweet")

// LikeKind identifies what a like points at
type LikeKind string

const (
	LikeKindVideo   LikeKind = "video"
	LikeKindComment LikeKind = "comment"
	LikeKindTweet   LikeKind = "tweet"
)

// LikeTarget is the liked entity
type LikeTarget struct {
	Kind LikeKind
	ID   string
}

func (t LikeTarget) String() string {
	return fmt.Sprintf("%s:%s", t.Kind, t.ID)
}

// Like records that LikedBy liked exactly one of a comment, video or tweet
type Like struct {
	ID        string    `json:"id" db:"id"`
	CommentID *string   `json:"comment,omitempty" db:"comment_id"`
	VideoID   *string   `json:"video,omitempty" db:"video_id"`
	TweetID   *string   `json:"tweet,omitempty" db:"tweet_id"`
	LikedBy   string    `json:"likedBy" db:"liked_by"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// NewLike builds a like of target by actor
func NewLike(target LikeTarget, actor string) Like {
	id := target.ID
	like := Like{LikedBy: actor}
	switch target.Kind {
	case LikeKindVideo:
		like.VideoID = &id
	case LikeKindComment:
		like.CommentID = &id
	case LikeKindTweet:
		like.TweetID = &id
	}
	return like
}

// Validate rejects likes with zero or several targets
func (l Like) Validate() error {
	set := 0
	for _, ref := range []*string{l.CommentID, l.VideoID, l.TweetID} {
		if ref != nil {
			if *ref == "" {
				return ErrInvalidLikeTarget
			}
			set++
		}
	}
	if set != 1 {
		return ErrInvalidLikeTarget
	}
	if l.LikedBy == "" {
		return errors.New("like must have a liker")
	}
	return nil
}

// Target returns the single entity the like points at
func (l Like) Target() (LikeTarget, error) {
	if err := l.Validate(); err != nil {
		return LikeTarget{}, err
	}
	switch {
	case l.VideoID != nil:
		return LikeTarget{Kind: LikeKindVideo, ID: *l.VideoID}, nil
	case l.CommentID != nil:
		return LikeTarget{Kind: LikeKindComment, ID: *l.CommentID}, nil
	default:
		return LikeTarget{Kind: LikeKindTweet, ID: *l.TweetID}, nil
	}
}
