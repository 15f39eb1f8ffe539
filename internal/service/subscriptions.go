package service

import (
	"context"
	"fmt"
	"time"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/query"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/validation"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

// SubscriptionStore is the persistence used by SubscriptionService
type SubscriptionStore interface {
	UserExists(ctx context.Context, id string) (bool, error)
	InsertSubscription(ctx context.Context, subscriberID, channelID string) (bool, error)
	DeleteSubscription(ctx context.Context, subscriberID, channelID string) (bool, error)
	ChannelSubscribers(ctx context.Context, channelID string, page, limit int) (*query.Page[models.SubscriberView], error)
	SubscribedChannels(ctx context.Context, subscriberID string, page, limit int) (*query.Page[models.SubscribedChannelView], error)
}

// SubscriptionState is the result of a subscription toggle
type SubscriptionState struct {
	ChannelID    string `json:"channelId"`
	IsSubscribed bool   `json:"isSubscribed"`
}

// SubscriptionService handles channel subscriptions
type SubscriptionService struct {
	store   SubscriptionStore
	locker  Locker
	lockTTL time.Duration
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(store SubscriptionStore, locker Locker, lockTTL time.Duration) *SubscriptionService {
	if locker == nil {
		locker = NoopLocker{}
	}
	return &SubscriptionService{store: store, locker: locker, lockTTL: lockTTL}
}

// Toggle subscribes viewer to a channel, or unsubscribes when already subscribed
func (s *SubscriptionService) Toggle(ctx context.Context, viewerID, channelID string) (*SubscriptionState, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	channelID, err := validation.ID("channelId", channelID)
	if err != nil {
		return nil, err
	}
	if channelID == viewerID {
		return nil, apperror.InvalidField("channelId", "You cannot subscribe to your own channel")
	}
	if err := s.channelExists(ctx, channelID); err != nil {
		return nil, err
	}

	var subscribed bool
	err = toggleLocked(ctx, s.locker, fmt.Sprintf("subscription:%s:%s", channelID, viewerID), s.lockTTL, func() error {
		var err error
		subscribed, err = toggle(
			func() (bool, error) { return s.store.DeleteSubscription(ctx, viewerID, channelID) },
			func() (bool, error) { return s.store.InsertSubscription(ctx, viewerID, channelID) },
		)
		return err
	})
	if err != nil {
		return nil, storeError(err, "subscription")
	}

	metrics.RecordToggle("subscription", subscribed)
	return &SubscriptionState{ChannelID: channelID, IsSubscribed: subscribed}, nil
}

func (s *SubscriptionService) channelExists(ctx context.Context, channelID string) error {
	exists, err := s.store.UserExists(ctx, channelID)
	if err != nil {
		return storeError(err, "channel")
	}
	if !exists {
		return apperror.NotFound("channel not found")
	}
	return nil
}

// Subscribers returns a page of the subscribers of a channel
func (s *SubscriptionService) Subscribers(ctx context.Context, channelID string, page, limit int) (*query.Page[models.SubscriberView], error) {
	channelID, err := validation.ID("channelId", channelID)
	if err != nil {
		return nil, err
	}
	if err := s.channelExists(ctx, channelID); err != nil {
		return nil, err
	}

	subscribers, err := s.store.ChannelSubscribers(ctx, channelID, page, limit)
	if err != nil {
		return nil, storeError(err, "subscribers")
	}
	return subscribers, nil
}

// SubscribedChannels returns a page of the channels a user subscribes to
func (s *SubscriptionService) SubscribedChannels(ctx context.Context, subscriberID string, page, limit int) (*query.Page[models.SubscribedChannelView], error) {
	subscriberID, err := validation.ID("subscriberId", subscriberID)
	if err != nil {
		return nil, err
	}
	if err := s.channelExists(ctx, subscriberID); err != nil {
		return nil, err
	}

	channels, err := s.store.SubscribedChannels(ctx, subscriberID, page, limit)
	if err != nil {
		return nil, storeError(err, "subscriptions")
	}
	return channels, nil
}
