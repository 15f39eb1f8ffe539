package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/query"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

func TestToggleSubscriptionTwiceRestoresState(t *testing.T) {
	store := &mockStore{}
	svc := NewSubscriptionService(store, nil, 0)
	ctx := context.Background()

	store.On("UserExists", mock.Anything, aliceID).Return(true, nil)
	store.On("DeleteSubscription", mock.Anything, bobID, aliceID).Return(false, nil).Once()
	store.On("InsertSubscription", mock.Anything, bobID, aliceID).Return(true, nil).Once()
	store.On("DeleteSubscription", mock.Anything, bobID, aliceID).Return(true, nil).Once()

	first, err := svc.Toggle(ctx, bobID, aliceID)
	require.NoError(t, err)
	assert.True(t, first.IsSubscribed)

	second, err := svc.Toggle(ctx, bobID, aliceID)
	require.NoError(t, err)
	assert.False(t, second.IsSubscribed)

	store.AssertExpectations(t)
}

func TestSubscribeToSelfIsInvalid(t *testing.T) {
	store := &mockStore{}
	_, err := NewSubscriptionService(store, nil, 0).Toggle(context.Background(), aliceID, aliceID)

	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))
	store.AssertNotCalled(t, "InsertSubscription", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubscribeToMissingChannel(t *testing.T) {
	store := &mockStore{}
	store.On("UserExists", mock.Anything, aliceID).Return(false, nil)

	_, err := NewSubscriptionService(store, nil, 0).Toggle(context.Background(), bobID, aliceID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestSubscribers(t *testing.T) {
	store := &mockStore{}
	svc := NewSubscriptionService(store, nil, 0)
	page := &query.Page[models.SubscriberView]{
		Items:      []models.SubscriberView{{Subscriber: models.OwnerSummary{ID: bobID, Username: "bob"}, SubscribersCount: 3}},
		Pagination: query.NewPagination(1, 1, 10),
	}

	store.On("UserExists", mock.Anything, aliceID).Return(true, nil)
	store.On("ChannelSubscribers", mock.Anything, aliceID, 1, 10).Return(page, nil)

	got, err := svc.Subscribers(context.Background(), aliceID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, page, got)

	_, err = svc.SubscribedChannels(context.Background(), "nope", 1, 10)
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))
}
