package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/database"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/query"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/readmodel"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/storage"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

func newVideoService(store *mockStore, media *mockMedia, events Dispatcher) *VideoService {
	return NewVideoService(store, media, fakeProber{duration: 42}, events)
}

func TestGetVideoRecordsView(t *testing.T) {
	store := &mockStore{}
	events := &recordingDispatcher{}
	detail := &models.VideoDetail{ID: videoID, LikesCount: 0, IsLiked: false}
	store.On("VideoDetail", mock.Anything, videoID, bobID).Return(detail, nil)

	got, err := newVideoService(store, &mockMedia{}, events).Get(context.Background(), videoID, bobID)
	require.NoError(t, err)
	assert.Equal(t, detail, got)

	published := events.published()
	require.Len(t, published, 1)
	assert.Equal(t, models.EventVideoViewed, published[0].Type)
	assert.Equal(t, videoID, published[0].VideoID)
	assert.Equal(t, bobID, published[0].UserID)
}

func TestGetVideoSurvivesViewFailure(t *testing.T) {
	store := &mockStore{}
	events := &recordingDispatcher{err: errors.New("broker unreachable")}
	store.On("VideoDetail", mock.Anything, videoID, "").Return(&models.VideoDetail{ID: videoID}, nil)

	got, err := newVideoService(store, &mockMedia{}, events).Get(context.Background(), videoID, "")
	require.NoError(t, err)
	assert.Equal(t, videoID, got.ID)
}

func TestGetHiddenVideoNotFound(t *testing.T) {
	store := &mockStore{}
	events := &recordingDispatcher{}
	store.On("VideoDetail", mock.Anything, videoID, bobID).Return(nil, database.ErrNotFound)

	_, err := newVideoService(store, &mockMedia{}, events).Get(context.Background(), videoID, bobID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Empty(t, events.published())
}

func TestDeleteVideoOwnershipIndistinguishable(t *testing.T) {
	store := &mockStore{}
	svc := newVideoService(store, &mockMedia{}, &recordingDispatcher{})
	missingID := "e7a3c9d5-6f8b-4ca3-8e5f-7a9b1c3d4e07"

	// One video belongs to alice, the other does not exist
	store.On("DeleteVideo", mock.Anything, videoID, bobID).Return(nil, database.ErrNotFound)
	store.On("DeleteVideo", mock.Anything, missingID, bobID).Return(nil, database.ErrNotFound)

	foreignErr := svc.Delete(context.Background(), bobID, videoID)
	missingErr := svc.Delete(context.Background(), bobID, missingID)

	assert.Equal(t, apperror.From(missingErr).Kind, apperror.From(foreignErr).Kind)
	assert.Equal(t, apperror.From(missingErr).Message, apperror.From(foreignErr).Message)
	assert.True(t, apperror.Is(foreignErr, apperror.KindNotFoundOrForbidden))
	store.AssertNotCalled(t, "DeleteVideoDependents", mock.Anything, mock.Anything)
}

func TestDeleteVideoCascadeIsBestEffort(t *testing.T) {
	store := &mockStore{}
	events := &recordingDispatcher{}
	video := publishedVideo(aliceID)
	video.VideoFile = "http://media/vidshare/videos/v.mp4"
	video.Thumbnail = "http://media/vidshare/thumbnails/t.png"

	store.On("DeleteVideo", mock.Anything, videoID, aliceID).Return(video, nil)
	store.On("DeleteVideoDependents", mock.Anything, videoID).Return(errors.New("deadlock"))

	err := newVideoService(store, &mockMedia{}, events).Delete(context.Background(), aliceID, videoID)
	require.NoError(t, err)

	published := events.published()
	require.Len(t, published, 1)
	assert.Equal(t, models.EventMediaCleanup, published[0].Type)
	assert.ElementsMatch(t, []string{video.VideoFile, video.Thumbnail}, published[0].MediaURLs)
}

func TestPublishVideo(t *testing.T) {
	store := &mockStore{}
	media := &mockMedia{}

	media.On("UploadFile", mock.Anything, storage.KindVideo, "/tmp/v.mp4", "v.mp4").Return("http://media/v.mp4", nil)
	media.On("UploadFile", mock.Anything, storage.KindThumbnail, "/tmp/t.png", "t.png").Return("http://media/t.png", nil)
	store.On("CreateVideo", mock.Anything, mock.MatchedBy(func(v *models.Video) bool {
		return v.OwnerID == aliceID && v.Duration == 42 && v.IsPublished && v.Title == "Intro"
	})).Return(nil)

	video, err := newVideoService(store, media, &recordingDispatcher{}).Publish(context.Background(), aliceID, PublishInput{
		Title:       " Intro ",
		Description: "First upload",
		VideoFile:   &Upload{Path: "/tmp/v.mp4", Filename: "v.mp4"},
		Thumbnail:   &Upload{Path: "/tmp/t.png", Filename: "t.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "http://media/v.mp4", video.VideoFile)
	assert.Equal(t, "http://media/t.png", video.Thumbnail)
	media.AssertExpectations(t)
}

func TestPublishVideoFailureCleansUp(t *testing.T) {
	store := &mockStore{}
	media := &mockMedia{}
	events := &recordingDispatcher{}

	media.On("UploadFile", mock.Anything, storage.KindVideo, mock.Anything, mock.Anything).Return("http://media/v.mp4", nil)
	media.On("UploadFile", mock.Anything, storage.KindThumbnail, mock.Anything, mock.Anything).Return("http://media/t.png", nil)
	store.On("CreateVideo", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	_, err := newVideoService(store, media, events).Publish(context.Background(), aliceID, PublishInput{
		Title:       "Intro",
		Description: "First upload",
		VideoFile:   &Upload{Path: "/tmp/v.mp4", Filename: "v.mp4"},
		Thumbnail:   &Upload{Path: "/tmp/t.png", Filename: "t.png"},
	})
	assert.True(t, apperror.Is(err, apperror.KindPersistence))
	require.Len(t, events.published(), 1)
	assert.ElementsMatch(t, []string{"http://media/v.mp4", "http://media/t.png"}, events.published()[0].MediaURLs)
}

func TestPublishVideoValidation(t *testing.T) {
	svc := NewVideoService(&mockStore{}, &mockMedia{}, fakeProber{err: errors.New("invalid data")}, nil)
	ctx := context.Background()

	_, err := svc.Publish(ctx, aliceID, PublishInput{Title: "Intro", Description: "x"})
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))

	_, err = svc.Publish(ctx, aliceID, PublishInput{
		Title:       "Intro",
		Description: "x",
		VideoFile:   &Upload{Path: "/tmp/v.txt", Filename: "v.txt"},
		Thumbnail:   &Upload{Path: "/tmp/t.png", Filename: "t.png"},
	})
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))
}

func TestUpdateVideoReplacesThumbnail(t *testing.T) {
	store := &mockStore{}
	media := &mockMedia{}
	events := &recordingDispatcher{}

	media.On("UploadFile", mock.Anything, storage.KindThumbnail, "/tmp/new.png", "new.png").Return("http://media/new.png", nil)
	store.On("UpdateVideo", mock.Anything, videoID, aliceID, mock.MatchedBy(func(u models.VideoUpdate) bool {
		return u.Thumbnail != nil && *u.Thumbnail == "http://media/new.png" && u.Title == nil
	})).Return(publishedVideo(aliceID), "http://media/old.png", nil)

	_, err := newVideoService(store, media, events).Update(context.Background(), aliceID, videoID, UpdateVideoInput{
		Thumbnail: &Upload{Path: "/tmp/new.png", Filename: "new.png"},
	})
	require.NoError(t, err)
	require.Len(t, events.published(), 1)
	assert.Equal(t, []string{"http://media/old.png"}, events.published()[0].MediaURLs)
}

func TestUpdateForeignVideoCleansNewThumbnail(t *testing.T) {
	store := &mockStore{}
	media := &mockMedia{}
	events := &recordingDispatcher{}

	media.On("UploadFile", mock.Anything, storage.KindThumbnail, mock.Anything, mock.Anything).Return("http://media/new.png", nil)
	store.On("UpdateVideo", mock.Anything, videoID, bobID, mock.Anything).Return(nil, "", database.ErrNotFound)

	_, err := newVideoService(store, media, events).Update(context.Background(), bobID, videoID, UpdateVideoInput{
		Thumbnail: &Upload{Path: "/tmp/new.png", Filename: "new.png"},
	})
	assert.True(t, apperror.Is(err, apperror.KindNotFoundOrForbidden))
	require.Len(t, events.published(), 1)
	assert.Equal(t, []string{"http://media/new.png"}, events.published()[0].MediaURLs)
}

func TestListVideos(t *testing.T) {
	store := &mockStore{}
	svc := newVideoService(store, &mockMedia{}, nil)
	ctx := context.Background()

	params := readmodel.FeedParams{Query: "go", SortBy: models.VideoSortViews, SortDesc: false, OwnerID: aliceID, Viewer: bobID}
	page := &query.Page[models.VideoCard]{Items: []models.VideoCard{}, Pagination: query.NewPagination(0, 2, 10)}
	store.On("VideoFeed", mock.Anything, params, 2, 10).Return(page, nil)

	got, err := svc.List(ctx, bobID, FeedInput{Query: "go", SortBy: "views", SortType: "asc", UserID: aliceID, Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.False(t, got.Pagination.HasNextPage)

	_, err = svc.List(ctx, bobID, FeedInput{SortBy: "password", Page: 1, Limit: 10})
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))

	_, err = svc.List(ctx, bobID, FeedInput{SortType: "sideways", Page: 1, Limit: 10})
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))
}

func TestTogglePublishForeign(t *testing.T) {
	store := &mockStore{}
	store.On("TogglePublish", mock.Anything, videoID, bobID).Return(nil, database.ErrNotFound)

	_, err := newVideoService(store, &mockMedia{}, nil).TogglePublish(context.Background(), bobID, videoID)
	assert.True(t, apperror.Is(err, apperror.KindNotFoundOrForbidden))
}
