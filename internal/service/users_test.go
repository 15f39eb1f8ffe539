package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/auth"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/database"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/storage"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

func newUserService(store *mockStore, media *mockMedia, tokens *fakeTokens, events Dispatcher) *UserService {
	return NewUserService(store, tokens, media, events, bcrypt.MinCost)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

func TestRegister(t *testing.T) {
	store := &mockStore{}
	media := &mockMedia{}

	store.On("FindUserByLogin", mock.Anything, "alice", "alice@example.com").Return(nil, database.ErrNotFound)
	media.On("UploadFile", mock.Anything, storage.KindAvatar, "/tmp/a.png", "a.png").Return("http://media/a.png", nil)
	store.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "alice" && u.Email == "alice@example.com" && u.CoverImage == "" &&
			auth.CheckPassword(u.PasswordHash, "correct horse")
	})).Return(nil)

	user, err := newUserService(store, media, &fakeTokens{}, nil).Register(context.Background(), RegisterInput{
		FullName: "Alice",
		Email:    "Alice@Example.com",
		Username: "Alice",
		Password: "correct horse",
		Avatar:   &Upload{Path: "/tmp/a.png", Filename: "a.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "http://media/a.png", user.Avatar)
	media.AssertExpectations(t)
}

func TestRegisterRequiresAvatar(t *testing.T) {
	_, err := newUserService(&mockStore{}, &mockMedia{}, &fakeTokens{}, nil).Register(context.Background(), RegisterInput{
		FullName: "Alice",
		Email:    "alice@example.com",
		Username: "alice",
		Password: "correct horse",
	})
	require.Error(t, err)
	assert.Equal(t, "avatar", apperror.From(err).Fields[0].Field)
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	store := &mockStore{}
	_, err := newUserService(store, &mockMedia{}, &fakeTokens{}, nil).Register(context.Background(), RegisterInput{
		FullName: "Alice",
		Email:    "alice@example.com",
		Username: "alice",
		Password: strings.Repeat("p", 80),
		Avatar:   &Upload{Path: "/tmp/a.png", Filename: "a.png"},
	})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))
	assert.Equal(t, "password", apperror.From(err).Fields[0].Field)
	store.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegisterExistingUserConflicts(t *testing.T) {
	store := &mockStore{}
	media := &mockMedia{}
	store.On("FindUserByLogin", mock.Anything, "alice", "alice@example.com").Return(&models.User{ID: aliceID}, nil)

	_, err := newUserService(store, media, &fakeTokens{}, nil).Register(context.Background(), RegisterInput{
		FullName: "Alice",
		Email:    "alice@example.com",
		Username: "alice",
		Password: "correct horse",
		Avatar:   &Upload{Path: "/tmp/a.png", Filename: "a.png"},
	})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	media.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	store := &mockStore{}
	tokens := &fakeTokens{}
	user := &models.User{ID: aliceID, Username: "alice", PasswordHash: hashed(t, "correct horse")}

	store.On("FindUserByLogin", mock.Anything, "", "alice@example.com").Return(user, nil)
	store.On("SetRefreshToken", mock.Anything, aliceID, mock.MatchedBy(func(tok *string) bool {
		return tok != nil && *tok == "refresh-"+aliceID
	})).Return(nil)

	svc := newUserService(store, &mockMedia{}, tokens, nil)
	session, err := svc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "access-"+aliceID, session.Tokens.AccessToken)

	_, err = svc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "wrong password"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	_, err = svc.Login(context.Background(), LoginInput{Password: "x"})
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))
}

func TestLoginUnknownUser(t *testing.T) {
	store := &mockStore{}
	store.On("FindUserByLogin", mock.Anything, "ghost", "").Return(nil, database.ErrNotFound)

	_, err := newUserService(store, &mockMedia{}, &fakeTokens{}, nil).Login(context.Background(), LoginInput{Username: "ghost", Password: "whatever1"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestRefreshRequiresStoredToken(t *testing.T) {
	store := &mockStore{}
	stale := "refresh-old"
	store.On("GetUser", mock.Anything, aliceID).Return(&models.User{ID: aliceID, RefreshToken: &stale}, nil)
	tokens := &fakeTokens{claims: &auth.Claims{UserID: aliceID}}
	svc := newUserService(store, &mockMedia{}, tokens, nil)

	_, err := svc.Refresh(context.Background(), "refresh-reused")
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
	assert.Zero(t, tokens.issued)

	store.On("SetRefreshToken", mock.Anything, aliceID, mock.Anything).Return(nil)
	session, err := svc.Refresh(context.Background(), stale)
	require.NoError(t, err)
	assert.Equal(t, "refresh-"+aliceID, session.Tokens.RefreshToken)
}

func TestRefreshInvalidToken(t *testing.T) {
	svc := newUserService(&mockStore{}, &mockMedia{}, &fakeTokens{err: auth.ErrInvalidToken}, nil)

	_, err := svc.Refresh(context.Background(), "garbage")
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	_, err = svc.Refresh(context.Background(), "")
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
}

func TestChangePassword(t *testing.T) {
	store := &mockStore{}
	store.On("GetUser", mock.Anything, aliceID).Return(&models.User{ID: aliceID, PasswordHash: hashed(t, "old password")}, nil)
	store.On("UpdatePassword", mock.Anything, aliceID, mock.MatchedBy(func(h string) bool {
		return auth.CheckPassword(h, "new password")
	})).Return(nil)

	svc := newUserService(store, &mockMedia{}, &fakeTokens{}, nil)
	require.NoError(t, svc.ChangePassword(context.Background(), aliceID, "old password", "new password"))

	err := svc.ChangePassword(context.Background(), aliceID, "not it", "new password")
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))

	err = svc.ChangePassword(context.Background(), aliceID, "old password", "short")
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))

	err = svc.ChangePassword(context.Background(), aliceID, "old password", strings.Repeat("p", 80))
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))
	store.AssertNumberOfCalls(t, "UpdatePassword", 1)
}

func TestUpdateAvatarCleansPrevious(t *testing.T) {
	store := &mockStore{}
	media := &mockMedia{}
	events := &recordingDispatcher{}

	media.On("UploadFile", mock.Anything, storage.KindAvatar, "/tmp/b.png", "b.png").Return("http://media/b.png", nil)
	store.On("UpdateAvatar", mock.Anything, aliceID, "http://media/b.png").Return(&models.User{ID: aliceID, Avatar: "http://media/b.png"}, "http://media/a.png", nil)

	user, err := newUserService(store, media, &fakeTokens{}, events).UpdateAvatar(context.Background(), aliceID, &Upload{Path: "/tmp/b.png", Filename: "b.png"})
	require.NoError(t, err)
	assert.Equal(t, "http://media/b.png", user.Avatar)
	require.Len(t, events.published(), 1)
	assert.Equal(t, []string{"http://media/a.png"}, events.published()[0].MediaURLs)
}

func TestUpdateAccount(t *testing.T) {
	store := &mockStore{}
	svc := newUserService(store, &mockMedia{}, &fakeTokens{}, nil)

	_, err := svc.UpdateAccount(context.Background(), aliceID, ProfileInput{})
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))

	email := "taken@example.com"
	store.On("UpdateProfile", mock.Anything, aliceID, mock.Anything).Return(nil, database.ErrConflict)
	_, err = svc.UpdateAccount(context.Background(), aliceID, ProfileInput{Email: &email})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestChannelProfileNormalizesUsername(t *testing.T) {
	store := &mockStore{}
	store.On("ChannelProfile", mock.Anything, "alice", bobID).Return(&models.ChannelProfile{ID: aliceID, SubscribersCount: 1, IsSubscribed: true}, nil)
	store.On("ChannelProfile", mock.Anything, "ghost", bobID).Return(nil, database.ErrNotFound)

	svc := newUserService(store, &mockMedia{}, &fakeTokens{}, nil)
	profile, err := svc.ChannelProfile(context.Background(), " Alice ", bobID)
	require.NoError(t, err)
	assert.True(t, profile.IsSubscribed)

	_, err = svc.ChannelProfile(context.Background(), "ghost", bobID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
