package service

import (
	"context"
	"errors"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/auth"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/database"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/query"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/storage"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/validation"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

// UserStore is the persistence used by UserService
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	FindUserByLogin(ctx context.Context, username, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.User, error)
	UpdateAvatar(ctx context.Context, id, url string) (*models.User, string, error)
	UpdateCoverImage(ctx context.Context, id, url string) (*models.User, string, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetRefreshToken(ctx context.Context, id string, token *string) error
	ChannelProfile(ctx context.Context, username, viewer string) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, viewer string, page, limit int) (*query.Page[models.WatchHistoryEntry], error)
}

// TokenIssuer signs and verifies session tokens
type TokenIssuer interface {
	Issue(userID, username, email string) (*auth.TokenPair, error)
	ParseRefresh(token string) (*auth.Claims, error)
}

// UserService handles accounts, sessions and channel pages
type UserService struct {
	store      UserStore
	tokens     TokenIssuer
	media      MediaStore
	events     Dispatcher
	bcryptCost int
}

// NewUserService creates a new user service
func NewUserService(store UserStore, tokens TokenIssuer, media MediaStore, events Dispatcher, bcryptCost int) *UserService {
	return &UserService{
		store:      store,
		tokens:     tokens,
		media:      media,
		events:     events,
		bcryptCost: bcryptCost,
	}
}

// RegisterInput is a registration request. Avatar is required.
type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	Avatar     *Upload
	CoverImage *Upload
}

// LoginInput identifies a user by username or email
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// ProfileInput carries optional account changes
type ProfileInput struct {
	FullName *string
	Email    *string
}

// Session is an authenticated user with a fresh token pair
type Session struct {
	User   *models.User
	Tokens *auth.TokenPair
}

// Register creates an account after uploading its media
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	fullName, err := validation.RequiredString("fullName", in.FullName)
	if err != nil {
		return nil, err
	}
	email, err := validation.Email(in.Email)
	if err != nil {
		return nil, err
	}
	username, err := validation.Username(in.Username)
	if err != nil {
		return nil, err
	}
	password, err := validation.Password("password", in.Password)
	if err != nil {
		return nil, err
	}
	if in.Avatar == nil {
		return nil, apperror.InvalidField("avatar", "Avatar file is required")
	}

	existing, err := s.store.FindUserByLogin(ctx, username, email)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, storeError(err, "user")
	}
	if existing != nil {
		return nil, apperror.Conflict("User with email or username already exists")
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperror.Store(err, "failed to hash password")
	}

	avatarURL, err := s.media.UploadFile(ctx, storage.KindAvatar, in.Avatar.Path, in.Avatar.Filename)
	if err != nil {
		return nil, apperror.Store(err, "failed to upload avatar")
	}

	var coverURL string
	if in.CoverImage != nil {
		coverURL, err = s.media.UploadFile(ctx, storage.KindCover, in.CoverImage.Path, in.CoverImage.Filename)
		if err != nil {
			cleanupMedia(ctx, s.events, avatarURL)
			return nil, apperror.Store(err, "failed to upload cover image")
		}
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Avatar:       avatarURL,
		CoverImage:   coverURL,
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		cleanupMedia(ctx, s.events, avatarURL, coverURL)
		if errors.Is(err, database.ErrConflict) {
			return nil, apperror.Conflict("User with email or username already exists")
		}
		return nil, apperror.Persistence(err, "Something went wrong while registering the user")
	}

	logging.FromContext(ctx).WithUserID(user.ID).Info("user registered")
	return user, nil
}

// Login verifies credentials and starts a session
func (s *UserService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	username := models.NormalizeUsername(in.Username)
	email := models.NormalizeEmail(in.Email)
	if username == "" && email == "" {
		return nil, apperror.InvalidArgument("username or email is required")
	}
	if in.Password == "" {
		return nil, apperror.InvalidField("password", "password is required")
	}

	user, err := s.store.FindUserByLogin(ctx, username, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperror.NotFound("User does not exist")
		}
		return nil, storeError(err, "user")
	}

	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return nil, apperror.Unauthorized("Invalid user credentials")
	}

	return s.startSession(ctx, user)
}

func (s *UserService) startSession(ctx context.Context, user *models.User) (*Session, error) {
	tokens, err := s.tokens.Issue(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, apperror.Store(err, "failed to issue tokens")
	}
	if err := s.store.SetRefreshToken(ctx, user.ID, &tokens.RefreshToken); err != nil {
		return nil, storeError(err, "user")
	}
	return &Session{User: user, Tokens: tokens}, nil
}

// Logout clears the stored refresh token of the viewer
func (s *UserService) Logout(ctx context.Context, viewerID string) error {
	if err := requireViewer(viewerID); err != nil {
		return err
	}
	if err := s.store.SetRefreshToken(ctx, viewerID, nil); err != nil {
		return storeError(err, "user")
	}
	return nil
}

// Refresh rotates the session of the refresh token's owner. The token must
// be the one stored by the last login or refresh.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, apperror.Unauthorized("Unauthorized request")
	}

	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid refresh token")
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperror.Unauthorized("Invalid refresh token")
		}
		return nil, storeError(err, "user")
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, apperror.Unauthorized("Refresh token is expired or used")
	}

	return s.startSession(ctx, user)
}

// ChangePassword replaces the viewer's password after checking the old one
func (s *UserService) ChangePassword(ctx context.Context, viewerID, oldPassword, newPassword string) error {
	if err := requireViewer(viewerID); err != nil {
		return err
	}
	if oldPassword == "" {
		return apperror.InvalidField("oldPassword", "oldPassword is required")
	}
	newPassword, err := validation.Password("newPassword", newPassword)
	if err != nil {
		return err
	}

	user, err := s.store.GetUser(ctx, viewerID)
	if err != nil {
		return readError(err, "user")
	}
	if !auth.CheckPassword(user.PasswordHash, oldPassword) {
		return apperror.InvalidField("oldPassword", "Invalid old password")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperror.Store(err, "failed to hash password")
	}
	if err := s.store.UpdatePassword(ctx, viewerID, hash); err != nil {
		return readError(err, "user")
	}
	return nil
}

// CurrentUser returns the viewer's account
func (s *UserService) CurrentUser(ctx context.Context, viewerID string) (*models.User, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, viewerID)
	if err != nil {
		return nil, readError(err, "user")
	}
	return user, nil
}

// UpdateAccount changes the viewer's full name and/or email
func (s *UserService) UpdateAccount(ctx context.Context, viewerID string, in ProfileInput) (*models.User, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}

	fullName, err := validation.OptionalNonEmpty("fullName", in.FullName)
	if err != nil {
		return nil, err
	}
	update := models.ProfileUpdate{FullName: fullName}
	if in.Email != nil {
		email, err := validation.Email(*in.Email)
		if err != nil {
			return nil, err
		}
		update.Email = &email
	}
	if update.Empty() {
		return nil, apperror.InvalidArgument("fullName or email is required")
	}

	user, err := s.store.UpdateProfile(ctx, viewerID, update)
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, apperror.Conflict("Email is already in use")
		}
		return nil, readError(err, "user")
	}
	return user, nil
}

// UpdateAvatar replaces the viewer's avatar. The old object is cleaned up
// asynchronously.
func (s *UserService) UpdateAvatar(ctx context.Context, viewerID string, file *Upload) (*models.User, error) {
	return s.replaceMedia(ctx, viewerID, file, "avatar", storage.KindAvatar, s.store.UpdateAvatar)
}

// UpdateCoverImage replaces the viewer's cover image
func (s *UserService) UpdateCoverImage(ctx context.Context, viewerID string, file *Upload) (*models.User, error) {
	return s.replaceMedia(ctx, viewerID, file, "coverImage", storage.KindCover, s.store.UpdateCoverImage)
}

type mediaUpdate func(ctx context.Context, id, url string) (*models.User, string, error)

func (s *UserService) replaceMedia(ctx context.Context, viewerID string, file *Upload, field string, kind storage.Kind, update mediaUpdate) (*models.User, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	if file == nil {
		return nil, apperror.InvalidField(field, field+" file is missing")
	}

	url, err := s.media.UploadFile(ctx, kind, file.Path, file.Filename)
	if err != nil {
		return nil, apperror.Store(err, "failed to upload %s", field)
	}

	user, previous, err := update(ctx, viewerID, url)
	if err != nil {
		cleanupMedia(ctx, s.events, url)
		return nil, readError(err, "user")
	}

	cleanupMedia(ctx, s.events, previous)
	return user, nil
}

// ChannelProfile returns the public page of a channel as seen by viewer
func (s *UserService) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	username, err := validation.RequiredString("username", username)
	if err != nil {
		return nil, err
	}

	profile, err := s.store.ChannelProfile(ctx, models.NormalizeUsername(username), viewerID)
	if err != nil {
		return nil, readError(err, "channel")
	}
	return profile, nil
}

// WatchHistory returns a page of the viewer's watched videos, most recent first
func (s *UserService) WatchHistory(ctx context.Context, viewerID string, page, limit int) (*query.Page[models.WatchHistoryEntry], error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	history, err := s.store.WatchHistory(ctx, viewerID, page, limit)
	if err != nil {
		return nil, storeError(err, "watch history")
	}
	return history, nil
}
