package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

const userColumns = `id, username, email, full_name, avatar, cover_image, password_hash, refresh_token, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.Avatar, &u.CoverImage,
		&u.PasswordHash, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user. A taken username or email yields ErrConflict.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) (err error) {
	defer observe("create_user", time.Now(), &err)

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	query := `
		INSERT INTO users (id, username, email, full_name, avatar, cover_image, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err = r.db.Pool.QueryRow(ctx, query,
		user.ID, user.Username, user.Email, user.FullName, user.Avatar, user.CoverImage, user.PasswordHash,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	return translate("create user", err)
}

// GetUser retrieves a user by ID
func (r *Repository) GetUser(ctx context.Context, id string) (user *models.User, err error) {
	defer observe("get_user", time.Now(), &err)

	user, err = scanUser(r.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return user, translate("get user", err)
}

// FindUserByLogin retrieves the user whose username or email matches.
// Either argument may be empty.
func (r *Repository) FindUserByLogin(ctx context.Context, username, email string) (user *models.User, err error) {
	defer observe("find_user_by_login", time.Now(), &err)

	query := `SELECT ` + userColumns + ` FROM users
		WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
		ORDER BY created_at
		LIMIT 1`

	user, err = scanUser(r.db.Pool.QueryRow(ctx, query, username, email))
	return user, translate("find user by login", err)
}

// UserExists reports whether a user with the given ID exists
func (r *Repository) UserExists(ctx context.Context, id string) (exists bool, err error) {
	defer observe("user_exists", time.Now(), &err)

	err = r.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, translate("user exists", err)
}

// UpdateProfile applies the supplied account fields
func (r *Repository) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (user *models.User, err error) {
	defer observe("update_profile", time.Now(), &err)

	query := `
		UPDATE users
		SET full_name = COALESCE($2, full_name), email = COALESCE($3, email), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err = scanUser(r.db.Pool.QueryRow(ctx, query, id, update.FullName, update.Email))
	return user, translate("update profile", err)
}

// UpdateAvatar replaces the avatar URL and returns the previous one
func (r *Repository) UpdateAvatar(ctx context.Context, id, url string) (*models.User, string, error) {
	return r.replaceUserMedia(ctx, "update_avatar", `
		WITH previous AS (SELECT id, avatar AS url FROM users WHERE id = $1 FOR UPDATE)
		UPDATE users u SET avatar = $2, updated_at = NOW()
		FROM previous
		WHERE u.id = previous.id
		RETURNING previous.url, u.id, u.username, u.email, u.full_name, u.avatar, u.cover_image,
			u.password_hash, u.refresh_token, u.created_at, u.updated_at
	`, id, url)
}

// UpdateCoverImage replaces the cover image URL and returns the previous one
func (r *Repository) UpdateCoverImage(ctx context.Context, id, url string) (*models.User, string, error) {
	return r.replaceUserMedia(ctx, "update_cover_image", `
		WITH previous AS (SELECT id, cover_image AS url FROM users WHERE id = $1 FOR UPDATE)
		UPDATE users u SET cover_image = $2, updated_at = NOW()
		FROM previous
		WHERE u.id = previous.id
		RETURNING previous.url, u.id, u.username, u.email, u.full_name, u.avatar, u.cover_image,
			u.password_hash, u.refresh_token, u.created_at, u.updated_at
	`, id, url)
}

func (r *Repository) replaceUserMedia(ctx context.Context, op, query, id, url string) (user *models.User, previous string, err error) {
	defer observe(op, time.Now(), &err)

	var u models.User
	err = r.db.Pool.QueryRow(ctx, query, id, url).Scan(
		&previous, &u.ID, &u.Username, &u.Email, &u.FullName, &u.Avatar, &u.CoverImage,
		&u.PasswordHash, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, "", translate(op, err)
	}
	return &u, previous, nil
}

// UpdatePassword stores a new password hash
func (r *Repository) UpdatePassword(ctx context.Context, id, passwordHash string) (err error) {
	defer observe("update_password", time.Now(), &err)

	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return translate("update password", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("update password", pgx.ErrNoRows)
	}
	return nil
}

// SetRefreshToken stores the user's current refresh token. A nil token logs
// the user out.
func (r *Repository) SetRefreshToken(ctx context.Context, id string, token *string) (err error) {
	defer observe("set_refresh_token", time.Now(), &err)

	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE id = $1`, id, token)
	if err != nil {
		return translate("set refresh token", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("set refresh token", pgx.ErrNoRows)
	}
	return nil
}

// AddWatchHistory records that the user watched the video
func (r *Repository) AddWatchHistory(ctx context.Context, userID, videoID string) (err error) {
	defer observe("add_watch_history", time.Now(), &err)

	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO watch_history (user_id, video_id) VALUES ($1, $2)`, userID, videoID)
	return translate("add watch history", err)
}
