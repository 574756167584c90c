package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/openbanana/studio-server-go/internal/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindAll(ctx context.Context, limit, offset int) ([]model.User, error)
	Create(ctx context.Context, params model.CreateUserParams) (*model.User, error)
	// DebitIfSufficient atomically subtracts amount points and adds amount to
	// the creation counter, but only when the balance covers it. Returns the
	// updated user, or nil when the conditional update matched no row.
	DebitIfSufficient(ctx context.Context, id string, amount int) (*model.User, error)
	// AdjustPoints adds delta (which may be negative) to the balance,
	// clamping at zero.
	AdjustPoints(ctx context.Context, id string, delta int) (*model.User, error)
	// ApplyCheckIn credits the daily bonus, bumps the streak and advances the
	// stored check-in date in one guarded statement. Returns nil when the
	// stored date already equals day (the guard lost a same-day race).
	ApplyCheckIn(ctx context.Context, id string, points int, day time.Time) (*model.User, error)
	AddTokenUsage(ctx context.Context, id string, tokens int64) error
	Count(ctx context.Context) (int, error)
	SumPoints(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) UserRepository
}

type userRepo struct {
	db sqlxDB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) WithTx(tx *sqlx.Tx) UserRepository {
	return &userRepo{db: tx}
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE id = $1
	`, id)
	return HandleNotFound(&user, err)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE email = $1
	`, email)
	return HandleNotFound(&user, err)
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE username = $1
	`, username)
	return HandleNotFound(&user, err)
}

func (r *userRepo) FindAll(ctx context.Context, limit, offset int) ([]model.User, error) {
	var users []model.User
	err := r.db.SelectContext(ctx, &users, `
		SELECT * FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		INSERT INTO users (id, username, email, password_hash, role, drawing_points)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, params.ID, params.Username, params.Email, params.PasswordHash, params.Role, params.DrawingPoints)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) DebitIfSufficient(ctx context.Context, id string, amount int) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		UPDATE users SET
			drawing_points = drawing_points - $2,
			creation_count = creation_count + $2,
			updated_at = $3
		WHERE id = $1 AND drawing_points >= $2
		RETURNING *
	`, id, amount, time.Now())
	return HandleNotFound(&user, err)
}

func (r *userRepo) AdjustPoints(ctx context.Context, id string, delta int) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		UPDATE users SET
			drawing_points = GREATEST(drawing_points + $2, 0),
			updated_at = $3
		WHERE id = $1
		RETURNING *
	`, id, delta, time.Now())
	return HandleNotFound(&user, err)
}

func (r *userRepo) ApplyCheckIn(ctx context.Context, id string, points int, day time.Time) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		UPDATE users SET
			drawing_points = drawing_points + $2,
			checkin_count = checkin_count + 1,
			last_checkin_date = $3,
			updated_at = $4
		WHERE id = $1 AND (last_checkin_date IS NULL OR last_checkin_date <> $3)
		RETURNING *
	`, id, points, day.Format("2006-01-02"), time.Now())
	return HandleNotFound(&user, err)
}

func (r *userRepo) AddTokenUsage(ctx context.Context, id string, tokens int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET token_count = token_count + $2, updated_at = $3 WHERE id = $1
	`, id, tokens, time.Now())
	return err
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	return count, err
}

func (r *userRepo) SumPoints(ctx context.Context) (int64, error) {
	var sum int64
	err := r.db.GetContext(ctx, &sum, `SELECT COALESCE(SUM(drawing_points), 0) FROM users`)
	return sum, err
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}
