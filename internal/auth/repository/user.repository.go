package repository

import (
	"context"
	"database/sql"
	"inkwell/internal/auth/model"
	"inkwell/pkg/logger"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, u model.User) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, NOW())`,
		u.ID, u.Email, u.PasswordHash)
	if err != nil {
		logger.Sugar.Errorf("Failed to create user %s: %v", u.Email, err)
	}
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, "SELECT id, email, password_hash, created_at FROM users WHERE email = $1", email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil && err != sql.ErrNoRows {
		logger.Sugar.Errorf("Failed to get user by email %s: %v", email, err)
	}
	return u, err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, "SELECT id, email, password_hash, created_at FROM users WHERE id = $1", id).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil && err != sql.ErrNoRows {
		logger.Sugar.Errorf("Failed to get user %s: %v", id, err)
	}
	return u, err
}
