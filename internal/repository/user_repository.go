package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/study-crew/peer-assist-api/internal/models"
)

// UserRepository reads user identities. The roster engine never mutates users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID loads a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	const query = `SELECT id, name, email, password_hash, role, academic_year, bio, telegram_username, created_at, updated_at
FROM users WHERE id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail loads a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, name, email, password_hash, role, academic_year, bio, telegram_username, created_at, updated_at
FROM users WHERE email = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a user. Used by seeding, not by the reconciliation engine.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const query = `INSERT INTO users (name, email, password_hash, role, academic_year, bio, telegram_username, created_at, updated_at)
VALUES (:name, :email, :password_hash, :role, :academic_year, :bio, :telegram_username, :created_at, :updated_at)
ON CONFLICT (email) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
