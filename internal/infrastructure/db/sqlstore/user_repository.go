package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/taskify/taskify-api/internal/core/domain"
)

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Username     string    `bun:"username"`
	Email        string    `bun:"email"`
	FirstName    string    `bun:"first_name"`
	LastName     string    `bun:"last_name"`
	PasswordHash string    `bun:"hashed_password"`
	IsActive     bool      `bun:"is_active"`
	Role         string    `bun:"role"`
	PhoneNumber  string    `bun:"phone_number"`
	CreatedAt    time.Time `bun:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at"`
}

// UserRepository is the relational credential store.
type UserRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := &userRow{
		Username:     user.Username,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		PasswordHash: user.PasswordHash,
		IsActive:     user.IsActive,
		Role:         user.Role.String(),
		PhoneNumber:  user.PhoneNumber,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return row.toDomain(), nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := new(userRow)
	err := r.db.NewSelect().
		Model(row).
		Where("username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return row.toDomain(), nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return r.set(ctx, userID, "hashed_password", passwordHash)
}

func (r *UserRepository) UpdatePhoneNumber(ctx context.Context, userID int64, phoneNumber string) error {
	return r.set(ctx, userID, "phone_number", phoneNumber)
}

// Delete removes a user and, through the foreign key, their tasks. Only
// administrative tooling and tests use it.
func (r *UserRepository) Delete(ctx context.Context, username string) error {
	res, err := r.db.NewDelete().
		Model((*userRow)(nil)).
		Where("username = ?", username).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectOne(res, domain.ErrUserNotFound)
}

// set updates one whitelisted column plus updated_at.
func (r *UserRepository) set(ctx context.Context, userID int64, column string, value any) error {
	res, err := r.db.NewUpdate().
		Model((*userRow)(nil)).
		Set("? = ?", bun.Ident(column), value).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return expectOne(res, domain.ErrUserNotFound)
}

func (row *userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		PasswordHash: row.PasswordHash,
		IsActive:     row.IsActive,
		Role:         domain.Role(row.Role),
		PhoneNumber:  row.PhoneNumber,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
