package repo

import (
	"context"

	"smarttask/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InsertUser 向 users 表插入一条新用户记录
func InsertUser(ctx context.Context, db *pgxpool.Pool, u *domain.User) error {
	_, err := db.Exec(ctx, `
		INSERT INTO users (id, username, email, hashed_password, full_name, disabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.Username, u.Email, u.HashedPassword, u.FullName, u.Disabled, u.CreatedAt)
	return err
}

// GetUserByID 根据用户 ID 查询完整的用户信息
func GetUserByID(ctx context.Context, db *pgxpool.Pool, id uuid.UUID) (*domain.User, error) {
	row := db.QueryRow(ctx, `
		SELECT id, username, email, hashed_password, full_name, disabled, created_at, updated_at
		FROM users
		WHERE id=$1
	`, id)
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.FullName, &u.Disabled,
		&u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername 根据用户名查询用户
func GetUserByUsername(ctx context.Context, db *pgxpool.Pool, username string) (*domain.User, error) {
	row := db.QueryRow(ctx, `
		SELECT id, username, email, hashed_password, full_name, disabled, created_at, updated_at
		FROM users
		WHERE username=$1
	`, username)
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.FullName, &u.Disabled,
		&u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail 根据邮箱查询用户
func GetUserByEmail(ctx context.Context, db *pgxpool.Pool, email string) (*domain.User, error) {
	row := db.QueryRow(ctx, `
		SELECT id, username, email, hashed_password, full_name, disabled, created_at, updated_at
		FROM users
		WHERE email=$1
	`, email)
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.FullName, &u.Disabled,
		&u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// UserUpdateParams 用户部分更新，nil 字段保持原值
type UserUpdateParams struct {
	Email          *string
	FullName       *string
	HashedPassword *string
	Disabled       *bool
}

// UpdateUser 按字段更新用户，返回更新后的记录
func UpdateUser(ctx context.Context, db *pgxpool.Pool, id uuid.UUID, p UserUpdateParams) (*domain.User, error) {
	row := db.QueryRow(ctx, `
		UPDATE users
		SET email=COALESCE($2, email),
		    full_name=COALESCE($3, full_name),
		    hashed_password=COALESCE($4, hashed_password),
		    disabled=COALESCE($5, disabled),
		    updated_at=NOW()
		WHERE id=$1
		RETURNING id, username, email, hashed_password, full_name, disabled, created_at, updated_at
	`, id, p.Email, p.FullName, p.HashedPassword, p.Disabled)
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.FullName, &u.Disabled,
		&u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser 删除用户，任务随外键级联删除
func DeleteUser(ctx context.Context, db *pgxpool.Pool, id uuid.UUID) (bool, error) {
	tag, err := db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
