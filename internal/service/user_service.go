package service

import (
	"context"
	"errors"
	"time"

	"smarttask/internal/auth"
	"smarttask/internal/domain"
	"smarttask/internal/repo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

type RegisterParams struct {
	Username string
	Email    string
	Password string
	FullName *string
}

// Register 注册新用户。用户名与邮箱都要求唯一
func (s *UserService) Register(ctx context.Context, p RegisterParams) (*domain.User, error) {
	if _, err := repo.GetUserByUsername(ctx, s.db, p.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if _, err := repo.GetUserByEmail(ctx, s.db, p.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hashed, err := auth.HashPassword(p.Password)
	if err != nil {
		return nil, err
	}
	u := domain.User{
		ID:             uuid.New(),
		Username:       p.Username,
		Email:          p.Email,
		HashedPassword: hashed,
		FullName:       p.FullName,
		CreatedAt:      time.Now().UTC(),
	}
	if err := repo.InsertUser(ctx, s.db, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate 校验用户名密码。禁用账号不允许登录
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := repo.GetUserByUsername(ctx, s.db, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(password, u.HashedPassword) {
		return nil, ErrInvalidCredentials
	}
	if u.Disabled {
		return nil, ErrUserDisabled
	}
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := repo.GetUserByID(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

type UpdateUserParams struct {
	Email    *string
	FullName *string
	Password *string
	Disabled *bool
}

// UpdateUser 更新用户资料。换邮箱时要求新邮箱未被其他账号占用
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, p UpdateUserParams) (*domain.User, error) {
	if p.Email != nil {
		if existing, err := repo.GetUserByEmail(ctx, s.db, *p.Email); err == nil {
			if existing.ID != id {
				return nil, ErrEmailTaken
			}
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}

	update := repo.UserUpdateParams{
		Email:    p.Email,
		FullName: p.FullName,
		Disabled: p.Disabled,
	}
	if p.Password != nil {
		hashed, err := auth.HashPassword(*p.Password)
		if err != nil {
			return nil, err
		}
		update.HashedPassword = &hashed
	}
	u, err := repo.UpdateUser(ctx, s.db, id, update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	deleted, err := repo.DeleteUser(ctx, s.db, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	return nil
}
