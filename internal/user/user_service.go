package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gochat/internal/common"
	"gochat/internal/errs"
	"gochat/internal/model"
	"gochat/internal/repository"
)

var (
	ErrMissingFields = errs.New(errs.ErrInvalidInput, "All fields are required")
	ErrInvalidEmail  = errs.New(errs.ErrInvalidInput, "Invalid email format")
	ErrLongPassword  = errs.New(errs.ErrInvalidInput, "Password too long")
	ErrUserExists    = errs.New(errs.ErrAlreadyExists, "User already exists")
	ErrUnknownLogin  = errs.New(errs.ErrUnauthorized, "User not found")
	ErrBadPassword   = errs.New(errs.ErrUnauthorized, "Invalid password")
	ErrUserGone      = errs.New(errs.ErrNotFound, "User not found")
)

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Profile(ctx context.Context, userID string) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	hasher   *common.PasswordHasher
	tokens   *common.TokenManager
}

func NewUserService(userRepo repository.UserRepository, hasher *common.PasswordHasher, tokens *common.TokenManager) UserService {
	return &userService{userRepo: userRepo, hasher: hasher, tokens: tokens}
}

// Register stores a new account. No token is issued; the client logs in next.
func (s *userService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if common.Blank(name, email, password) {
		return nil, ErrMissingFields
	}
	if err := common.ValidateEmail(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) > common.MaxPasswordBytes {
		return nil, ErrLongPassword
	}

	//duplicates check
	_, err := s.userRepo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrUserExists
	case !errors.Is(err, errs.ErrNotFound):
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{Name: name, Email: email, PasswordHash: hashed}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		// lost a race with a concurrent signup for the same email
		if errors.Is(err, errs.ErrAlreadyExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.TrimSpace(email)
	if common.Blank(email, password) {
		return nil, "", ErrMissingFields
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, "", ErrUnknownLogin
		}
		return nil, "", fmt.Errorf("lookup email: %w", err)
	}

	if err := s.hasher.Check(password, user.PasswordHash); err != nil {
		return nil, "", ErrBadPassword
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

func (s *userService) Profile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrUserGone
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return user, nil
}
