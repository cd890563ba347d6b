// FILE: internal/service/auth_service.go
package service

import (
	"context"
	"os"
	"time"

	"crowdfund-be/internal/dto"
	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/pkg/apperror"
	"crowdfund-be/internal/repository/specification"
	"crowdfund-be/internal/repository/unitofwork"
	adminEvents "crowdfund-be/pkg/admin/events"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	LoginAdmin(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  adminEvents.Publisher
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, publisher adminEvents.Publisher) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Validation("email", "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		FullName:     req.FullName,
		Phone:        req.Phone,
		PasswordHash: &hashStr,
		Role:         entity.UserRoleUser,
		Status:       entity.UserStatusActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishUserRegistered(ctx, user.Id, user.Email, user.FullName, "registration")
	}

	return &dto.RegisterResponse{Id: user.Id, Email: user.Email}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	return s.login(ctx, req, false)
}

// LoginAdmin rejects non-admin accounts before the password check so a
// valid user credential never opens the admin panel.
func (s *authService) LoginAdmin(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	return s.login(ctx, req, true)
}

func (s *authService) login(ctx context.Context, req *dto.LoginRequest, adminOnly bool) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil || user == nil {
		return nil, apperror.Validation("email", "invalid credentials")
	}

	if adminOnly && user.Role != entity.UserRoleAdmin {
		return nil, apperror.Validation("email", "invalid credentials")
	}

	if user.PasswordHash == nil {
		return nil, apperror.Validation("email", "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Validation("email", "invalid credentials")
	}

	if user.Status == entity.UserStatusBanned {
		return nil, apperror.Validation("email", "account is banned")
	}

	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"role":    string(user.Role),
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
	}
	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: signedToken,
		User: dto.UserDTO{
			Id:       user.Id,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     string(user.Role),
		},
	}, nil
}
