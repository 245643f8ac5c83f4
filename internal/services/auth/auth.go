// Package auth содержит логику аутентификации персонала.
package auth

import (
	"context"
	"errors"

	"github.com/yonasmekonnen/gym-membership/internal/lib/jwt"
	"github.com/yonasmekonnen/gym-membership/internal/lib/password"
	"github.com/yonasmekonnen/gym-membership/internal/models"
)

// StaffRepository описывает контракт для работы с персоналом в базе данных.
type StaffRepository interface {
	// GetStaffByUsername возвращает сотрудника по имени или ошибку, если не найден.
	GetStaffByUsername(ctx context.Context, username string) (*models.Staff, error)

	// CreateStaff сохраняет нового сотрудника.
	CreateStaff(ctx context.Context, staff models.Staff) error
}

// AuthService отвечает за авторизацию персонала и валидацию JWT.
type AuthService struct {
	staff    StaffRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(staff StaffRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		staff:    staff,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового сотрудника с хэшированием пароля.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword, role string) error {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return err
	}
	staff := models.Staff{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         role,
	}
	return s.staff.CreateStaff(ctx, staff)
}

// Login проверяет пароль сотрудника и генерирует JWT.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (token, role string, err error) {
	staff, err := s.staff.GetStaffByUsername(ctx, username)
	if err != nil {
		return "", "", err
	}
	if err := password.CompareHash(staff.PasswordHash, rawPassword); err != nil {
		return "", "", errors.New("invalid credentials")
	}
	token, err = s.jwtMaker.GenerateToken(staff.Username, staff.Role)
	if err != nil {
		return "", "", err
	}
	return token, staff.Role, nil
}

// ValidateToken проверяет JWT и возвращает имя сотрудника и его роль.
func (s *AuthService) ValidateToken(_ context.Context, token string) (username, role string, err error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return "", "", err
	}
	return claims.Username, claims.Role, nil
}
