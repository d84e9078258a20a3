package service

import (
	"fmt"
	"time"

	"go-gudang-kelurahan/internal/apperr"
	"go-gudang-kelurahan/internal/model"
	"go-gudang-kelurahan/internal/repository"
	"go-gudang-kelurahan/pkg/jwt"
	"go-gudang-kelurahan/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxFailedLogins = 3
	lockoutDuration = 15 * time.Minute
)

// AuthService handles login with brute-force lockout and single-session
// tokens: each successful login rotates the user's token version, which
// invalidates every previously issued JWT.
type AuthService interface {
	Login(req *LoginRequest) (*LoginResult, error)
	ValidateToken(token string) (*model.User, error)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type authService struct {
	userRepo repository.UserRepository
	log      *zap.SugaredLogger
}

func NewAuthService(userRepo repository.UserRepository, log *zap.SugaredLogger) AuthService {
	return &authService{userRepo: userRepo, log: log}
}

func (s *authService) Login(req *LoginRequest) (*LoginResult, error) {
	if fields := validator.ValidateStruct(req); fields != nil {
		return nil, apperr.Validation("Data login tidak valid", fields)
	}

	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, apperr.Unauthorized("Email atau password salah")
	}

	if user.LockedUntil != nil && time.Now().Before(*user.LockedUntil) {
		remaining := time.Until(*user.LockedUntil).Round(time.Minute)
		return nil, apperr.Unauthorized(fmt.Sprintf("Akun terkunci. Coba lagi dalam %v.", remaining))
	}

	if !user.CheckPassword(req.Password) {
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= maxFailedLogins {
			until := time.Now().Add(lockoutDuration)
			user.LockedUntil = &until
			user.FailedLoginAttempts = 0
			s.log.Warnw("akun dikunci karena gagal login berulang", "email", user.Email)
		}
		if err := s.userRepo.Update(user); err != nil {
			s.log.Warnw("gagal menyimpan percobaan login", "error", err)
		}
		return nil, apperr.Unauthorized("Email atau password salah")
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.TokenVersion = uuid.NewString()
	if err := s.userRepo.Update(user); err != nil {
		return nil, wrapErr(s.log, err, "Gagal memproses login")
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, user.Name, user.Role, user.TokenVersion)
	if err != nil {
		return nil, wrapErr(s.log, err, "Gagal membuat token")
	}

	return &LoginResult{Token: token, User: user.ToResponse()}, nil
}

// ValidateToken checks the signature and confirms the embedded token version
// still matches the account, so a stale session dies the moment a newer login
// (or a password change) rotates it.
func (s *authService) ValidateToken(token string) (*model.User, error) {
	claims, err := jwt.ValidateToken(token)
	if err != nil {
		return nil, apperr.Unauthorized("Sesi tidak valid")
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Akun tidak ditemukan")
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, apperr.Unauthorized("Sesi berakhir karena login di perangkat lain")
	}
	return user, nil
}
