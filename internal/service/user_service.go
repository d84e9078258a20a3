package service

import (
	"errors"

	"go-gudang-kelurahan/internal/apperr"
	"go-gudang-kelurahan/internal/cache"
	"go-gudang-kelurahan/internal/model"
	"go-gudang-kelurahan/internal/repository"
	"go-gudang-kelurahan/internal/ws"
	"go-gudang-kelurahan/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService is the admin-only account management surface.
type UserService interface {
	CreateUser(actor Actor, req *CreateUserRequest) (*model.UserResponse, error)
	UpdateUser(actor Actor, id uuid.UUID, req *UpdateUserRequest) (*model.UserResponse, error)
	DeleteUser(actor Actor, id uuid.UUID) error
	GetAll(actor Actor) ([]model.UserResponse, error)
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role"`
	Password string `json:"password"` // optional; rotates the session when set
}

type userService struct {
	userRepo repository.UserRepository
	fx       sideEffects
}

func NewUserService(
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	hub *ws.Hub,
	listCache cache.ListCache,
	log *zap.SugaredLogger,
) UserService {
	return &userService{
		userRepo: userRepo,
		fx:       newSideEffects(auditRepo, hub, listCache, log),
	}
}

func normalizeRole(role string) string {
	if role == model.RoleAdmin {
		return model.RoleAdmin
	}
	return model.RoleStaff
}

func (s *userService) CreateUser(actor Actor, req *CreateUserRequest) (*model.UserResponse, error) {
	if !actor.IsAdmin {
		return nil, apperr.Unauthorized("Hanya admin yang dapat mengelola akun")
	}
	if fields := validator.ValidateStruct(req); fields != nil {
		return nil, apperr.Validation("Data akun tidak valid", fields)
	}
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, apperr.DuplicateName("Email sudah terdaftar", "email")
	}

	user := &model.User{
		Email: req.Email,
		Name:  req.Name,
		Role:  normalizeRole(req.Role),
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, s.fx.wrap(err, "Gagal memproses password")
	}
	user.CreatedBy = actor.ID
	user.UpdatedBy = actor.ID
	if err := s.userRepo.Create(user); err != nil {
		return nil, s.fx.wrap(err, "Gagal membuat akun")
	}

	s.fx.record(actor, "CREATE", "Manajemen Akun", user.Name)
	s.fx.invalidate(cache.KeyAuditRecent)
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) UpdateUser(actor Actor, id uuid.UUID, req *UpdateUserRequest) (*model.UserResponse, error) {
	if !actor.IsAdmin {
		return nil, apperr.Unauthorized("Hanya admin yang dapat mengelola akun")
	}
	if fields := validator.ValidateStruct(req); fields != nil {
		return nil, apperr.Validation("Data akun tidak valid", fields)
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, apperr.NotFound("Akun tidak ditemukan")
	}

	if other, err := s.userRepo.FindByEmailExcept(req.Email, id); err == nil && other != nil {
		return nil, apperr.DuplicateName("Email sudah digunakan akun lain", "email")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.fx.wrap(err, "Gagal memeriksa email")
	}

	role := normalizeRole(req.Role)
	if user.Email == req.Email && user.Name == req.Name && user.Role == role && req.Password == "" {
		return nil, apperr.NoChange("Data belum ada perubahan.")
	}

	user.Email = req.Email
	user.Name = req.Name
	user.Role = role
	user.UpdatedBy = actor.ID
	if req.Password != "" {
		if !validator.StrongPassword(req.Password) {
			return nil, apperr.Field("password", "minimal 8 karakter dengan huruf besar, huruf kecil, angka dan simbol")
		}
		if err := user.SetPassword(req.Password); err != nil {
			return nil, s.fx.wrap(err, "Gagal memproses password")
		}
		// Force re-login everywhere after a password change.
		user.TokenVersion = uuid.NewString()
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, s.fx.wrap(err, "Gagal mengupdate akun")
	}

	s.fx.record(actor, "UPDATE", "Manajemen Akun", user.Name)
	s.fx.invalidate(cache.KeyAuditRecent)
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) DeleteUser(actor Actor, id uuid.UUID) error {
	if !actor.IsAdmin {
		return apperr.Unauthorized("Hanya admin yang dapat mengelola akun")
	}
	if actor.ID == id.String() {
		return apperr.Field("id", "Tidak dapat menghapus akun sendiri")
	}
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return apperr.NotFound("Akun tidak ditemukan")
	}
	if err := s.userRepo.Delete(id); err != nil {
		return s.fx.wrap(err, "Gagal menghapus akun")
	}

	s.fx.record(actor, "DELETE", "Manajemen Akun", user.Name)
	s.fx.invalidate(cache.KeyAuditRecent)
	return nil
}

func (s *userService) GetAll(actor Actor) ([]model.UserResponse, error) {
	if !actor.IsAdmin {
		return nil, apperr.Unauthorized("Hanya admin yang dapat mengelola akun")
	}
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, s.fx.wrap(err, "Gagal memuat daftar akun")
	}
	out := make([]model.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToResponse())
	}
	return out, nil
}
