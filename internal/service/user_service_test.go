package service

import (
	"testing"

	"go-gudang-kelurahan/internal/apperr"
	"go-gudang-kelurahan/internal/repository"
	"go-gudang-kelurahan/pkg/logger"

	"github.com/google/uuid"
)

func newUsers(env *testEnv) UserService {
	return NewUserService(repository.NewUserRepo(env.db), env.audit, nil, nil, logger.Nop())
}

func TestAccountManagementIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	users := newUsers(env)

	_, err := users.CreateUser(env.staff, &CreateUserRequest{
		Email: "baru@kelurahan.go.id", Password: "Baru#1234", Name: "Baru",
	})
	if !apperr.Is(err, apperr.CodeUnauthorized) {
		t.Fatalf("err = %v, want UNAUTHORIZED", err)
	}
	if _, err := users.GetAll(env.staff); !apperr.Is(err, apperr.CodeUnauthorized) {
		t.Fatalf("err = %v, want UNAUTHORIZED", err)
	}
}

func TestCreateUserEnforcesPolicyAndUniqueness(t *testing.T) {
	env := newTestEnv(t)
	users := newUsers(env)

	if _, err := users.CreateUser(env.admin, &CreateUserRequest{
		Email: "lemah@kelurahan.go.id", Password: "lemah", Name: "Lemah",
	}); !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("weak password: err = %v, want VALIDATION", err)
	}

	created, err := users.CreateUser(env.admin, &CreateUserRequest{
		Email: "petugas@kelurahan.go.id", Password: "Petugas#1", Name: "Petugas", Role: "superuser",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Unknown roles collapse to staff.
	if created.Role != "user" {
		t.Fatalf("role = %q, want user", created.Role)
	}

	if _, err := users.CreateUser(env.admin, &CreateUserRequest{
		Email: "petugas@kelurahan.go.id", Password: "Petugas#1", Name: "Kembar",
	}); !apperr.Is(err, apperr.CodeDuplicateName) {
		t.Fatalf("duplicate email: err = %v, want DUPLICATE_NAME", err)
	}
}

func TestUpdateUserPasswordChangeRotatesSession(t *testing.T) {
	env := newTestEnv(t)
	users := newUsers(env)
	auth := newAuth(env)

	login, err := auth.Login(&LoginRequest{Email: "staf@kelurahan.go.id", Password: "Staf#1234"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	id := uuid.MustParse(env.staff.ID)

	if _, err := users.UpdateUser(env.admin, id, &UpdateUserRequest{
		Email: "staf@kelurahan.go.id", Name: "Staf Gudang", Password: "Ganti#1234",
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := auth.ValidateToken(login.Token); err == nil {
		t.Fatal("old session survived a password change")
	}
	if _, err := auth.Login(&LoginRequest{Email: "staf@kelurahan.go.id", Password: "Ganti#1234"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestDeleteUserCannotDeleteSelf(t *testing.T) {
	env := newTestEnv(t)
	users := newUsers(env)

	if err := users.DeleteUser(env.admin, uuid.MustParse(env.admin.ID)); !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("err = %v, want VALIDATION", err)
	}
	if err := users.DeleteUser(env.admin, uuid.MustParse(env.staff.ID)); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestUpdateUserNoChange(t *testing.T) {
	env := newTestEnv(t)
	users := newUsers(env)

	_, err := users.UpdateUser(env.admin, uuid.MustParse(env.staff.ID), &UpdateUserRequest{
		Email: "staf@kelurahan.go.id", Name: "Staf Gudang", Role: "user",
	})
	if !apperr.Is(err, apperr.CodeNoChange) {
		t.Fatalf("err = %v, want NO_CHANGE", err)
	}
}
