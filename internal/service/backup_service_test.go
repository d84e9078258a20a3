package service

import (
	"testing"
	"time"

	"go-gudang-kelurahan/internal/apperr"
)

func TestRequestAndVerifyOTP(t *testing.T) {
	env := newTestEnv(t)
	email := "bendahara@kelurahan.go.id"

	if err := env.backup.RequestOTP(env.admin, email); err != nil {
		t.Fatalf("request otp: %v", err)
	}
	if len(env.mailer.sent) != 1 {
		t.Fatalf("otp mails = %d, want 1", len(env.mailer.sent))
	}

	entry, err := env.bakRepo.FindEmail(email)
	if err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.IsVerified || entry.OTPCode == nil || len(*entry.OTPCode) != 6 {
		t.Fatalf("entry = verified:%v code:%v", entry.IsVerified, entry.OTPCode)
	}

	if err := env.backup.VerifyOTP(env.admin, email, "000000"); err == nil && *entry.OTPCode != "000000" {
		t.Fatal("wrong code accepted")
	}
	if err := env.backup.VerifyOTP(env.admin, email, *entry.OTPCode); err != nil {
		t.Fatalf("verify: %v", err)
	}

	verified, _ := env.bakRepo.VerifiedEmails()
	if len(verified) != 1 || verified[0].Email != email {
		t.Fatalf("verified list = %v", verified)
	}
	if verified[0].OTPCode != nil {
		t.Fatal("code not cleared after verification")
	}
}

func TestVerifyOTPRejectsExpiredCode(t *testing.T) {
	env := newTestEnv(t)
	email := "rw05@kelurahan.go.id"
	if err := env.backup.RequestOTP(env.admin, email); err != nil {
		t.Fatalf("request otp: %v", err)
	}

	entry, _ := env.bakRepo.FindEmail(email)
	expired := time.Now().Add(-time.Minute)
	entry.OTPExpiry = &expired
	if err := env.bakRepo.SaveEmail(entry); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := env.backup.VerifyOTP(env.admin, email, *entry.OTPCode); !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("err = %v, want VALIDATION (expired)", err)
	}
}

func TestRequestOTPRefusesAlreadyVerified(t *testing.T) {
	env := newTestEnv(t)
	email := "pkk@kelurahan.go.id"
	if err := env.backup.RequestOTP(env.admin, email); err != nil {
		t.Fatalf("request: %v", err)
	}
	entry, _ := env.bakRepo.FindEmail(email)
	if err := env.backup.VerifyOTP(env.admin, email, *entry.OTPCode); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if err := env.backup.RequestOTP(env.admin, email); !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("err = %v, want VALIDATION", err)
	}
}

func TestRequestOTPValidatesEmailAndMailerFailure(t *testing.T) {
	env := newTestEnv(t)
	if err := env.backup.RequestOTP(env.admin, "bukan-email"); !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("err = %v, want VALIDATION", err)
	}

	env.mailer.fail = true
	if err := env.backup.RequestOTP(env.admin, "rt01@kelurahan.go.id"); err == nil {
		t.Fatal("request succeeded with broken mailer")
	}
}
