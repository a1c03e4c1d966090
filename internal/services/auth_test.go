package services

import (
	"testing"

	"github.com/prompthive/prompthive/internal/config"
	"github.com/prompthive/prompthive/internal/models"
	"github.com/prompthive/prompthive/internal/utils"
)

func init() {
	utils.SetJWTSecret("test-secret-for-auth-service")
}

func newAuthService(t *testing.T) (*AuthService, *MembershipService) {
	db := setupTestDB(t)
	jwtCfg := &config.JWTConfig{Secret: "test-secret-for-auth-service", ExpireHour: 24}
	return NewAuthService(db, jwtCfg), NewMembershipService(db)
}

func TestRegister_CreatesFreeMembership(t *testing.T) {
	svc, memberships := newAuthService(t)

	user, err := svc.Register(&RegisterRequest{Username: "alice", Password: "supersecret1"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Role != "user" {
		t.Errorf("Role = %q, expected user", user.Role)
	}
	if user.Password == "supersecret1" {
		t.Error("password stored in plaintext")
	}

	m, err := memberships.GetByUserID(user.ID)
	if err != nil {
		t.Fatalf("membership lookup failed: %v", err)
	}
	if m.Tier != models.TierFree {
		t.Errorf("new user tier = %q, expected FREE", m.Tier)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newAuthService(t)

	if _, err := svc.Register(&RegisterRequest{Username: "  ", Password: "longenough"}); err == nil {
		t.Error("blank username should be rejected")
	}
	if _, err := svc.Register(&RegisterRequest{Username: "bob", Password: "short"}); err == nil {
		t.Error("short password should be rejected")
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _ := newAuthService(t)

	if _, err := svc.Register(&RegisterRequest{Username: "carol", Password: "password123"}); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if _, err := svc.Register(&RegisterRequest{Username: "carol", Password: "different456"}); err == nil {
		t.Error("duplicate username should conflict")
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	svc.Register(&RegisterRequest{Username: "dave", Password: "password123"})

	resp, err := svc.Login(&LoginRequest{Username: "dave", Password: "password123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("Login returned empty token")
	}

	claims, err := utils.ParseToken(resp.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Username != "dave" {
		t.Errorf("token username = %q", claims.Username)
	}
}

func TestLogin_Failures(t *testing.T) {
	svc, _ := newAuthService(t)
	svc.Register(&RegisterRequest{Username: "erin", Password: "password123"})

	if _, err := svc.Login(&LoginRequest{Username: "erin", Password: "wrong-password"}); err == nil {
		t.Error("wrong password should fail")
	}
	if _, err := svc.Login(&LoginRequest{Username: "ghost", Password: "password123"}); err == nil {
		t.Error("unknown user should fail")
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthService(t)
	user, _ := svc.Register(&RegisterRequest{Username: "frank", Password: "oldpassword1"})

	if err := svc.ChangePassword(user.ID, "wrong", "newpassword1"); err == nil {
		t.Error("wrong current password should be rejected")
	}
	if err := svc.ChangePassword(user.ID, "oldpassword1", "tiny"); err == nil {
		t.Error("short new password should be rejected")
	}

	if err := svc.ChangePassword(user.ID, "oldpassword1", "newpassword1"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if _, err := svc.Login(&LoginRequest{Username: "frank", Password: "newpassword1"}); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
	if _, err := svc.Login(&LoginRequest{Username: "frank", Password: "oldpassword1"}); err == nil {
		t.Error("old password still accepted")
	}
}

func TestCreateAdminIfNotExists(t *testing.T) {
	svc, _ := newAuthService(t)

	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("CreateAdminIfNotExists failed: %v", err)
	}
	// Idempotent on a second call.
	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	var count int64
	svc.db.Model(&models.User{}).Where("role = ?", "admin").Count(&count)
	if count != 1 {
		t.Errorf("admin count = %d, expected 1", count)
	}
}
