package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/starford/keepnote/internal/apperr"
	"github.com/starford/keepnote/internal/auth"
	"github.com/starford/keepnote/internal/models"
	"github.com/starford/keepnote/internal/store"
	"github.com/starford/keepnote/internal/testutil"
)

func testService(t *testing.T) (*auth.Service, *store.SQLite) {
	t.Helper()
	st := testutil.TestStore(t)
	issuer := auth.NewIssuer(auth.NewStaticKey("test-signing-key"), time.Hour)
	return auth.NewService(st, issuer), st
}

func TestRegister(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, models.User{UserID: "alice", Password: "s3cret-password", Role: "admin"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Password != "" {
		t.Error("returned user must not carry a secret")
	}

	// The stored secret is a bcrypt hash of the password, never the plaintext.
	doc, err := st.Get(ctx, store.BucketUsers, "alice")
	if err != nil {
		t.Fatalf("Get stored user: %v", err)
	}
	var stored models.User
	if err := json.Unmarshal(doc.Data, &stored); err != nil {
		t.Fatal(err)
	}
	if stored.Password == "s3cret-password" {
		t.Fatal("password stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("s3cret-password")) != nil {
		t.Error("stored hash does not verify against the password")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, models.User{UserID: "alice", Password: "s3cret-password"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, models.User{UserID: "alice", Password: "another-password"})
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, models.User{UserID: "alice", Password: "s3cret-password", Role: "admin"}); err != nil {
		t.Fatal(err)
	}

	token, err := svc.Login(ctx, "alice", "s3cret-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := svc.Introspect(token)
	if err != nil {
		t.Fatalf("Introspect: %v", err)
	}
	if claims.Subject != "alice" {
		t.Errorf("subject = %q, want alice", claims.Subject)
	}
	if claims.Claims["admin"] != "alice" {
		t.Errorf(`claims["admin"] = %q, want alice`, claims.Claims["admin"])
	}
}

func TestGetUser(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, models.User{UserID: "alice", Password: "s3cret-password", Role: "admin"}); err != nil {
		t.Fatal(err)
	}

	user, err := svc.GetUser(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.UserID != "alice" || user.Role != "admin" {
		t.Errorf("user = %+v", user)
	}
	if user.Password != "" {
		t.Error("returned user must not carry a secret")
	}

	if _, err := svc.GetUser(ctx, "ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing user: err = %v, want ErrNotFound", err)
	}
}

func TestUpdateUserKeepsHashWithoutPassword(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, models.User{UserID: "alice", Password: "s3cret-password", Role: "user"}); err != nil {
		t.Fatal(err)
	}

	// Role-only update; the stored credential must survive.
	user, err := svc.UpdateUser(ctx, "alice", models.User{Role: "admin"})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if user.Role != "admin" {
		t.Errorf("role = %q, want admin", user.Role)
	}
	if _, err := svc.Login(ctx, "alice", "s3cret-password"); err != nil {
		t.Errorf("login after role update: %v", err)
	}
}

func TestUpdateUserRotatesPassword(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, models.User{UserID: "alice", Password: "s3cret-password"}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.UpdateUser(ctx, "alice", models.User{Password: "brand-new-secret"}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if _, err := svc.Login(ctx, "alice", "brand-new-secret"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
	if _, err := svc.Login(ctx, "alice", "s3cret-password"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("old password: err = %v, want ErrUnauthorized", err)
	}
}

func TestDeleteUser(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, models.User{UserID: "alice", Password: "s3cret-password"}); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteUser(ctx, "alice"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := svc.GetUser(ctx, "alice"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("after delete: err = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteUser(ctx, "alice"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestLoginFailuresCollapse(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, models.User{UserID: "alice", Password: "s3cret-password"}); err != nil {
		t.Fatal(err)
	}

	// Wrong secret and unknown id must be indistinguishable to callers.
	_, wrongSecret := svc.Login(ctx, "alice", "wrong-password")
	if !errors.Is(wrongSecret, apperr.ErrUnauthorized) {
		t.Errorf("wrong secret: err = %v, want ErrUnauthorized", wrongSecret)
	}
	_, unknownID := svc.Login(ctx, "mallory", "s3cret-password")
	if !errors.Is(unknownID, apperr.ErrUnauthorized) {
		t.Errorf("unknown id: err = %v, want ErrUnauthorized", unknownID)
	}
	if wrongSecret.Error() != unknownID.Error() {
		t.Errorf("failure kinds leak identity: %q vs %q", wrongSecret, unknownID)
	}
}
