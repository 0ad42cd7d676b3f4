package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/starford/keepnote/internal/apperr"
	"github.com/starford/keepnote/internal/models"
)

func TestIssueIntrospectRoundTrip(t *testing.T) {
	issuer := NewIssuer(NewStaticKey("test-signing-key"), time.Hour)

	token, err := issuer.Issue(models.User{UserID: "alice", Role: "admin"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := issuer.Introspect(token)
	if err != nil {
		t.Fatalf("Introspect: %v", err)
	}
	if claims.Subject != "alice" {
		t.Errorf("subject = %q, want alice", claims.Subject)
	}
	if claims.Role != "admin" {
		t.Errorf("role = %q, want admin", claims.Role)
	}
	if got := claims.Claims["admin"]; got != "alice" {
		t.Errorf(`claims["admin"] = %q, want alice`, got)
	}
	if claims.IssuedAt.IsZero() {
		t.Error("issued-at missing")
	}
}

func TestIntrospectWrongKey(t *testing.T) {
	issuer := NewIssuer(NewStaticKey("key-one"), time.Hour)
	token, err := issuer.Issue(models.User{UserID: "alice", Role: "admin"})
	if err != nil {
		t.Fatal(err)
	}

	other := NewIssuer(NewStaticKey("key-two"), time.Hour)
	if _, err := other.Introspect(token); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestIntrospectGarbage(t *testing.T) {
	issuer := NewIssuer(NewStaticKey("k"), time.Hour)
	if _, err := issuer.Introspect("not.a.token"); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestIntrospectExpired(t *testing.T) {
	issuer := NewIssuer(NewStaticKey("k"), time.Hour)

	issued := time.Now()
	issuer.now = func() time.Time { return issued }
	token, err := issuer.Issue(models.User{UserID: "alice", Role: "admin"})
	if err != nil {
		t.Fatal(err)
	}

	// Still valid just inside the window.
	issuer.now = func() time.Time { return issued.Add(59 * time.Minute) }
	if _, err := issuer.Introspect(token); err != nil {
		t.Fatalf("token inside TTL rejected: %v", err)
	}

	// Expired past the window.
	issuer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, err := issuer.Introspect(token); !errors.Is(err, apperr.ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestIssueWithoutKey(t *testing.T) {
	issuer := NewIssuer(NewStaticKey(""), time.Hour)
	if _, err := issuer.Issue(models.User{UserID: "alice"}); !errors.Is(err, apperr.ErrConfiguration) {
		t.Errorf("err = %v, want ErrConfiguration", err)
	}
}

func TestReservedRoleNotEmbedded(t *testing.T) {
	issuer := NewIssuer(NewStaticKey("k"), time.Hour)
	token, err := issuer.Issue(models.User{UserID: "alice", Role: "exp"})
	if err != nil {
		t.Fatal(err)
	}
	claims, err := issuer.Introspect(token)
	if err != nil {
		t.Fatalf("Introspect: %v", err)
	}
	if _, ok := claims.Claims["exp"]; ok {
		t.Error("reserved claim name must not carry a role claim")
	}
}
