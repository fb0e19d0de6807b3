package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIdentityClientResolveEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer svc-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/users/u1":
			w.Write([]byte(`{"user_id":"u1","email":"u1@example.com"}`))
		case "/users/noemail":
			w.Write([]byte(`{"user_id":"noemail","email":""}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewIdentityClient(srv.URL, "svc-token")
	ctx := context.Background()

	email, err := c.ResolveEmail(ctx, "u1")
	if err != nil || email != "u1@example.com" {
		t.Fatalf("ResolveEmail(u1)=(%q, %v)", email, err)
	}
	if _, err := c.ResolveEmail(ctx, "noemail"); !errors.Is(err, ErrNoRecipientEmail) {
		t.Fatalf("err=%v, want ErrNoRecipientEmail", err)
	}
	if _, err := c.ResolveEmail(ctx, "ghost"); err == nil {
		t.Fatal("404 accepted")
	}

	c.Token = "wrong"
	if _, err := c.ResolveEmail(ctx, "u1"); err == nil {
		t.Fatal("unauthorized response accepted")
	}
}
