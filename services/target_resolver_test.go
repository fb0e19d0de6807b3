package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"upvote-club/models"
)

func TestHandleFromURL(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://twitter.com/gopher", "gopher", false},
		{"https://x.com/@gopher/status/1", "gopher", false},
		{"https://www.instagram.com/gopher/", "gopher", false},
		{"https://twitter.com/", "", true},
	}
	for _, c := range cases {
		got, err := HandleFromURL(c.in)
		if (err != nil) != c.wantErr || got != c.want {
			t.Errorf("HandleFromURL(%q)=(%q, %v), want %q", c.in, got, err, c.want)
		}
	}
}

func TestHTMLTargetResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gopher":
			w.Write([]byte(`<html><body><div class="profile" data-user-id=" 783214 ">Gopher</div></body></html>`))
		case "/meta":
			w.Write([]byte(`<html><head><meta name="twitter:creator:id" content="99"></head></html>`))
		case "/blank":
			w.Write([]byte(`<html><body>nothing here</body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	r := NewHTMLTargetResolver(srv.URL + "/")
	ctx := context.Background()

	if id, err := r.Resolve(ctx, models.NetworkTwitter, "https://twitter.com/gopher"); err != nil || id != "783214" {
		t.Fatalf("Resolve(gopher)=(%q, %v)", id, err)
	}
	if id, err := r.Resolve(ctx, models.NetworkTwitter, "https://twitter.com/@meta"); err != nil || id != "99" {
		t.Fatalf("Resolve(meta)=(%q, %v)", id, err)
	}
	for _, u := range []string{"https://twitter.com/blank", "https://twitter.com/missing"} {
		if _, err := r.Resolve(ctx, models.NetworkTwitter, u); err == nil {
			t.Fatalf("Resolve(%s) succeeded", u)
		}
	}
}
