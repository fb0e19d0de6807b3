// services/target_resolver.go
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"upvote-club/config"
	"upvote-club/models"
	"upvote-club/utils"

	"github.com/PuerkitoBio/goquery"
)

// TargetResolver turns a profile URL into the network's stable account id,
// so FOLLOW completions survive handle renames.
type TargetResolver interface {
	Resolve(ctx context.Context, network models.SocialNetwork, postURL string) (string, error)
}

// HTMLTargetResolver scrapes a public profile page for the account id.
type HTMLTargetResolver struct {
	LookupURL string
	Client    *http.Client
}

func NewHTMLTargetResolver(lookupURL string) *HTMLTargetResolver {
	return &HTMLTargetResolver{
		LookupURL: strings.TrimRight(lookupURL, "/"),
		Client:    utils.NewHTTPClient(config.TargetLookupTimeout),
	}
}

var idSelectors = []struct {
	selector string
	attr     string
}{
	{"[data-user-id]", "data-user-id"},
	{`meta[name="twitter:creator:id"]`, "content"},
	{`meta[property="profile:id"]`, "content"},
}

func (r *HTMLTargetResolver) Resolve(ctx context.Context, network models.SocialNetwork, postURL string) (string, error) {
	handle, err := HandleFromURL(postURL)
	if err != nil {
		return "", err
	}
	if r.LookupURL == "" {
		return "", fmt.Errorf("no lookup endpoint configured for %s", network)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.LookupURL+"/"+url.PathEscape(handle), nil)
	if err != nil {
		return "", err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lookup for %q returned %d", handle, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse profile page: %w", err)
	}

	for _, s := range idSelectors {
		if v, ok := doc.Find(s.selector).First().Attr(s.attr); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v, nil
			}
		}
	}
	return "", fmt.Errorf("no account id on profile page for %q", handle)
}

// HandleFromURL returns the first path segment of a profile URL, without a
// leading "@".
func HandleFromURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	for _, seg := range strings.Split(u.Path, "/") {
		seg = strings.TrimPrefix(seg, "@")
		if seg != "" {
			return seg, nil
		}
	}
	return "", fmt.Errorf("no handle in %q", raw)
}
