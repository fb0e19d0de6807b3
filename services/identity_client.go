// services/identity_client.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"upvote-club/config"
	"upvote-club/utils"
)

// IdentityClient asks the identity service for a user's contact address.
type IdentityClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

type identityResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func NewIdentityClient(baseURL, token string) *IdentityClient {
	return &IdentityClient{
		BaseURL: baseURL,
		Token:   token,
		Client:  utils.NewHTTPClient(config.IdentityTimeout),
	}
}

// ResolveEmail calls GET /users/{id} on the identity service.
func (c *IdentityClient) ResolveEmail(ctx context.Context, userID string) (string, error) {
	endpoint := fmt.Sprintf("%s/users/%s", c.BaseURL, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("[NOTIFY] Identity /users returned %d: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("identity lookup failed: %d", resp.StatusCode)
	}

	var out identityResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if out.Email == "" {
		return "", ErrNoRecipientEmail
	}
	return out.Email, nil
}
