package lightspeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// Credentials is the bearer credential pair for the Lightspeed API. The run
// is sequential, so refresh mutates the holder in place under a
// single-writer discipline; callers share one *Credentials per run.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoadCredentials reads a previously saved token file.
func LoadCredentials(path string) (*Credentials, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var c Credentials
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return &c, nil
}

// Save writes the credentials back to the token file.
func (c *Credentials) Save(path string) error {
	raw, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0600)
}

// RefreshAccess exchanges the refresh token for a fresh access token and
// updates the credential holder in place. When a token file is configured
// the new pair is persisted.
func (c *Client) RefreshAccess(ctx context.Context) error {
	if c.creds.RefreshToken == "" {
		return fmt.Errorf("no refresh token available")
	}
	form := url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.creds.RefreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("token exchange: %w", err)
	}
	defer closeBody(resp, c.logger)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("token exchange: status %d", resp.StatusCode)
	}
	var tokens Credentials
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}
	c.creds.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		c.creds.RefreshToken = tokens.RefreshToken
	}
	if c.cfg.TokenFile != "" {
		if err := c.creds.Save(c.cfg.TokenFile); err != nil {
			c.logger.Warn("failed to persist refreshed tokens", "path", c.cfg.TokenFile, "error", err)
		}
	}
	c.logger.Info("access token refreshed")
	return nil
}
