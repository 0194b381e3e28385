package backend

import (
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

const (
	csrfHeader    = "X-Frappe-CSRF-Token"
	sessionCookie = "sid"
)

type authProvider struct {
	APIKey    string
	APISecret string
	CSRFToken string
	SessionID string
}

func createAuthProvider(config Config) *authProvider {
	return &authProvider{config.APIKey, config.APISecret, config.CSRFToken, config.SessionID}
}

func (p *authProvider) buildToken() string {
	return fmt.Sprintf("token %s:%s", p.APIKey, p.APISecret)
}

// apply prefers API keys and falls back to a browser session.
func (p *authProvider) apply(c *resty.Client) {
	if p.APIKey != "" && p.APISecret != "" {
		c.SetHeader("Authorization", p.buildToken())
		return
	}
	if p.CSRFToken != "" {
		c.SetHeader(csrfHeader, p.CSRFToken)
	}
	if p.SessionID != "" {
		c.SetCookie(&http.Cookie{Name: sessionCookie, Value: p.SessionID})
	}
}
