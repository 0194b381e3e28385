package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/labstack/gommon/log"
)

const (
	methodPrefix   = "/api/method/voice_note.voice_channel.api.voice."
	defaultTimeout = 30 * time.Second
)

type Config struct {
	URL       string
	APIKey    string
	APISecret string
	CSRFToken string
	SessionID string
	Timeout   time.Duration
}

// Client talks to the voice channel backend. It is safe for concurrent use.
type Client struct {
	http *resty.Client
}

func New(config Config) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := resty.New().
		SetBaseURL(config.URL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	createAuthProvider(config).apply(c)
	return &Client{http: c}
}

// HTTP exposes the authenticated transport, e.g. for file uploads.
func (c *Client) HTTP() *resty.Client {
	return c.http
}

type envelope struct {
	Message json.RawMessage `json:"message"`
}

func (c *Client) call(ctx context.Context, method string, name string, params map[string]interface{}, out interface{}) error {
	req := c.http.R().SetContext(ctx)
	if method == http.MethodGet {
		for k, v := range params {
			req.SetQueryParam(k, fmt.Sprint(v))
		}
	} else if params != nil {
		req.SetBody(params)
	}

	resp, err := req.Execute(method, methodPrefix+name)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if resp.IsError() {
		e := parseError(resp.StatusCode(), resp.Body())
		log.Debugf("backend call failed | method: %v, status: %v, error: %v", name, resp.StatusCode(), e.Message)
		return e
	}
	if out == nil {
		return nil
	}
	return decodeMessage(name, resp.Body(), out)
}

func decodeMessage(name string, body []byte, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%s: cannot decode response: %w", name, err)
	}
	if len(env.Message) == 0 {
		return fmt.Errorf("%s: empty response", name)
	}
	if err := json.Unmarshal(env.Message, out); err != nil {
		return fmt.Errorf("%s: cannot decode message: %w", name, err)
	}
	return nil
}
