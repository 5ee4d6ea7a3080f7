// Package sms sends text messages through the Twilio Messages API.
package sms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultAPIBase = "https://api.twilio.com/2010-04-01"

type Client struct {
	accountSID string
	authToken  string
	fromNumber string
	apiBase    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAPIBase overrides the Twilio API base URL. Used by tests.
func WithAPIBase(base string) Option {
	return func(cl *Client) {
		cl.apiBase = base
	}
}

func NewClient(accountSID, authToken, fromNumber string, opts ...Option) *Client {
	c := &Client{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		apiBase:    defaultAPIBase,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if account credentials and a sending number are set.
func (c *Client) Configured() bool {
	return c.accountSID != "" && c.authToken != "" && c.fromNumber != ""
}

// Send delivers one SMS to the given phone number.
func (c *Client) Send(ctx context.Context, to, body string) error {
	if !c.Configured() {
		return fmt.Errorf("sms client not configured: missing credentials")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.fromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.apiBase, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("twilio API error: status %d", resp.StatusCode)
	}

	return nil
}
