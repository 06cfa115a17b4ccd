package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultSendGridURL = "https://api.sendgrid.com/v3/mail/send"
	defaultTimeout     = 15 * time.Second
)

// SendGridSender delivers messages through the SendGrid v3 mail/send API.
type SendGridSender struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewSendGridSender returns a sender using apiKey. An empty baseURL selects the
// public SendGrid endpoint.
func NewSendGridSender(apiKey, baseURL string) *SendGridSender {
	if baseURL == "" {
		baseURL = defaultSendGridURL
	}
	return &SendGridSender{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type sgAddress struct {
	Email string `json:"email"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgRequest struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

// Send posts m to SendGrid. Any non-2xx response is an error.
func (s *SendGridSender) Send(ctx context.Context, m Message) error {
	if s.APIKey == "" {
		return errors.New("sendgrid: API key not configured")
	}
	if len(m.To) == 0 {
		return errors.New("sendgrid: message has no recipients")
	}
	to := make([]sgAddress, 0, len(m.To))
	for _, addr := range m.To {
		to = append(to, sgAddress{Email: addr})
	}
	raw, err := json.Marshal(sgRequest{
		Personalizations: []sgPersonalization{{To: to}},
		From:             sgAddress{Email: m.From},
		Subject:          m.Subject,
		Content:          []sgContent{{Type: "text/html", Value: m.Compile()}},
	})
	if err != nil {
		return errors.Wrap(err, "sendgrid: encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(err, "sendgrid: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "sendgrid: send")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.Errorf("sendgrid: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
