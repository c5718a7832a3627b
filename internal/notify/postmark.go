package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jeni-t/flightbooking/config"
)

const postmarkAPIBase = "https://api.postmarkapp.com"

// PostmarkSender delivers transactional email through the Postmark API.
type PostmarkSender struct {
	serverToken string
	fromAddress string
	baseURL     string
	http        *http.Client
}

func NewPostmarkSender(cfg config.PostmarkConfig) *PostmarkSender {
	return &PostmarkSender{
		serverToken: cfg.ServerToken,
		fromAddress: cfg.FromAddress,
		baseURL:     postmarkAPIBase,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	TextBody string `json:"TextBody"`
}

func (s *PostmarkSender) SendEmail(ctx context.Context, to, subject, text string) error {
	payload, err := json.Marshal(postmarkEmail{
		From:     s.fromAddress,
		To:       to,
		Subject:  subject,
		TextBody: text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/email", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", s.serverToken)

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("postmark returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

var _ EmailSender = (*PostmarkSender)(nil)
