package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cravecart/cravecart-backend/pkg/config"
)

const defaultTimeout = 10 * time.Second

var errServerKeyRequired = errors.New("fcm server key is required")

// Message is a single push payload targeting one device token.
type Message struct {
	Token string            `json:"to"`
	Title string            `json:"-"`
	Body  string            `json:"-"`
	Data  map[string]string `json:"data,omitempty"`
}

type wirePayload struct {
	To           string            `json:"to"`
	Notification wireNotification  `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type wireNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Sender is the push surface services depend on.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client is a thin HTTP client for the FCM legacy send endpoint.
type Client struct {
	endpoint  string
	serverKey string
	http      *http.Client
}

// NewClient validates the config and returns a push client.
func NewClient(cfg config.FCMConfig) (*Client, error) {
	key := strings.TrimSpace(cfg.ServerKey)
	if key == "" {
		return nil, errServerKeyRequired
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = "https://fcm.googleapis.com/fcm/send"
	}
	return &Client{
		endpoint:  endpoint,
		serverKey: key,
		http:      &http.Client{Timeout: defaultTimeout},
	}, nil
}

// Send delivers one push message. Callers treat failures as best effort.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.Token) == "" {
		return errors.New("device token is required")
	}

	payload := wirePayload{
		To:           msg.Token,
		Notification: wireNotification{Title: msg.Title, Body: msg.Body},
		Data:         msg.Data,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding fcm payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building fcm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending fcm push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("fcm push failed with status %d", resp.StatusCode)
	}
	return nil
}
