// Package facebook reports placed orders to the Facebook Conversions API.
package facebook

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"evalue-storefront/internal/domain"
	"evalue-storefront/pkg/logger"

	"github.com/goccy/go-json"
)

const (
	defaultBaseURL = "https://graph.facebook.com"
	maxAttempts    = 3
)

// HashSHA256 returns the hex SHA256 of the trimmed, lowercased input.
func HashSHA256(input string) string {
	if input == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(input))))
	return hex.EncodeToString(hash[:])
}

type CAPIClient struct {
	pixelID     string
	accessToken string
	apiVersion  string
	currency    string
	baseURL     string
	backoff     time.Duration
	httpClient  *http.Client
}

// NewCAPIClient returns nil when the pixel is not configured; a nil client
// accepts and drops every event.
func NewCAPIClient(pixelID, accessToken, apiVersion, currency string) *CAPIClient {
	if pixelID == "" || accessToken == "" {
		logger.Info().Msg("Facebook pixel not configured, conversion events disabled")
		return nil
	}
	return &CAPIClient{
		pixelID:     pixelID,
		accessToken: accessToken,
		apiVersion:  apiVersion,
		currency:    currency,
		baseURL:     defaultBaseURL,
		backoff:     time.Second,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// WithEndpoint points the client at another Graph API host.
func (c *CAPIClient) WithEndpoint(baseURL string, backoff time.Duration) *CAPIClient {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	c.backoff = backoff
	return c
}

type UserData struct {
	Email      string `json:"em,omitempty"` // hashed
	ExternalID string `json:"external_id,omitempty"`
}

type CustomData struct {
	Currency   string        `json:"currency,omitempty"`
	Value      float64       `json:"value,omitempty"`
	ContentIDs []string      `json:"content_ids,omitempty"`
	Contents   []ContentItem `json:"contents,omitempty"`
	NumItems   int           `json:"num_items,omitempty"`
	OrderID    string        `json:"order_id,omitempty"`
}

type ContentItem struct {
	ID       string  `json:"id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"item_price,omitempty"`
}

type Event struct {
	EventName    string     `json:"event_name"`
	EventTime    int64      `json:"event_time"`
	ActionSource string     `json:"action_source"`
	UserData     UserData   `json:"user_data"`
	CustomData   CustomData `json:"custom_data,omitempty"`
	EventID      string     `json:"event_id,omitempty"`
}

type EventPayload struct {
	Data []Event `json:"data"`
}

// SendEvent posts one event, retrying transport failures, 429s and 5xxs.
func (c *CAPIClient) SendEvent(ctx context.Context, event Event) error {
	if c == nil {
		return nil
	}

	body, err := json.Marshal(EventPayload{Data: []Event{event}})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/events?access_token=%s",
		c.baseURL, c.apiVersion, c.pixelID, url.QueryEscape(c.accessToken))

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retry, err := c.post(ctx, endpoint, body)
		if err == nil {
			logger.WithContext(ctx).Debug().Str("event", event.EventName).Str("event_id", event.EventID).Msg("Conversion event sent")
			return nil
		}
		lastErr = err
		if !retry || attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}
	return lastErr
}

func (c *CAPIClient) post(ctx context.Context, endpoint string, body []byte) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, fmt.Errorf("CAPI request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return false, nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	err = fmt.Errorf("CAPI error (status %d): %s", resp.StatusCode, msg)
	// 4xx other than 429 is a payload problem
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500, err
}

// PurchaseEvent builds the Purchase event for a placed order.
func (c *CAPIClient) PurchaseEvent(order domain.PlacedOrder) Event {
	items := make([]ContentItem, 0, len(order.Products))
	ids := make([]string, 0, len(order.Products))
	for _, p := range order.Products {
		item := ContentItem{ID: p.ID, Quantity: 1}
		if v := p.PriceValue(); !math.IsNaN(v) {
			item.Price = v
		}
		items = append(items, item)
		ids = append(ids, p.ID)
	}
	return Event{
		EventName:    "Purchase",
		EventTime:    order.PlacedAt.Unix(),
		ActionSource: "website",
		UserData: UserData{
			Email:      HashSHA256(order.Email),
			ExternalID: HashSHA256(order.UserID),
		},
		CustomData: CustomData{
			Currency:   c.currency,
			Value:      order.Summary.Total,
			OrderID:    order.OrderID,
			Contents:   items,
			NumItems:   len(items),
			ContentIDs: ids,
		},
		EventID: order.OrderID,
	}
}

// OrderPlaced sends the Purchase event in the background so checkout never waits on it.
func (c *CAPIClient) OrderPlaced(ctx context.Context, order domain.PlacedOrder) {
	if c == nil {
		return
	}
	event := c.PurchaseEvent(order)
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := c.SendEvent(ctx, event); err != nil {
			logger.WithContext(ctx).Error().Err(err).Str("order_id", order.OrderID).Msg("Failed to send Purchase event")
		}
	}()
}
