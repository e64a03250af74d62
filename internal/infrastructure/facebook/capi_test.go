package facebook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"evalue-storefront/internal/domain"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder() domain.PlacedOrder {
	return domain.PlacedOrder{
		OrderID: "order-1",
		UserID:  "u1",
		Email:   "Jane@Example.com",
		Products: []domain.Product{
			{ID: "a", Price: "30"},
			{ID: "b", Price: "call us"},
		},
		Summary:  domain.OrderSummary{Items: 2, ItemsPrice: 30, DeliveryPrice: 10, Total: 40},
		PlacedAt: time.Unix(1700000000, 0),
	}
}

func TestHashSHA256(t *testing.T) {
	assert.Empty(t, HashSHA256(""))
	assert.Equal(t, HashSHA256("jane@example.com"), HashSHA256("  JANE@example.com "))
	assert.Len(t, HashSHA256("x"), 64)
}

func TestNewCAPIClient_Disabled(t *testing.T) {
	c := NewCAPIClient("", "token", "v19.0", "USD")
	assert.Nil(t, c)
	assert.NoError(t, c.SendEvent(context.Background(), Event{}))
	c.OrderPlaced(context.Background(), testOrder())
}

func TestPurchaseEvent(t *testing.T) {
	c := NewCAPIClient("pixel", "token", "v19.0", "EUR")
	ev := c.PurchaseEvent(testOrder())

	assert.Equal(t, "Purchase", ev.EventName)
	assert.Equal(t, int64(1700000000), ev.EventTime)
	assert.Equal(t, "order-1", ev.EventID)
	assert.Equal(t, HashSHA256("jane@example.com"), ev.UserData.Email)
	assert.Equal(t, "EUR", ev.CustomData.Currency)
	assert.Equal(t, 40.0, ev.CustomData.Value)
	assert.Equal(t, []string{"a", "b"}, ev.CustomData.ContentIDs)
	assert.Equal(t, 30.0, ev.CustomData.Contents[0].Price)
	assert.Zero(t, ev.CustomData.Contents[1].Price)
}

func TestSendEvent_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v19.0/pixel/events", r.URL.Path)
		assert.Equal(t, "tok en", r.URL.Query().Get("access_token"))

		body, _ := io.ReadAll(r.Body)
		var payload EventPayload
		assert.NoError(t, json.Unmarshal(body, &payload))
		assert.Len(t, payload.Data, 1)

		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewCAPIClient("pixel", "tok en", "v19.0", "USD").WithEndpoint(srv.URL+"/", time.Millisecond)
	require.NoError(t, c.SendEvent(context.Background(), c.PurchaseEvent(testOrder())))
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendEvent_DoesNotRetryBadRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"invalid parameter"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewCAPIClient("pixel", "token", "v19.0", "USD").WithEndpoint(srv.URL, time.Millisecond)
	err := c.SendEvent(context.Background(), Event{EventName: "Purchase"})
	assert.ErrorContains(t, err, "status 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestOrderPlaced_SendsInBackground(t *testing.T) {
	got := make(chan EventPayload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload EventPayload
		_ = json.NewDecoder(r.Body).Decode(&payload)
		got <- payload
	}))
	defer srv.Close()

	c := NewCAPIClient("pixel", "token", "v19.0", "USD").WithEndpoint(srv.URL, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	c.OrderPlaced(ctx, testOrder())
	cancel()

	select {
	case payload := <-got:
		require.Len(t, payload.Data, 1)
		assert.Equal(t, "order-1", payload.Data[0].CustomData.OrderID)
	case <-time.After(5 * time.Second):
		t.Fatal("purchase event was not sent")
	}
}
