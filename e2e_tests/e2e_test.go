//go:build e2e

// Package e2etests drives a running API over HTTP. Start the stack with
// USE_MOCK_PAYMENTS=true and MOCK_FAILURE_RATE=0.5 so that the decline
// scenarios are deterministic, then run:
//
//	go test -tags e2e ./e2e_tests/...
package e2etests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	defaultBaseURL = "http://localhost:8080"
	timeout        = 5 * time.Second
	waitReady      = 20 * time.Second
)

var httpClient = &http.Client{Timeout: timeout}

func baseURL() string {
	if u := os.Getenv("E2E_BASE_URL"); u != "" {
		return u
	}

	return defaultBaseURL
}

// approvedPlayer returns a fresh player id the simulated strategy approves
// for any failure rate below 1; declinedPlayer one it declines for any rate
// above 0.
func approvedPlayer() string {
	id := uuid.New()
	id[0] = 0xff

	return id.String()
}

func declinedPlayer() string {
	id := uuid.New()
	id[0] = 0x00

	return id.String()
}

func TestE2E_PurchaseFlow(t *testing.T) {
	waitUntilReady(t)

	player := approvedPlayer()

	var txIDs []string

	t.Run("purchase_completes", func(t *testing.T) {
		for i := range 3 {
			code, body := postPurchase(t, purchaseBody(player, fmt.Sprintf("potion_%03d", i), 250, 2))
			require.Equal(t, http.StatusCreated, code, body)

			var receipt map[string]any
			require.NoError(t, json.Unmarshal([]byte(body), &receipt))
			require.Equal(t, "completed", receipt["status"])
			require.EqualValues(t, 500, receipt["payment"].(map[string]any)["amount_cents"])

			txIDs = append(txIDs, receipt["transaction_id"].(string))
		}
	})

	t.Run("history_newest_first_with_cursor", func(t *testing.T) {
		code, body := get(t, "/transactions/"+player+"?limit=2")
		require.Equal(t, http.StatusOK, code, body)

		var page struct {
			Transactions []struct {
				TransactionID string `json:"transaction_id"`
			} `json:"transactions"`
			Count      int     `json:"count"`
			NextCursor *string `json:"next_cursor"`
		}

		require.NoError(t, json.Unmarshal([]byte(body), &page))
		require.Equal(t, 2, page.Count)
		require.Equal(t, txIDs[2], page.Transactions[0].TransactionID)
		require.Equal(t, txIDs[1], page.Transactions[1].TransactionID)
		require.NotNil(t, page.NextCursor)

		code, body = get(t, "/transactions/"+player+"?limit=2&cursor="+*page.NextCursor)
		require.Equal(t, http.StatusOK, code, body)

		page.NextCursor = nil
		require.NoError(t, json.Unmarshal([]byte(body), &page))
		require.Equal(t, 1, page.Count)
		require.Equal(t, txIDs[0], page.Transactions[0].TransactionID)
		require.Nil(t, page.NextCursor)
	})

	t.Run("single_transaction", func(t *testing.T) {
		code, body := get(t, "/transactions/"+player+"/"+txIDs[0])
		require.Equal(t, http.StatusOK, code, body)

		code, _ = get(t, "/transactions/"+approvedPlayer()+"/"+txIDs[0])
		require.Equal(t, http.StatusNotFound, code)
	})
}

func TestE2E_DeclineAndValidation(t *testing.T) {
	waitUntilReady(t)

	t.Run("declined_purchase_is_402_and_failed", func(t *testing.T) {
		player := declinedPlayer()

		code, body := postPurchase(t, purchaseBody(player, "sword_001", 999, 1))
		require.Equal(t, http.StatusPaymentRequired, code, body)

		var resp map[string]any
		require.NoError(t, json.Unmarshal([]byte(body), &resp))
		require.Equal(t, "failed", resp["status"])
		require.NotEmpty(t, resp["decline_code"])

		code, body = get(t, "/transactions/"+player)
		require.Equal(t, http.StatusOK, code, body)
		require.Contains(t, body, `"status":"failed"`)
	})

	t.Run("validation_errors", func(t *testing.T) {
		player := approvedPlayer()

		for name, body := range map[string]string{
			"zero_price":     purchaseBody(player, "x", 0, 1),
			"quantity_101":   purchaseBody(player, "x", 10, 101),
			"bad_player":     purchaseBody("player-1", "x", 10, 1),
			"malformed_json": `{"player_id":`,
		} {
			code, resp := postPurchase(t, body)
			require.Equal(t, http.StatusBadRequest, code, "%s: %s", name, resp)
		}

		code, body := get(t, "/transactions/"+player)
		require.Equal(t, http.StatusOK, code)
		require.Contains(t, body, `"count":0`)
	})

	t.Run("invalid_query", func(t *testing.T) {
		code, _ := get(t, "/transactions/not-a-uuid")
		require.Equal(t, http.StatusBadRequest, code)

		code, _ = get(t, "/transactions/"+approvedPlayer()+"?limit=abc")
		require.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("preflight", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, baseURL()+"/purchase", nil)
		require.NoError(t, err)

		resp, err := httpClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	})
}

/* -------------------- helpers -------------------- */

func purchaseBody(player, item string, priceCents int64, quantity int) string {
	b, _ := json.Marshal(map[string]any{
		"player_id":   player,
		"item_id":     item,
		"item_name":   "E2E " + item,
		"price_cents": priceCents,
		"currency":    "USD",
		"quantity":    quantity,
		"metadata":    map[string]any{"source": "e2e"},
	})

	return string(b)
}

func postPurchase(t *testing.T, body string) (int, string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, baseURL()+"/purchase", bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	return do(t, req)
}

func get(t *testing.T, path string) (int, string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, baseURL()+path, nil)
	require.NoError(t, err)

	return do(t, req)
}

func do(t *testing.T, req *http.Request) (int, string) {
	t.Helper()

	resp, err := httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(b)
}

// waitUntilReady polls GET /health until it answers 200 and skips the suite
// when the API is not running on the simulated strategy.
func waitUntilReady(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), waitReady)
	defer cancel()

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("service not ready at %s within %s", baseURL(), waitReady)
		case <-tick.C:
			req, _ := http.NewRequestWithContext(ctx, http.MethodGet, baseURL()+"/health", nil)

			resp, err := httpClient.Do(req)
			if err != nil {
				continue
			}

			var health struct {
				PaymentStrategy string `json:"payment_strategy"`
			}

			_ = json.NewDecoder(resp.Body).Decode(&health)
			_ = resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				continue
			}

			if health.PaymentStrategy != "mock" {
				t.Skipf("API runs the %q payment strategy; e2e needs USE_MOCK_PAYMENTS=true", health.PaymentStrategy)
			}

			return
		}
	}
}
