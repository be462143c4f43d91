package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	GatewayName = "stripe"

	DefaultGatewayURL     = "https://api.stripe.com"
	DefaultGatewayTimeout = 10 * time.Second
	DefaultMaxAmountCents = 99_999_999

	maxResponseBytes = 1 << 20
)

type GatewayConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxAmountCents int64
}

// GatewayStrategy charges through a Stripe-compatible payment intents API.
type GatewayStrategy struct {
	baseURL   string
	apiKey    string
	maxAmount int64
	client    *http.Client
}

var _ Strategy = (*GatewayStrategy)(nil)

type GatewayOption func(*GatewayStrategy)

// WithHTTPClient replaces the HTTP client; its Timeout is left untouched.
func WithHTTPClient(c *http.Client) GatewayOption {
	return func(g *GatewayStrategy) { g.client = c }
}

func NewGateway(cfg GatewayConfig, opts ...GatewayOption) *GatewayStrategy {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGatewayURL
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultGatewayTimeout
	}

	if cfg.MaxAmountCents <= 0 {
		cfg.MaxAmountCents = DefaultMaxAmountCents
	}

	g := &GatewayStrategy{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		maxAmount: cfg.MaxAmountCents,
		client:    &http.Client{Timeout: cfg.Timeout},
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

func (g *GatewayStrategy) Name() string { return GatewayName }

type intentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type gatewayError struct {
	Error struct {
		Type          string `json:"type"`
		Code          string `json:"code"`
		DeclineCode   string `json:"decline_code"`
		Message       string `json:"message"`
		PaymentIntent *struct {
			ID string `json:"id"`
		} `json:"payment_intent"`
	} `json:"error"`
}

func (g *GatewayStrategy) Process(ctx context.Context, req Request) (Result, error) {
	err := g.checkAmount(req.AmountCents)
	if err != nil {
		return Result{}, err
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.AmountCents, 10))
	form.Set("currency", strings.ToLower(req.Currency))
	form.Set("confirm", "true")
	form.Set("metadata[transaction_id]", req.TransactionID.String())
	form.Set("metadata[player_id]", req.PlayerID.String())

	status, body, err := g.post(ctx, "/v1/payment_intents", req.IdempotencyKey, form)
	if err != nil {
		return Result{}, err
	}

	if status == http.StatusOK {
		var intent intentResponse

		err = json.Unmarshal(body, &intent)
		if err != nil {
			return Result{}, fmt.Errorf("%w: decode payment intent: %w", ErrMalformedResponse, err)
		}

		if intent.ID == "" {
			return Result{}, fmt.Errorf("%w: payment intent without id", ErrMalformedResponse)
		}

		switch intent.Status {
		case "succeeded":
			return Approved(intent.ID), nil
		case "requires_payment_method", "canceled":
			return Declined(intent.ID, intent.Status, "payment was not completed"), nil
		default:
			return Result{}, fmt.Errorf("%w: payment intent %s in status %q", ErrGatewayRejected, intent.ID, intent.Status)
		}
	}

	return classifyFailure(status, body)
}

func (g *GatewayStrategy) Refund(ctx context.Context, processorID string, amountCents int64) (Result, error) {
	err := g.checkAmount(amountCents)
	if err != nil {
		return Result{}, err
	}

	form := url.Values{}
	form.Set("payment_intent", processorID)
	form.Set("amount", strconv.FormatInt(amountCents, 10))

	status, body, err := g.post(ctx, "/v1/refunds", "refund_"+processorID, form)
	if err != nil {
		return Result{}, err
	}

	if status == http.StatusOK {
		var refund intentResponse

		err = json.Unmarshal(body, &refund)
		if err != nil {
			return Result{}, fmt.Errorf("%w: decode refund: %w", ErrMalformedResponse, err)
		}

		if refund.ID == "" {
			return Result{}, fmt.Errorf("%w: refund without id", ErrMalformedResponse)
		}

		if refund.Status == "failed" || refund.Status == "canceled" {
			return Declined(refund.ID, "refund_"+refund.Status, "refund was not completed"), nil
		}

		return Approved(refund.ID), nil
	}

	return classifyFailure(status, body)
}

func (g *GatewayStrategy) checkAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d must be positive", ErrInvalidAmount, amount)
	}

	if amount > g.maxAmount {
		return fmt.Errorf("%w: %d exceeds maximum %d", ErrInvalidAmount, amount, g.maxAmount)
	}

	return nil
}

// post returns the status and body of any HTTP response; only transport
// failures are errors.
func (g *GatewayStrategy) post(ctx context.Context, path, idempotencyKey string, form url.Values) (int, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: build request: %w", ErrGatewayRejected, err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read response: %w", ErrGatewayUnavailable, err)
	}

	return resp.StatusCode, body, nil
}

// classifyFailure maps a non-200 response. A card decline is a result, every
// other failure an error.
func classifyFailure(status int, body []byte) (Result, error) {
	if status >= http.StatusInternalServerError || status == http.StatusTooManyRequests {
		return Result{}, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, status)
	}

	var ge gatewayError
	if json.Unmarshal(body, &ge) != nil {
		return Result{}, fmt.Errorf("%w: status %d with undecodable body", ErrMalformedResponse, status)
	}

	if status == http.StatusPaymentRequired && ge.Error.Type == "card_error" {
		return declineResult(ge), nil
	}

	return Result{}, fmt.Errorf("%w: status %d: %s", ErrGatewayRejected, status, ge.Error.Message)
}

func declineResult(ge gatewayError) Result {
	var ref string
	if ge.Error.PaymentIntent != nil {
		ref = ge.Error.PaymentIntent.ID
	}

	code := ge.Error.DeclineCode
	if code == "" {
		code = ge.Error.Code
	}

	if code == "" {
		code = "card_declined"
	}

	return Declined(ref, code, ge.Error.Message)
}
