package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrNotVerified = errors.New("payment not verified")

// 決済が期待どおりか確かめるための値
type Expectation struct {
	Reference   string
	AmountMinor int64
	Currency    string
}

// Paystack の /transaction/verify を叩く
type PaystackGateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewPaystackGateway(baseURL, secretKey string, timeout time.Duration) *PaystackGateway {
	return &PaystackGateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
	}
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
	} `json:"data"`
}

// 成功・金額一致・通貨一致のときだけ nil
func (g *PaystackGateway) Verify(ctx context.Context, exp Expectation) error {
	if strings.TrimSpace(exp.Reference) == "" {
		return fmt.Errorf("%w: empty reference", ErrNotVerified)
	}

	endpoint := g.baseURL + "/transaction/verify/" + url.PathEscape(exp.Reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Accept", "application/json")

	res, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("verify request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound || res.StatusCode == http.StatusBadRequest {
		return fmt.Errorf("%w: status %d", ErrNotVerified, res.StatusCode)
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("verify request: unexpected status %d", res.StatusCode)
	}

	var body verifyResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return fmt.Errorf("verify decode: %w", err)
	}

	switch {
	case !body.Status || body.Data.Status != "success":
		return fmt.Errorf("%w: %s", ErrNotVerified, body.Data.Status)
	case body.Data.Reference != exp.Reference:
		return fmt.Errorf("%w: reference mismatch", ErrNotVerified)
	case body.Data.Amount != exp.AmountMinor:
		return fmt.Errorf("%w: amount %d != %d", ErrNotVerified, body.Data.Amount, exp.AmountMinor)
	case !strings.EqualFold(body.Data.Currency, exp.Currency):
		return fmt.Errorf("%w: currency %s != %s", ErrNotVerified, body.Data.Currency, exp.Currency)
	}
	return nil
}

// 開発用。参照が空でなければ通す
type MockGateway struct{}

func (MockGateway) Verify(ctx context.Context, exp Expectation) error {
	if strings.TrimSpace(exp.Reference) == "" {
		return fmt.Errorf("%w: empty reference", ErrNotVerified)
	}
	return nil
}
