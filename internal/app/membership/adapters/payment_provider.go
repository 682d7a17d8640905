package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/complypoint/membership-billing/internal/app/membership/contracts"
	"github.com/complypoint/membership-billing/internal/app/membership/domain"
)

var _ contracts.PaymentProvider = (*HTTPPaymentProvider)(nil)

// DefaultProviderTimeout bounds every provider call; a timeout surfaces as a
// ProviderError like any other transport failure.
const DefaultProviderTimeout = 10 * time.Second

// HTTPPaymentProvider implements the payment provider interface over HTTP
type HTTPPaymentProvider struct {
	client  *http.Client
	baseURL string
}

// NewHTTPPaymentProvider creates a new HTTP payment provider client. If the
// supplied client has no timeout, DefaultProviderTimeout is applied.
func NewHTTPPaymentProvider(client *http.Client, baseURL string) *HTTPPaymentProvider {
	if client == nil {
		client = &http.Client{}
	}
	if client.Timeout == 0 {
		client.Timeout = DefaultProviderTimeout
	}
	return &HTTPPaymentProvider{
		client:  client,
		baseURL: baseURL,
	}
}

// ScheduleCancellation asks the provider to terminate the subscription at
// the end of the current paid period.
func (p *HTTPPaymentProvider) ScheduleCancellation(ctx context.Context, externalSubscriptionID string) error {
	url := fmt.Sprintf("%s/subscriptions/%s/cancel_at_period_end", p.baseURL, externalSubscriptionID)
	return p.call(ctx, http.MethodPost, url, "schedule cancellation")
}

// RemoveScheduledCancellation asks the provider to drop a pending
// cancel-at-period-end so the subscription renews again.
func (p *HTTPPaymentProvider) RemoveScheduledCancellation(ctx context.Context, externalSubscriptionID string) error {
	url := fmt.Sprintf("%s/subscriptions/%s/cancel_at_period_end", p.baseURL, externalSubscriptionID)
	return p.call(ctx, http.MethodDelete, url, "remove scheduled cancellation")
}

func (p *HTTPPaymentProvider) call(ctx context.Context, method, url, op string) error {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return &domain.ProviderError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return &domain.ProviderError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &domain.ProviderError{
			Op:  op,
			Err: fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body)),
		}
	}

	return nil
}
