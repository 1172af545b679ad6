// Package mint is the REST client for the conditional-token endpoints of a
// Cashu mint.
package mint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/alanyoungcy/seedconditions/internal/domain"
)

// Client registers conditions and partitions with a mint. It never retries:
// each call either fully succeeds or reports exactly one error.
type Client struct {
	baseURL string
	http    *resty.Client
}

// NewClient creates a client for the mint at baseURL, e.g.
// "http://mintd:8085". No client-side timeout is set; the transport default
// applies.
func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		baseURL: baseURL,
		http: resty.New().
			SetBaseURL(baseURL).
			SetRetryCount(0).
			SetHeader("Accept", "application/json"),
	}
}

// BaseURL returns the mint root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RegisterCondition registers a payout condition and returns the
// mint-assigned condition id.
func (c *Client) RegisterCondition(ctx context.Context, req domain.RegisterConditionRequest) (string, error) {
	body, err := c.post(ctx, domain.StageCondition, "/v1/conditions", req)
	if err != nil {
		return "", err
	}

	var resp registerConditionResponse
	if err := decode(body, &resp); err != nil {
		return "", fmt.Errorf("mint: register condition: %w", err)
	}
	if resp.ConditionID == "" {
		return "", fmt.Errorf("mint: register condition: %w: missing condition_id", domain.ErrDecode)
	}
	return resp.ConditionID, nil
}

// RegisterPartition registers a collateral partition against an existing
// condition and returns the keyset issued for each outcome.
func (c *Client) RegisterPartition(ctx context.Context, conditionID string, req domain.RegisterPartitionRequest) (domain.Keysets, error) {
	path := fmt.Sprintf("/v1/conditions/%s/partitions", url.PathEscape(conditionID))
	body, err := c.post(ctx, domain.StagePartition, path, req)
	if err != nil {
		return nil, err
	}

	var resp registerPartitionResponse
	if err := decode(body, &resp); err != nil {
		return nil, fmt.Errorf("mint: register partition %s: %w", conditionID, err)
	}
	if resp.Keysets == nil {
		return nil, fmt.Errorf("mint: register partition %s: %w: missing keysets", conditionID, domain.ErrDecode)
	}
	return resp.Keysets, nil
}

// post sends a JSON body and returns the raw response body of a 2xx answer.
// A non-2xx answer becomes *domain.RegistrationError.
func (c *Client) post(ctx context.Context, stage domain.Stage, path string, reqBody any) ([]byte, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("mint: register %s: %w: marshal request: %v", stage, domain.ErrTransport, err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("mint: register %s: %w", stage, ctxErr)
		}
		return nil, fmt.Errorf("mint: register %s: %w: %v", stage, domain.ErrTransport, err)
	}

	if !resp.IsSuccess() {
		return nil, &domain.RegistrationError{
			Stage:  stage,
			Status: resp.StatusCode(),
			Body:   string(resp.Body()),
		}
	}
	return resp.Body(), nil
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	return nil
}

var _ domain.Mint = (*Client)(nil)
