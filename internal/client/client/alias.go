package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/factshare/internal/common"
)

// Alias is a minted short link as reported by the registry.
type Alias struct {
	Slug      string
	ExpiresAt time.Time
}

// AliasClient talks to the alias registry.
type AliasClient interface {
	MintAlias(ctx context.Context, token string) (Alias, error)
	ResolveSlug(ctx context.Context, slug string) (string, error)
}

type aliasResponse struct {
	OK        bool      `json:"ok"`
	Slug      string    `json:"slug,omitempty"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
	Message   string    `json:"message,omitempty"`
}

// HTTPAliasClient is the JSON-over-HTTP AliasClient.
type HTTPAliasClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPAliasClient(baseURL string, timeout time.Duration) *HTTPAliasClient {
	return &HTTPAliasClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPAliasClient) MintAlias(ctx context.Context, token string) (Alias, error) {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return Alias{}, err
	}
	resp, err := c.do(ctx, http.MethodPost, c.baseURL+common.AliasAPIPath, bytes.NewReader(body))
	if err != nil {
		return Alias{}, err
	}
	return Alias{Slug: resp.Slug, ExpiresAt: resp.ExpiresAt}, nil
}

func (c *HTTPAliasClient) ResolveSlug(ctx context.Context, slug string) (string, error) {
	q := url.Values{}
	q.Set(common.SlugParam, slug)
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+common.AliasAPIPath+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *HTTPAliasClient) do(ctx context.Context, method, endpoint string, body io.Reader) (*aliasResponse, error) {
	if c.baseURL == "" {
		return nil, ErrNoServer
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
	}
	defer res.Body.Close()

	var out aliasResponse
	decodeErr := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&out)

	if res.StatusCode != http.StatusOK || !out.OK {
		return nil, statusError(res.StatusCode, out.Message)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: bad response: %v", common.ErrorInternal, decodeErr)
	}
	return &out, nil
}

func statusError(code int, msg string) error {
	if msg == "" {
		msg = http.StatusText(code)
	}
	switch code {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, msg)
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", common.ErrorUnavailable, msg)
	default:
		return fmt.Errorf("%w: %d %s", common.ErrorInternal, code, msg)
	}
}
