package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alphasec-dex/alphasec-go/pkg/sign"
)

var (
	// ErrReadOnly marks write operations attempted without a signer.
	ErrReadOnly = errors.New("api: client is read-only, no signer configured")
	// ErrBadResponse marks answers the client could not decode.
	ErrBadResponse = errors.New("api: malformed response")
	// ErrRequestRejected marks answers with a non-success code.
	ErrRequestRejected = errors.New("api: request rejected")
)

// Client talks to the exchange REST gateway. It is read-only when built
// without a signer. Token metadata is cached after the first lookup and
// refreshed on demand with RefreshTokens.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
	signer  *sign.Signer

	mu            sync.RWMutex
	tokenIDSymbol map[string]string
	symbolTokenID map[string]string
	tokenIDAddr   map[string]string
}

// NewClient builds a client for baseURL. signer may be nil for a read-only
// client. A zero timeout means no request timeout.
func NewClient(baseURL string, timeout time.Duration, signer *sign.Signer, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     logger,
		signer:  signer,
	}
}

// ReadOnly reports whether the client was built without a signer.
func (c *Client) ReadOnly() bool {
	return c.signer == nil
}

// apiResponse is the gateway's uniform answer envelope.
type apiResponse struct {
	Code   int             `json:"code"`
	Result json.RawMessage `json:"result"`
	Msg    string          `json:"msg"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*apiResponse, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var out apiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadResponse, truncate(raw))
	}
	return &out, nil
}

// get performs a GET and decodes the result field into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if resp.Code != http.StatusOK {
		return fmt.Errorf("%w: GET %s: code %d: %s", ErrRequestRejected, path, resp.Code, resp.Msg)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}

// postChecked performs a POST and fails unless the gateway answered with a
// success code.
func (c *Client) postChecked(ctx context.Context, path string, body any) error {
	resp, err := c.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	if resp.Code != http.StatusOK {
		c.log.Warn("request rejected",
			zap.String("path", path),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("%w: POST %s: code %d: %s", ErrRequestRejected, path, resp.Code, resp.Msg)
	}
	return nil
}

func truncate(raw []byte) string {
	const max = 256
	if len(raw) > max {
		return string(raw[:max]) + "..."
	}
	return string(raw)
}

func nowMilli() int64 {
	return time.Now().UnixMilli()
}
