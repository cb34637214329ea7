package fhe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	dErrors "github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain-errors"
)

// Client is the HTTP implementation of Gateway. The engine exposes a small
// JSON API; handles travel base64-encoded and are never interpreted here.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.http = c
	}
}

// NewClient builds a gateway client against the engine's base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	cl := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		tracer:  otel.Tracer("fhe/gateway"),
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

type submitRequest struct {
	Batch []string `json:"batch"`
	Tag   string   `json:"tag,omitempty"`
}

type submitResponse struct {
	RequestID string `json:"request_id"`
}

type verifyRequest struct {
	RequestID string `json:"request_id"`
	Payload   string `json:"payload"`
	Proof     string `json:"proof"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

type binaryOpRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

type scalarRequest struct {
	Value uint64 `json:"value"`
}

type handleResponse struct {
	Handle string `json:"handle"`
}

func encodeBatch(batch []Handle) []string {
	out := make([]string, len(batch))
	for i, h := range batch {
		out[i] = base64.StdEncoding.EncodeToString(h.Bytes())
	}
	return out
}

func (c *Client) SubmitComputation(ctx context.Context, batch []Handle, tag OperationTag) (domain.RequestID, error) {
	ctx, span := c.tracer.Start(ctx, "gateway.SubmitComputation",
		trace.WithAttributes(
			attribute.String("tag", string(tag)),
			attribute.Int("batch_size", len(batch)),
		))
	defer span.End()

	var resp submitResponse
	if err := c.post(ctx, "/v1/compute", submitRequest{Batch: encodeBatch(batch), Tag: string(tag)}, &resp); err != nil {
		return "", err
	}
	return domain.RequestID(resp.RequestID), nil
}

func (c *Client) SubmitDecryption(ctx context.Context, batch []Handle) (domain.RequestID, error) {
	ctx, span := c.tracer.Start(ctx, "gateway.SubmitDecryption",
		trace.WithAttributes(attribute.Int("batch_size", len(batch))))
	defer span.End()

	var resp submitResponse
	if err := c.post(ctx, "/v1/decrypt", submitRequest{Batch: encodeBatch(batch)}, &resp); err != nil {
		return "", err
	}
	return domain.RequestID(resp.RequestID), nil
}

// VerifyProof fails closed: any transport or decode error counts as an
// unverified proof at the caller.
func (c *Client) VerifyProof(ctx context.Context, requestID domain.RequestID, payload, proof []byte) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "gateway.VerifyProof",
		trace.WithAttributes(attribute.String("request_id", string(requestID))))
	defer span.End()

	req := verifyRequest{
		RequestID: string(requestID),
		Payload:   base64.StdEncoding.EncodeToString(payload),
		Proof:     base64.StdEncoding.EncodeToString(proof),
	}
	var resp verifyResponse
	if err := c.post(ctx, "/v1/verify", req, &resp); err != nil {
		return false, err
	}
	return resp.Valid, nil
}

func (c *Client) Add(ctx context.Context, a, b Handle) (Handle, error) {
	return c.binaryOp(ctx, "/v1/add", a, b)
}

func (c *Client) GreaterThan(ctx context.Context, a, b Handle) (Handle, error) {
	return c.binaryOp(ctx, "/v1/gt", a, b)
}

func (c *Client) EncryptScalar(ctx context.Context, value uint64) (Handle, error) {
	var resp handleResponse
	if err := c.post(ctx, "/v1/trivial-encrypt", scalarRequest{Value: value}, &resp); err != nil {
		return Handle{}, err
	}
	return decodeHandle(resp.Handle)
}

func (c *Client) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (c *Client) binaryOp(ctx context.Context, path string, a, b Handle) (Handle, error) {
	req := binaryOpRequest{
		A: base64.StdEncoding.EncodeToString(a.Bytes()),
		B: base64.StdEncoding.EncodeToString(b.Bytes()),
	}
	var resp handleResponse
	if err := c.post(ctx, path, req, &resp); err != nil {
		return Handle{}, err
	}
	return decodeHandle(resp.Handle)
}

func decodeHandle(s string) (Handle, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Handle{}, dErrors.Wrap(err, dErrors.CodeInternal, "gateway returned a malformed handle")
	}
	return NewHandle(raw), nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode gateway request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "build gateway request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "computation gateway unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return dErrors.New(dErrors.CodeUnavailable, fmt.Sprintf("computation gateway returned %d for %s", resp.StatusCode, path))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "decode gateway response")
	}
	return nil
}
