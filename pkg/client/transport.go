package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/deividlukks/Fayol-sub007/pkg/httputil"
	"github.com/deividlukks/Fayol-sub007/pkg/transport"
)

// HeaderRequestID carries the per-chain request identifier.
const HeaderRequestID = "X-Request-ID"

// maxResponseBody bounds how much of a response body is read.
const maxResponseBody = 10 << 20

// attemptResult is the raw outcome of one dispatch.
type attemptResult struct {
	status int
	header http.Header
	body   []byte
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		return data, nil
	}
}

// dispatch issues a single attempt. A non-nil error means no response was
// received.
func (c *Client) dispatch(ctx context.Context, req *Request, payload []byte, token, requestID string) (*attemptResult, error) {
	target, err := transport.JoinURL(c.cfg.BaseURL, pathOnly(req.Path))
	if err != nil {
		return nil, err
	}
	if q := req.query(); len(q) > 0 {
		target += "?" + q.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(HeaderRequestID, requestID)
	httputil.SetBearer(httpReq.Header, token)
	for k, vs := range req.Header {
		for i, v := range vs {
			if i == 0 {
				httpReq.Header.Set(k, v)
			} else {
				httpReq.Header.Add(k, v)
			}
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &attemptResult{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

func pathOnly(p string) string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		return p[:i]
	}
	return p
}
