package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pg-sharding/shardbench/pkg/placement"
)

//go:generate mockgen -source=pkg/storeclient/client.go -destination=pkg/mock/storeclient/client_mock.go -package=mock_storeclient

const (
	InitPath  = "/init"
	WritePath = "/write"
	ReadPath  = "/read"

	maxErrorBody = 64 << 10
)

type WriteRequest struct {
	StudID    int    `json:"Stud_id"`
	StudName  string `json:"Stud_name"`
	StudMarks string `json:"Stud_marks"`
}

type IDRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// ReadRequest asks for the records with ids in [Low, High).
type ReadRequest struct {
	StudID IDRange `json:"Stud_id"`
}

// Client is the narrow view of the sharded store the benchmark needs.
type Client interface {
	Init(ctx context.Context, req *placement.InitRequest) error
	Write(ctx context.Context, req *WriteRequest) error
	Read(ctx context.Context, req *ReadRequest) error
	Probe(ctx context.Context, path string) error
}

// StatusError is returned for any non-success response.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.Code, e.Body)
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

var _ Client = &HTTPClient{}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) Init(ctx context.Context, req *placement.InitRequest) error {
	return c.postJSON(ctx, InitPath, req)
}

func (c *HTTPClient) Write(ctx context.Context, req *WriteRequest) error {
	return c.postJSON(ctx, WritePath, req)
}

func (c *HTTPClient) Read(ctx context.Context, req *ReadRequest) error {
	return c.postJSON(ctx, ReadPath, req)
}

// Probe issues a GET and succeeds only on 200.
func (c *HTTPClient) Probe(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, path)
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, body any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path)
}

func (c *HTTPClient) do(req *http.Request, path string) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Endpoint: path,
			Code:     resp.StatusCode,
			Body:     strings.TrimSpace(string(data)),
		}
	}
	// drain for keep-alive
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
