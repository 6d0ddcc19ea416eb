package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/allocator"
	"github.com/viant/procsim/service/dao"
)

// Client calls a remote simulator; error statuses map back onto
// process.ErrInvalidArgument, dao.ErrNotFound and allocator.ErrOutOfMemory
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL, e.g. http://localhost:8080.
// A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// CreateProcess creates a remote process and returns its id
func (c *Client) CreateProcess(ctx context.Context, spec process.Spec) (int, error) {
	body, err := json.Marshal(spec)
	if err != nil {
		return 0, err
	}
	response := PIDResponse{}
	if err = c.do(ctx, http.MethodPost, "/v1/processes", bytes.NewReader(body), http.StatusCreated, &response); err != nil {
		return 0, err
	}
	return response.PID, nil
}

// KillProcess kills a remote process
func (c *Client) KillProcess(ctx context.Context, pid int) error {
	return c.do(ctx, http.MethodDelete, "/v1/processes/"+strconv.Itoa(pid), nil, http.StatusOK, nil)
}

// ListProcesses lists remote processes, optionally filtered by state
func (c *Client) ListProcesses(ctx context.Context, states ...process.State) ([]process.Summary, error) {
	path := "/v1/processes"
	if len(states) > 0 {
		query := url.Values{}
		for _, state := range states {
			query.Add("state", state.String())
		}
		path += "?" + query.Encode()
	}
	var ret []process.Summary
	err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &ret)
	return ret, err
}

// MemoryStatus returns remote memory usage
func (c *Client) MemoryStatus(ctx context.Context) (allocator.Status, error) {
	ret := allocator.Status{}
	err := c.do(ctx, http.MethodGet, "/v1/memory", nil, http.StatusOK, &ret)
	return ret, err
}

// Stats returns remote scheduling counters
func (c *Client) Stats(ctx context.Context) (progress.Counters, error) {
	ret := progress.Counters{}
	err := c.do(ctx, http.MethodGet, "/v1/stats", nil, http.StatusOK, &ret)
	return ret, err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, expect int, out interface{}) error {
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("failed to call %v %v: %w", method, path, err)
	}
	defer func() {
		_ = response.Body.Close()
	}()
	if response.StatusCode != expect {
		return statusError(response)
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %v %v response: %w", method, path, err)
	}
	return nil
}

func statusError(response *http.Response) error {
	message := http.StatusText(response.StatusCode)
	failure := ErrorResponse{}
	if err := json.NewDecoder(response.Body).Decode(&failure); err == nil && failure.Error != "" {
		message = failure.Error
	}
	switch response.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %v", process.ErrInvalidArgument, message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", dao.ErrNotFound, message)
	case http.StatusInsufficientStorage:
		return fmt.Errorf("%w: %v", allocator.ErrOutOfMemory, message)
	}
	return fmt.Errorf("unexpected status %d: %v", response.StatusCode, message)
}
