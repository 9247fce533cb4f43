package endpoint

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

	"github.com/stacklok/dataset-registrar/internal/definitions"
)

const (
	// DefaultTimeout is the default timeout for requests to an administrative endpoint
	DefaultTimeout = 10 * time.Second

	// DefaultProbePath is the path requested when re-checking a banned endpoint
	DefaultProbePath = "/services/rest/server"

	// queryDefinitionsPath is the collection of query definitions on a server instance
	queryDefinitionsPath = "/services/rest/server/queries/definitions/"

	// maxErrorBodySize bounds how much of an error reply ends up in an error message
	maxErrorBodySize = 4 * 1024

	// UserAgent is the user agent string for requests to administrative endpoints
	UserAgent = "dataset-registrar/1.0"
)

// AdminClient registers query definitions on one administrative endpoint
//
//go:generate mockgen -destination=mocks/mock_admin_client.go -package=mocks github.com/stacklok/dataset-registrar/internal/endpoint AdminClient
type AdminClient interface {
	// Endpoint returns the base URL of the endpoint the client talks to
	Endpoint() string

	// ReplaceDefinition creates or replaces a single query definition.
	// Failures are *CommunicationError or *RemoteServiceError; anything else is a defect.
	ReplaceDefinition(ctx context.Context, def definitions.PendingDefinition) error
}

// httpAdminClient implements AdminClient over the server's REST API
type httpAdminClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPAdminClient creates an AdminClient for the endpoint at baseURL.
// If timeout is 0, uses DefaultTimeout.
func NewHTTPAdminClient(baseURL string, timeout time.Duration) AdminClient {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &httpAdminClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *httpAdminClient) Endpoint() string {
	return c.baseURL
}

func (c *httpAdminClient) ReplaceDefinition(ctx context.Context, def definitions.PendingDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal definition %s: %w", def.Name, err)
	}

	target := c.baseURL + queryDefinitionsPath + url.PathEscape(def.Name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// Shutdown is not a communication problem with the endpoint
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &CommunicationError{Endpoint: c.baseURL, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RemoteServiceError{
			Endpoint:   c.baseURL,
			StatusCode: resp.StatusCode,
			Message:    readErrorBody(resp),
		}
	}

	return nil
}

// Probe checks that the endpoint at baseURL answers the probe path with 200
func Probe(ctx context.Context, client *http.Client, baseURL, probePath string) error {
	if probePath == "" {
		probePath = DefaultProbePath
	}
	target := strings.TrimRight(baseURL, "/") + probePath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return &CommunicationError{Endpoint: baseURL, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return &RemoteServiceError{Endpoint: baseURL, StatusCode: resp.StatusCode, Message: resp.Status}
	}
	return nil
}

func readErrorBody(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return resp.Status
	}
	return strings.TrimSpace(string(data))
}
