//go:build integration
// +build integration

package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clarity-health/claimrisk/internal/dtos"
)

// HTTPClient represents a test HTTP client with authentication support
type HTTPClient struct {
	BaseURL     string
	AccessToken string
	Client      *http.Client
}

// NewHTTPClient creates a new test HTTP client
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		Client:  &http.Client{},
	}
}

// SetAccessToken sets the access token for authenticated requests
func (c *HTTPClient) SetAccessToken(token string) {
	c.AccessToken = token
}

// makeRequest makes an HTTP request with optional authentication
func (c *HTTPClient) makeRequest(t *testing.T, method, path string, body interface{}, headers map[string]string) (*http.Response, []byte) {
	var reqBody io.Reader

	if body != nil {
		jsonBytes, err := json.Marshal(body)
		require.NoError(t, err, "Failed to marshal request body")
		reqBody = bytes.NewBuffer(jsonBytes)
	}

	url := c.BaseURL + path
	req, err := http.NewRequest(method, url, reqBody)
	require.NoError(t, err, "Failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.Client.Do(req)
	require.NoError(t, err, "Failed to make request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")
	resp.Body.Close()

	return resp, respBody
}

// GET makes a GET request
func (c *HTTPClient) GET(t *testing.T, path string) (*http.Response, []byte) {
	return c.makeRequest(t, "GET", path, nil, nil)
}

// POST makes a POST request
func (c *HTTPClient) POST(t *testing.T, path string, body interface{}) (*http.Response, []byte) {
	return c.makeRequest(t, "POST", path, body, nil)
}

// PUT makes a PUT request
func (c *HTTPClient) PUT(t *testing.T, path string, body interface{}) (*http.Response, []byte) {
	return c.makeRequest(t, "PUT", path, body, nil)
}

// DELETE makes a DELETE request
func (c *HTTPClient) DELETE(t *testing.T, path string) (*http.Response, []byte) {
	return c.makeRequest(t, "DELETE", path, nil, nil)
}

// UploadFile posts fileName/contents as a multipart "file" field, matching
// the form IngestClaimsFile/IngestRemittanceFile expect.
func (c *HTTPClient) UploadFile(t *testing.T, path, fileName string, contents []byte) (*http.Response, []byte) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err, "Failed to create multipart field")
	_, err = part.Write(contents)
	require.NoError(t, err, "Failed to write file contents")
	require.NoError(t, w.Close(), "Failed to close multipart writer")

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, &buf)
	require.NoError(t, err, "Failed to create upload request")
	req.Header.Set("Content-Type", w.FormDataContentType())
	if c.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	}

	resp, err := c.Client.Do(req)
	require.NoError(t, err, "Failed to make upload request")
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read upload response body")
	resp.Body.Close()

	return resp, respBody
}

// TestUser represents a test user for integration tests
type TestUser struct {
	Email    string
	Name     string
	Password string
	Token    string
}

// NewTestUser creates a new test user
func NewTestUser(email, name, password string) *TestUser {
	return &TestUser{
		Email:    email,
		Name:     name,
		Password: password,
	}
}

// Register registers the test user and stores the access token
func (u *TestUser) Register(t *testing.T, client *HTTPClient) {
	reqBody := dtos.RegisterRequestDTO{
		Email:    u.Email,
		Name:     u.Name,
		Password: u.Password,
	}

	resp, body := client.POST(t, "/api/v1/auth/register", reqBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "Registration failed: %s", string(body))

	var tokenResponse dtos.TokenResponseDTO
	err := json.Unmarshal(body, &tokenResponse)
	require.NoError(t, err, "Failed to unmarshal token response")

	u.Token = tokenResponse.AccessToken
	client.SetAccessToken(u.Token)
}

// Login authenticates the test user and stores the access token
func (u *TestUser) Login(t *testing.T, client *HTTPClient) {
	reqBody := dtos.LoginRequestDTO{
		Email:    u.Email,
		Password: u.Password,
	}

	resp, body := client.POST(t, "/api/v1/auth/login", reqBody)
	require.Equal(t, http.StatusOK, resp.StatusCode, "Login failed: %s", string(body))

	var tokenResponse dtos.TokenResponseDTO
	err := json.Unmarshal(body, &tokenResponse)
	require.NoError(t, err, "Failed to unmarshal token response")

	u.Token = tokenResponse.AccessToken
	client.SetAccessToken(u.Token)
}

// IngestClaimsFile uploads an 837 claims file and returns the enqueued job ID.
func (c *HTTPClient) IngestClaimsFile(t *testing.T, fileName string, contents []byte) string {
	resp, body := c.UploadFile(t, "/api/v1/claims/ingest", fileName, contents)
	require.Equal(t, http.StatusAccepted, resp.StatusCode, "Failed to ingest claims file: %s", string(body))

	var accepted struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(body, &accepted), "Failed to unmarshal ingest response")
	return accepted.JobID
}

// IngestRemittanceFile uploads an 835 remittance file and returns the
// enqueued job ID.
func (c *HTTPClient) IngestRemittanceFile(t *testing.T, fileName string, contents []byte) string {
	resp, body := c.UploadFile(t, "/api/v1/remittances/ingest", fileName, contents)
	require.Equal(t, http.StatusAccepted, resp.StatusCode, "Failed to ingest remittance file: %s", string(body))

	var accepted struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(body, &accepted), "Failed to unmarshal ingest response")
	return accepted.JobID
}

// WaitForJob polls GET /jobs/:id until it reaches a terminal state
// ("succeeded" or "failed") or timeout elapses.
func (c *HTTPClient) WaitForJob(t *testing.T, jobID string, timeout time.Duration) map[string]interface{} {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, body := c.GET(t, "/api/v1/jobs/"+jobID)
		if resp.StatusCode == http.StatusOK {
			var record map[string]interface{}
			require.NoError(t, json.Unmarshal(body, &record), "Failed to unmarshal job record")
			if status, ok := record["status"].(string); ok && (status == "succeeded" || status == "failed") {
				return record
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach a terminal state within %s", jobID, timeout)
	return nil
}

// AssertValidationError asserts that the response contains validation errors
func AssertValidationError(t *testing.T, resp *http.Response, body []byte, expectedField string) {
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, "Expected validation error")

	var errorResponse dtos.ValidationErrorResponseDTO
	err := json.Unmarshal(body, &errorResponse)
	require.NoError(t, err, "Failed to unmarshal validation error response")

	require.Equal(t, "validation_error", errorResponse.Error)
	require.Contains(t, errorResponse.Fields, expectedField, "Expected field validation error not found")
}

// AssertErrorResponse asserts that the response contains the expected error
func AssertErrorResponse(t *testing.T, expectedStatus int, expectedError string, resp *http.Response, body []byte) {
	require.Equal(t, expectedStatus, resp.StatusCode, "Unexpected status code")

	var errorResponse dtos.ErrorResponseDTO
	err := json.Unmarshal(body, &errorResponse)
	require.NoError(t, err, "Failed to unmarshal error response")

	require.Equal(t, expectedError, errorResponse.Error)
}

