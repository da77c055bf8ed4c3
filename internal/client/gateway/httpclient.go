package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oranmed/candidat/internal/client/models"
	"github.com/oranmed/candidat/internal/common"
	"github.com/oranmed/candidat/internal/logging"
)

// HTTPClient is the concrete Client over net/http.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     logging.Logger
}

// NewHTTPClient builds a client for the API at baseURL (e.g.
// "http://localhost:5000/api"). Every request carries a correlation id and,
// when tokens yields one, the bearer credential.
func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenSource, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
}

// authResponse is the envelope shared by all auth endpoints; absent fields
// stay zero.
type authResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type resendRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *HTTPClient) Register(ctx context.Context, profile models.RegistrationProfile) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/register", profile)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *HTTPClient) VerifyEmail(ctx context.Context, email, code string) (string, *models.User, string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/verify-email", verifyRequest{Email: email, Code: code})
	if err != nil {
		return "", nil, "", err
	}
	return resp.Token, resp.User, resp.Message, nil
}

func (c *HTTPClient) ResendVerification(ctx context.Context, email string) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/resend-verification", resendRequest{Email: email})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, *models.User, string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password})
	if err != nil {
		return "", nil, "", err
	}
	return resp.Token, resp.User, resp.Message, nil
}

func (c *HTTPClient) GetProfile(ctx context.Context) (*models.User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &ServerError{Status: http.StatusOK, Message: "empty profile response"}
	}
	return resp.User, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// do issues one request and decodes the shared envelope. Transport failures
// wrap ErrUnavailable; non-2xx answers become *ServerError.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (*authResponse, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debug(ctx, "api request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "api transport failure", "path", path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.log.Debug(ctx, "api response", "path", path, "request_id", requestID, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		srvErr := &ServerError{Status: resp.StatusCode}
		var payload authResponse
		if json.Unmarshal(data, &payload) == nil {
			srvErr.Message = payload.Message
		}
		return nil, srvErr
	}

	var payload authResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &payload, nil
}
