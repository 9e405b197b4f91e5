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

	"github.com/dmitrijs2005/dailyreflect/internal/common"
	"github.com/dmitrijs2005/dailyreflect/internal/models"
)

// HTTPClient implements Client over the server's JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	User         models.User `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", "", nil, nil)
}

func (c *HTTPClient) SignUp(ctx context.Context, email string, password []byte) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", credentials{Email: email, Password: string(password)}, &u)
	return u, err
}

func (c *HTTPClient) SignIn(ctx context.Context, email string, password []byte) (models.Session, error) {
	return c.token(ctx, "password", credentials{Email: email, Password: string(password)})
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (models.Session, error) {
	body := map[string]string{"refresh_token": refreshToken}
	return c.token(ctx, "refresh_token", body)
}

func (c *HTTPClient) token(ctx context.Context, grant string, body any) (models.Session, error) {
	var resp tokenResponse
	path := "/auth/v1/token?grant_type=" + url.QueryEscape(grant)
	if err := c.do(ctx, http.MethodPost, path, "", body, &resp); err != nil {
		return models.Session{}, err
	}
	return models.Session{
		User:         resp.User,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    c.now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}, nil
}

func (c *HTTPClient) ListReflections(ctx context.Context, accessToken string) ([]models.Reflection, error) {
	var rows []models.Reflection
	if err := c.do(ctx, http.MethodGet, "/rest/v1/reflections", accessToken, nil, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.Reflection{}
	}
	return rows, nil
}

func (c *HTTPClient) UpsertReflections(ctx context.Context, accessToken string, entries []models.Reflection) error {
	if len(entries) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/rest/v1/reflections/upsert", accessToken, entries, nil)
}

func (c *HTTPClient) DeleteReflection(ctx context.Context, accessToken string, id string) error {
	return c.do(ctx, http.MethodDelete, "/rest/v1/reflections/"+url.PathEscape(id), accessToken, nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		return statusError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

func statusError(code int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var er errorResponse
	if json.Unmarshal(body, &er) == nil && er.Error != "" {
		msg = er.Error
	}

	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, msg)
	case code == http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, msg)
	case code == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
	case code >= 500:
		return fmt.Errorf("%w: HTTP %d: %s", ErrUnavailable, code, msg)
	default:
		return fmt.Errorf("HTTP %d: %s", code, msg)
	}
}
