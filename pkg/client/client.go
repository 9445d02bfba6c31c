// Package client is a Go client for the inkwell HTTP API. It satisfies the
// editor's Documents, Versions and Suggester dependencies.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	authmodel "inkwell/internal/auth/model"
	docmodel "inkwell/internal/document/model"
	"inkwell/internal/session"
	suggest "inkwell/internal/suggest"
	suggestservice "inkwell/internal/suggest/service"
	"inkwell/internal/template"
	vmodel "inkwell/internal/version/model"
	"inkwell/pkg/apperror"
)

type Client struct {
	baseURL string
	http    *http.Client

	// assistant applies the same input rules as the server before any
	// request is sent.
	assistant *suggestservice.SuggestService

	mu    sync.RWMutex
	token string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	c := &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
	c.assistant = suggestservice.NewSuggestService(c)
	return c
}

// SetToken sets the access token used when the request context carries no
// session.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) accessToken(ctx context.Context) string {
	if s, ok := session.FromContext(ctx); ok && s.AccessToken != "" {
		return s.AccessToken
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	resp, err := c.send(ctx, method, path, query, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.Wrap(apperror.StoreError, "Invalid response from server", err)
	}
	return nil
}

// send returns the response only for 2xx statuses; everything else is
// converted into an *apperror.Error.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.accessToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperror.Wrap(apperror.StoreError, "Failed to reach server", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, decodeError(resp)
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil || eb.Error == "" {
		eb.Error = fmt.Sprintf("Server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	kind := apperror.StoreError
	switch resp.StatusCode {
	case http.StatusBadRequest:
		kind = apperror.InvalidInput
	case http.StatusUnauthorized:
		kind = apperror.AuthRequired
	case http.StatusNotFound:
		kind = apperror.NotFound
	case http.StatusConflict:
		kind = apperror.Conflict
	default:
		if eb.Details != nil {
			kind = apperror.UpstreamError
		}
	}
	return &apperror.Error{Kind: kind, Message: eb.Error, Details: eb.Details}
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*authmodel.AuthResponse, error) {
	var out authmodel.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", nil, authmodel.CredentialsRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	c.SetToken(out.AccessToken)
	return &out, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*authmodel.AuthResponse, error) {
	var out authmodel.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/signin", nil, authmodel.CredentialsRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	c.SetToken(out.AccessToken)
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*authmodel.AuthResponse, error) {
	var out authmodel.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/refresh", nil, authmodel.RefreshRequest{RefreshToken: refreshToken}, &out)
	if err != nil {
		return nil, err
	}
	c.SetToken(out.AccessToken)
	return &out, nil
}

func (c *Client) SignOut(ctx context.Context, refreshToken string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/signout", nil, authmodel.RefreshRequest{RefreshToken: refreshToken}, nil)
}

func (c *Client) ListDocuments(ctx context.Context) ([]docmodel.DocumentMetadata, error) {
	var out []docmodel.DocumentMetadata
	if err := c.do(ctx, http.MethodGet, "/api/documents", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) LoadDocument(ctx context.Context, docID string) (docmodel.Document, error) {
	var out docmodel.Document
	err := c.do(ctx, http.MethodGet, "/api/documents/get", url.Values{"docId": {docID}}, nil, &out)
	return out, err
}

func (c *Client) SaveDocument(ctx context.Context, req docmodel.SaveDocRequest) (docmodel.SaveDocResponse, error) {
	var out docmodel.SaveDocResponse
	err := c.do(ctx, http.MethodPost, "/api/documents/save", nil, req, &out)
	return out, err
}

// ExportDocument downloads the stored document as plain text.
func (c *Client) ExportDocument(ctx context.Context, docID string) (docmodel.Export, error) {
	resp, err := c.send(ctx, http.MethodGet, "/api/documents/export", url.Values{"docId": {docID}}, nil)
	if err != nil {
		return docmodel.Export{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return docmodel.Export{}, err
	}
	export := docmodel.Export{Body: body}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		export.Filename = params["filename"]
	}
	return export, nil
}

func (c *Client) ListVersions(ctx context.Context, docID string) ([]vmodel.Version, error) {
	var out []vmodel.Version
	if err := c.do(ctx, http.MethodGet, "/api/documents/versions", url.Values{"docId": {docID}}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SaveVersion(ctx context.Context, req vmodel.SaveVersionRequest) (vmodel.Version, error) {
	var out vmodel.Version
	err := c.do(ctx, http.MethodPost, "/api/documents/versions/save", nil, req, &out)
	return out, err
}

func (c *Client) GetVersion(ctx context.Context, versionID string) (vmodel.Version, error) {
	var out vmodel.Version
	err := c.do(ctx, http.MethodGet, "/api/documents/versions/get", url.Values{"versionId": {versionID}}, nil, &out)
	return out, err
}

// Complete posts text to /api/suggest as is.
func (c *Client) Complete(ctx context.Context, text string) (string, error) {
	var out suggest.SuggestResponse
	if err := c.do(ctx, http.MethodPost, "/api/suggest", nil, suggest.SuggestRequest{Text: text}, &out); err != nil {
		return "", err
	}
	return out.Suggestion, nil
}

func (c *Client) Improve(ctx context.Context, text string) (string, error) {
	return c.assistant.Improve(ctx, text)
}

func (c *Client) Ask(ctx context.Context, question, content string) (string, error) {
	return c.assistant.Ask(ctx, question, content)
}

func (c *Client) Templates(ctx context.Context) ([]template.Template, error) {
	var out []template.Template
	if err := c.do(ctx, http.MethodGet, "/api/templates", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
