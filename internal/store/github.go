// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// GitHubConfig holds the repository coordinates and credentials used by
// GitHubStore.
type GitHubConfig struct {
	Token          string
	Owner          string
	Repo           string
	Branch         string
	APIURL         string // defaults to https://api.github.com
	CommitterName  string
	CommitterEmail string
	Timeout        time.Duration
	ReadRetries    uint64
	RetryBase      time.Duration
}

// GitHubStore implements Store with the GitHub repository contents API.
// The version token is the blob SHA GitHub reports for the file, which is
// also what the API requires to update an existing file.
type GitHubStore struct {
	config GitHubConfig
	client *http.Client
}

// NewGitHubStore validates cfg and returns a ready client.
func NewGitHubStore(cfg GitHubConfig) (*GitHubStore, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("github store: token is required")
	}
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("github store: owner and repo are required")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.github.com"
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryBase == 0 {
		cfg.RetryBase = 250 * time.Millisecond
	}

	return &GitHubStore{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// --- GitHub contents API request/response types ---

type githubContent struct {
	Type     string `json:"type"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

type githubCommitter struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubPutRequest struct {
	Message   string           `json:"message"`
	Content   string           `json:"content"`
	SHA       string           `json:"sha,omitempty"`
	Branch    string           `json:"branch,omitempty"`
	Committer *githubCommitter `json:"committer,omitempty"`
}

type githubPutResponse struct {
	Content githubContent `json:"content"`
	Commit  struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

type githubError struct {
	Message string `json:"message"`
}

// Read fetches the file at p from the configured branch. Transient
// failures are retried with exponential backoff.
func (s *GitHubStore) Read(ctx context.Context, p string) (*Record, error) {
	p, err := CleanPath(p)
	if err != nil {
		return nil, err
	}

	var rec *Record
	backoff := retry.WithMaxRetries(s.config.ReadRetries, retry.NewExponential(s.config.RetryBase))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var ferr error
		rec, ferr = s.fetch(ctx, p)
		if errors.Is(ferr, ErrUnavailable) && ctx.Err() == nil {
			return retry.RetryableError(ferr)
		}
		return ferr
	})
	if err != nil {
		var serr *Error
		if !errors.As(err, &serr) {
			err = unavailable("read", p, err)
		}
		return nil, err
	}
	return rec, nil
}

// Write commits content to p. Writes are never retried: a failure is
// reported to the editor, who decides whether to try again.
func (s *GitHubStore) Write(ctx context.Context, p string, content []byte, sha, message string) (string, error) {
	p, err := CleanPath(p)
	if err != nil {
		return "", err
	}

	// The API refuses to update an existing file without its sha, so a
	// blind write looks the current one up first.
	if sha == "" {
		cur, err := s.fetch(ctx, p)
		switch {
		case err == nil:
			sha = cur.SHA
		case errors.Is(err, ErrNotFound):
		default:
			return "", err
		}
	}

	body := githubPutRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     sha,
		Branch:  s.config.Branch,
	}
	if s.config.CommitterName != "" && s.config.CommitterEmail != "" {
		body.Committer = &githubCommitter{Name: s.config.CommitterName, Email: s.config.CommitterEmail}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("github marshal: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPut, s.contentsURL(p, false), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", unavailable("write", p, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", unavailable("write", p, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
	case resp.StatusCode == http.StatusConflict:
		return "", conflict("write", p, apiError(resp.StatusCode, respBody))
	case resp.StatusCode == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(string(respBody)), "sha"):
		return "", conflict("write", p, apiError(resp.StatusCode, respBody))
	default:
		return "", unavailable("write", p, apiError(resp.StatusCode, respBody))
	}

	var result githubPutResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", unavailable("write", p, fmt.Errorf("github unmarshal: %w", err))
	}
	if result.Content.SHA == "" {
		return "", unavailable("write", p, fmt.Errorf("github: response has no content sha"))
	}
	return result.Content.SHA, nil
}

// fetch performs a single GET of the contents endpoint.
func (s *GitHubStore) fetch(ctx context.Context, p string) (*Record, error) {
	req, err := s.newRequest(ctx, http.MethodGet, s.contentsURL(p, true), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, unavailable("read", p, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable("read", p, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, notFound("read", p)
	default:
		return nil, unavailable("read", p, apiError(resp.StatusCode, respBody))
	}

	var c githubContent
	if err := json.Unmarshal(respBody, &c); err != nil {
		// Directories come back as a JSON array.
		return nil, notFound("read", p)
	}
	if c.Type != "" && c.Type != "file" {
		return nil, notFound("read", p)
	}

	var content []byte
	switch c.Encoding {
	case "base64":
		content, err = base64.StdEncoding.DecodeString(strings.ReplaceAll(c.Content, "\n", ""))
		if err != nil {
			return nil, unavailable("read", p, fmt.Errorf("github decode: %w", err))
		}
	case "none", "":
		// Files over 1 MB are returned without inline content.
		content, err = s.fetchRaw(ctx, p)
		if err != nil {
			return nil, err
		}
	default:
		return nil, unavailable("read", p, fmt.Errorf("github: unsupported encoding %q", c.Encoding))
	}

	return &Record{Path: p, Content: content, SHA: c.SHA}, nil
}

// fetchRaw downloads the file body using the raw media type.
func (s *GitHubStore) fetchRaw(ctx context.Context, p string) ([]byte, error) {
	req, err := s.newRequest(ctx, http.MethodGet, s.contentsURL(p, true), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.raw+json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, unavailable("read", p, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable("read", p, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, unavailable("read", p, apiError(resp.StatusCode, body))
	}
	return body, nil
}

func (s *GitHubStore) contentsURL(p string, withRef bool) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		s.config.APIURL, url.PathEscape(s.config.Owner), url.PathEscape(s.config.Repo), strings.Join(segments, "/"))
	if withRef {
		u += "?ref=" + url.QueryEscape(s.config.Branch)
	}
	return u
}

func (s *GitHubStore) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("github request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", "iptvsite-content-store")
	return req, nil
}

// apiError turns a GitHub error response into an error value.
func apiError(status int, body []byte) error {
	var ge githubError
	if err := json.Unmarshal(body, &ge); err == nil && ge.Message != "" {
		return fmt.Errorf("github API error (status %d): %s", status, ge.Message)
	}
	return fmt.Errorf("github API error (status %d)", status)
}
