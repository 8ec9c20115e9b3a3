package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"lernplan_backend/internal/util"
)

// GitHubStore persistiert das Snapshot über die Contents-API eines
// Repositories. Die sha des Blobs dient als Versionsmarke; jedes PUT trägt
// die erwartete sha, wodurch verlorene Schreibzugriffe als Konflikt
// zurückkommen statt stillschweigend zu überschreiben.
type GitHubStore struct {
	token   string
	repo    string // "owner/repo"
	path    string
	apiBase string
	client  *http.Client
}

func NewGitHubStore(token, repo, path string) *GitHubStore {
	return &GitHubStore{
		token:   token,
		repo:    repo,
		path:    path,
		apiBase: "https://api.github.com",
		client:  &http.Client{Timeout: OpTimeout},
	}
}

func (s *GitHubStore) Name() string { return "github" }

func (s *GitHubStore) contentURL() string {
	return fmt.Sprintf("%s/repos/%s/contents/%s", s.apiBase, s.repo, s.path)
}

type githubContent struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

func (s *GitHubStore) Fetch(ctx context.Context) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.contentURL(), nil)
	if err != nil {
		return nil, "", err
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", util.ErrStoreNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("github contents api: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	var gc githubContent
	if err := json.Unmarshal(body, &gc); err != nil {
		return nil, "", err
	}

	// Die API liefert base64 mit eingestreuten Zeilenumbrüchen
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(gc.Content, "\n", ""))
	if err != nil {
		return nil, "", err
	}
	return decoded, gc.SHA, nil
}

type githubPutRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

type githubPutResponse struct {
	Content githubContent `json:"content"`
}

func (s *GitHubStore) CompareAndSwap(ctx context.Context, expected string, content []byte) (string, error) {
	payload := githubPutRequest{
		Message: "Update Lernplan Dashboard",
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     expected,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.contentURL(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	s.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict, http.StatusUnprocessableEntity:
		// 422 kommt auch, wenn die Datei ohne sha bereits existiert
		return "", util.ErrStoreConflict
	default:
		return "", fmt.Errorf("github contents api: unexpected status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var pr githubPutResponse
	if err := json.Unmarshal(respBody, &pr); err != nil {
		return "", err
	}
	return pr.Content.SHA, nil
}

func (s *GitHubStore) authorize(req *http.Request) {
	if s.token != "" {
		req.Header.Set("Authorization", "token "+s.token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
}
