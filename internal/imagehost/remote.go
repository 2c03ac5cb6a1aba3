package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RemoteStore forwards images to an external hosting service. The service
// accepts a multipart "image" field and answers {"url": "..."}; DELETE on
// the endpoint with ?url= removes an object.
type RemoteStore struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewRemoteStore(endpoint, apiKey string, client *http.Client) *RemoteStore {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &RemoteStore{endpoint: strings.TrimRight(endpoint, "/"), apiKey: apiKey, client: client}
}

type remoteUploadResponse struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

func (s *RemoteStore) Save(ctx context.Context, folder, filename string, r io.Reader, contentType string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("folder", folder); err != nil {
		return "", err
	}
	part, err := mw.CreateFormFile("image", objectName("", filename))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("image host upload: %w", err)
	}
	defer resp.Body.Close()

	var out remoteUploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("image host upload: status %d: %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 300 || out.URL == "" {
		return "", fmt.Errorf("image host upload: status %d: %s", resp.StatusCode, out.Error)
	}
	return out.URL, nil
}

func (s *RemoteStore) Delete(ctx context.Context, objectURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.endpoint+"?url="+url.QueryEscape(objectURL), nil)
	if err != nil {
		return err
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("image host delete: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrForeignURL
	case resp.StatusCode >= 300:
		return fmt.Errorf("image host delete: status %d", resp.StatusCode)
	}
	return nil
}

func (s *RemoteStore) authorize(req *http.Request) {
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
}
