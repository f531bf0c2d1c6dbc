package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

// Client calls the Railcore API.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type HealthResponse struct {
	Status  string `json:"status" yaml:"status"`
	Time    string `json:"time" yaml:"time"`
	Version string `json:"version" yaml:"version"`
	DB      string `json:"db" yaml:"db"`
	Cache   string `json:"cache" yaml:"cache"`
}

type ErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// File is a downloaded export.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (c *Client) makeRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	url := c.BaseURL + path
	logVerbose("Making %s request to %s", method, url)

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	logVerbose("Response status: %s", resp.Status)
	return resp, nil
}

func (c *Client) handleResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return apiError(resp.StatusCode, body)
	}
	if target != nil {
		if err := json.Unmarshal(body, target); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

func (c *Client) handleFile(resp *http.Response) (File, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return File{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return File{}, apiError(resp.StatusCode, body)
	}
	f := File{ContentType: resp.Header.Get("Content-Type"), Data: body}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		f.Filename = params["filename"]
	}
	return f, nil
}

func apiError(status int, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("API error (%d): %s", status, errResp.Error)
	}
	return fmt.Errorf("API error (%d): %s", status, strings.TrimSpace(string(body)))
}

func (c *Client) ExportChecklist(ctx context.Context, submissionID, projectName string) (File, error) {
	resp, err := c.makeRequest(ctx, http.MethodPost, "/api/v1/checklists/export", map[string]string{
		"submissionId": submissionID,
		"projectName":  projectName,
	})
	if err != nil {
		return File{}, err
	}
	return c.handleFile(resp)
}

func (c *Client) ExportPunchList(ctx context.Context, projectID, format string) (File, error) {
	payload := map[string]string{"projectId": projectID}
	if format != "" {
		payload["format"] = format
	}
	resp, err := c.makeRequest(ctx, http.MethodPost, "/api/v1/punch/export", payload)
	if err != nil {
		return File{}, err
	}
	return c.handleFile(resp)
}

// GenerateReport renders a stored daily report server side and returns its URL.
func (c *Client) GenerateReport(ctx context.Context, reportID, projectName string) (string, error) {
	resp, err := c.makeRequest(ctx, http.MethodPost, "/api/v1/reports/generate", map[string]string{
		"reportId":    reportID,
		"projectName": projectName,
	})
	if err != nil {
		return "", err
	}
	var out struct {
		PDFURL string `json:"pdfUrl"`
	}
	if err := c.handleResponse(resp, &out); err != nil {
		return "", err
	}
	return out.PDFURL, nil
}

func (c *Client) SendReport(ctx context.Context, projectID, pdfURL, reportDate, crew string) error {
	resp, err := c.makeRequest(ctx, http.MethodPost, "/api/v1/reports/send", map[string]string{
		"projectId":  projectID,
		"pdfUrl":     pdfURL,
		"reportDate": reportDate,
		"crew":       crew,
	})
	if err != nil {
		return err
	}
	var out struct {
		Success bool `json:"success"`
	}
	if err := c.handleResponse(resp, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("report was not sent")
	}
	return nil
}

// Download fetches a stored document by its public URL.
func (c *Client) Download(ctx context.Context, fileURL string) (File, error) {
	path := fileURL
	if strings.HasPrefix(fileURL, c.BaseURL) {
		path = strings.TrimPrefix(fileURL, c.BaseURL)
	} else if strings.Contains(fileURL, "://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
		if err != nil {
			return File{}, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := c.HTTP.Do(req)
		if err != nil {
			return File{}, fmt.Errorf("request failed: %w", err)
		}
		return c.handleFile(resp)
	}
	resp, err := c.makeRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return File{}, err
	}
	return c.handleFile(resp)
}

func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	resp, err := c.makeRequest(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return HealthResponse{}, err
	}
	var h HealthResponse
	if err := c.handleResponse(resp, &h); err != nil {
		return HealthResponse{}, err
	}
	return h, nil
}
