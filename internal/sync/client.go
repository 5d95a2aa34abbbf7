// Package sync talks to the remote day-document store and reconciles what
// it returns into local state. Local state is always the source of truth;
// nothing here ever discards a locally recorded session.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sadopc/tempo/internal/model"
)

// Client calls the remote store adapter's HTTP surface.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// NewClient builds a sync client against baseURL (e.g. "https://host:8787").
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type uploadResponse struct {
	Success bool   `json:"success"`
	Key     string `json:"key"`
	Date    string `json:"date"`
	Error   string `json:"error"`
}

// RangeResult is the aggregation of every day document in a date range.
type RangeResult struct {
	From        string          `json:"from"`
	To          string          `json:"to"`
	Sessions    []model.Session `json:"sessions"`
	Projects    []model.Project `json:"projects"`
	FilesLoaded int             `json:"filesLoaded"`
}

// Upload pushes one day's sessions plus the full project list. The caller
// decides when; there is no retry here.
func (c *Client) Upload(ctx context.Context, date string, sessions []model.Session, projects []model.Project) error {
	doc := model.DayDocument{Date: date, Sessions: sessions, Projects: projects}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode sync payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sync", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sync upload: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sync upload failed (%d): %s", resp.StatusCode, string(respBody))
	}

	var ur uploadResponse
	if err := json.Unmarshal(respBody, &ur); err != nil {
		return fmt.Errorf("decode sync response: %w", err)
	}
	if !ur.Success {
		return fmt.Errorf("sync upload rejected: %s", ur.Error)
	}
	return nil
}

// FetchDay retrieves the stored document for one date. A missing document
// is a valid outcome and returns (nil, nil) — distinct from transport or
// server failure.
func (c *Client) FetchDay(ctx context.Context, date string) (*model.DayDocument, error) {
	u := fmt.Sprintf("%s/sync?date=%s", c.baseURL, url.QueryEscape(date))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch day %s: %w", date, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch day %s failed (%d): %s", date, resp.StatusCode, string(respBody))
	}

	var doc model.DayDocument
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return nil, fmt.Errorf("decode day document: %w", err)
	}
	return &doc, nil
}

// FetchRange retrieves the flattened union of all day documents in
// [from, to], used for trailing-window analysis. It is read-only: range
// results are never merged into local state.
func (c *Client) FetchRange(ctx context.Context, from, to string) (*RangeResult, error) {
	u := fmt.Sprintf("%s/sync?from=%s&to=%s", c.baseURL, url.QueryEscape(from), url.QueryEscape(to))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build range request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch range %s..%s: %w", from, to, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch range failed (%d): %s", resp.StatusCode, string(respBody))
	}

	var rr RangeResult
	if err := json.Unmarshal(respBody, &rr); err != nil {
		return nil, fmt.Errorf("decode range result: %w", err)
	}
	return &rr, nil
}

// SyncToday uploads today's slice of the log and merges the remote document
// for the same day back in. Either half failing is logged and surfaced; the
// other half's effect stands.
func (c *Client) SyncToday(ctx context.Context, st LocalState, date string) error {
	if err := c.Upload(ctx, date, st.SessionsOn(date), st.ProjectList()); err != nil {
		log.Error("sync upload", "date", date, "err", err)
		return err
	}
	doc, err := c.FetchDay(ctx, date)
	if err != nil {
		log.Error("sync fetch", "date", date, "err", err)
		return err
	}
	if doc != nil {
		Merge(st, doc)
	}
	return nil
}
