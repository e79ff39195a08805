package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/brk3/arena/internal/server"
)

type Client struct {
	BaseURL   string
	AuthToken string
	HTTP      *http.Client
}

func New(base, authToken string) *Client {
	return &Client{
		BaseURL:   base,
		AuthToken: authToken,
		HTTP:      http.DefaultClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%s %s: %s", method, path, res.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) ListArenas(ctx context.Context, browse bool) (*server.ArenaListResponse, error) {
	path := "/arenas"
	if browse {
		path += "?browse=1"
	}
	var out server.ArenaListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) JoinArena(ctx context.Context, arenaID string) error {
	return c.do(ctx, http.MethodPost, "/arenas/"+arenaID+"/join", nil, nil)
}

type completionRequest struct {
	Value string `json:"value,omitempty"`
}

func (c *Client) RecordCompletion(ctx context.Context, arenaID, value string) (*server.CompletionResponse, error) {
	var out server.CompletionResponse
	err := c.do(ctx, http.MethodPost, "/arenas/"+arenaID+"/completions",
		completionRequest{Value: value}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetLeaderboard(ctx context.Context, arenaID, window string) (*server.LeaderboardResponse, error) {
	var out server.LeaderboardResponse
	err := c.do(ctx, http.MethodGet,
		"/arenas/"+arenaID+"/leaderboard?window="+url.QueryEscape(window), nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetHistory(ctx context.Context, arenaID, window string) (*server.HistoryResponse, error) {
	var out server.HistoryResponse
	err := c.do(ctx, http.MethodGet,
		"/arenas/"+arenaID+"/history?window="+url.QueryEscape(window), nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
