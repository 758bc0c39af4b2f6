package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/forum-platform/services/forum/internal/domain"
)

// ErrNotFound reports a single-item lookup for an id the ledger does not
// have (missing or deleted content).
var ErrNotFound = errors.New("ledger: item not found")

type Client struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client
}

func New(baseURL, authToken string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		AuthToken:  authToken,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) FetchItem(ctx context.Context, id string) (domain.LedgerItem, error) {
	if strings.TrimSpace(id) == "" {
		return domain.LedgerItem{}, fmt.Errorf("ledger: item id required")
	}
	var out itemResponse
	status, err := c.doJSON(ctx, http.MethodGet, "/v1/items/"+url.PathEscape(id), nil, &out)
	if err != nil {
		if status == http.StatusNotFound {
			return domain.LedgerItem{}, ErrNotFound
		}
		return domain.LedgerItem{}, err
	}
	return out.Item.ToDomain(), nil
}

// FetchItemsBatch resolves many items in one round trip. Missing ids are
// simply absent from the result, never errors.
func (c *Client) FetchItemsBatch(ctx context.Context, ids []string) ([]domain.LedgerItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out batchResponse
	if _, err := c.doJSON(ctx, http.MethodPost, "/v1/items/batch", batchRequest{IDs: ids}, &out); err != nil {
		return nil, err
	}
	return toDomainItems(out.Items), nil
}

func (c *Client) FetchFeedItems(ctx context.Context, feedRef, cursor string, pageSize int) (FeedPage, error) {
	if strings.TrimSpace(feedRef) == "" {
		return FeedPage{}, fmt.Errorf("ledger: feed ref required")
	}
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if pageSize > 0 {
		q.Set("limit", strconv.Itoa(pageSize))
	}
	path := "/v1/feeds/" + url.PathEscape(feedRef) + "/items"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	var out feedResponse
	if _, err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return FeedPage{}, err
	}
	return FeedPage{
		Items:      toDomainItems(out.Items),
		NextCursor: out.NextCursor,
		PrevCursor: out.PrevCursor,
	}, nil
}

// FetchComments pages through the comments whose structural parent is
// rootItemID, oldest first.
func (c *Client) FetchComments(ctx context.Context, rootItemID, cursor string, pageSize int) (FeedPage, error) {
	if strings.TrimSpace(rootItemID) == "" {
		return FeedPage{}, fmt.Errorf("ledger: root item id required")
	}
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if pageSize > 0 {
		q.Set("limit", strconv.Itoa(pageSize))
	}
	path := "/v1/items/" + url.PathEscape(rootItemID) + "/comments"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	var out feedResponse
	if _, err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return FeedPage{}, err
	}
	return FeedPage{
		Items:      toDomainItems(out.Items),
		NextCursor: out.NextCursor,
		PrevCursor: out.PrevCursor,
	}, nil
}

// PublishComment appends a comment whose structural parent is rootItemID.
// The ledger returns the created item once the write is committed.
func (c *Client) PublishComment(ctx context.Context, rootItemID, feedRef, payloadURI string) (domain.LedgerItem, error) {
	if strings.TrimSpace(rootItemID) == "" {
		return domain.LedgerItem{}, fmt.Errorf("ledger: root item id required")
	}
	if strings.TrimSpace(payloadURI) == "" {
		return domain.LedgerItem{}, fmt.Errorf("ledger: payload uri required")
	}
	var out itemResponse
	_, err := c.doJSON(ctx, http.MethodPost, "/v1/comments", publishRequest{
		RootItemID: rootItemID,
		FeedRef:    feedRef,
		PayloadURI: payloadURI,
	}, &out)
	if err != nil {
		return domain.LedgerItem{}, err
	}
	return out.Item.ToDomain(), nil
}

// doJSON issues one request and decodes the JSON response into dst.
// It returns the HTTP status so callers can map 404 to ErrNotFound.
func (c *Client) doJSON(ctx context.Context, method, path string, body, dst any) (int, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "forum-platform/1.0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("ledger: status %d body=%q", resp.StatusCode, string(b[:min(len(b), 200)]))
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return resp.StatusCode, fmt.Errorf("ledger: decode error: %w body=%q", err, string(b[:min(len(b), 200)]))
	}
	return resp.StatusCode, nil
}
