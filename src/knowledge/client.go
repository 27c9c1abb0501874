// Package knowledge refreshes the service's corpus for a topic. It follows
// the same dispatch discipline as package verify and shares the caller's
// session identifier so the backend can correlate the two.
package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/sceptre-labs/sceptre/src/dispatch"
)

const refreshStream = "sceptre.kb.refresh"

// RefreshResult is the service's acknowledgement of a corpus refresh.
type RefreshResult struct {
	Message       string `json:"message"`
	Topic         string `json:"topic"`
	DocumentCount int    `json:"document_count"`
}

// Client issues refresh requests and accumulates completed ones in an
// append-only log for display. One request in flight at a time.
type Client struct {
	baseURL    string
	httpClient *http.Client
	gate       dispatch.Gate
	rdb        *redis.Client

	mu  sync.Mutex
	log []RefreshResult
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: dispatch.DefaultTimeout,
		},
	}
}

// WithEventStream publishes each completed refresh to a redis stream so
// other tooling can watch corpus activity. Publish failures are logged, not
// surfaced; the refresh itself already succeeded.
func (c *Client) WithEventStream(rdb *redis.Client) *Client {
	c.rdb = rdb
	return c
}

// Refresh asks the service to enrich its corpus for topic. Failures use the
// dispatch taxonomy and leave the log untouched.
func (c *Client) Refresh(ctx context.Context, topic, token, sessionID string) (*RefreshResult, error) {
	if _, err := c.gate.Acquire(); err != nil {
		return nil, err
	}
	defer c.gate.Release()

	payload, err := json.Marshal(map[string]string{
		"topic":      topic,
		"session_id": sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal refresh request: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+"/refresh-knowledge-base", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := dispatch.Do(ctx, c.httpClient, req, token)
	if err != nil {
		return nil, fmt.Errorf("refresh knowledge base: %w", err)
	}

	var res RefreshResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("refresh knowledge base: %w", &dispatch.ParseError{Err: err})
	}

	c.mu.Lock()
	c.log = append(c.log, res)
	c.mu.Unlock()

	c.publish(ctx, res, sessionID)
	return &res, nil
}

// Log returns the completed refreshes in submission order.
func (c *Client) Log() []RefreshResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RefreshResult, len(c.log))
	copy(out, c.log)
	return out
}

func (c *Client) publish(ctx context.Context, res RefreshResult, sessionID string) {
	if c.rdb == nil {
		return
	}
	err := c.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: refreshStream,
		Values: map[string]interface{}{
			"topic":          res.Topic,
			"document_count": res.DocumentCount,
			"session_id":     sessionID,
		},
	}).Err()
	if err != nil {
		log.Printf("publish refresh event: %v", err)
	}
}
