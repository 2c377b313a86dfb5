package zulip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pingbot/pkg/config"
)

const defaultRequestTimeout = 30 * time.Second

// ErrUnauthorized marks a 401 from the Zulip API. Credentials are wrong and
// retrying is pointless; callers treat this as fatal at startup.
var ErrUnauthorized = errors.New("zulip: unauthorized")

// ErrMalformedResponse marks a 200 response whose body could not be decoded.
// For the events endpoint this means a poisoned pending event: retrying the
// same poll can never succeed, the queue has to be re-registered.
var ErrMalformedResponse = errors.New("zulip: malformed response")

// Client is a thin wrapper around the Zulip REST API, authenticated with the
// bot's email and API key via HTTP basic auth.
type Client struct {
	site       string
	email      string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

type apiError struct {
	Result string `json:"result"`
	Msg    string `json:"msg"`
	Code   string `json:"code"`
}

// NewClient validates Zulip credentials and constructs a client.
func NewClient(cfg config.ZulipConfig, log *slog.Logger) (*Client, error) {
	site := strings.TrimRight(strings.TrimSpace(cfg.Site), "/")
	if site == "" {
		return nil, errors.New("zulip.site is required")
	}
	if strings.TrimSpace(cfg.Email) == "" {
		return nil, errors.New("zulip.email is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("zulip.api_key is required")
	}

	if log == nil {
		log = slog.Default()
	}

	return &Client{
		site:       site,
		email:      strings.TrimSpace(cfg.Email),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		log:        log.With("component", "zulip.client"),
	}, nil
}

// Email returns the authenticated bot account's email address.
func (c *Client) Email() string {
	return c.email
}

// GetMessages fetches up to numBefore messages from a stream, ending at the
// given anchor, going backward in time. The chunk is returned oldest-first.
func (c *Client) GetMessages(ctx context.Context, stream string, anchor uint64, numBefore int) ([]Message, error) {
	narrow, err := json.Marshal([]map[string]string{{"operator": "stream", "operand": stream}})
	if err != nil {
		return nil, fmt.Errorf("encode narrow: %w", err)
	}

	params := url.Values{}
	params.Set("anchor", strconv.FormatUint(anchor, 10))
	params.Set("num_before", strconv.Itoa(numBefore))
	params.Set("num_after", "0")
	params.Set("narrow", string(narrow))
	params.Set("apply_markdown", "false")

	var response struct {
		Messages []Message `json:"messages"`
	}
	if err := c.get(ctx, "/api/v1/messages", params, &response); err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}

	c.log.Debug("Fetched message chunk", "stream", stream, "anchor", anchor, "count", len(response.Messages))
	return response.Messages, nil
}

// SendMessage posts one outgoing message.
func (c *Client) SendMessage(ctx context.Context, msg OutgoingMessage) error {
	form := url.Values{}
	form.Set("type", msg.Type)
	form.Set("to", msg.To)
	form.Set("subject", msg.Topic)
	form.Set("content", msg.Content)

	if err := c.post(ctx, "/api/v1/messages", form, nil); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	c.log.Debug("Sent message", "to", msg.To, "topic", msg.Topic)
	return nil
}

// Register creates an event queue delivering message events.
func (c *Client) Register(ctx context.Context) (queueID string, lastEventID int64, err error) {
	form := url.Values{}
	form.Set("event_types", `["message"]`)
	form.Set("apply_markdown", "false")

	var response struct {
		QueueID     string `json:"queue_id"`
		LastEventID int64  `json:"last_event_id"`
	}
	if err := c.post(ctx, "/api/v1/register", form, &response); err != nil {
		return "", 0, fmt.Errorf("register event queue: %w", err)
	}
	if response.QueueID == "" {
		return "", 0, errors.New("register returned empty queue id")
	}

	return response.QueueID, response.LastEventID, nil
}

// Events long-polls the event queue for entries newer than lastEventID.
func (c *Client) Events(ctx context.Context, queueID string, lastEventID int64) ([]Event, error) {
	params := url.Values{}
	params.Set("queue_id", queueID)
	params.Set("last_event_id", strconv.FormatInt(lastEventID, 10))

	var response struct {
		Events []Event `json:"events"`
	}
	if err := c.get(ctx, "/api/v1/events", params, &response); err != nil {
		return nil, fmt.Errorf("poll events: %w", err)
	}

	return response.Events, nil
}

// GetStreams lists all streams visible to the bot.
func (c *Client) GetStreams(ctx context.Context) ([]Stream, error) {
	var response struct {
		Streams []Stream `json:"streams"`
	}
	if err := c.get(ctx, "/api/v1/streams", nil, &response); err != nil {
		return nil, fmt.Errorf("get streams: %w", err)
	}

	return response.Streams, nil
}

// AddSubscriptions subscribes the bot to the named streams.
func (c *Client) AddSubscriptions(ctx context.Context, streams []string) error {
	subscriptions := make([]map[string]string, 0, len(streams))
	for _, stream := range streams {
		trimmed := strings.TrimSpace(stream)
		if trimmed == "" {
			continue
		}
		subscriptions = append(subscriptions, map[string]string{"name": trimmed})
	}
	if len(subscriptions) == 0 {
		return nil
	}

	encoded, err := json.Marshal(subscriptions)
	if err != nil {
		return fmt.Errorf("encode subscriptions: %w", err)
	}

	form := url.Values{}
	form.Set("subscriptions", string(encoded))
	if err := c.post(ctx, "/api/v1/users/me/subscriptions", form, nil); err != nil {
		return fmt.Errorf("add subscriptions: %w", err)
	}

	c.log.Info("Subscribed to streams", "count", len(subscriptions))
	return nil
}

// Me fetches the bot's own profile. Used as a connectivity and auth probe.
func (c *Client) Me(ctx context.Context) error {
	var response struct {
		Email string `json:"email"`
	}
	if err := c.get(ctx, "/api/v1/users/me", nil, &response); err != nil {
		return fmt.Errorf("get profile: %w", err)
	}

	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.site + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.site+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.SetBasicAuth(c.email, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrUnauthorized, apiErrorMessage(body))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("zulip API status %d: %s", resp.StatusCode, apiErrorMessage(body))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return nil
}

// apiErrorMessage extracts the error code and message from a Zulip error body.
func apiErrorMessage(body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Msg == "" {
		return strings.TrimSpace(string(body))
	}
	if apiErr.Code != "" {
		return apiErr.Code + ": " + apiErr.Msg
	}

	return apiErr.Msg
}

// IsBadEventQueue reports whether an events-poll error means the queue has
// expired and must be re-registered.
func IsBadEventQueue(err error) bool {
	return err != nil && strings.Contains(err.Error(), "BAD_EVENT_QUEUE_ID")
}
