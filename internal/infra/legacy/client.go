package legacy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/devcore/rag-chat/internal/domain/chat"
)

const intentQueryPath = "/api/df_text_query"

// fallbackAnswer is returned when the endpoint responds but neither
// reply shape carries usable text.
const fallbackAnswer = "I'm sorry, I couldn't process that request."

// Client forwards raw question text to the legacy intent endpoint and
// extracts an answer from one of its two response shapes.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

// NewClient constructs the legacy client. The timeout bounds the whole
// request; the legacy backend is the only call in the system with an
// internally enforced deadline.
func NewClient(baseURL, userID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		userID:  userID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type intentRequest struct {
	Text   string `json:"text"`
	UserID string `json:"userID"`
}

type intentResponse struct {
	FulfillmentText     string `json:"fulfillmentText"`
	FulfillmentMessages []struct {
		Text struct {
			Text []string `json:"text"`
		} `json:"text"`
	} `json:"fulfillmentMessages"`
	Intent json.RawMessage `json:"intent"`
}

// Detect posts the question and parses the reply. Transport and decode
// failures surface as errors for the caller to convert into the fixed
// connection-failure record.
func (c *Client) Detect(ctx context.Context, text string) (chat.LegacyReply, error) {
	payload, err := json.Marshal(intentRequest{Text: text, UserID: c.userID})
	if err != nil {
		return chat.LegacyReply{}, fmt.Errorf("encode intent request: %w", err)
	}
	endpoint := c.baseURL + intentQueryPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return chat.LegacyReply{}, fmt.Errorf("build intent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chat.LegacyReply{}, fmt.Errorf("intent request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return chat.LegacyReply{}, fmt.Errorf("intent request error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return chat.LegacyReply{}, fmt.Errorf("decode intent response: %w", err)
	}

	answer := out.FulfillmentText
	if answer == "" && len(out.FulfillmentMessages) > 0 && len(out.FulfillmentMessages[0].Text.Text) > 0 {
		answer = out.FulfillmentMessages[0].Text.Text[0]
	}
	if answer == "" {
		answer = fallbackAnswer
	}
	return chat.LegacyReply{
		Answer:    answer,
		HasIntent: hasIntent(out.Intent),
	}, nil
}

func hasIntent(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	switch trimmed {
	case "", "null", `""`, "{}", "[]", "0", "false":
		return false
	default:
		return true
	}
}

var _ chat.LegacyClient = (*Client)(nil)
