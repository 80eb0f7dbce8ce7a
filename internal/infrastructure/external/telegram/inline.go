package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/go-telegram/bot/models"

	"github.com/Bukinich-Pavel/resume-bot/internal/domain/shared"
)

const defaultAPIURL = "https://api.telegram.org"

// apiResponse is the Bot API response envelope.
type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
	Parameters  struct {
		RetryAfter int `json:"retry_after,omitempty"`
	} `json:"parameters,omitempty"`
}

// answerInlineQueryUncached posts answerInlineQuery with an explicit
// cache_time=0. The library drops zero cache_time and Telegram then caches
// the answer for 300 seconds.
func (c *Client) answerInlineQueryUncached(ctx context.Context, queryID string, items []models.InlineQueryResult, personal bool) error {
	const method = "answerInlineQuery"

	results := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		raw, err := item.MarshalCustom()
		if err != nil {
			return fmt.Errorf("telegram: encode inline result: %w", err)
		}
		results = append(results, raw)
	}
	encoded, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("telegram: encode inline results: %w", err)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	fields := [][2]string{
		{"inline_query_id", queryID},
		{"results", string(encoded)},
		{"cache_time", "0"},
	}
	if personal {
		fields = append(fields, [2]string{"is_personal", "true"})
	}
	for _, f := range fields {
		if err := form.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("telegram: build %s form: %w", method, err)
		}
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("telegram: build %s form: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/bot"+c.config.Token+"/"+method, &body)
	if err != nil {
		return fmt.Errorf("telegram: create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	var r apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return fmt.Errorf("telegram %s: decode response: %w", method, err)
	}
	if !r.OK {
		return &shared.APIError{
			Method:      method,
			Code:        r.ErrorCode,
			Description: r.Description,
			RetryAfter:  r.Parameters.RetryAfter,
		}
	}
	return nil
}
