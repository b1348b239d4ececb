// Package notes turns free-form work notes into batch rows with the
// Anthropic API.
package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joescharf/abacus/internal/aliases"
	"github.com/joescharf/abacus/internal/batchfile"
	"github.com/joescharf/abacus/internal/dates"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-haiku-4-5-20251001"

// Known is what the extractor is told about the user's bookings.
type Known struct {
	// Today anchors relative dates such as "yesterday" or "last Monday".
	Today              time.Time
	Projects           []aliases.Pair
	ServiceTypes       []aliases.Pair
	DefaultServiceType string
}

// Extractor turns notes into batch rows.
type Extractor interface {
	Extract(ctx context.Context, content string, known Known) ([]batchfile.TemplateRow, error)
}

// Client wraps the Anthropic API for entry extraction.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewClient creates a client with the given API key and model.
func NewClient(apiKey, model string) *Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if model == "" {
		model = DefaultModel
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		api:   &client,
		model: anthropic.Model(model),
	}
}

// buildPrompt constructs the system and user prompts for entry extraction.
func buildPrompt(content string, known Known) (system string, user string) {
	system = `You extract time bookings from work notes. Return ONLY a JSON array of objects with these fields:
- "date": the day worked, formatted YYYY-MM-DD
- "project": the project alias or id the work belongs to
- "serviceType": the service type alias or id (empty string when unknown)
- "hours": hours worked as a number, e.g. 7.5
- "text": a short booking text describing the work, in the language of the notes

Rules:
- One object per day and project; add up several blocks on the same project and day
- Resolve relative dates ("yesterday", "Monday") against today's date
- Use the known project and service type aliases when the notes refer to them
- Round hours to the nearest quarter hour
- Skip days off, holidays and anything without hours or a duration
- Return valid JSON only, no markdown fencing or explanation`

	var sb strings.Builder
	sb.WriteString("Today: ")
	sb.WriteString(dates.ISO(known.Today))
	sb.WriteString(" (")
	sb.WriteString(known.Today.Weekday().String())
	sb.WriteString(")\n")
	writePairs(&sb, "Known projects", known.Projects)
	writePairs(&sb, "Known service types", known.ServiceTypes)
	if known.DefaultServiceType != "" {
		sb.WriteString("Default service type: ")
		sb.WriteString(known.DefaultServiceType)
		sb.WriteString("\n")
	}
	sb.WriteString("\nExtract bookings from these notes:\n\n")
	sb.WriteString(content)
	user = sb.String()
	return
}

func writePairs(sb *strings.Builder, title string, pairs []aliases.Pair) {
	if len(pairs) == 0 {
		return
	}
	sb.WriteString(title)
	sb.WriteString(": ")
	for i, p := range pairs {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%s = %s", p.Alias, p.ID)
	}
	sb.WriteString("\n")
}

// Extract sends notes to the model and returns the bookings it found.
func (c *Client) Extract(ctx context.Context, content string, known Known) ([]batchfile.TemplateRow, error) {
	systemPrompt, userPrompt := buildPrompt(content, known)

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	return parseResponse(text)
}

// parseResponse decodes the model's JSON array, tolerating markdown fencing.
func parseResponse(text string) ([]batchfile.TemplateRow, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.SplitN(text, "\n", 2)
		if len(lines) > 1 {
			text = lines[1]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	var rows []batchfile.TemplateRow
	if err := json.Unmarshal([]byte(text), &rows); err != nil {
		return nil, fmt.Errorf("parse LLM response as JSON: %w\nraw response: %s", err, text)
	}
	return rows, nil
}

// ToEntries runs extracted rows through the batch file rules: alias
// resolution, the default service type, weekend filtering and validation.
func ToEntries(rows []batchfile.TemplateRow, opts batchfile.Options) (*batchfile.Result, error) {
	if rows == nil {
		rows = []batchfile.TemplateRow{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode extracted rows: %w", err)
	}
	return batchfile.Parse(bytes.NewReader(data), batchfile.FormatJSON, opts)
}
