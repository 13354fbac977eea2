package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"logmentor/internal/domain"
)

const maxTokens = 2048

// GroqBaseURL is the default OpenAI-compatible endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// Client runs chunk analysis and answer synthesis against an
// OpenAI-compatible chat completion API. It implements port.Analyzer and
// port.Answerer.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a chat client. An empty baseURL targets the default
// OpenAI endpoint.
func NewClient(apiKey, model, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{client: openai.NewClientWithConfig(cfg), model: model}
}

const analystSystemPrompt = "You are a professional log analyst."

// Analyze asks the model to diagnose one chunk of log text. The response
// is the raw semi-structured analyst text; the caller owns parsing.
func (c *Client) Analyze(ctx context.Context, chunkText string) (string, error) {
	prompt := fmt.Sprintf(`Analyze the following logs:

%s

Return:
1. Summary
2. Errors
3. Root cause
4. Suggested Fix`, chunkText)

	return c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: analystSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
}

const qaSystemPrompt = "You answer questions about application logs. " +
	"Ground every answer in the provided log excerpts; if the excerpts do not contain the answer, say so."

// Answer synthesizes a grounded answer from the retrieved context block
// and the recent conversation history.
func (c *Client) Answer(ctx context.Context, question, contextBlock string, history []domain.QATurn) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: qaSystemPrompt},
	}
	for _, turn := range history {
		messages = append(messages,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: turn.Question},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: turn.Answer},
		)
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: fmt.Sprintf("Log excerpts:\n\n%s\n\nQuestion: %s", contextBlock, question),
	})

	return c.complete(ctx, messages)
}

// Summarize condenses the combined chunk-wise analyses into one overall
// assessment.
func (c *Client) Summarize(ctx context.Context, combined string) (string, error) {
	return c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: analystSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: "Summarize all these chunk-wise log analyses:\n\n" + combined},
	})
}

func (c *Client) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}
	// Reasoning models reject MaxTokens in favor of MaxCompletionTokens.
	if strings.HasPrefix(c.model, "o1") || strings.HasPrefix(c.model, "o3") || strings.HasPrefix(c.model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.Permanent(fmt.Errorf("chat completion returned no choices"))
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) ModelName() string { return c.model }

// classifyError tags API failures as transient (worth retrying) or
// permanent. Timeouts, rate limits and server errors are transient;
// rejected requests are not.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests,
			apiErr.HTTPStatusCode == http.StatusRequestTimeout,
			apiErr.HTTPStatusCode >= http.StatusInternalServerError:
			return domain.Transient(err)
		default:
			return domain.Permanent(err)
		}
	}

	// Network-level failures are worth retrying.
	return domain.Transient(err)
}
