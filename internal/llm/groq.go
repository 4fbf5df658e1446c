package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	groqBaseURL      = "https://api.groq.com/openai/v1"
	defaultGroqModel = "llama-3.3-70b-versatile"
)

// GroqProvider talks to the Groq chat completion endpoint, which is
// OpenAI-compatible. Retry/backoff for 429s and transient failures is
// handled here so callers only see terminal errors.
type GroqProvider struct {
	client *openai.Client
	model  string

	rateLimit BackoffPolicy
	transient BackoffPolicy
}

// NewGroqProvider builds the provider. It fails fast with ErrAuth when
// the key is empty: the batch must not start without a credential.
func NewGroqProvider(apiKey string, baseURL string, model string) (*GroqProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: groq: GROQ_API_KEY not set", ErrAuth)
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = groqBaseURL
	if v := strings.TrimSpace(baseURL); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}

	m := strings.TrimSpace(model)
	if m == "" {
		m = defaultGroqModel
	}

	return &GroqProvider{
		client:    openai.NewClientWithConfig(cfg),
		model:     m,
		rateLimit: rateLimitPolicy,
		transient: transientPolicy,
	}, nil
}

func (p *GroqProvider) Name() string {
	return "groq"
}

func (p *GroqProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	if p == nil || p.client == nil {
		return nil, errors.New("llm: groq: nil client")
	}
	if ctx == nil {
		return nil, errors.New("llm: groq: nil context")
	}
	if req == nil {
		return nil, errors.New("llm: groq: nil request")
	}

	r := p.buildRequest(req)

	var rateLimitRetries, transientRetries int
	for {
		start := time.Now()
		resp, err := p.client.CreateChatCompletion(ctx, r)
		latency := time.Since(start).Milliseconds()

		if err == nil {
			return groqToResponse(&resp, latency)
		}

		err = classifyGroqError(err)
		switch {
		case isRateLimited(err):
			if p.rateLimit.Exhausted(rateLimitRetries) {
				return nil, fmt.Errorf("%w: %v", ErrRateLimitExceeded, err)
			}
			if serr := sleepWithContext(ctx, p.rateLimit.Delay(rateLimitRetries)); serr != nil {
				return nil, serr
			}
			rateLimitRetries++
		case isTransient(err):
			if p.transient.Exhausted(transientRetries) {
				return nil, fmt.Errorf("%w: %v", ErrCompletionFailed, err)
			}
			if serr := sleepWithContext(ctx, p.transient.Delay(transientRetries)); serr != nil {
				return nil, serr
			}
			transientRetries++
		default:
			return nil, err
		}
	}
}

func (p *GroqProvider) buildRequest(req *Request) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if system := strings.TrimSpace(req.System); system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    normalizeRole(m.Role),
			Content: m.Content,
		})
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = p.model
	}

	r := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		MaxTokens:   clampMaxTokens(req.MaxTokens),
		Temperature: float32(req.Temperature),
	}
	if req.JSONMode {
		r.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return r
}

func groqToResponse(resp *openai.ChatCompletionResponse, latencyMs int64) (*Response, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, errors.New("llm: groq: empty choices")
	}
	choice := resp.Choices[0]
	return &Response{
		Text:       choice.Message.Content,
		StopReason: string(choice.FinishReason),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		LatencyMs:  latencyMs,
		StatusCode: 200,
	}, nil
}

func classifyGroqError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if c := classifyStatus("groq", apiErr.HTTPStatusCode, apiErr.Message, err); c != nil {
			return c
		}
		return err
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if c := classifyStatus("groq", reqErr.HTTPStatusCode, reqErr.Error(), err); c != nil {
			return c
		}
	}

	return classifyNetError("groq", err)
}

func normalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	switch role {
	case openai.ChatMessageRoleSystem,
		openai.ChatMessageRoleUser,
		openai.ChatMessageRoleAssistant:
		return role
	default:
		return openai.ChatMessageRoleUser
	}
}

func clampMaxTokens(n int) int {
	if n <= 0 {
		return 0
	}
	return n
}
