package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

const defaultClaudeModel = "claude-sonnet-4-5-20250929"

// ClaudeProvider is the scoring judge's provider. It is a different
// model family than the experiment provider on purpose: the original
// harness scored with a model not used in the debates to avoid
// self-preference bias.
type ClaudeProvider struct {
	client *anthropic.Client
	model  string

	rateLimit BackoffPolicy
	transient BackoffPolicy
}

func NewClaudeProvider(apiKey string, baseURL string, model string) (*ClaudeProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: claude: ANTHROPIC_API_KEY not set", ErrAuth)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0), // retries handled here, not in the SDK
	}
	if v := strings.TrimSpace(baseURL); v != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(v, "/")))
	}

	m := strings.TrimSpace(model)
	if m == "" {
		m = defaultClaudeModel
	}

	client := anthropic.NewClient(opts...)
	return &ClaudeProvider{
		client:    &client,
		model:     m,
		rateLimit: rateLimitPolicy,
		transient: transientPolicy,
	}, nil
}

func (p *ClaudeProvider) Name() string {
	return "claude"
}

func (p *ClaudeProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	if p == nil || p.client == nil {
		return nil, errors.New("llm: claude: nil client")
	}
	if ctx == nil {
		return nil, errors.New("llm: claude: nil context")
	}
	if req == nil {
		return nil, errors.New("llm: claude: nil request")
	}

	params := p.buildParams(req)

	var rateLimitRetries, transientRetries int
	for {
		start := time.Now()
		msg, err := p.client.Messages.New(ctx, params)
		latency := time.Since(start).Milliseconds()

		if err == nil {
			return claudeToResponse(msg, latency), nil
		}

		err = classifyClaudeError(err)
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

func (p *ClaudeProvider) buildParams(req *Request) anthropic.MessageNewParams {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = p.model
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := anthropic.MessageParamRoleUser
		if strings.EqualFold(strings.TrimSpace(m.Role), "assistant") {
			role = anthropic.MessageParamRoleAssistant
		}
		messages = append(messages, anthropic.MessageParam{
			Role:    role,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(m.Content)},
		})
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  messages,
	}
	if system := strings.TrimSpace(req.System); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system, Type: "text"}}
	}
	if req.Temperature != 0 {
		params.Temperature = param.NewOpt(req.Temperature)
	}
	return params
}

func claudeToResponse(msg *anthropic.Message, latencyMs int64) *Response {
	if msg == nil {
		return nil
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}

	return &Response{
		Text:       sb.String(),
		StopReason: string(msg.StopReason),
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
		LatencyMs:  latencyMs,
		StatusCode: 200,
	}
}

func classifyClaudeError(err error) error {
	if err == nil {
		return nil
	}

	var sdkErr *anthropic.Error
	if errors.As(err, &sdkErr) {
		if c := classifyStatus("claude", sdkErr.StatusCode, strings.TrimSpace(sdkErr.RawJSON()), err); c != nil {
			return c
		}
		return err
	}

	return classifyNetError("claude", err)
}
