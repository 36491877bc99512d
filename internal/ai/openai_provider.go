package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const providerOpenAI = "openai"

type OpenAIOptions struct {
	APIKey         string
	Model          string
	BaseURL        string // defaults to https://api.openai.com/v1
	TimeoutSeconds int
}

type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(opts OpenAIOptions) *OpenAIProvider {
	timeoutSeconds := opts.TimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}

	clientCfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		clientCfg.BaseURL = opts.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second}

	model := opts.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  make([]openai.ChatCompletionMessage, 0, len(req.Messages)),
		MaxTokens: req.MaxTokens,
	}
	for _, m := range req.Messages {
		chatReq.Messages = append(chatReq.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	if req.Temperature != nil {
		chatReq.Temperature = float32(*req.Temperature)
	}
	if req.Schema != nil {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: req.Schema.Schema,
			},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return Completion{}, &UpstreamServiceError{Provider: providerOpenAI, StatusCode: statusCode(err), Err: err}
	}
	if len(resp.Choices) == 0 {
		return Completion{}, &UpstreamServiceError{Provider: providerOpenAI, Err: errors.New("response does not contain choices")}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return Completion{}, &UpstreamServiceError{Provider: providerOpenAI, Err: errors.New("response content is empty")}
	}

	return Completion{
		Text:         content,
		Model:        resp.Model,
		FinishReason: string(resp.Choices[0].FinishReason),
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
