package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// OpenAI calls the OpenAI Responses API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a new OpenAI client. The SDK does not retry; the caller
// answers with a fixed apology instead.
func NewOpenAI(apiKey, model, baseURL string) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAI{client: &client, model: model}
}

// Complete sends the prompt as instructions plus a single user message.
func (o *OpenAI) Complete(ctx context.Context, p Prompt) (*Response, error) {
	params := responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(int64(p.maxTokens())),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(p.User, responses.EasyInputMessageRoleUser),
			},
		},
	}
	if p.System != "" {
		params.Instructions = openai.String(p.System)
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api: %w", err)
	}

	return &Response{
		Content:    resp.OutputText(),
		Provider:   "openai",
		TokensUsed: int(resp.Usage.TotalTokens),
	}, nil
}
