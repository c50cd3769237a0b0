package polish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DeepSeek 聊天补全接口，兼容 OpenAI 协议
	defaultDeepSeekEndpoint = "https://api.deepseek.com/v1/chat/completions"
)

// DeepSeekClient OpenAI 兼容的聊天补全客户端
type DeepSeekClient struct {
	apiKey      string
	baseURL     string
	model       string
	httpClient  *http.Client
	maxRetries  int
	temperature float32
}

// NewDeepSeekClient 创建客户端
func NewDeepSeekClient(opts ...Option) (Client, error) {
	cfg := NewConfig(opts...)

	if cfg.APIKey == "" {
		return nil, NewPolishError(ErrCodeInvalidAPIKey, ErrMsgInvalidAPIKey)
	}

	return &DeepSeekClient{
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		maxRetries:  cfg.MaxRetries,
		temperature: cfg.Temperature,
	}, nil
}

// Name 返回模型名称
func (c *DeepSeekClient) Name() string {
	return c.model
}

// Chat 发送聊天补全请求
func (c *DeepSeekClient) Chat(ctx context.Context, messages []Message, options ...ChatOption) (*Response, error) {
	if len(messages) == 0 {
		return nil, NewPolishError(ErrCodeInvalidRequest, "messages cannot be empty")
	}

	opts := &ChatOptions{}
	for _, opt := range options {
		opt(opts)
	}

	req := &chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}
	if opts.MaxTokens != nil {
		req.MaxTokens = *opts.MaxTokens
	}

	resp, err := c.sendRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.processResponse(resp)
}

// sendRequest 发送请求，服务端错误和网络错误按指数退避重试
func (c *DeepSeekClient) sendRequest(ctx context.Context, req *chatRequest) (*chatResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, NewPolishError(ErrCodeInvalidRequest, fmt.Sprintf("failed to marshal request: %v", err))
	}

	var (
		resp    *http.Response
		lastErr error
	)
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, NewPolishError(ErrCodeTimeout, ctx.Err().Error())
			case <-time.After(time.Duration(1<<attempt) * 100 * time.Millisecond):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(jsonData))
		if err != nil {
			return nil, NewPolishError(ErrCodeInvalidRequest, fmt.Sprintf("failed to create request: %v", err))
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("Accept", "application/json")

		resp, err = c.httpClient.Do(httpReq)
		if err == nil && resp.StatusCode < 500 {
			lastErr = nil
			break
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp.Body.Close()
			resp = nil
		}
	}

	if resp == nil {
		if ctx.Err() != nil {
			return nil, NewPolishError(ErrCodeTimeout, ctx.Err().Error())
		}
		return nil, NewPolishError(ErrCodeNetworkError, fmt.Sprintf("request failed: %v", lastErr))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewPolishError(ErrCodeServerError, fmt.Sprintf("failed to read response: %v", err))
	}

	var chatResp chatResponse
	jsonErr := json.Unmarshal(body, &chatResp)

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, NewPolishError(ErrCodeInvalidAPIKey, ErrMsgInvalidAPIKey)
		}
		if jsonErr == nil && chatResp.Error != nil && chatResp.Error.Message != "" {
			return nil, NewPolishError(ErrCodeServerError,
				fmt.Sprintf("API error: %s (%s)", chatResp.Error.Message, chatResp.Error.Type))
		}
		return nil, NewPolishError(ErrCodeServerError,
			fmt.Sprintf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if jsonErr != nil {
		return nil, NewPolishError(ErrCodeServerError, fmt.Sprintf("failed to parse response: %v", jsonErr))
	}
	return &chatResp, nil
}

func (c *DeepSeekClient) processResponse(resp *chatResponse) (*Response, error) {
	if len(resp.Choices) == 0 {
		return nil, NewPolishError(ErrCodeServerError, "empty response from API")
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}
	return &Response{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		TokenCount: resp.Usage.TotalTokens,
		ModelName:  model,
	}, nil
}

func init() {
	RegisterClient("deepseek", NewDeepSeekClient)
}
