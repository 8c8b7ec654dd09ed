package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"recipe-remix/internal/infrastructure/config"
	"recipe-remix/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client OpenRouter 客戶端
type Client struct {
	config *config.Config
	client *resty.Client
}

// NewClient 創建 OpenRouter 客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL("https://openrouter.ai/api/v1").
		SetTimeout(cfg.OpenRouter.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.OpenRouter.APIKey)).
		SetHeader("HTTP-Referer", "https://recipe-remix.app").
		SetHeader("X-Title", "Recipe Remix")

	return &Client{
		config: cfg,
		client: client,
	}
}

// Message 對話訊息，Content 為純文字
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Tool 工具定義（OpenAI 相容格式）
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction 工具函式描述
type ToolFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// ChatResult 對話完成結果
type ChatResult struct {
	Content   string            // 助理回覆文字
	ToolCalls map[string]string // 工具名稱 → 引數 JSON
}

// completionResponse chat/completions 回應結構
type completionResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateResponse 單輪生成，支援附帶圖片
func (c *Client) GenerateResponse(ctx context.Context, prompt string, imageData string) (string, error) {
	msgContent := []map[string]interface{}{
		{
			"type": "text",
			"text": prompt,
		},
	}
	if imageData != "" {
		url := imageData
		if !strings.HasPrefix(imageData, "data:image/") {
			url = fmt.Sprintf("data:image/jpeg;base64,%s", imageData)
		}
		msgContent = append(msgContent, map[string]interface{}{
			"type": "image_url",
			"image_url": map[string]string{
				"url": url,
			},
		})
	}

	req := map[string]interface{}{
		"model": c.config.OpenRouter.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": msgContent,
			},
		},
		"max_tokens": c.config.OpenRouter.MaxTokens,
	}

	result, err := c.post(ctx, req)
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

// ChatComplete 多輪對話完成，支援工具呼叫
func (c *Client) ChatComplete(ctx context.Context, system string, messages []Message, tools []Tool) (*ChatResult, error) {
	msgs := make([]map[string]interface{}, 0, len(messages)+1)
	if system != "" {
		msgs = append(msgs, map[string]interface{}{
			"role":    "system",
			"content": system,
		})
	}
	for _, m := range messages {
		msgs = append(msgs, map[string]interface{}{
			"role":    m.Role,
			"content": m.Content,
		})
	}

	req := map[string]interface{}{
		"model":      c.config.OpenRouter.Model,
		"messages":   msgs,
		"max_tokens": c.config.OpenRouter.MaxTokens,
	}
	if len(tools) > 0 {
		req["tools"] = tools
	}

	return c.post(ctx, req)
}

// post 發送 chat/completions 請求並解析回應
func (c *Client) post(ctx context.Context, body map[string]interface{}) (*ChatResult, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")

	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogError("OpenRouter API 回應錯誤",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", common.Truncate(resp.String(), 500)),
		)
		return nil, fmt.Errorf("OpenRouter API returned status %d", resp.StatusCode())
	}

	var result completionResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenRouter response")
	}

	msg := result.Choices[0].Message
	out := &ChatResult{
		Content:   msg.Content,
		ToolCalls: make(map[string]string),
	}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls[tc.Function.Name] = tc.Function.Arguments
	}
	return out, nil
}
