package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/pkg/log"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

// RequestTimeout 与总结生成锁的最长持有时间一致
const RequestTimeout = 90 * time.Second

const (
	StyleConcise  = 1
	StyleDetailed = 2
)

var ErrEmptyCompletion = errors.New("llm: empty completion")

// Client 通过 Ollama 的 OpenAI 兼容接口调用模型
type Client struct {
	client openai.Client
	model  string
}

func NewClient(cfg *config.OllamaConfig) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		client: openai.NewClient(
			option.WithBaseURL(base+"/v1/"),
			// Ollama 不校验 key，但 SDK 要求非空
			option.WithAPIKey("ollama"),
			option.WithRequestTimeout(RequestTimeout),
			option.WithMaxRetries(0),
		),
		model: cfg.Model,
	}
}

// Summarize 生成电影讨论总结
func (c *Client) Summarize(ctx context.Context, movieTitle, samples string, style, maxLength int) (string, error) {
	prompt := BuildSummaryPrompt(movieTitle, samples, style, maxLength)

	startTime := time.Now()
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.7),
	}
	if maxLength > 0 {
		params.MaxTokens = openai.Int(int64(maxLength) * 2)
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		log.L.Error("failed to gen summary", zap.String("movie", movieTitle), zap.Error(err))
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	log.L.Info("gen summary", zap.String("movie", movieTitle), zap.Duration("gen time", time.Since(startTime)))
	return content, nil
}

// Ping 探测模型服务是否可用
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.client.Models.List(ctx)
	return err
}

func BuildSummaryPrompt(movieTitle, samples string, style, maxLength int) string {
	styleDesc := "简洁明了，突出重点"
	if style == StyleDetailed {
		styleDesc = "详细全面，包含具体例子"
	}
	return fmt.Sprintf(
		"你是一个专业的电影评论分析师。请根据以下用户对电影《%s》的评论，生成一个%s的总结报告。\n\n"+
			"要求：\n"+
			"1. 分析评论中的主要观点和情感倾向\n"+
			"2. 总结突出的优点和主要槽点\n"+
			"3. 识别常见的关键词和主题\n"+
			"4. 评估总体评价倾向\n"+
			"5. 总结长度控制在%d字以内\n\n"+
			"用户评论样本：\n%s\n\n"+
			"请用中文回复，结构清晰，直接给出总结内容：",
		movieTitle, styleDesc, maxLength, samples,
	)
}
