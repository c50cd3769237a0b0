package polish

// MessageRole 消息角色类型
type MessageRole string

const (
	// RoleSystem 系统角色
	RoleSystem MessageRole = "system"
	// RoleUser 用户角色
	RoleUser MessageRole = "user"
	// RoleAssistant 助手角色
	RoleAssistant MessageRole = "assistant"
)

// Message 对话消息
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// chatRequest OpenAI 兼容的聊天请求
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// chatResponse OpenAI 兼容的聊天响应
type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int     `json:"index"`
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Response 模型回复
type Response struct {
	Text       string // 生成的文本
	TokenCount int    // 使用的token数
	ModelName  string // 使用的模型名称
}

// Question 复习题
type Question struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// 常用模型名称
const (
	ModelDeepSeekChat = "deepseek-chat"
)
