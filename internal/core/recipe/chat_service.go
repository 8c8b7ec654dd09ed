package recipe

import (
	"context"
	"fmt"
	"strings"

	"recipe-remix/internal/core/ai/openrouter"
	"recipe-remix/internal/core/ai/service"
	"recipe-remix/internal/pkg/common"

	"go.uber.org/zap"
)

// ChatService 食譜對話服務
// 每輪帶完整訊息紀錄、目前所選食譜與食材集合呼叫後端，
// 模型透過 update_recipe 工具提出食譜更新
type ChatService struct {
	aiService  *service.Service
	normalizer *Normalizer
}

// NewChatService 創建食譜對話服務
func NewChatService(aiService *service.Service) *ChatService {
	return &ChatService{
		aiService:  aiService,
		normalizer: NewNormalizer(),
	}
}

// ChatReply 一輪對話的結果：助理訊息與可選的食譜更新
type ChatReply struct {
	Message string
	Patch   *Patch
}

// updateRecipeTool update_recipe 工具定義，欄位結構對應 Patch
func updateRecipeTool() []openrouter.Tool {
	return []openrouter.Tool{
		{
			Type: "function",
			Function: openrouter.ToolFunction{
				Name:        "update_recipe",
				Description: "Update the recipe with modifications based on user requests. Use this when the user asks to change ingredients, adjust cooking time, modify steps, or make any recipe modifications.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"ingredientsNeeded": map[string]interface{}{
							"type":        "array",
							"items":       map[string]interface{}{"type": "string"},
							"description": "Updated list of all ingredients needed for the recipe",
						},
						"steps": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"stepNumber":    map[string]interface{}{"type": "number", "description": "The step number (1, 2, 3, etc.)"},
									"instruction":   map[string]interface{}{"type": "string", "description": "Clear instruction for this step"},
									"estimatedTime": map[string]interface{}{"type": "string", "description": "Estimated time for this step (e.g., \"5 min\")"},
								},
								"required": []string{"stepNumber", "instruction"},
							},
							"description": "Updated cooking steps with step numbers and instructions",
						},
						"cookTime": map[string]interface{}{
							"type":        "number",
							"description": "Updated total cook time in minutes",
						},
						"description": map[string]interface{}{
							"type":        "string",
							"description": "Updated recipe description",
						},
						"explanation": map[string]interface{}{
							"type":        "string",
							"description": "Explanation of why these changes work and what was modified",
						},
					},
					"required": []string{"explanation"},
				},
			},
		},
	}
}

// buildChatSystemPrompt 以目前食譜與食材組合系統提示詞
func buildChatSystemPrompt(rec Recipe, available []Ingredient) string {
	names := make([]string, 0, len(available))
	for _, ing := range available {
		names = append(names, ing.Name)
	}
	availableList := "None specified"
	if len(names) > 0 {
		availableList = strings.Join(names, ", ")
	}
	neededList := "None specified"
	if len(rec.IngredientsNeeded) > 0 {
		neededList = strings.Join(rec.IngredientsNeeded, ", ")
	}

	return fmt.Sprintf(`You are an expert cooking assistant helping users modify recipes in real-time.

Current Recipe: "%s"
Cook Time: %d minutes
Difficulty: %s
Ingredients Needed: %s
Available Ingredients: %s

Your role:
- Help users when they're missing ingredients by suggesting substitutions
- Adapt recipes for dietary restrictions, portion sizes, time constraints, or skill levels
- Provide clear, concise cooking advice
- When suggesting recipe changes, use the update_recipe tool to make modifications

Keep responses conversational and helpful. Focus on practical cooking solutions.`,
		rec.Title, rec.CookTime, rec.Difficulty, neededList, availableList)
}

// Send 送出一輪對話
func (s *ChatService) Send(ctx context.Context, messages []ChatMessage, rec Recipe, available []Ingredient) (*ChatReply, error) {
	msgs := make([]openrouter.Message, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, openrouter.Message{Role: m.Role, Content: m.Content})
	}

	result, err := s.aiService.Chat(ctx, buildChatSystemPrompt(rec, available), msgs, updateRecipeTool())
	if err != nil {
		return nil, common.ErrServiceFailure.WithCause(fmt.Errorf("recipe chat: %w", err))
	}

	reply := &ChatReply{Message: result.Content}

	if args, ok := result.ToolCalls["update_recipe"]; ok && args != "" {
		patch, err := s.normalizer.Patch(args)
		if err != nil {
			common.LogError("食譜更新工具引數正規化失敗",
				zap.Error(err),
				zap.String("raw_preview", common.Truncate(args, 300)),
			)
			return nil, err
		}
		reply.Patch = patch
	}

	common.LogInfo("對話輪完成",
		zap.String("recipe", rec.Title),
		zap.Int("訊息數", len(messages)),
		zap.Bool("has_patch", reply.Patch != nil),
	)
	return reply, nil
}
