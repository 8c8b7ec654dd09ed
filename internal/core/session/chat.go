package session

import (
	"context"
	"fmt"

	"recipe-remix/internal/core/recipe"
	"recipe-remix/internal/core/storage"
	"recipe-remix/internal/pkg/common"

	"go.uber.org/zap"
)

// ChatTurnResult 一輪對話的結果
type ChatTurnResult struct {
	Message      string        `json:"message"`
	PendingPatch *recipe.Patch `json:"pendingPatch,omitempty"`
}

// Chat 送出一輪對話（僅限 CookingInstructions，不改變頂層狀態）
// 每輪帶完整訊息紀錄、目前所選食譜與食材集合；
// 新的使用者輪開始時，未確認的舊補丁直接過期
func (s *Session) Chat(ctx context.Context, content string) (*ChatTurnResult, error) {
	s.mu.Lock()
	s.touch()
	if err := s.requireState(StateCookingInstructions); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.selected == nil {
		s.mu.Unlock()
		return nil, common.ErrInvalidInput.WithCause(fmt.Errorf("no recipe selected"))
	}
	if content == "" {
		s.mu.Unlock()
		return nil, common.ErrInvalidInput.WithCause(fmt.Errorf("chat message is empty"))
	}
	seq, err := s.begin(OpChat)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	// 新輪開始，未確認的補丁過期
	if s.pending != nil {
		common.LogDebug("未確認的補丁因新對話輪而過期",
			zap.String("session_id", s.ID),
		)
		s.pending = nil
	}

	s.chatLog = append(s.chatLog, recipe.ChatMessage{Role: "user", Content: content})
	if len(s.chatLog) > s.maxChat {
		s.chatLog = s.chatLog[len(s.chatLog)-s.maxChat:]
	}

	messages := append([]recipe.ChatMessage(nil), s.chatLog...)
	selected := s.selected.Clone()
	available := s.ingredients.Snapshot()
	s.mu.Unlock()

	reply, err := s.collab.Chatter.Send(ctx, messages, selected, available)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finish(OpChat, seq) {
		return nil, common.ErrStaleResponse
	}
	if err != nil {
		// 使用者訊息保留在紀錄中，整輪可重試
		return nil, err
	}

	s.chatLog = append(s.chatLog, recipe.ChatMessage{Role: "assistant", Content: reply.Message})
	if len(s.chatLog) > s.maxChat {
		s.chatLog = s.chatLog[len(s.chatLog)-s.maxChat:]
	}
	if reply.Patch != nil {
		// 新補丁靜默取代未確認的舊補丁
		s.pending = reply.Patch
	}

	out := &ChatTurnResult{Message: reply.Message}
	if s.pending != nil {
		p := *s.pending
		out.PendingPatch = &p
	}
	return out, nil
}

// ConfirmPatch 確認套用待定補丁
// 合併結果成為新的所選食譜，並回寫目錄，讓返回 Recipes 時反映編輯
func (s *Session) ConfirmPatch() (*recipe.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.requireState(StateCookingInstructions); err != nil {
		return nil, err
	}
	if s.selected == nil {
		return nil, common.ErrInvalidInput.WithCause(fmt.Errorf("no recipe selected"))
	}
	if s.pending == nil {
		return nil, common.ErrInvalidInput.WithCause(fmt.Errorf("no pending patch to confirm"))
	}

	merged := MergePatch(*s.selected, *s.pending, s.ingredients.Snapshot())
	s.selected = &merged
	s.pending = nil
	s.catalog.UpdateRecipe(merged.ID, merged)

	common.LogInfo("已套用食譜補丁",
		zap.String("session_id", s.ID),
		zap.String("recipe", merged.Title),
	)

	out := merged.Clone()
	return &out, nil
}

// DiscardPatch 捨棄待定補丁
func (s *Session) DiscardPatch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.pending == nil {
		return common.ErrInvalidInput.WithCause(fmt.Errorf("no pending patch to discard"))
	}
	s.pending = nil
	return nil
}

// SaveSelected 儲存目前所選食譜與食材快照
// 儲存失敗不影響流程狀態，使用者可繼續操作
func (s *Session) SaveSelected(ctx context.Context) (*storage.SavedRecipe, error) {
	s.mu.Lock()
	s.touch()
	if s.selected == nil {
		s.mu.Unlock()
		return nil, common.ErrInvalidInput.WithCause(fmt.Errorf("no recipe selected"))
	}
	selected := s.selected.Clone()
	ingredients := s.ingredients.Snapshot()
	s.mu.Unlock()

	saved, err := s.collab.Store.Save(ctx, s.ID, selected, ingredients)
	if err != nil {
		common.LogWarn("食譜儲存失敗",
			zap.String("session_id", s.ID),
			zap.String("recipe", selected.Title),
			zap.Error(err),
		)
		return nil, err
	}
	return saved, nil
}

// ListSaved 列出會話的已儲存食譜
func (s *Session) ListSaved(ctx context.Context) ([]storage.SavedRecipe, error) {
	return s.collab.Store.List(ctx, s.ID)
}

// DeleteSaved 刪除已儲存食譜
func (s *Session) DeleteSaved(ctx context.Context, savedID string) error {
	return s.collab.Store.Delete(ctx, s.ID, savedID)
}

// SetSavedFavorite 切換已儲存食譜的最愛狀態
func (s *Session) SetSavedFavorite(ctx context.Context, savedID string, favorite bool) error {
	return s.collab.Store.SetFavorite(ctx, s.ID, savedID, favorite)
}

// CountSaved 已儲存食譜數量
func (s *Session) CountSaved(ctx context.Context) (int, error) {
	return s.collab.Store.Count(ctx, s.ID)
}
