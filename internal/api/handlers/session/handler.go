package session

import (
	"net/http"
	"strconv"

	"recipe-remix/internal/core/image"
	"recipe-remix/internal/core/recipe"
	sessioncore "recipe-remix/internal/core/session"
	"recipe-remix/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 會話流程處理程序
type Handler struct {
	manager  *sessioncore.Manager
	imageSvc *image.Service
}

// NewHandler 創建會話處理程序
func NewHandler(manager *sessioncore.Manager, imageSvc *image.Service) *Handler {
	return &Handler{manager: manager, imageSvc: imageSvc}
}

// respondError 依錯誤鏈對應 HTTP 狀態碼與錯誤代碼
func respondError(c *gin.Context, err error) {
	c.JSON(common.StatusOf(err), common.ErrorResponse{
		Code:    common.CodeOf(err),
		Message: err.Error(),
	})
}

// load 解析路徑中的會話 ID 並取得會話
func (h *Handler) load(c *gin.Context) (*sessioncore.Session, bool) {
	s, err := h.manager.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return s, true
}

// HandleCreate 創建新會話
func (h *Handler) HandleCreate(c *gin.Context) {
	s := h.manager.Create()
	c.JSON(http.StatusCreated, s.Snapshot())
}

// HandleSnapshot 查詢會話狀態
func (h *Handler) HandleSnapshot(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// HandleReset 重置會話回 Upload
func (h *Handler) HandleReset(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}
	s.Reset()
	c.JSON(http.StatusOK, s.Snapshot())
}

// AnalyzeRequest 圖片辨識請求
type AnalyzeRequest struct {
	Image string `json:"image" binding:"required"` // URL 或 data URI
}

// HandleAnalyze 圖片食材辨識
func (h *Handler) HandleAnalyze(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.ErrInvalidInput.WithCause(err))
		return
	}

	// 先驗證並統一格式，避免把壞圖片送進 AI
	processed, err := h.imageSvc.ProcessImage(req.Image)
	if err != nil {
		common.LogWarn("圖片驗證失敗",
			zap.String("session_id", s.ID),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	items, err := s.AnalyzeImage(c.Request.Context(), processed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": items, "state": sessioncore.StateIngredients})
}

// HandleLoadSample 載入樣本食材
func (h *Handler) HandleLoadSample(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}
	items, err := s.LoadSample()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": items, "state": sessioncore.StateIngredients})
}

// HandleAddIngredient 手動新增食材
func (h *Handler) HandleAddIngredient(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}

	var ing recipe.Ingredient
	if err := c.ShouldBindJSON(&ing); err != nil {
		respondError(c, common.ErrInvalidInput.WithCause(err))
		return
	}

	items, err := s.AddIngredient(ing)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": items})
}

// HandleRemoveIngredient 依位置移除食材
func (h *Handler) HandleRemoveIngredient(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("idx"))
	if err != nil {
		respondError(c, common.ErrInvalidInput.WithCause(err))
		return
	}

	items, err := s.RemoveIngredient(index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": items})
}

// HandleFindRecipes 食譜生成
func (h *Handler) HandleFindRecipes(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}
	groups, err := s.FindRecipes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cuisines": groups, "state": sessioncore.StateRecipes})
}

// SelectRequest 選取食譜請求
type SelectRequest struct {
	RecipeID string `json:"recipeId" binding:"required"`
}

// HandleSelectRecipe 選取食譜
func (h *Handler) HandleSelectRecipe(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}

	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.ErrInvalidInput.WithCause(err))
		return
	}

	selected, err := s.SelectRecipe(req.RecipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": selected, "state": sessioncore.StateCookingInstructions})
}

// HandleSubstitutions 替換建議流程
func (h *Handler) HandleSubstitutions(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}
	result, err := s.RequestSubstitutions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleBack 返回導航
func (h *Handler) HandleBack(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}
	state, err := s.Back()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// HandleOpenSaved 進入已儲存食譜分支
func (h *Handler) HandleOpenSaved(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": s.OpenSavedRecipes()})
}

// CancelRequest 取消操作請求
type CancelRequest struct {
	Operation string `json:"operation" binding:"required"`
}

// HandleCancel 取消進行中的操作
func (h *Handler) HandleCancel(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.ErrInvalidInput.WithCause(err))
		return
	}

	if err := s.Cancel(sessioncore.Operation(req.Operation)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": req.Operation})
}

// ChatRequest 對話請求
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// HandleChat 送出一輪對話
func (h *Handler) HandleChat(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.ErrInvalidInput.WithCause(err))
		return
	}

	result, err := s.Chat(c.Request.Context(), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleConfirmPatch 確認套用待定補丁
func (h *Handler) HandleConfirmPatch(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}
	merged, err := s.ConfirmPatch()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": merged})
}

// HandleDiscardPatch 捨棄待定補丁
func (h *Handler) HandleDiscardPatch(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}
	if err := s.DiscardPatch(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"discarded": true})
}
