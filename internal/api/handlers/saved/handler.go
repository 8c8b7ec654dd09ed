package saved

import (
	"net/http"

	sessioncore "recipe-remix/internal/core/session"
	"recipe-remix/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Handler 已儲存食譜處理程序
type Handler struct {
	manager *sessioncore.Manager
}

// NewHandler 創建已儲存食譜處理程序
func NewHandler(manager *sessioncore.Manager) *Handler {
	return &Handler{manager: manager}
}

func respondError(c *gin.Context, err error) {
	c.JSON(common.StatusOf(err), common.ErrorResponse{
		Code:    common.CodeOf(err),
		Message: err.Error(),
	})
}

func (h *Handler) load(c *gin.Context) (*sessioncore.Session, bool) {
	s, err := h.manager.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return s, true
}

// HandleSave 儲存目前所選食譜
func (h *Handler) HandleSave(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}
	saved, err := s.SaveSelected(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// HandleList 列出已儲存食譜
func (h *Handler) HandleList(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}
	items, err := s.ListSaved(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": items})
}

// HandleCount 已儲存食譜數量
func (h *Handler) HandleCount(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}
	count, err := s.CountSaved(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// HandleDelete 刪除已儲存食譜
func (h *Handler) HandleDelete(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}
	if err := s.DeleteSaved(c.Request.Context(), c.Param("savedID")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// FavoriteRequest 最愛狀態請求
type FavoriteRequest struct {
	Favorite *bool `json:"favorite" binding:"required"`
}

// HandleSetFavorite 切換最愛狀態
func (h *Handler) HandleSetFavorite(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}

	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.ErrInvalidInput.WithCause(err))
		return
	}

	if err := s.SetSavedFavorite(c.Request.Context(), c.Param("savedID"), *req.Favorite); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorite": *req.Favorite})
}
