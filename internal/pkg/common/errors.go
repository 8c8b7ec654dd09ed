package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap 回傳原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// WithCause 以既有錯誤定義為模板，附上原始錯誤
func (e *CustomError) WithCause(err error) *CustomError {
	return NewError(e.Code, e.Message, e.Status, err)
}

// HasCode 檢查錯誤鏈中是否包含指定錯誤代碼
func HasCode(err error, code string) bool {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// StatusOf 取得錯誤對應的 HTTP 狀態碼，非 CustomError 一律視為 500
func StatusOf(err error) int {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Status
	}
	return http.StatusInternalServerError
}

// CodeOf 取得錯誤代碼
func CodeOf(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrCodeInternalError
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeNotFound        = "NOT_FOUND"         // 404
	ErrCodeRequestTimeout  = "REQUEST_TIMEOUT"   // 408
	ErrCodeConflict        = "CONFLICT"          // 409
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504

	// 流程控制錯誤代碼
	ErrCodeInvalidInput        = "INVALID_INPUT"         // 進入外部呼叫前就被擋下的輸入錯誤
	ErrCodeServiceFailure      = "SERVICE_FAILURE"       // 外部協作方網路／HTTP 層失敗
	ErrCodeMalformedAIResponse = "MALFORMED_AI_RESPONSE" // AI 有回應但無法正規化
	ErrCodeStaleResponse       = "STALE_RESPONSE"        // 已被取代／取消的請求回應
	ErrCodePersistenceFailure  = "PERSISTENCE_FAILURE"   // 儲存層操作失敗
	ErrCodeOperationInFlight   = "OPERATION_IN_FLIGHT"   // 同類操作尚未完成
	ErrCodeSessionNotFound     = "SESSION_NOT_FOUND"     // 會話不存在或已過期
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound        = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrRequestTimeout  = NewError(ErrCodeRequestTimeout, "請求超時", http.StatusRequestTimeout, nil)
	ErrConflict        = NewError(ErrCodeConflict, "資源衝突", http.StatusConflict, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError      = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "服務暫時不可用", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout     = NewError(ErrCodeGatewayTimeout, "網關超時", http.StatusGatewayTimeout, nil)

	// 流程控制錯誤，狀態機據此決定回滾與重試策略
	ErrInvalidInput        = NewError(ErrCodeInvalidInput, "輸入驗證失敗", http.StatusBadRequest, nil)
	ErrServiceFailure      = NewError(ErrCodeServiceFailure, "外部服務呼叫失敗", http.StatusBadGateway, nil)
	ErrMalformedAIResponse = NewError(ErrCodeMalformedAIResponse, "AI 回應格式無法解析", http.StatusBadGateway, nil)
	ErrStaleResponse       = NewError(ErrCodeStaleResponse, "回應已過期", http.StatusConflict, nil)
	ErrPersistenceFailure  = NewError(ErrCodePersistenceFailure, "儲存操作失敗", http.StatusServiceUnavailable, nil)
	ErrOperationInFlight   = NewError(ErrCodeOperationInFlight, "同類型操作進行中", http.StatusConflict, nil)
	ErrSessionNotFound     = NewError(ErrCodeSessionNotFound, "會話不存在", http.StatusNotFound, nil)

	// 圖片相關錯誤
	ErrInvalidImageFormat = NewError("INVALID_IMAGE_FORMAT", "無效的圖片格式", http.StatusBadRequest, nil)
	ErrInvalidImageSize   = NewError("INVALID_IMAGE_SIZE", "圖片大小超出限制", http.StatusBadRequest, nil)
)

// MalformedAIError 帶原始 AI 回應內容的正規化錯誤，供診斷記錄使用
type MalformedAIError struct {
	Raw string // 原始回應全文
	Err error
}

func (e *MalformedAIError) Error() string {
	if e.Err != nil {
		return "malformed AI response: " + e.Err.Error()
	}
	return "malformed AI response"
}

// Unwrap 回傳解析錯誤
func (e *MalformedAIError) Unwrap() error {
	return e.Err
}

// NewMalformedAIError 創建正規化錯誤，保留原始回應全文
func NewMalformedAIError(raw string, err error) error {
	return ErrMalformedAIResponse.WithCause(&MalformedAIError{Raw: raw, Err: err})
}

// RawAIResponse 從錯誤鏈中取出原始 AI 回應，找不到時回傳空字串
func RawAIResponse(err error) string {
	var me *MalformedAIError
	if errors.As(err, &me) {
		return me.Raw
	}
	return ""
}

// IsMalformedAIResponse 檢查是否為 AI 回應正規化錯誤
func IsMalformedAIResponse(err error) bool {
	return HasCode(err, ErrCodeMalformedAIResponse)
}

// IsInvalidInput 檢查是否為輸入驗證錯誤
func IsInvalidInput(err error) bool {
	return HasCode(err, ErrCodeInvalidInput) ||
		HasCode(err, "INVALID_IMAGE_FORMAT") ||
		HasCode(err, "INVALID_IMAGE_SIZE")
}
