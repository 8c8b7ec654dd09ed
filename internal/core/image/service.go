package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strings"
	"time"

	"recipe-remix/internal/pkg/common"

	_ "image/gif" // 支援 GIF
	_ "image/png" // 支援 PNG

	_ "golang.org/x/image/webp" // 支援 WebP
)

// Service 圖片處理服務
// 接受 URL 或 data URI，驗證大小與格式後統一轉為 JPEG data URI
type Service struct {
	maxSizeBytes int64
	httpClient   *http.Client
}

// NewService 創建新的圖片處理服務
func NewService(maxSizeBytes int64) *Service {
	return &Service{
		maxSizeBytes: maxSizeBytes,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// load 取得原始圖片位元組：URL 下載或解碼 data URI
func (s *Service) load(imageData string) ([]byte, error) {
	if strings.HasPrefix(imageData, "http://") || strings.HasPrefix(imageData, "https://") {
		resp, err := s.httpClient.Get(imageData)
		if err != nil {
			return nil, common.ErrInvalidImageFormat.WithCause(fmt.Errorf("failed to download image: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, common.ErrInvalidImageFormat.WithCause(fmt.Errorf("failed to download image: status code %d", resp.StatusCode))
		}

		imageBytes, err := io.ReadAll(io.LimitReader(resp.Body, s.maxSizeBytes+1))
		if err != nil {
			return nil, common.ErrInvalidImageFormat.WithCause(fmt.Errorf("failed to read image data: %w", err))
		}
		if int64(len(imageBytes)) > s.maxSizeBytes {
			return nil, common.ErrInvalidImageSize.WithCause(fmt.Errorf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes))
		}
		return imageBytes, nil
	}

	// 處理 base64 格式
	if !strings.HasPrefix(imageData, "data:image/") {
		return nil, common.ErrInvalidImageFormat.WithCause(fmt.Errorf("invalid image data format"))
	}
	parts := strings.Split(imageData, ",")
	if len(parts) != 2 {
		return nil, common.ErrInvalidImageFormat.WithCause(fmt.Errorf("invalid base64 data format"))
	}

	decodedData, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, common.ErrInvalidImageFormat.WithCause(fmt.Errorf("failed to decode base64 data: %w", err))
	}
	if int64(len(decodedData)) > s.maxSizeBytes {
		return nil, common.ErrInvalidImageSize.WithCause(fmt.Errorf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes))
	}
	return decodedData, nil
}

// ProcessImage 處理圖片：驗證後轉換為 JPEG data URI
func (s *Service) ProcessImage(imageData string) (string, error) {
	raw, err := s.load(imageData)
	if err != nil {
		return "", err
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", common.ErrInvalidImageFormat.WithCause(fmt.Errorf("failed to decode image: %w", err))
	}
	if !isSupportedFormat(format) {
		return "", common.ErrInvalidImageFormat.WithCause(fmt.Errorf("unsupported image format: %s", format))
	}

	// 統一轉為 JPEG，降低送往 AI 的負載差異
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", common.ErrInvalidImageFormat.WithCause(fmt.Errorf("failed to encode image as JPEG: %w", err))
	}

	encodedData := base64.StdEncoding.EncodeToString(buf.Bytes())
	return fmt.Sprintf("data:image/jpeg;base64,%s", encodedData), nil
}

// ValidateImage 驗證圖片但不轉換
func (s *Service) ValidateImage(imageData string) error {
	raw, err := s.load(imageData)
	if err != nil {
		return err
	}

	_, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return common.ErrInvalidImageFormat.WithCause(fmt.Errorf("failed to decode image: %w", err))
	}
	if !isSupportedFormat(format) {
		return common.ErrInvalidImageFormat.WithCause(fmt.Errorf("unsupported image format: %s", format))
	}
	return nil
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"jpg":  true,
		"png":  true,
		"gif":  true,
		"webp": true,
	}
	return supportedFormats[format]
}
