package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"recipe-remix/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngDataURI 產生一張 2x2 的 PNG data URI
func pngDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(buf.Bytes()))
}

func TestProcessImagePNG(t *testing.T) {
	s := NewService(1 << 20)

	out, err := s.ProcessImage(pngDataURI(t))
	require.NoError(t, err)
	// 統一轉為 JPEG data URI
	assert.True(t, strings.HasPrefix(out, "data:image/jpeg;base64,"))

	assert.NoError(t, s.ValidateImage(pngDataURI(t)))
}

func TestProcessImageInvalidData(t *testing.T) {
	s := NewService(1 << 20)

	_, err := s.ProcessImage("not an image at all")
	require.Error(t, err)
	assert.True(t, common.IsInvalidInput(err))

	// 合法 base64 但不是圖片
	raw := base64.StdEncoding.EncodeToString([]byte("plain text"))
	_, err = s.ProcessImage("data:image/png;base64," + raw)
	require.Error(t, err)
	assert.True(t, common.IsInvalidInput(err))
}

func TestProcessImageTooLarge(t *testing.T) {
	s := NewService(16)

	_, err := s.ProcessImage(pngDataURI(t))
	require.Error(t, err)
	assert.True(t, common.HasCode(err, common.ErrInvalidImageSize.Code))
}
