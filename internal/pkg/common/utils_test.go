package common

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))

	// 多位元組字元在字元邊界切割，結果仍是合法 UTF-8
	got := Truncate("番茄炒蛋食譜預覽", 5)
	assert.Equal(t, "番茄炒蛋食...", got)
	assert.True(t, utf8.ValidString(got))

	// 位元組數超過上限但字元數沒有，不截斷
	assert.Equal(t, "番茄", Truncate("番茄", 3))
}

func TestGenerateUUIDUnique(t *testing.T) {
	assert.NotEqual(t, GenerateUUID(), GenerateUUID())
}
