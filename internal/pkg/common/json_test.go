package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	var v struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, ParseJSON(`{"name": "tomato", "count": 3}`, &v))
	assert.Equal(t, "tomato", v.Name)
	assert.Equal(t, 3, v.Count)
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	var v map[string]interface{}
	err := ParseJSON(`{"a": 1} {"b": 2}`, &v)
	require.Error(t, err)
}

func TestParseJSONStrict(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	err := ParseJSONStrict(`{"name": "x", "extra": true}`, &v)
	require.Error(t, err)

	require.NoError(t, ParseJSON(`{"name": "x", "extra": true}`, &v))
}

func TestQuoteJSONKeys(t *testing.T) {
	assert.Equal(t, `{"name": "x", "count": 1}`, QuoteJSONKeys(`{name: "x", count: 1}`))
	// 已加引號的鍵不受影響
	assert.Equal(t, `{"name": "x"}`, QuoteJSONKeys(`{"name": "x"}`))
}

func TestToJSON(t *testing.T) {
	out, err := ToJSON(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
}
