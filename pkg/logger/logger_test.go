package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextKeysAreLogged(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "debug", "json")

	ctx := WithContext(context.Background(), RequestIDKey, "req-1")
	ctx = WithContext(ctx, GuideIDKey, "guide-9")
	Info(ctx, "guide generated", "steps", 4)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "guide generated", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "guide-9", line["guide_id"])
	assert.Equal(t, float64(4), line["steps"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "warn", "text")

	Info(context.Background(), "hidden")
	assert.Zero(t, buf.Len())

	Error(context.Background(), "shown", assert.AnError)
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), assert.AnError.Error())
}
