package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJSONFormat(t *testing.T) {
	require.NoError(t, Init("debug", "json", "stdout"))
	defer Init("info", "text", "stdout")

	var buf bytes.Buffer
	SetOutput(&buf)

	WithFields(map[string]interface{}{"match_id": "m1"}).Info("settled")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "m1", line["match_id"])
	assert.Equal(t, "settled", line["msg"])
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
}

func TestInitUnknownLevelFallsBackToInfo(t *testing.T) {
	require.NoError(t, Init("nope", "text", "stderr"))
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}

func TestInitFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Init("info", "text", path))
	defer Init("info", "text", "stdout")
	assert.FileExists(t, path)
}
