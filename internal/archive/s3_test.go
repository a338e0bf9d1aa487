package archive

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/config"
)

type recordedPut struct {
	method      string
	path        string
	contentType string
	body        string
}

func newFakeS3(t *testing.T, status int) (*httptest.Server, *[]recordedPut) {
	t.Helper()
	var mu sync.Mutex
	var puts []recordedPut
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		puts = append(puts, recordedPut{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
		})
		mu.Unlock()
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
			return
		}
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &puts
}

func testBackupConfig(endpoint string) *config.BackupConfig {
	return &config.BackupConfig{
		Enabled:         true,
		Bucket:          "prode-backups",
		Region:          "us-east-1",
		Endpoint:        endpoint,
		AccessKeyID:     "test",
		SecretAccessKey: "secret",
	}
}

func TestS3ArchiverPut(t *testing.T) {
	srv, puts := newFakeS3(t, http.StatusOK)

	archiver, err := NewS3Archiver(context.Background(), testBackupConfig(srv.URL))
	require.NoError(t, err)

	err = archiver.Put(context.Background(), "snapshots/leaderboard-1.json", []byte(`[{"ranking":1}]`), "application/json")
	require.NoError(t, err)

	require.Len(t, *puts, 1)
	put := (*puts)[0]
	assert.Equal(t, http.MethodPut, put.method)
	assert.Equal(t, "/prode-backups/snapshots/leaderboard-1.json", put.path)
	assert.Equal(t, "application/json", put.contentType)
	assert.Equal(t, `[{"ranking":1}]`, put.body)
}

func TestS3ArchiverPutError(t *testing.T) {
	srv, _ := newFakeS3(t, http.StatusForbidden)

	archiver, err := NewS3Archiver(context.Background(), testBackupConfig(srv.URL))
	require.NoError(t, err)

	err = archiver.Put(context.Background(), "k.json", []byte("{}"), "application/json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prode-backups")
}
