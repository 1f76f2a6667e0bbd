package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stocker/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewS3ExportArchiver_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr string
	}{
		{"nil config", nil, "configuration is required"},
		{"missing bucket", &config.StorageConfig{AccessKey: "k", SecretKey: "s"}, "bucket is required"},
		{"missing access key", &config.StorageConfig{Bucket: "b", SecretKey: "s"}, "access key is required"},
		{"missing secret key", &config.StorageConfig{Bucket: "b", AccessKey: "k"}, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3ExportArchiver(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("valid config", func(t *testing.T) {
		a, err := NewS3ExportArchiver(&config.StorageConfig{
			Bucket: "exports", AccessKey: "k", SecretKey: "s", Endpoint: "localhost:9000",
		})
		require.NoError(t, err)
		assert.Equal(t, "exports", a.Bucket())
	})
}

func TestArchiveKey(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("x", 3600))
	assert.Equal(t, "exports/inventory/20260304T040607Z.csv", ArchiveKey("inventory", at))
}

type fakeS3 struct {
	mu     sync.Mutex
	method string
	path   string
	body   string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.method = r.Method
	f.path = r.URL.Path
	f.body = string(body)
	f.mu.Unlock()
	w.Header().Set("ETag", `"abc"`)
	w.WriteHeader(http.StatusOK)
}

func TestS3ExportArchiver_Archive(t *testing.T) {
	fake := &fakeS3{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	a, err := NewS3ExportArchiver(&config.StorageConfig{
		Bucket:       "stocker",
		AccessKey:    "k",
		SecretKey:    "s",
		Endpoint:     srv.URL,
		UsePathStyle: true,
	}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	key, err := a.Archive(context.Background(), "suppliers", at, []byte("Supplier,Email\nAcme,a@acme.io\n"))
	require.NoError(t, err)
	assert.Equal(t, "exports/suppliers/20260102T030405Z.csv", key)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, http.MethodPut, fake.method)
	assert.Equal(t, "/stocker/"+key, fake.path)
	assert.True(t, strings.Contains(fake.body, "Acme,a@acme.io"))

	_, err = a.Archive(context.Background(), "", at, nil)
	assert.Error(t, err)
}
