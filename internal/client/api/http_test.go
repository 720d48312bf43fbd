package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/omnisent/omnisent/internal/common"
)

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/login", r.URL.Path)

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "alice", in["username"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "a.b.c",
			"user":  map[string]any{"id": "u1", "username": "alice", "role": "user"},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, nil)
	token, user, err := c.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	require.Equal(t, "a.b.c", token)
	require.Equal(t, "u1", user.ID)
}

func TestLogin_Unauthorized(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "bad credentials"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, nil)
	_, _, err := c.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, common.ErrUnauthorized)
	require.Contains(t, err.Error(), "bad credentials")
}

func TestExpiredToken_MapsToTokenExpired(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "token expired"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, func() string { return "a.b.c" })
	_, err := c.Me(context.Background())
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestAuthorizationHeaderInjected(t *testing.T) {
	t.Parallel()

	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{"files": []any{}})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, func() string { return "tok.en.x" })
	_, err := c.ListFiles(context.Background(), "/", "", "")
	require.NoError(t, err)
	require.Equal(t, "Bearer tok.en.x", gotAuth.Load())
}

func TestGet_RetriesOnServerError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"files": []map[string]any{{"id": "f1", "name": "a.txt", "type": "file"}},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, nil)
	files, err := c.ListFiles(context.Background(), "/", "", "")
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, int32(2), calls.Load())
}

func TestGet_DoesNotRetryAuthErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, nil)
	_, err := c.ListFiles(context.Background(), "/", "", "")
	require.ErrorIs(t, err, common.ErrUnauthorized)
	require.Equal(t, int32(1), calls.Load())
}

func TestUpload_MultipartAndProgress(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "folder-1", r.FormValue("folder_id"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		require.Equal(t, "notes.txt", hdr.Filename)

		_ = json.NewEncoder(w).Encode(map[string]any{"id": "f9", "name": "notes.txt", "type": "file"})
	}))
	defer srv.Close()

	var mu sync.Mutex
	var seen []int
	progress := func(pct int) {
		mu.Lock()
		seen = append(seen, pct)
		mu.Unlock()
	}

	payload := strings.Repeat("x", 4096)
	c := NewHTTPClient(srv.URL, nil)
	res, err := c.Upload(context.Background(), "folder-1", "notes.txt",
		strings.NewReader(payload), int64(len(payload)), progress)
	require.NoError(t, err)
	require.Equal(t, "f9", res.ID)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	require.Equal(t, 100, seen[len(seen)-1])
	for i := 1; i < len(seen); i++ {
		require.GreaterOrEqual(t, seen[i], seen[i-1])
	}
}

func TestUpload_CancelAbortsTransfer(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	c := NewHTTPClient(srv.URL, nil)
	_, err := c.Upload(ctx, "", "big.bin", strings.NewReader("data"), 4, nil)
	require.ErrorIs(t, err, context.Canceled)
}
