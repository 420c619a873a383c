package e2e_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/sagarc03/filegate/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2E_FileLifecycle_SQLite(t *testing.T) {
	baseURL := startServer(t, ServerConfig{
		Port:   getOpenPort(t),
		DBType: "sqlite",
		DBDSN:  filepath.Join(t.TempDir(), "index.db"),
	})

	runFileLifecycleTests(t, baseURL)
}

func TestE2E_FileLifecycle_Postgres(t *testing.T) {
	baseURL := startServer(t, ServerConfig{
		Port:   getOpenPort(t),
		DBType: "postgres",
		DBDSN:  getSharedPostgresDatabase(t),
	})

	runFileLifecycleTests(t, baseURL)
}

func TestE2E_FileLifecycle_Memory(t *testing.T) {
	baseURL := startServer(t, ServerConfig{
		Port:     getOpenPort(t),
		Provider: "memory",
	})

	runFileLifecycleTests(t, baseURL)
}

// runFileLifecycleTests drives upload, overwrite, metadata, download and
// delete through the client library.
func runFileLifecycleTests(t *testing.T, baseURL string) {
	t.Helper()
	ctx := context.Background()
	client := newClient(t, baseURL)
	localDir := t.TempDir()

	t.Run("upload creates file", func(t *testing.T) {
		local := writeLocalFile(t, localDir, "hello.txt", "Hello, World!")

		results, err := client.Upload(ctx, clientcli.UploadOptions{
			LocalPath:  local,
			RemotePath: "docs/hello.txt",
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.True(t, results[0].Created)
		assert.Equal(t, "docs/hello.txt", results[0].RemotePath)
		assert.Equal(t, "New file uploaded at path: /docs/hello.txt", results[0].Message)
	})

	t.Run("upload again updates file", func(t *testing.T) {
		local := writeLocalFile(t, localDir, "hello.txt", "Hello again, World!")

		results, err := client.Upload(ctx, clientcli.UploadOptions{
			LocalPath:  local,
			RemotePath: "docs/hello.txt",
		})
		require.NoError(t, err)
		assert.False(t, results[0].Created)
		assert.Equal(t, "Existing file updated at path: /docs/hello.txt", results[0].Message)
	})

	t.Run("info reports metadata", func(t *testing.T) {
		info, err := client.Info(ctx, "docs/hello.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(len("Hello again, World!")), info.Size)
		assert.Contains(t, info.ContentType, "text/plain")
		assert.False(t, info.LastModified.IsZero())
	})

	t.Run("download returns content", func(t *testing.T) {
		_, reader, err := client.Download(ctx, clientcli.DownloadOptions{
			RemotePath: "docs/hello.txt",
			LocalPath:  "-",
		})
		require.NoError(t, err)
		defer func() { _ = reader.Close() }()

		body, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, "Hello again, World!", string(body))
	})

	t.Run("list shows file", func(t *testing.T) {
		result, err := client.List(ctx, clientcli.ListOptions{Directory: "docs/"})
		require.NoError(t, err)
		require.Len(t, result.Files, 1)
		assert.Equal(t, "docs/hello.txt", result.Files[0].Path)
		assert.Empty(t, result.NextPageToken)
	})

	t.Run("delete removes file", func(t *testing.T) {
		results, err := client.Delete(ctx, clientcli.DeleteOptions{Paths: []string{"docs/hello.txt"}})
		require.NoError(t, err)
		assert.False(t, clientcli.HasDeleteErrors(results))
	})

	t.Run("file is gone", func(t *testing.T) {
		exists, err := client.Exists(ctx, "docs/hello.txt")
		require.NoError(t, err)
		assert.False(t, exists)

		_, _, err = client.Download(ctx, clientcli.DownloadOptions{RemotePath: "docs/hello.txt", LocalPath: "-"})
		assert.ErrorIs(t, err, clientcli.ErrNotFound)

		results, err := client.Delete(ctx, clientcli.DeleteOptions{Paths: []string{"docs/hello.txt"}})
		require.NoError(t, err)
		assert.ErrorIs(t, results[0].Err, clientcli.ErrNotFound)
	})
}

func TestE2E_Pagination(t *testing.T) {
	baseURL := startServer(t, ServerConfig{Port: getOpenPort(t)})
	ctx := context.Background()
	client := newClient(t, baseURL)

	localDir := t.TempDir()
	for i := range 5 {
		writeLocalFile(t, localDir, fmt.Sprintf("reports/r%d.csv", i), "x")
	}
	writeLocalFile(t, localDir, "other/o.txt", "y")

	results, err := client.Upload(ctx, clientcli.UploadOptions{LocalPath: localDir, Recursive: true})
	require.NoError(t, err)
	require.Len(t, results, 6)
	for _, r := range results {
		require.NoError(t, r.Err)
	}

	t.Run("pages through a directory", func(t *testing.T) {
		first, err := client.List(ctx, clientcli.ListOptions{Directory: "reports/", PageSize: 2})
		require.NoError(t, err)
		require.Len(t, first.Files, 2)
		require.NotEmpty(t, first.NextPageToken)

		var seen []string
		for _, f := range first.Files {
			seen = append(seen, f.Path)
		}

		token := first.NextPageToken
		for token != "" {
			page, err := client.List(ctx, clientcli.ListOptions{PageToken: token})
			require.NoError(t, err)
			assert.LessOrEqual(t, len(page.Files), 2, "token keeps the original page size")
			for _, f := range page.Files {
				seen = append(seen, f.Path)
			}
			token = page.NextPageToken
		}

		assert.Equal(t, []string{
			"reports/r0.csv", "reports/r1.csv", "reports/r2.csv", "reports/r3.csv", "reports/r4.csv",
		}, seen)
	})

	t.Run("all pages", func(t *testing.T) {
		result, err := client.List(ctx, clientcli.ListOptions{PageSize: 1, All: true})
		require.NoError(t, err)

		paths := make([]string, len(result.Files))
		for i, f := range result.Files {
			paths[i] = f.Path
		}
		assert.True(t, sort.StringsAreSorted(paths))
		assert.Len(t, paths, 6)
	})
}

func TestE2E_ListValidation(t *testing.T) {
	baseURL := startServer(t, ServerConfig{Port: getOpenPort(t), MaxPageSize: 50})

	tests := []struct {
		name    string
		query   string
		errType string
		loc     []string
	}{
		{name: "page size too small", query: "page_size=0", errType: "out_of_range", loc: []string{"query", "page_size"}},
		{name: "page size over configured max", query: "page_size=51", errType: "out_of_range", loc: []string{"query", "page_size"}},
		{name: "page size not a number", query: "page_size=abc", errType: "invalid_type", loc: []string{"query", "page_size"}},
		{name: "token with page size", query: "page_token=abc&page_size=5", errType: "mutually_exclusive_parameters", loc: []string{"query"}},
		{name: "token with directory", query: "page_token=abc&directory=docs/", errType: "mutually_exclusive_parameters", loc: []string{"query"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(baseURL + "/files?" + tt.query)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

			var body struct {
				Detail []struct {
					Type string   `json:"type"`
					Loc  []string `json:"loc"`
					Msg  string   `json:"msg"`
				} `json:"detail"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.NotEmpty(t, body.Detail)
			assert.Equal(t, tt.errType, body.Detail[0].Type)
			assert.Equal(t, tt.loc, body.Detail[0].Loc)
			assert.NotEmpty(t, body.Detail[0].Msg)
		})
	}
}

func TestE2E_UploadTooLarge(t *testing.T) {
	baseURL := startServer(t, ServerConfig{Port: getOpenPort(t), MaxUploadSize: 1024})
	client := newClient(t, baseURL)

	local := writeLocalFile(t, t.TempDir(), "big.bin", strings.Repeat("a", 4096))

	_, err := client.Upload(context.Background(), clientcli.UploadOptions{
		LocalPath:  local,
		RemotePath: "big.bin",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, clientcli.ErrTooLarge)

	exists, err := client.Exists(context.Background(), "big.bin")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestE2E_DownloadToFile(t *testing.T) {
	baseURL := startServer(t, ServerConfig{Port: getOpenPort(t), Provider: "memory"})
	ctx := context.Background()
	client := newClient(t, baseURL)

	local := writeLocalFile(t, t.TempDir(), "data.json", `{"ok":true}`)
	_, err := client.Upload(ctx, clientcli.UploadOptions{LocalPath: local, RemotePath: "nested dir/data.json"})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "copy", "data.json")
	result, _, err := client.Download(ctx, clientcli.DownloadOptions{
		RemotePath: "nested dir/data.json",
		LocalPath:  out,
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", result.ContentType)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))
}
