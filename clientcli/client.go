package clientcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency is the number of parallel uploads in recursive mode.
	DefaultConcurrency = 4

	// FileField is the multipart field the server reads the upload from.
	FileField = "file"

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 64 << 10
)

// Client performs operations against a filegate server.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

// WithTimeout sets the timeout of the underlying http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// New validates cfg and returns a Client for its endpoint.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the normalized server URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// send performs req and returns the response when its status is one of ok.
// Any other status is drained into an *APIError and the body is closed.
func (c *Client) send(req *http.Request, ok ...int) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	if slices.Contains(ok, resp.StatusCode) {
		return resp, nil
	}

	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, parseServerError(resp.StatusCode, body)
}

// decode reads a JSON response body into v and closes it.
func decode(resp *http.Response, v any) error {
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// Upload sends one file, or every file under a directory when opts.Recursive
// is set. Recursive uploads keep paths relative to opts.LocalPath.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}

	if opts.Recursive {
		info, err := os.Stat(opts.LocalPath)
		if err != nil {
			return nil, fmt.Errorf("stat local path: %w", err)
		}
		if info.IsDir() {
			return c.uploadTree(ctx, opts)
		}
	}

	result, err := c.uploadFile(ctx, opts.LocalPath, opts.RemotePath, opts.ContentType)
	if err != nil {
		return nil, err
	}
	return []UploadResult{result}, nil
}

// uploadTree uploads a directory with bounded concurrency. A failed file is
// reported in its result and does not stop the others.
func (c *Client) uploadTree(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	prefix := strings.Trim(opts.RemotePath, "/")

	var pending []UploadResult
	err := filepath.WalkDir(opts.LocalPath, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return walkErr
		}

		rel, err := filepath.Rel(opts.LocalPath, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}

		remote := filepath.ToSlash(rel)
		if prefix != "" {
			remote = prefix + "/" + remote
		}
		pending = append(pending, UploadResult{LocalPath: path, RemotePath: remote})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	results := make([]UploadResult, len(pending))
	for i, p := range pending {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := c.uploadFile(gctx, p.LocalPath, p.RemotePath, "")
			if err != nil {
				result = p
				result.Err = err
			}
			results[i] = result
			return nil
		})
	}

	return results, g.Wait()
}

// uploadFile streams one file to PUT /files/{path} as multipart/form-data.
func (c *Client) uploadFile(ctx context.Context, localPath, remotePath, contentType string) (UploadResult, error) {
	key := normalizeKey(remotePath)
	if key == "" {
		return UploadResult{}, fmt.Errorf("upload: %w", ErrEmptyPath)
	}

	file, err := os.Open(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return UploadResult{}, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return UploadResult{}, fmt.Errorf("stat file: %w", err)
	}

	if contentType == "" {
		contentType = detectContentType(localPath)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pw.CloseWithError(writeMultipart(mw, filepath.Base(localPath), contentType, file))
	}()
	// Unblocks the writer if the request ends before the body is consumed.
	defer func() {
		_ = pr.Close()
		<-done
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.fileURL(key), pr)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.send(req, http.StatusOK, http.StatusCreated)
	if err != nil {
		return UploadResult{}, err
	}
	created := resp.StatusCode == http.StatusCreated

	var put serverPutResponse
	if err := decode(resp, &put); err != nil {
		return UploadResult{}, err
	}

	return UploadResult{
		LocalPath:   localPath,
		RemotePath:  put.FilePath,
		ContentType: contentType,
		Size:        info.Size(),
		Created:     created,
		Message:     put.Message,
	}, nil
}

func writeMultipart(mw *multipart.Writer, filename, contentType string, r io.Reader) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     FileField,
		"filename": filename,
	}))
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create form part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	return mw.Close()
}

// Download fetches a file. When opts.LocalPath is "-" the body is returned
// for the caller to read and close; otherwise it is written to
// opts.LocalPath, or to the base name of the remote path when that is empty.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	key := normalizeKey(opts.RemotePath)
	if key == "" {
		return nil, nil, fmt.Errorf("download: %w", ErrEmptyPath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fileURL(key), http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.send(req, http.StatusOK)
	if err != nil {
		return nil, nil, err
	}

	info := objectInfoFromHeader(key, resp.Header, resp.ContentLength)
	result := &DownloadResult{
		RemotePath:   key,
		LocalPath:    opts.LocalPath,
		ETag:         info.ETag,
		ContentType:  info.ContentType,
		Size:         info.Size,
		LastModified: info.LastModified,
	}

	if opts.LocalPath == "-" {
		return result, resp.Body, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if result.LocalPath == "" {
		result.LocalPath = filepath.Base(key)
	}

	written, err := writeLocalFile(result.LocalPath, resp.Body)
	if err != nil {
		return nil, nil, err
	}
	result.Size = written
	return result, nil, nil
}

func writeLocalFile(path string, r io.Reader) (int64, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return 0, fmt.Errorf("create directory: %w", err)
		}
	}

	f, err := os.Create(path) //#nosec G304 -- path is user-provided input
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close file: %w", err)
	}
	return n, nil
}

// Info returns the metadata of a file using a HEAD request.
func (c *Client) Info(ctx context.Context, remotePath string) (*ObjectInfo, error) {
	key := normalizeKey(remotePath)
	if key == "" {
		return nil, fmt.Errorf("info: %w", ErrEmptyPath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.fileURL(key), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.send(req, http.StatusOK)
	if err != nil {
		return nil, err
	}
	_ = resp.Body.Close()

	info := objectInfoFromHeader(key, resp.Header, resp.ContentLength)
	return &info, nil
}

// Exists reports whether a file is present. A 404 is not an error.
func (c *Client) Exists(ctx context.Context, remotePath string) (bool, error) {
	_, err := c.Info(ctx, remotePath)
	var apiErr *APIError
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &apiErr) && apiErr.IsNotFound():
		return false, nil
	default:
		return false, err
	}
}

// Delete removes every path in opts, attempting all of them. Per-path
// failures are reported in the results; only a cancelled ctx stops early.
func (c *Client) Delete(ctx context.Context, opts DeleteOptions) ([]DeleteResult, error) {
	if len(opts.Paths) == 0 {
		return nil, ErrNoPaths
	}

	results := make([]DeleteResult, 0, len(opts.Paths))
	for _, path := range opts.Paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		err := c.deleteFile(ctx, path)
		results = append(results, DeleteResult{Path: path, Deleted: err == nil, Err: err})
	}
	return results, nil
}

func (c *Client) deleteFile(ctx context.Context, path string) error {
	key := normalizeKey(path)
	if key == "" {
		return ErrEmptyPath
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.fileURL(key), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.send(req, http.StatusNoContent, http.StatusOK)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// HasDeleteErrors reports whether any delete failed.
func HasDeleteErrors(results []DeleteResult) bool {
	return slices.ContainsFunc(results, func(r DeleteResult) bool { return r.Err != nil })
}

// List fetches one page of files, or every page when opts.All is set.
func (c *Client) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if !opts.All {
		return c.listPage(ctx, opts)
	}

	// The first request carries the caller's directory and page size; later
	// ones send the token alone, as the server requires.
	all := &ListResult{Files: []FileInfo{}}
	next := ListOptions{Directory: opts.Directory, PageSize: opts.PageSize, PageToken: opts.PageToken}
	for {
		page, err := c.listPage(ctx, next)
		if err != nil {
			return nil, err
		}
		all.Files = append(all.Files, page.Files...)

		if page.NextPageToken == "" {
			return all, nil
		}
		next = ListOptions{PageToken: page.NextPageToken}
	}
}

func (c *Client) listPage(ctx context.Context, opts ListOptions) (*ListResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.listURL(opts), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.send(req, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var page serverListResponse
	if err := decode(resp, &page); err != nil {
		return nil, err
	}

	result := &ListResult{Files: page.Files}
	if result.Files == nil {
		result.Files = []FileInfo{}
	}
	if page.NextPageToken != nil {
		result.NextPageToken = *page.NextPageToken
	}
	return result, nil
}

// TotalSize returns the summed size of the listed files in bytes.
func (r *ListResult) TotalSize() int64 {
	var total int64
	for _, f := range r.Files {
		total += f.Size
	}
	return total
}

func (c *Client) fileURL(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return c.endpoint + "/files/" + strings.Join(segments, "/")
}

// listURL never sends directory or page_size together with a page token.
func (c *Client) listURL(opts ListOptions) string {
	query := url.Values{}
	if opts.PageToken != "" {
		query.Set("page_token", opts.PageToken)
	} else {
		if opts.Directory != "" {
			query.Set("directory", opts.Directory)
		}
		if opts.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(opts.PageSize))
		}
	}

	if len(query) == 0 {
		return c.endpoint + "/files"
	}
	return c.endpoint + "/files?" + query.Encode()
}

func objectInfoFromHeader(key string, h http.Header, contentLength int64) ObjectInfo {
	info := ObjectInfo{
		Path:        key,
		ContentType: h.Get("Content-Type"),
		Size:        contentLength,
		ETag:        strings.Trim(h.Get("ETag"), `"`),
	}
	if n, err := strconv.ParseInt(h.Get("Content-Length"), 10, 64); err == nil {
		info.Size = n
	}
	if t, err := http.ParseTime(h.Get("Last-Modified")); err == nil {
		info.LastModified = t.UTC()
	}
	return info
}

func normalizeKey(path string) string {
	return strings.Trim(path, "/")
}

// NormalizeLocalToRemotePath turns a local path into a remote key: the path
// is cleaned, slashes are forward, and leading "./", "/" and "../" segments
// are dropped. "." and ".." map to "".
func NormalizeLocalToRemotePath(localPath string) string {
	p := filepath.ToSlash(filepath.Clean(filepath.ToSlash(localPath)))
	p = strings.TrimPrefix(p, "/")
	for strings.HasPrefix(p, "../") {
		p = p[len("../"):]
	}
	if p == "." || p == ".." {
		return ""
	}
	return p
}

// detectContentType guesses a MIME type from the file extension.
func detectContentType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}
