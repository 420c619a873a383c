package clientcli

import (
	"time"
)

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPath   string
	RemotePath  string
	ContentType string // optional, auto-detect if empty
	Recursive   bool
	// Concurrency bounds parallel uploads in recursive mode. Defaults to DefaultConcurrency.
	Concurrency int
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath   string `json:"local_path"`
	RemotePath  string `json:"remote_path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
	Created     bool   `json:"created"`
	Message     string `json:"message"`
	Err         error  `json:"-"` // nil on success
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	RemotePath string
	LocalPath  string // empty = derive from remote, "-" = stdout
}

// DownloadResult represents the result of downloading a file.
type DownloadResult struct {
	RemotePath   string    `json:"remote_path"`
	LocalPath    string    `json:"local_path"`
	ETag         string    `json:"etag,omitempty"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	Paths []string
}

// DeleteResult represents the result of deleting a single file.
type DeleteResult struct {
	Path    string `json:"path"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// ListOptions configures a list operation. PageToken cannot be combined with
// Directory or PageSize on the wire; when it is set the other two are not sent.
type ListOptions struct {
	Directory string
	PageSize  int // 0 = server default
	PageToken string
	All       bool // follow next_page_token until the listing ends
}

// ListResult contains paginated list results.
type ListResult struct {
	Files         []FileInfo `json:"files"`
	NextPageToken string     `json:"next_page_token,omitempty"`
}

// FileInfo is one entry of a listing.
type FileInfo struct {
	Path         string    `json:"file_path"`
	LastModified time.Time `json:"last_modified"`
	Size         int64     `json:"size_bytes"`
}

// ObjectInfo is the metadata returned by a HEAD request.
type ObjectInfo struct {
	Path         string    `json:"path"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size_bytes"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// serverPutResponse mirrors the JSON body of a successful upload.
type serverPutResponse struct {
	FilePath string `json:"file_path"`
	Message  string `json:"message"`
}

// serverListResponse mirrors the JSON body of GET /files.
type serverListResponse struct {
	Files         []FileInfo `json:"files"`
	NextPageToken *string    `json:"next_page_token"`
}
