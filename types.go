package filegate

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// FileMetadata is one entry of a list page.
type FileMetadata struct {
	Path         string    `json:"file_path"`
	LastModified time.Time `json:"last_modified"`
	SizeBytes    int64     `json:"size_bytes"`
}

// ObjectHandle addresses a single object in the backend.
type ObjectHandle struct {
	Bucket string
	Key    string
}

// ObjectMeta is what a backend reports for a single object.
type ObjectMeta struct {
	Key           string
	ContentType   string
	ContentLength int64
	LastModified  time.Time
	ETag          string
}

// ObjectEntry is a single key in a backend listing.
type ObjectEntry struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectPage is one page of a backend listing. NextCursor is empty when the
// listing is complete.
type ObjectPage struct {
	Entries    []ObjectEntry
	NextCursor string
}

// ListParams holds the raw list inputs after type coercion. A nil field was
// not supplied by the caller.
type ListParams struct {
	PageSize  *int
	Directory *string
	PageToken *string
}

// ListQuery is a validated list request.
type ListQuery struct {
	PageSize           int
	DirectoryPrefix    string
	ContinuationCursor string
}

// ListPage is the public result of a list call. An empty NextPageToken means
// there are no more pages.
type ListPage struct {
	Files         []FileMetadata
	NextPageToken string
}

// PutResult reports the outcome of an upload.
type PutResult struct {
	Key     string
	Created bool
}

// PutObject describes an upload handed to FileService.Put.
type PutObject struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
}

// PageSizeBounds bounds and defaults the page size of list requests.
type PageSizeBounds struct {
	Min     int `mapstructure:"min_page_size" validate:"min=1"`
	Default int `mapstructure:"default_page_size" validate:"gtefield=Min,ltefield=Max"`
	Max     int `mapstructure:"max_page_size" validate:"gtefield=Min,max=10000"`
}

// PageSizeCeiling is the largest Max a PageSizeBounds may carry.
const PageSizeCeiling = 10_000

// DefaultPageSizeBounds returns the stock bounds: 1 to 100, default 10.
func DefaultPageSizeBounds() PageSizeBounds {
	return PageSizeBounds{Min: 1, Default: 10, Max: 100}
}

// Contains reports whether n is an acceptable page size.
func (b PageSizeBounds) Contains(n int) bool {
	return n >= b.Min && n <= b.Max
}

// Validate checks that the bounds are usable.
func (b PageSizeBounds) Validate() error {
	if b.Min < 1 {
		return errors.New("validate page size bounds: min must be at least 1")
	}
	if b.Max < b.Min {
		return fmt.Errorf("validate page size bounds: max %d is below min %d", b.Max, b.Min)
	}
	if b.Max > PageSizeCeiling {
		return fmt.Errorf("validate page size bounds: max %d exceeds %d", b.Max, PageSizeCeiling)
	}
	if b.Default < b.Min || b.Default > b.Max {
		return fmt.Errorf("validate page size bounds: default %d outside [%d, %d]", b.Default, b.Min, b.Max)
	}
	return nil
}
