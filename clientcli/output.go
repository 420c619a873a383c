package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// Formatter renders command results for the terminal.
type Formatter interface {
	FormatUpload(w io.Writer, results []UploadResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatInfo(w io.Writer, info *ObjectInfo) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatList(w io.Writer, result *ListResult) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error
}

// NewFormatter returns a JSONFormatter when jsonOutput is set, otherwise a
// HumanFormatter.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter writes plain text. In quiet mode only failures are printed.
type HumanFormatter struct {
	Quiet bool
}

func (f *HumanFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	for _, r := range results {
		switch {
		case r.Err != nil:
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.LocalPath, r.Err)
		case f.Quiet:
		case r.Created:
			_, _ = fmt.Fprintf(w, "Uploaded: %s (%s)\n", r.RemotePath, formatSize(r.Size))
		default:
			_, _ = fmt.Fprintf(w, "Updated: %s (%s)\n", r.RemotePath, formatSize(r.Size))
		}
	}
	return nil
}

func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if f.Quiet {
		return nil
	}

	target := ""
	if result.LocalPath != "-" {
		target = " -> " + result.LocalPath
	}
	_, err := fmt.Fprintf(w, "Downloaded: %s%s (%s)\n", result.RemotePath, target, formatSize(result.Size))
	return err
}

func (f *HumanFormatter) FormatInfo(w io.Writer, info *ObjectInfo) error {
	rows := [][2]string{
		{"Path", info.Path},
		{"Content-Type", info.ContentType},
		{"Size", fmt.Sprintf("%s (%d bytes)", formatSize(info.Size), info.Size)},
		{"Last-Modified", formatTime(info.LastModified)},
	}
	if info.ETag != "" {
		rows = append(rows, [2]string{"ETag", info.ETag})
	}

	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%-15s%s\n", row[0]+":", row[1]); err != nil {
			return err
		}
	}
	return nil
}

func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for _, r := range results {
		switch {
		case r.Err != nil:
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.Path, r.Err)
		case !f.Quiet:
			_, _ = fmt.Fprintf(w, "Deleted: %s\n", r.Path)
		}
	}
	return nil
}

func (f *HumanFormatter) FormatList(w io.Writer, result *ListResult) error {
	if len(result.Files) == 0 {
		_, err := fmt.Fprintln(w, "No files found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PATH\tSIZE\tMODIFIED")
	for _, file := range result.Files {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", file.Path, formatSize(file.Size), formatTime(file.LastModified))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "\n%d file(s) (%s total)\n", len(result.Files), formatSize(result.TotalSize()))
	if result.NextPageToken != "" {
		_, _ = fmt.Fprintf(w, "Next page: use --page-token %q\n", result.NextPageToken)
	}
	return nil
}

func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, werr := fmt.Fprintf(w, "Error: %v\n", err)
	return werr
}

func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "  NAME\tENDPOINT")
	for _, p := range profiles {
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}
		_, _ = fmt.Fprintf(tw, "%s %s\t%s\n", marker, p.Name, p.Endpoint)
	}
	return tw.Flush()
}

func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	name := profile.Name
	if isDefault {
		name += " (default)"
	}
	_, err := fmt.Fprintf(w, "Name:     %s\nEndpoint: %s\n", name, profile.Endpoint)
	return err
}

// JSONFormatter writes indented JSON. Per-item failures are reported in an
// "error" field instead of failing the whole document.
type JSONFormatter struct{}

type jsonUpload struct {
	LocalPath   string `json:"local_path"`
	RemotePath  string `json:"remote_path"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size_bytes,omitempty"`
	Created     bool   `json:"created"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
}

type jsonDelete struct {
	Path    string `json:"path"`
	Deleted bool   `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

type jsonProfile struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	Default  bool   `json:"default"`
}

func (f *JSONFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	out := make([]jsonUpload, len(results))
	for i, r := range results {
		out[i] = jsonUpload{LocalPath: r.LocalPath, RemotePath: r.RemotePath}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
			continue
		}
		out[i].ContentType = r.ContentType
		out[i].Size = r.Size
		out[i].Created = r.Created
		out[i].Message = r.Message
	}
	return writeJSON(w, out)
}

func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatInfo(w io.Writer, info *ObjectInfo) error {
	return writeJSON(w, info)
}

func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	out := make([]jsonDelete, len(results))
	for i, r := range results {
		out[i] = jsonDelete{Path: r.Path, Deleted: r.Deleted, Error: errorString(r.Err)}
	}
	return writeJSON(w, map[string]any{"results": out})
}

// FormatList mirrors the server body: next_page_token is null on the last page.
func (f *JSONFormatter) FormatList(w io.Writer, result *ListResult) error {
	files := result.Files
	if files == nil {
		files = []FileInfo{}
	}

	var token *string
	if result.NextPageToken != "" {
		token = &result.NextPageToken
	}

	return writeJSON(w, struct {
		Files         []FileInfo `json:"files"`
		NextPageToken *string    `json:"next_page_token"`
	}{files, token})
}

func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return writeJSON(w, map[string]string{"error": err.Error()})
}

func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	out := make([]jsonProfile, len(profiles))
	for i, p := range profiles {
		out[i] = jsonProfile{Name: p.Name, Endpoint: p.Endpoint, Default: p.Name == defaultName}
	}
	return writeJSON(w, map[string]any{"profiles": out})
}

func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	return writeJSON(w, jsonProfile{Name: profile.Name, Endpoint: profile.Endpoint, Default: isDefault})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.DateTime)
}

// formatSize renders a byte count with a binary unit, e.g. "1.5 KB".
func formatSize(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}

	size := float64(n) / 1024
	for _, unit := range []string{"KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f TB", size)
}
