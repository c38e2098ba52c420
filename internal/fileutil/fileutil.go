package fileutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var mediaExtensions = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".avi":  "video/x-msvideo",
	".ogv":  "video/ogg",
}

// IsMediaFile reports whether a file name carries a recognized video
// extension.
func IsMediaFile(name string) bool {
	_, ok := mediaExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ContentTypeForName returns the media type for a video file name, or
// application/octet-stream when the extension is not recognized.
func ContentTypeForName(name string) string {
	if contentType, ok := mediaExtensions[strings.ToLower(filepath.Ext(name))]; ok {
		return contentType
	}
	return "application/octet-stream"
}

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// DownloadToTemp fetches a remote URL into a temporary file and returns its
// path and size. When the server advertises a Content-Length the byte count
// is verified; a mismatch removes the temp file. The caller removes the file
// when done.
func DownloadToTemp(ctx context.Context, client *http.Client, url string) (string, int64, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", 0, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp("", "reel-fetch-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	defer tmp.Close()

	written, err := io.Copy(tmp, resp.Body)
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("download %s: %w", url, err)
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		_ = os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("download size mismatch: expected %d bytes, got %d", resp.ContentLength, written)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, err
	}
	return tmp.Name(), written, nil
}
