// internal/app/features/groomingentry/storagehelper.go
package groomingentry

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
)

// uploadInfo contains metadata about an uploaded pet photo.
type uploadInfo struct {
	Path        string
	FileName    string
	ContentType string
}

// uploadPhoto stores a photo under a unique date-partitioned path.
// The path is generated as: pet-photos/YYYY/MM/DD/uuid-filename
func uploadPhoto(ctx context.Context, store storage.Store, filename string, reader io.Reader, contentType string) (uploadInfo, error) {
	now := time.Now().UTC()
	dateDir := fmt.Sprintf("pet-photos/%04d/%02d/%02d", now.Year(), now.Month(), now.Day())
	uniqueName := fmt.Sprintf("%s-%s", uuid.New().String()[:8], sanitizeFilename(filename))
	path := filepath.ToSlash(filepath.Join(dateDir, uniqueName))

	opts := &storage.PutOptions{
		ContentType: contentType,
	}
	if err := store.Put(ctx, path, reader, opts); err != nil {
		return uploadInfo{}, fmt.Errorf("failed to upload photo: %w", err)
	}

	return uploadInfo{
		Path:        path,
		FileName:    filename,
		ContentType: contentType,
	}, nil
}

// sanitizeFilename removes or replaces characters that could be
// problematic in storage keys.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 {
		return "photo"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}

	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
