package attachment

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nhle/todolist/internal/apperr"
)

// MaxFileSize is the largest accepted upload, in bytes.
const MaxFileSize = 10 * 1024 * 1024

// DefaultURLTTL is how long signed URLs stay valid.
const DefaultURLTTL = time.Hour

// allowedTypes is the upload extension allow-list.
var allowedTypes = map[string]bool{
	"pdf": true, "doc": true, "docx": true, "txt": true, "md": true,
	"jpg": true, "jpeg": true, "png": true, "gif": true, "svg": true,
	"zip": true, "rar": true, "7z": true,
	"csv": true, "xlsx": true, "xls": true,
	"mp4": true, "mov": true, "avi": true,
	"mp3": true, "wav": true,
}

// Ext returns the lower-cased extension of name without the dot.
func Ext(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// ValidateSize rejects uploads larger than MaxFileSize.
func ValidateSize(size int64) error {
	if size > MaxFileSize {
		return fmt.Errorf("%w: file size (%.1f MB) exceeds maximum allowed size (%d MB)",
			apperr.ErrPayloadTooLarge, float64(size)/1024/1024, MaxFileSize/1024/1024)
	}
	return nil
}

// ValidateType rejects file names whose extension is not allow-listed.
func ValidateType(name string) error {
	ext := Ext(name)
	if !allowedTypes[ext] {
		return fmt.Errorf("%w: file type '.%s' is not allowed", apperr.ErrUnsupportedType, ext)
	}
	return nil
}

// SafeName replaces characters that would alter the storage key layout.
func SafeName(name string) string {
	return strings.NewReplacer(" ", "_", "/", "_", `\`, "_").Replace(name)
}

// StorageKey builds the object key {todo_id}/{YYYYMMDD_HHMMSS}_{safe_name}.
func StorageKey(todoID, fileName string, at time.Time) string {
	return fmt.Sprintf("%s/%s_%s", todoID, at.Format("20060102_150405"), SafeName(fileName))
}
