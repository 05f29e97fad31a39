package card

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Icons used across the list and the detail sections.
const (
	IconCategory   = "🏷️"
	IconTag        = "🔖"
	IconDueDate    = "📅"
	IconTime       = "⏱️"
	IconAttachment = "📎"
	IconSubtask    = "✓"
)

var fileIcons = map[string]string{
	"pdf": "📄",
	"doc": "📝", "docx": "📝", "txt": "📝", "md": "📝",
	"jpg": "🖼️", "jpeg": "🖼️", "png": "🖼️", "gif": "🖼️", "svg": "🖼️",
	"zip": "📦", "rar": "📦", "7z": "📦",
	"csv": "📊", "xlsx": "📊", "xls": "📊",
	"mp4": "🎥", "mov": "🎥", "avi": "🎥",
	"mp3": "🎵", "wav": "🎵",
}

// FileIcon returns the icon for a file name's extension.
func FileIcon(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if icon, ok := fileIcons[ext]; ok {
		return icon
	}
	return IconAttachment
}

// FormatTimeSpent renders minutes as "45m", "2h" or "2h 30m".
func FormatTimeSpent(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// FormatFileSize renders a byte count as "243 B", "1.5 KB" or "1.5 MB".
func FormatFileSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d B", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	}
}
