package api

import (
	"mime"
	"path/filepath"
	"strings"
)

// allowedMIMETypes are the image types the decoder understands.
var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/tiff": true,
}

// blockedExtensions are never treated as images, whatever the client claims
// the content type is.
var blockedExtensions = map[string]bool{
	".exe":   true,
	".bat":   true,
	".cmd":   true,
	".com":   true,
	".msi":   true,
	".scr":   true,
	".sh":    true,
	".ps1":   true,
	".vbs":   true,
	".js":    true,
	".jar":   true,
	".php":   true,
	".asp":   true,
	".aspx":  true,
	".jsp":   true,
	".cgi":   true,
	".py":    true,
	".rb":    true,
	".dll":   true,
	".so":    true,
	".dylib": true,
	".svg":   true,
	".html":  true,
	".htm":   true,
}

func normalizeMIMEType(mimeType string) string {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = mimeType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

func IsAllowedMIMEType(mimeType string) bool {
	return allowedMIMETypes[normalizeMIMEType(mimeType)]
}

func IsBlockedExtension(filename string) bool {
	return blockedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// SanitizeFilename strips directories and control or reserved characters
// from a client supplied filename.
func SanitizeFilename(filename string) string {
	if idx := strings.LastIndex(filename, "\\"); idx != -1 {
		filename = filename[idx+1:]
	}
	filename = filepath.Base(filename)

	var sanitized strings.Builder
	for _, r := range filename {
		if r >= 32 && r != 127 && !strings.ContainsRune(`/\:*?"<>|`, r) {
			sanitized.WriteRune(r)
		}
	}

	result := strings.Trim(sanitized.String(), ". ")

	if len(result) > 255 {
		ext := filepath.Ext(result)
		name := strings.TrimSuffix(result, ext)
		if maxNameLen := 255 - len(ext); maxNameLen > 0 && len(name) > maxNameLen {
			name = name[:maxNameLen]
		}
		result = name + ext
	}

	if result == "" {
		return "unnamed_file"
	}
	return result
}
