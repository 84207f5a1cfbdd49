package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/segmentio/ksuid"

	"storegate/internal/models"
)

// BuildKey constructs the store key for an upload:
// users/{userID}/{kind}/{sanitizedBase}_{ksuid}{ext}. The random suffix makes
// keys collision-free across uploads and the prefix pins every key inside the
// owner's namespace.
func BuildKey(userID string, kind models.ObjectKind, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	base := SanitizeFileName(strings.TrimSuffix(fileName, filepath.Ext(fileName)))
	return fmt.Sprintf("users/%s/%s/%s_%s%s", userID, kind, base, ksuid.New().String(), ext)
}

// UserPrefix is the namespace all of a user's objects live under.
func UserPrefix(userID string) string {
	return fmt.Sprintf("users/%s/", userID)
}

// OwnedBy reports whether key lies inside the user's namespace.
func OwnedBy(userID, key string) bool {
	return strings.HasPrefix(key, UserPrefix(userID))
}

// SanitizeFileName strips path separators and control characters from a
// caller-supplied name so it can never escape its key prefix.
func SanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r < 0x20 || r == 0x7f:
			// drop
		case r == '.' && b.Len() == 0:
			// no leading dots either
		default:
			b.WriteRune(r)
		}
	}

	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" {
		return "image"
	}
	return cleaned
}
