package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storegate/internal/models"
)

func TestBuildKeyNamespacing(t *testing.T) {
	key := BuildKey("u1", models.ObjectKindOriginal, "chair.jpg")

	assert.True(t, strings.HasPrefix(key, "users/u1/original/chair_"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
}

func TestBuildKeyUnique(t *testing.T) {
	// Identical file name and user must still never collide.
	k1 := BuildKey("u1", models.ObjectKindOriginal, "chair.jpg")
	k2 := BuildKey("u1", models.ObjectKindOriginal, "chair.jpg")

	require.NotEqual(t, k1, k2)
}

func TestBuildKeyStripsTraversal(t *testing.T) {
	key := BuildKey("u1", models.ObjectKindEnhanced, "../../users/u2/original/steal.png")

	assert.True(t, strings.HasPrefix(key, "users/u1/enhanced/"), "key %q escaped its namespace", key)
	assert.NotContains(t, strings.TrimPrefix(key, "users/u1/enhanced/"), "/")
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"chair", "chair"},
		{"my chair", "my chair"},
		{"a/b\\c", "abc"},
		{"..hidden", "hidden"},
		{"ctrl\x00\x1fchars", "ctrlchars"},
		{"///", "image"},
		{"", "image"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeFileName(tc.in), "input %q", tc.in)
	}
}

func TestOwnedBy(t *testing.T) {
	assert.True(t, OwnedBy("u1", "users/u1/original/chair_abc.jpg"))
	assert.False(t, OwnedBy("u1", "users/u2/original/chair_abc.jpg"))
	// A user id that prefixes another must not grant access.
	assert.False(t, OwnedBy("u1", "users/u12/original/chair_abc.jpg"))
	assert.False(t, OwnedBy("u1", "other/u1/original/chair_abc.jpg"))
}
