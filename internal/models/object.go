package models

import "time"

type ObjectKind string

const (
	ObjectKindOriginal ObjectKind = "original"
	ObjectKindEnhanced ObjectKind = "enhanced"
)

// StoredObject is a blob persisted in the object store plus its metadata.
// Objects are immutable once written; enhancement creates a new object
// instead of overwriting the original.
type StoredObject struct {
	Key         string     `json:"key"`
	URL         string     `json:"url"`
	UserID      string     `json:"userId"`
	Kind        ObjectKind `json:"kind"`
	FileName    string     `json:"fileName"`
	ContentType string     `json:"contentType"`
	SizeBytes   int64      `json:"sizeBytes"`
	UploadedAt  time.Time  `json:"uploadedAt"`
	ETag        string     `json:"etag"`
}
