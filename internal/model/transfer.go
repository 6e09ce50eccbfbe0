package model

import "time"

// Direction of a transfer.
type Direction string

const (
	DirectionUpload   Direction = "upload"
	DirectionDownload Direction = "download"
)

// Transfer is the immutable metadata recorded for a completed upload.
// The sealed bytes live in the transfer gateway under ObjectKey.
type Transfer struct {
	ID               string    `db:"id"`
	UserID           string    `db:"user_id"`
	Filename         string    `db:"filename"`
	Direction        Direction `db:"direction"`
	OriginalSize     int64     `db:"original_size"`
	CompressedSize   int64     `db:"compressed_size"`
	StoredSize       int64     `db:"stored_size"`
	CompressionRatio float64   `db:"compression_ratio"`
	ObjectKey        string    `db:"object_key"`
	CreatedAt        time.Time `db:"created_at"`
}

// OwnedBy reports whether the transfer belongs to userID.
func (t *Transfer) OwnedBy(userID string) bool {
	return t != nil && userID != "" && t.UserID == userID
}
