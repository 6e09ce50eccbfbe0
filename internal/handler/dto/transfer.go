package dto

import (
	"encoding/base64"
	"time"

	"github.com/sealdrop/sealdrop/internal/model"
)

// TransferResponse represents a transfer record in API responses.
type TransferResponse struct {
	ID               string    `json:"id"`
	Filename         string    `json:"filename"`
	Direction        string    `json:"direction"`
	OriginalSize     int64     `json:"original_size"`
	CompressedSize   int64     `json:"compressed_size"`
	StoredSize       int64     `json:"stored_size"`
	CompressionRatio float64   `json:"compression_ratio"`
	CreatedAt        time.Time `json:"created_at"`
}

// UploadResponse is returned by POST /api/upload.
type UploadResponse struct {
	Message          string  `json:"message"`
	TransferID       string  `json:"transfer_id"`
	Filename         string  `json:"filename"`
	OriginalSize     int64   `json:"original_size"`
	CompressedSize   int64   `json:"compressed_size"`
	StoredSize       int64   `json:"stored_size"`
	CompressionRatio float64 `json:"compression_ratio"`
}

// DownloadResponse carries the restored file as standard base64.
type DownloadResponse struct {
	Filename string `json:"filename"`
	Data     string `json:"data"`
	Size     int    `json:"size"`
}

// ToTransferResponse converts a Transfer model to TransferResponse DTO.
func ToTransferResponse(t *model.Transfer) TransferResponse {
	return TransferResponse{
		ID:               t.ID,
		Filename:         t.Filename,
		Direction:        string(t.Direction),
		OriginalSize:     t.OriginalSize,
		CompressedSize:   t.CompressedSize,
		StoredSize:       t.StoredSize,
		CompressionRatio: t.CompressionRatio,
		CreatedAt:        t.CreatedAt,
	}
}

// ToTransferListResponse converts transfers, never returning nil so the
// body is always a JSON array.
func ToTransferListResponse(transfers []*model.Transfer) []TransferResponse {
	out := make([]TransferResponse, len(transfers))
	for i, t := range transfers {
		out[i] = ToTransferResponse(t)
	}
	return out
}

// ToUploadResponse converts a freshly recorded upload.
func ToUploadResponse(t *model.Transfer) *UploadResponse {
	return &UploadResponse{
		Message:          "File uploaded successfully",
		TransferID:       t.ID,
		Filename:         t.Filename,
		OriginalSize:     t.OriginalSize,
		CompressedSize:   t.CompressedSize,
		StoredSize:       t.StoredSize,
		CompressionRatio: t.CompressionRatio,
	}
}

// ToDownloadResponse encodes the restored bytes.
func ToDownloadResponse(filename string, data []byte) *DownloadResponse {
	return &DownloadResponse{
		Filename: filename,
		Data:     base64.StdEncoding.EncodeToString(data),
		Size:     len(data),
	}
}
