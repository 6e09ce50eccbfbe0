package model

import "time"

// ActivityKind names an audited user action.
type ActivityKind string

const (
	ActivityUserRegistered ActivityKind = "user_registered"
	ActivityUserLogin      ActivityKind = "user_login"
	ActivityUserLogout     ActivityKind = "user_logout"
	ActivityFileUpload     ActivityKind = "file_upload"
	ActivityFileDownload   ActivityKind = "file_download"
)

// Activity is an append-only audit entry.
type Activity struct {
	ID         string         `db:"id"`
	UserID     string         `db:"user_id"`
	Kind       ActivityKind   `db:"kind"`
	Details    map[string]any `db:"details"`
	RemoteAddr string         `db:"remote_addr"`
	CreatedAt  time.Time      `db:"created_at"`
}
