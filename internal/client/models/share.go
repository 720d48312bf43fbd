package models

import "time"

// Share is a share link created for a resource.
type Share struct {
	ID            string     `json:"id"`
	ResourceID    string     `json:"file_id"`
	Token         string     `json:"token"`
	HasPassword   bool       `json:"has_password"`
	MaxDownloads  int        `json:"max_downloads,omitempty"`
	DownloadCount int        `json:"download_count"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ShareOptions configures a new share link. Zero values mean "no password",
// "no download limit" and "never expires". Role limits decide which options
// a subject may use at all.
type ShareOptions struct {
	Password     string     `json:"password,omitempty"`
	MaxDownloads int        `json:"max_downloads,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// Version is one entry of a resource's version history.
type Version struct {
	ID        string    `json:"id"`
	Number    int       `json:"version_number"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Activity is one entry of a resource's activity log.
type Activity struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"file_id"`
	UserID     string    `json:"user_id,omitempty"`
	Type       string    `json:"activity_type"`
	Descr      string    `json:"description"`
	CreatedAt  time.Time `json:"created_at"`
}

// StorageStats summarizes a user's storage usage.
type StorageStats struct {
	TotalFiles   int   `json:"total_files"`
	TotalFolders int   `json:"total_folders"`
	UsedBytes    int64 `json:"used_bytes"`
}
