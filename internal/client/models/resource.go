package models

import "time"

// ResourceKind distinguishes files from folders.
type ResourceKind string

const (
	KindFile   ResourceKind = "file"
	KindFolder ResourceKind = "folder"
)

// PermissionRecord is an explicit per-subject grant attached to a resource
// by the backend. Absent record means no explicit grant.
type PermissionRecord struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	Delete bool `json:"delete"`
	Share  bool `json:"share"`
}

// Resource is a file or folder record returned by the backend. It is fetched
// per navigation and never cached beyond the current listing.
type Resource struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Kind      ResourceKind      `json:"type"`
	Extension string            `json:"extension,omitempty"`
	Size      int64             `json:"size"`
	Path      string            `json:"path"`
	ParentID  string            `json:"parent_id,omitempty"`
	OwnerID   string            `json:"owner_id"`
	Owner     string            `json:"owner,omitempty"`
	Protected bool              `json:"protected"`
	Shared    bool              `json:"shared"`
	Starred   bool              `json:"starred"`
	Perms     *PermissionRecord `json:"permissions,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// IsFolder reports whether the resource is a folder.
func (r *Resource) IsFolder() bool {
	return r.Kind == KindFolder
}
