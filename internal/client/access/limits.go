package access

import "github.com/omnisent/omnisent/internal/client/models"

// RoleLimits are system-wide per-role restrictions, separate from the
// per-resource capability set. MaxUploadSizeMB of zero means no ceiling and
// the extension wildcard "*" admits any type.
type RoleLimits struct {
	MaxUploadSizeMB         int64
	AllowedExtensions       []string
	CanCreatePublicShares   bool
	CanCreatePasswordShares bool
	CanSetExpirationDates   bool
}

// roleLimits is keyed by role; unknown roles fall back to guest.
var roleLimits = map[models.Role]RoleLimits{
	models.RoleAdmin: {
		MaxUploadSizeMB:         0,
		AllowedExtensions:       []string{"*"},
		CanCreatePublicShares:   true,
		CanCreatePasswordShares: true,
		CanSetExpirationDates:   true,
	},
	models.RoleUser: {
		MaxUploadSizeMB:         100,
		AllowedExtensions:       []string{"*"},
		CanCreatePublicShares:   true,
		CanCreatePasswordShares: true,
		CanSetExpirationDates:   true,
	},
	models.RoleGuest: {
		MaxUploadSizeMB:         10,
		AllowedExtensions:       []string{"jpg", "jpeg", "png", "gif", "pdf", "txt"},
		CanCreatePublicShares:   false,
		CanCreatePasswordShares: false,
		CanSetExpirationDates:   false,
	},
}

// LimitsFor returns the limits for a role. Unknown roles get the guest set.
func LimitsFor(role models.Role) RoleLimits {
	if l, ok := roleLimits[role]; ok {
		return l
	}
	return roleLimits[models.RoleGuest]
}

// MaxUploadBytes returns the role's upload ceiling in bytes, or 0 when the
// role is unrestricted.
func (l RoleLimits) MaxUploadBytes() int64 {
	return l.MaxUploadSizeMB * 1024 * 1024
}
