// Package access derives the set of actions a subject may attempt on a
// resource, plus the per-role upload and sharing limits.
//
// Everything here is advisory: it shapes what the client offers the user,
// but the backend is the authoritative enforcement point and re-checks every
// mutating call. Nothing in this package is a security boundary.
package access

import "github.com/omnisent/omnisent/internal/client/models"

// CapabilitySet is the full set of actions a subject may attempt on a
// resource. It is derived fresh from (subject, resource, role limits) and
// never stored or mutated, only recomputed.
type CapabilitySet struct {
	View           bool
	Download       bool
	Edit           bool
	Rename         bool
	Delete         bool
	Move           bool
	Copy           bool
	Share          bool
	Upload         bool
	CreateFolder   bool
	SetPermissions bool
	ViewHistory    bool
}

func allCapabilities() CapabilitySet {
	return CapabilitySet{
		View: true, Download: true, Edit: true, Rename: true,
		Delete: true, Move: true, Copy: true, Share: true,
		Upload: true, CreateFolder: true, SetPermissions: true, ViewHistory: true,
	}
}

// ResolveCapabilities computes the capability set for subject on resource.
// Pure function of its inputs, no I/O.
//
// Precedence: admin > protected-override (applied last, revoke only) >
// owner > explicit ACL > public share > default deny.
func ResolveCapabilities(subject *models.User, resource *models.Resource) CapabilitySet {
	if subject == nil || resource == nil {
		return CapabilitySet{}
	}

	// Admin bypasses everything, including the protected flag.
	if subject.Role == models.RoleAdmin {
		return allCapabilities()
	}

	limits := LimitsFor(subject.Role)
	isOwner := resource.OwnerID == subject.ID
	atLeastUser := subject.Role.AtLeast(models.RoleUser)

	var caps CapabilitySet

	switch {
	case isOwner:
		caps = CapabilitySet{
			View: true, Download: true, Edit: true, Rename: true,
			Delete: true, Move: true, Copy: true,
			SetPermissions: true, ViewHistory: true,
		}
		caps.Share = limits.CanCreatePublicShares || limits.CanCreatePasswordShares
		if resource.IsFolder() {
			caps.Upload = true
			caps.CreateFolder = true
		}

	case resource.Perms != nil:
		p := resource.Perms
		caps.View = p.Read
		caps.Download = p.Read
		caps.Edit = p.Write
		caps.Delete = p.Delete
		caps.Share = p.Share
		// Guests cannot rename, move or copy even with an explicit grant.
		caps.Rename = p.Write && atLeastUser
		caps.Move = p.Write && atLeastUser
		caps.Copy = p.Read && atLeastUser
		if resource.IsFolder() && p.Write {
			caps.Upload = true
			caps.CreateFolder = true
		}

	case resource.Shared && !resource.Protected:
		caps.View = true
		caps.Download = true
		caps.Copy = atLeastUser
	}

	// Protection is a hard override layered last: it can only revoke, never
	// add. Owners and admins are exempt (admin returned earlier).
	if resource.Protected && !isOwner {
		caps.Edit = false
		caps.Rename = false
		caps.Delete = false
		caps.Move = false
		caps.Share = false
		caps.SetPermissions = false
	}

	return caps
}
