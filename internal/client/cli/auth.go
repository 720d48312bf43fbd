package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/omnisent/omnisent/internal/client/access"
	"github.com/omnisent/omnisent/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts the user for credentials, authenticates against the backend
// and persists the returned session. On success the auto-logout timer is
// armed so the client logs out shortly before the token expires.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	token, user, err := a.api.Login(ctx, userName, string(password))
	common.WipeByteArray(password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			log.Printf("Login unsuccessful: invalid credentials")
		} else {
			log.Printf("Login unsuccessful: %s", err.Error())
		}
		return err
	}

	if err := a.session.Store(ctx, token, user); err != nil {
		return err
	}
	a.stopAutoLogout = a.session.ScheduleAutoLogout(a.sessionExpired)

	log.Printf("Login successful")
	return nil
}

// Logout ends the session on the backend (best effort), cancels the
// auto-logout timer and wipes the stored credential. Safe to call twice.
func (a *App) Logout(ctx context.Context) error {
	if a.session.Token() != "" {
		if err := a.api.Logout(ctx); err != nil && !errors.Is(err, common.ErrUnauthorized) {
			log.Printf("Server logout failed: %s", err.Error())
		}
	}
	if a.stopAutoLogout != nil {
		a.stopAutoLogout()
		a.stopAutoLogout = nil
	}
	return a.session.Clear(ctx)
}

// Whoami prints the authenticated user together with the role's upload
// limits.
func (a *App) Whoami(ctx context.Context) error {
	u := a.session.User()
	if u == nil {
		fmt.Println("Not logged in")
		return nil
	}

	limits := access.LimitsFor(u.Role)
	fmt.Printf("%s (%s)\n", u.Username, u.Role)
	if limits.MaxUploadSizeMB == 0 {
		fmt.Println("Upload limit: unlimited")
	} else {
		fmt.Printf("Upload limit: %d MB\n", limits.MaxUploadSizeMB)
	}
	fmt.Printf("Allowed types: %s\n", strings.Join(limits.AllowedExtensions, ", "))
	return nil
}
