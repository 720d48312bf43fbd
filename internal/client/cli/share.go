package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/omnisent/omnisent/internal/client/access"
	"github.com/omnisent/omnisent/internal/client/models"
	"github.com/omnisent/omnisent/internal/common"
)

// Share creates a share link for a resource. The share capability and the
// role's share limits are checked first; password protection and expiration
// are only offered to roles allowed to use them.
func (a *App) Share(ctx context.Context, args []string) error {
	id := args[0]

	u := a.session.User()
	if u == nil {
		fmt.Println("Not logged in")
		return nil
	}
	limits := access.LimitsFor(u.Role)
	if !limits.CanCreatePublicShares && !limits.CanCreatePasswordShares {
		fmt.Println("Your role cannot create share links")
		return nil
	}

	res, caps, err := a.capabilitiesFor(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	if !caps.Share {
		fmt.Printf("You cannot share %q\n", res.Name)
		return nil
	}

	var opts models.ShareOptions

	if limits.CanCreatePasswordShares {
		answer, err := getSimpleText(a.reader, "Protect with a password? (y/N)", os.Stdout)
		if err != nil {
			return err
		}
		if answer == "y" || answer == "Y" {
			pw, err := getPassword(os.Stdout)
			if err != nil {
				return err
			}
			opts.Password = string(pw)
			common.WipeByteArray(pw)
		}
	}

	if limits.CanSetExpirationDates {
		answer, err := getSimpleText(a.reader, "Expire after how many days? (empty for never)", os.Stdout)
		if err != nil {
			return err
		}
		if answer != "" {
			days, err := strconv.Atoi(answer)
			if err != nil || days <= 0 {
				fmt.Println("Invalid number of days:", answer)
				return nil
			}
			t := time.Now().AddDate(0, 0, days)
			opts.ExpiresAt = &t
		}
	}

	share, err := a.api.CreateShare(ctx, id, opts)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("Share link for %q: %s/share/%s\n", res.Name, a.config.ServerURL, share.Token)
	if share.HasPassword {
		fmt.Println("Password protected")
	}
	if share.ExpiresAt != nil {
		fmt.Println("Expires at", share.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

// Versions shows the version history of a resource; requires the history
// capability.
func (a *App) Versions(ctx context.Context, args []string) error {
	id := args[0]
	res, caps, err := a.capabilitiesFor(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	if !caps.ViewHistory {
		fmt.Printf("You cannot view the history of %q\n", res.Name)
		return nil
	}

	versions, err := a.api.ListVersions(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	for _, v := range versions {
		fmt.Printf("v%-3d  %-10s  %s  %s\n", v.Number, formatSize(v.Size), v.CreatedAt.Format(time.RFC3339), v.Comment)
	}
	return nil
}

// Activity shows the activity log of a resource; requires the history
// capability.
func (a *App) Activity(ctx context.Context, args []string) error {
	id := args[0]
	res, caps, err := a.capabilitiesFor(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	if !caps.ViewHistory {
		fmt.Printf("You cannot view the activity of %q\n", res.Name)
		return nil
	}

	activities, err := a.api.ListActivity(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	for _, act := range activities {
		fmt.Printf("%s  %-12s  %s\n", act.CreatedAt.Format(time.RFC3339), act.Type, act.Descr)
	}
	return nil
}

// Stats prints the storage usage summary.
func (a *App) Stats(ctx context.Context) error {
	stats, err := a.api.Stats(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Printf("%d files, %d folders, %s used\n",
		stats.TotalFiles, stats.TotalFolders, formatSize(stats.UsedBytes))
	return nil
}
