package cli

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/omnisent/omnisent/internal/client/access"
	"github.com/omnisent/omnisent/internal/client/models"
)

// capabilitiesFor fetches a resource and resolves the current user's
// capabilities on it. The result is advisory: the backend re-checks every
// operation, this only lets the client refuse early with a clear message.
func (a *App) capabilitiesFor(ctx context.Context, id string) (*models.Resource, access.CapabilitySet, error) {
	res, err := a.api.GetFile(ctx, id)
	if err != nil {
		return nil, access.CapabilitySet{}, err
	}
	return res, access.ResolveCapabilities(a.session.User(), res), nil
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(size)/(1<<30))
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

func printResource(res *models.Resource) {
	kind := "file"
	details := formatSize(res.Size)
	if res.IsFolder() {
		kind = "dir"
		details = ""
	}
	flags := ""
	if res.Protected {
		flags += " [protected]"
	}
	if res.Shared {
		flags += " [shared]"
	}
	fmt.Printf("%-36s  %-4s  %-10s  %s%s\n", res.ID, kind, details, res.Name, flags)
}

// List shows the contents of a folder path (default "/"), optionally
// filtered by a listing category such as "images" or "documents".
func (a *App) List(ctx context.Context, args []string) error {
	path := "/"
	filter := ""
	if len(args) > 0 {
		path = args[0]
	}
	if len(args) > 1 {
		filter = args[1]
		if access.CategoryExtensions(filter) == nil {
			fmt.Println("Unknown category:", filter)
			return nil
		}
	}

	files, err := a.api.ListFiles(ctx, path, filter, "")
	if err != nil {
		log.Println(err.Error())
		return err
	}
	for _, res := range files {
		printResource(res)
	}
	return nil
}

// Search finds files by name across the whole tree.
func (a *App) Search(ctx context.Context, args []string) error {
	files, err := a.api.ListFiles(ctx, "", "", strings.Join(args, " "))
	if err != nil {
		log.Println(err.Error())
		return err
	}
	for _, res := range files {
		printResource(res)
	}
	return nil
}

// Mkdir creates a folder, optionally inside a parent folder.
func (a *App) Mkdir(ctx context.Context, args []string) error {
	name := args[0]
	parentID := ""
	if len(args) > 1 {
		parentID = args[1]
	}

	res, err := a.api.CreateFolder(ctx, parentID, name)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Println("Created folder", res.ID)
	return nil
}

// Remove deletes a file or folder after checking the delete capability.
func (a *App) Remove(ctx context.Context, args []string) error {
	id := args[0]
	res, caps, err := a.capabilitiesFor(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	if !caps.Delete {
		fmt.Printf("You cannot delete %q\n", res.Name)
		return nil
	}

	if err := a.api.DeleteFile(ctx, id); err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Println("Deleted", res.Name)
	return nil
}

// Rename renames a file or folder after checking the rename capability.
func (a *App) Rename(ctx context.Context, args []string) error {
	id, name := args[0], args[1]
	res, caps, err := a.capabilitiesFor(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	if !caps.Rename {
		fmt.Printf("You cannot rename %q\n", res.Name)
		return nil
	}

	if err := a.api.RenameFile(ctx, id, name); err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Printf("Renamed %q to %q\n", res.Name, name)
	return nil
}

// Move moves a file or folder into another folder after checking the move
// capability.
func (a *App) Move(ctx context.Context, args []string) error {
	id, parentID := args[0], args[1]
	res, caps, err := a.capabilitiesFor(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	if !caps.Move {
		fmt.Printf("You cannot move %q\n", res.Name)
		return nil
	}

	if err := a.api.MoveFile(ctx, id, parentID); err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Println("Moved", res.Name)
	return nil
}
