package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/omnisent/omnisent/internal/client/access"
)

// statFile is a test seam for pre-flight size checks.
var statFile = os.Stat

// Upload validates each path against the current role's limits and enqueues
// the survivors. Files failing validation are reported and skipped; one bad
// file never blocks the rest of the batch.
func (a *App) Upload(ctx context.Context, args []string) error {
	u := a.session.User()
	if u == nil {
		fmt.Println("Not logged in")
		return nil
	}
	role := u.Role

	folderID := ""
	paths := make([]string, 0, len(args))
	for _, path := range args {
		info, err := statFile(path)
		if err != nil {
			fmt.Printf("Skipping %s: %s\n", path, err.Error())
			continue
		}
		if info.IsDir() {
			fmt.Printf("Skipping %s: is a directory\n", path)
			continue
		}
		if err := access.ValidateUpload(role, filepath.Base(path), info.Size()); err != nil {
			fmt.Printf("Skipping %s: %s\n", path, err.Error())
			continue
		}
		paths = append(paths, path)
	}

	if len(paths) == 0 {
		return nil
	}

	ids := a.queue.Enqueue(ctx, folderID, paths)
	for i, id := range ids {
		fmt.Printf("Queued %s as %s\n", filepath.Base(paths[i]), id)
	}
	return nil
}

// Uploads prints the queue in enqueue order.
func (a *App) Uploads(ctx context.Context) error {
	tasks := a.queue.Tasks()
	if len(tasks) == 0 {
		fmt.Println("No transfers")
		return nil
	}
	for _, task := range tasks {
		line := fmt.Sprintf("%-36s  %-9s  %3d%%  %s", task.ID, task.Status, task.Progress, task.Name)
		if task.Err != "" {
			line += "  (" + task.Err + ")"
		}
		fmt.Println(line)
	}
	return nil
}

// CancelUpload aborts an in-flight transfer.
func (a *App) CancelUpload(ctx context.Context, args []string) error {
	id := args[0]
	if a.queue.Cancel(id) {
		fmt.Println("Cancelled", id)
	} else {
		fmt.Println("Nothing to cancel for", id)
	}
	return nil
}

// RetryUpload re-enqueues a failed or cancelled transfer as a fresh task.
func (a *App) RetryUpload(ctx context.Context, args []string) error {
	id := args[0]
	newID := a.queue.Retry(ctx, id)
	if newID == "" {
		fmt.Println("Nothing to retry for", id)
		return nil
	}
	fmt.Println("Retrying as", newID)
	return nil
}

// ClearUploads drops finished transfers, keeping running ones.
func (a *App) ClearUploads(ctx context.Context) error {
	a.queue.Clear()
	return nil
}
