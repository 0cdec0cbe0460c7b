package backups

import (
	"errors"
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/logger"
)

var errNotSQLite = errors.New("backups are only available for SQLite databases")

type BackupCmd struct {
	Create  CreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
	List    ListCmd    `cmd:"" help:"List available backups."`
	Restore RestoreCmd `cmd:"" help:"Restore from a backup."`
}

type CreateCmd struct{}

func (c *CreateCmd) Run(ctx *cli.Context) error {
	if !ctx.IsSQLite() {
		return errNotSQLite
	}
	b, err := ctx.BackupManager().Create()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.Printf("✓ Backup created: %s\n", b.Name)
	return nil
}

type ListCmd struct{}

func (c *ListCmd) Run(ctx *cli.Context) error {
	if !ctx.IsSQLite() {
		return errNotSQLite
	}
	mgr := ctx.BackupManager()
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	ctx.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), ctx.Config.Backup.Keep)
	for _, b := range backups {
		ctx.Printf("  %s  %s  (%.1f KB)\n", b.Timestamp.Format("2006-01-02 15:04:05"), b.Name, float64(b.Size)/1024.0)
	}
	ctx.Printf("\nBackup directory: %s\n", mgr.Dir())
	return nil
}

type RestoreCmd struct {
	Backup string `arg:"" help:"Backup file name, path, or 'latest'."`
	Yes    bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *RestoreCmd) Run(ctx *cli.Context) error {
	if !ctx.IsSQLite() {
		return errNotSQLite
	}
	if err := ctx.RequireNoSession(); err != nil {
		return err
	}
	mgr := ctx.BackupManager()
	b, err := mgr.Resolve(c.Backup)
	if err != nil {
		return err
	}

	if !c.Yes {
		ctx.Println("⚠️  This replaces the current database. Stop any running tracker sessions first.")
		ctx.Println("A backup of the current database is taken before restoring.")
		ctx.Printf("\nRestore from: %s\n", b.Path)
		ok, err := ctx.Confirm("Continue?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	// the lock may have been taken while the prompt was open
	if err := ctx.RequireNoSession(); err != nil {
		return err
	}
	if err := ctx.Store.Close(); err != nil {
		logger.Warn("Failed to close database before restore", "error", err)
	}
	safety, err := mgr.Restore(b.Path)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	ctx.ResetService()

	ctx.Println("✓ Database restored successfully!")
	if safety.Name != "" {
		ctx.Printf("  Previous database saved as %s\n", safety.Name)
	}
	return nil
}
