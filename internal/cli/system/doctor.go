package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/lock"
	"github.com/julianstephens/tracker/internal/utils"
)

// errDoctorFailed is returned when at least one check fails.
var errDoctorFailed = errors.New("one or more health checks failed")

type schemaVersioner interface {
	SchemaVersion(ctx context.Context) (current, latest int, err error)
}

type check struct {
	name     string
	run      func(context.Context, *cli.Context) error
	warnOnly bool
	needsDB  bool
}

var checks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Pinned category", run: checkPinnedCategory, needsDB: true},
	{name: "Tracker data", run: checkTrackers, needsDB: true},
	{name: "Orphaned records", run: checkOrphanedRecords, needsDB: true},
	{name: "Future records", run: checkFutureRecords, needsDB: true, warnOnly: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
	{name: "Session lock", run: checkLock, warnOnly: true},
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()
	bg := context.Background()

	failed := false
	dbReachable := true
	if err := ctx.Store.Load(); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n   Error: %v\n", err)
		failed = true
		dbReachable = false
	} else {
		ctx.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(bg, ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			ctx.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			failed = true
		}
	}

	ctx.Println()
	if failed {
		ctx.Println("Some checks failed.")
		return errDoctorFailed
	}
	ctx.Println("All checks passed.")
	return nil
}

func checkSchemaVersion(ctx context.Context, c *cli.Context) error {
	sv, ok := c.Store.(schemaVersioner)
	if !ok {
		return nil
	}
	current, latest, err := sv.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if current != latest {
		return fmt.Errorf("database is at version %d, latest is %d; run '%s init' to migrate", current, latest, constants.AppName)
	}
	return nil
}

func checkPinnedCategory(ctx context.Context, c *cli.Context) error {
	if _, err := c.Store.GetCategory(ctx, constants.PinnedCategoryID); err != nil {
		return fmt.Errorf("pinned category missing: %w", err)
	}
	return nil
}

func checkTrackers(ctx context.Context, c *cli.Context) error {
	trackers, err := c.Store.FetchAllTrackers(ctx)
	if err != nil {
		return err
	}
	var problems []error
	for _, t := range trackers {
		if err := t.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("%s: %w", t.Title, err))
			continue
		}
		if _, err := c.Store.GetCategory(ctx, t.CategoryID); err != nil {
			problems = append(problems, fmt.Errorf("%s: category %s: %w", t.Title, t.CategoryID, err))
		}
	}
	return errors.Join(problems...)
}

func checkOrphanedRecords(ctx context.Context, c *cli.Context) error {
	records, err := c.Store.FetchAllRecords(ctx)
	if err != nil {
		return err
	}
	trackers, err := c.Store.FetchAllTrackers(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(trackers))
	for _, t := range trackers {
		known[t.ID] = true
	}
	orphaned := 0
	for _, r := range records {
		if !known[r.TrackerID] {
			orphaned++
		}
	}
	if orphaned > 0 {
		return fmt.Errorf("%d record(s) point at deleted trackers", orphaned)
	}
	return nil
}

func checkFutureRecords(ctx context.Context, c *cli.Context) error {
	svc, err := c.Service()
	if err != nil {
		return err
	}
	today := utils.DayKey(svc.Today())
	records, err := c.Store.FetchAllRecords(ctx)
	if err != nil {
		return err
	}
	future := 0
	for _, r := range records {
		if r.Date > today {
			future++
		}
	}
	if future > 0 {
		return fmt.Errorf("%d completion(s) are dated after today (%s)", future, today)
	}
	return nil
}

func checkBackupsPresent(_ context.Context, c *cli.Context) error {
	if !c.IsSQLite() {
		return nil
	}
	backups, err := c.BackupManager().List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, create one with '%s backup create'", constants.AppName)
	}
	if age := c.Clock.Now().Sub(backups[0].Timestamp); age > 7*24*time.Hour {
		return fmt.Errorf("latest backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

func checkLock(_ context.Context, c *cli.Context) error {
	if pid, held := lock.Held(c.LockDir()); held {
		return fmt.Errorf("another session (pid %d) holds the lock", pid)
	}
	return nil
}
