package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/lock"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/tui"
)

type TuiCmd struct {
	Wait time.Duration `help:"How long to wait for another running session to exit." default:"2s"`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	l, err := lock.Acquire(ctx.LockDir(), lock.Options{Wait: c.Wait})
	if errors.Is(err, lock.ErrLocked) {
		return fmt.Errorf("%w; close it first or rerun '%s tui' with a longer --wait", err, constants.AppName)
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Release(); err != nil {
			logger.Warn("Failed to release session lock", "error", err)
		}
	}()

	if ctx.Config.Backup.OnStartup {
		ctx.PerformAutomaticBackup()
	}

	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	bg, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(tui.NewModel(bg, svc), tea.WithAltScreen(), tea.WithContext(bg))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive session failed: %w", err)
	}
	return nil
}
