package settings

import (
	"context"
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone      *string `help:"IANA timezone used to decide what 'today' is, or 'Local'."`
	DefaultFilter *string `help:"Filter mode used by list when none is given (all, today, completed, not-completed)."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	bg := context.Background()

	settings, err := svc.Settings(bg)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		ctx.Println("Current Settings:")
		ctx.Printf("  Timezone:        %s\n", settings.Timezone)
		ctx.Printf("  Default Filter:  %s\n", settings.DefaultFilter)
		return nil
	}

	updated := false
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone %q", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.DefaultFilter != nil {
		mode, ok := constants.ParseFilterMode(*c.DefaultFilter)
		if !ok {
			return fmt.Errorf("invalid filter mode %q", *c.DefaultFilter)
		}
		settings.DefaultFilter = mode
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}
	if err := svc.SaveSettings(bg, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.ResetService()
	ctx.Println("Settings updated successfully.")
	return nil
}
