package categories

import (
	"context"
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
)

type CategoryCmd struct {
	Add    AddCmd    `cmd:"" help:"Add a category."`
	List   ListCmd   `cmd:"" help:"List categories." default:"1"`
	Delete DeleteCmd `cmd:"" help:"Delete an empty category."`
}

type AddCmd struct {
	Title string `arg:"" help:"Category title."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	category, err := svc.AddCategory(context.Background(), c.Title)
	if err != nil {
		return fmt.Errorf("failed to add category: %w", err)
	}
	ctx.Printf("Added category %s\n", category.Title)
	return nil
}

type ListCmd struct{}

func (c *ListCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	bg := context.Background()

	categories, err := svc.Categories(bg)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		ctx.Println("No categories yet. Add one with 'category add'.")
		return nil
	}

	trackers, err := svc.Trackers(bg)
	if err != nil {
		return err
	}
	counts := map[string]int{}
	for _, t := range trackers {
		home := t.CategoryID
		if t.IsPinned {
			home = t.OriginalCategoryID
		}
		counts[home]++
	}

	for _, category := range categories {
		ctx.Printf("%-24s %3d tracker(s)  %s\n", category.Title, counts[category.ID], cli.ShortID(category.ID))
	}
	return nil
}

type DeleteCmd struct {
	Category string `arg:"" help:"Category title or ID."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	bg := context.Background()

	category, err := svc.FindCategory(bg, c.Category)
	if err != nil {
		return err
	}
	if err := svc.DeleteCategory(bg, category.ID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	ctx.Printf("Deleted category %s\n", category.Title)
	return nil
}
