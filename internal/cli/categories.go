package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"trivia-quiz-client/internal/app"
)

func newCategoriesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List trivia categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			service := newQuizService(cfg, log)
			catalog := app.NewCategoryCatalog(app.CategoryLoaderFunc(service.LoadCategories), log)
			printCategories(cmd.Context(), cmd.OutOrStdout(), catalog)
			return nil
		},
	}
}

// printCategories lists the catalog. A failed fetch is not an error for the
// user; the list is simply empty.
func printCategories(ctx context.Context, out io.Writer, catalog *app.CategoryCatalog) {
	_ = catalog.Refresh(ctx)
	categories := catalog.Categories()
	if len(categories) == 0 {
		fmt.Fprintln(out, "no categories available")
		return
	}
	for _, c := range categories {
		fmt.Fprintf(out, "%4d  %s\n", c.ID, c.Name)
	}
}
