package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alvarorichard/anipahe/internal/appflow"
	"github.com/alvarorichard/anipahe/internal/util"
	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "List, export or import favorites",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *appflow.App) error {
			items := app.Favorites.List()
			if len(items) == 0 {
				fmt.Println("Keine Favoriten vorhanden.")
				return nil
			}
			fmt.Println(summaryTable(items))
			return nil
		})
	},
}

var favoritesExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write favorites as YAML to file or stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *appflow.App) error {
			var w io.Writer = os.Stdout
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return errors.Wrap(err, "failed to create export file")
				}
				defer f.Close()
				w = f
			}
			if err := app.Favorites.Export(w); err != nil {
				return err
			}
			if len(args) == 1 {
				fmt.Println(util.Success(fmt.Sprintf("%d Favoriten exportiert nach %s", app.Favorites.Len(), args[0])))
			}
			return nil
		})
	},
}

var (
	importReplace bool
	clearYes      bool
)

var favoritesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge favorites from a YAML export (--replace drops the current list first)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *appflow.App) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "failed to open import file")
			}
			defer f.Close()

			if importReplace {
				if err := app.Favorites.Clear(cmd.Context()); err != nil {
					return err
				}
			}
			added, err := app.Favorites.Import(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Println(util.Success(fmt.Sprintf("%d Favoriten importiert.", added)))
			return nil
		})
	},
}

var favoritesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all favorites",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *appflow.App) error {
			n := app.Favorites.Len()
			if n == 0 {
				fmt.Println("Keine Favoriten vorhanden.")
				return nil
			}
			if !clearYes {
				confirm := huh.NewConfirm().
					Title(fmt.Sprintf("Alle %d Favoriten löschen?", n)).
					Affirmative("Ja").
					Negative("Nein").
					Value(&clearYes)
				if err := confirm.Run(); err != nil {
					return err
				}
				if !clearYes {
					fmt.Println("Abgebrochen.")
					return nil
				}
			}
			if err := app.Favorites.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Println(util.Success(fmt.Sprintf("%d Favoriten gelöscht.", n)))
			return nil
		})
	},
}

func init() {
	favoritesImportCmd.Flags().BoolVar(&importReplace, "replace", false, "replace the current favorites instead of merging")
	favoritesClearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "do not ask for confirmation")
	favoritesCmd.AddCommand(favoritesExportCmd, favoritesImportCmd, favoritesClearCmd)
}

func withApp(cmd *cobra.Command, fn func(app *appflow.App) error) error {
	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}
