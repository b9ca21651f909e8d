package main

import (
	"fmt"

	"github.com/alvarorichard/anipahe/internal/util"
	"github.com/alvarorichard/anipahe/internal/version"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var checkUpdates bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and optionally check for a newer release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(version.String())
		if !checkUpdates {
			return nil
		}

		var (
			release *version.Release
			newer   bool
			err     error
		)
		_ = spinner.New().
			Title("Suche nach Updates...").
			Type(spinner.Dots).
			Action(func() {
				release, newer, err = version.CheckForUpdates(cmd.Context(), util.NewBackendClient(0), version.LatestURL)
			}).
			Run()
		if err != nil {
			return err
		}
		if !newer {
			fmt.Println(util.Success("anipahe ist aktuell."))
			return nil
		}

		var open bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewNote().
					Title("🚀 Update verfügbar").
					Description(fmt.Sprintf("Aktuelle Version: %s\nNeueste Version: %s", version.Version, release.TagName)),
				huh.NewConfirm().
					Title("Release-Seite im Browser öffnen?").
					Value(&open),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
		if open && release.HTMLURL != "" {
			return browser.OpenURL(release.HTMLURL)
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&checkUpdates, "check", false, "check GitHub for a newer release")
}
