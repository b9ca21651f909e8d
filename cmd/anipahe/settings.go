package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alvarorichard/anipahe/internal/appflow"
	"github.com/alvarorichard/anipahe/internal/models"
	"github.com/alvarorichard/anipahe/internal/util"
	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	settingsPlayer     string
	settingsInterval   int
	settingsClearCache bool
	settingsReset      bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Change the default player and the backend cache",
	Long: `Without flags an interactive form is shown. With flags the
settings are applied directly.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *appflow.App) error {
			f := cmd.Flags()
			if settingsReset {
				n, err := app.Prefs.Reset(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Println(util.Success(fmt.Sprintf("Einstellungen zurückgesetzt (%d Einträge).", n)))
				return nil
			}
			if f.Changed("player") || f.Changed("cache-interval") || f.Changed("clear-cache") {
				return applySettings(cmd, app, f.Changed("player"), f.Changed("cache-interval"))
			}
			return settingsForm(cmd, app)
		})
	},
}

func init() {
	f := settingsCmd.Flags()
	f.StringVar(&settingsPlayer, "player", "", "default player: mpv or web")
	f.IntVar(&settingsInterval, "cache-interval", 0, "background cache interval in minutes")
	f.BoolVar(&settingsClearCache, "clear-cache", false, "clear the backend cache")
	f.BoolVar(&settingsReset, "reset", false, "forget the stored player and cache interval")
}

func applySettings(cmd *cobra.Command, app *appflow.App, player, interval bool) error {
	ctx := cmd.Context()
	if player {
		choice := models.ParsePlayerChoice(strings.ToLower(settingsPlayer))
		if err := app.SetPlayerChoice(ctx, choice); err != nil {
			return err
		}
		fmt.Println(util.Success("Standard-Player geändert zu: " + string(choice)))
	}
	if interval {
		if settingsInterval < 1 {
			return errors.New("Bitte geben Sie eine gültige Anzahl von Minuten ein.")
		}
		if err := app.SetCacheInterval(ctx, settingsInterval); err != nil {
			return errors.Wrap(err, "Fehler beim Ändern des Cache-Intervalls")
		}
		fmt.Println(util.Success(fmt.Sprintf("Cache-Intervall geändert zu: %d Minuten", settingsInterval)))
	}
	if settingsClearCache {
		if err := app.ClearCache(ctx); err != nil {
			return errors.Wrap(err, "Fehler beim Löschen des Caches")
		}
		fmt.Println(util.Success("Cache gelöscht."))
	}
	return nil
}

func settingsForm(cmd *cobra.Command, app *appflow.App) error {
	ctx := cmd.Context()
	choice, err := app.PlayerChoice(ctx)
	if err != nil {
		return err
	}
	minutes, err := app.CacheIntervalMinutes(ctx)
	if err != nil {
		return err
	}

	player := string(choice)
	interval := strconv.Itoa(minutes)
	var clearCache bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Standard-Player").
				Options(
					huh.NewOption("mpv (externer Player)", string(models.PlayerMPV)),
					huh.NewOption("Webplayer (Browser)", string(models.PlayerWeb)),
				).
				Value(&player),
			huh.NewInput().
				Title("Cache-Intervall (Minuten)").
				Value(&interval).
				Validate(func(s string) error {
					if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 1 {
						return errors.New("Bitte geben Sie eine gültige Anzahl von Minuten ein.")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Cache löschen?").
				Affirmative("Ja").
				Negative("Nein").
				Value(&clearCache),
		),
	)
	if err := form.Run(); err != nil {
		return errors.Wrap(err, "failed to show settings form")
	}

	settingsPlayer = player
	settingsClearCache = clearCache
	n, _ := strconv.Atoi(strings.TrimSpace(interval))
	settingsInterval = n
	return applySettings(cmd, app, models.PlayerChoice(player) != choice, n != minutes)
}
