package main

import (
	"fmt"
	"strings"

	"github.com/alvarorichard/anipahe/internal/appflow"
	"github.com/alvarorichard/anipahe/internal/models"
	"github.com/alvarorichard/anipahe/internal/playback"
	"github.com/alvarorichard/anipahe/internal/util"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var playerFlag string

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search an anime, pick an episode and play it",
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&playerFlag, "player", "", "player for this run: mpv or web (default: saved setting)")
}

var promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C084FC")).Bold(true)

func promptQuery() (string, error) {
	prompt := promptui.Prompt{
		Label: promptStyle.Render("🔍 Anime suchen"),
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("Bitte geben Sie einen Suchbegriff ein.")
			}
			return nil
		},
	}
	query, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(query), nil
}

func pickAnime(items []models.AnimeSummary) (models.AnimeSummary, error) {
	if len(items) == 1 {
		return items[0], nil
	}
	idx, err := fuzzyfinder.Find(
		items,
		func(i int) string {
			return items[i].Title
		},
		fuzzyfinder.WithPromptString("Anime wählen: "),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i < 0 || i >= len(items) {
				return ""
			}
			a := items[i]
			return fmt.Sprintf("%s\n\nTyp:    %s\nGenre:  %s\nStudio: %s\nJahr:   %s",
				a.Title, util.OrNA(a.Type), util.OrNA(a.Genre), util.OrNA(a.Studio), util.OrNA(a.Year))
		}),
	)
	if err != nil {
		return models.AnimeSummary{}, errors.Wrap(err, "anime selection cancelled")
	}
	return items[idx], nil
}

func pickEpisode(episodes []models.Episode) (models.Episode, error) {
	if len(episodes) == 1 {
		return episodes[0], nil
	}
	idx, err := fuzzyfinder.Find(
		episodes,
		func(i int) string {
			return episodes[i].Label()
		},
		fuzzyfinder.WithPromptString("Episode wählen: "),
	)
	if err != nil {
		return models.Episode{}, errors.Wrap(err, "episode selection cancelled")
	}
	return episodes[idx], nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		var err error
		if query, err = promptQuery(); err != nil {
			return err
		}
	}

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	var items []models.AnimeSummary
	var searchErr error
	_ = spinner.New().
		Title(fmt.Sprintf("Suche läuft für '%s'...", query)).
		Type(spinner.Dots).
		Action(func() {
			items, searchErr = appflow.SearchAnime(ctx, app.API, query)
		}).
		Run()
	if searchErr != nil {
		return searchErr
	}
	fmt.Println(util.Success(fmt.Sprintf("Suche abgeschlossen. %d Ergebnisse gefunden.", len(items))))

	anime, err := pickAnime(items)
	if err != nil {
		return err
	}

	var details models.AnimeDetails
	var episodes []models.Episode
	var epErr error
	_ = spinner.New().
		Title("Lade Details...").
		Type(spinner.Dots).
		Action(func() {
			details = appflow.FetchAnimeDetails(ctx, app.API, anime)
			episodes, epErr = appflow.GetAnimeEpisodes(ctx, app.API, anime)
		}).
		Run()
	if epErr != nil {
		return epErr
	}

	fmt.Println(util.Title(details.Title))
	fmt.Printf("%s · %s · %s\n", util.OrNA(details.Type), util.OrNA(details.Year), util.OrNA(details.Studio))
	if details.Synopsis != "" {
		fmt.Println(lipgloss.NewStyle().Width(80).Render(details.Synopsis))
	}

	ep, err := pickEpisode(episodes)
	if err != nil {
		return err
	}
	return play(cmd, app, anime, ep)
}

func play(cmd *cobra.Command, app *appflow.App, anime models.AnimeSummary, ep models.Episode) error {
	ctx := cmd.Context()
	var (
		res playback.Result
		err error
	)
	if playerFlag != "" {
		res, err = app.Player.Play(ctx, models.ParsePlayerChoice(playerFlag), playback.Request{
			Title:     anime.Title,
			Episode:   ep.Label(),
			Thumbnail: anime.Thumbnail,
			Refs:      []models.EpisodeRef{ep.Ref(anime.Session)},
		})
	} else {
		res, err = app.PlayEpisode(ctx, anime, ep)
	}
	if err != nil {
		return errors.Wrap(err, "Fehler beim Abspielen der Episode")
	}

	if res.Choice == models.PlayerWeb {
		fmt.Println(util.Success("Webplayer geöffnet: " + res.Opened))
	} else {
		fmt.Println(util.Success(fmt.Sprintf("%s: %s wird im externen Player abgespielt.", anime.Title, ep.Label())))
	}
	return nil
}
