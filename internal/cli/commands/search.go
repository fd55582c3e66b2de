package commands

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/urfave/cli/v2"

	"github.com/colecta/colecta-cli/internal/models"
)

// NewSearchCommand looks up a title on the external providers and can
// pre-fill a new item from a result.
func NewSearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search OMDB and Google Books for a title",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "add", Aliases: []string{"a"}, Usage: "Add a picked result to the collection"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("search query is required")
			}
			query := strings.Join(c.Args().Slice(), " ")

			env, err := newEnv()
			if err != nil {
				return err
			}

			results := env.Search.Search(c.Context, query)
			if len(results) == 0 {
				fmt.Println("No results.")
				return nil
			}

			for i, r := range results {
				fmt.Printf("%2d. [%s] %s\n", i+1, r.Source, r.Title)
				if r.Description != "" {
					fmt.Printf("    %s\n", truncateString(r.Description, 100))
				}
			}

			if !c.Bool("add") {
				return nil
			}
			if !isTTY() {
				return fmt.Errorf("--add needs an interactive terminal")
			}

			options := make([]string, len(results))
			for i, r := range results {
				options[i] = fmt.Sprintf("[%s] %s", r.Source, r.Title)
			}
			var choice int
			if err := survey.AskOne(&survey.Select{Message: "Add which result?", Options: options}, &choice); err != nil {
				return err
			}
			picked := results[choice]

			env.Store.FetchCategories(c.Context)
			env.Store.FetchItems(c.Context)

			cat, err := selectCategory(env.Store)
			if err != nil {
				return err
			}

			rating := 0
			if err := survey.AskOne(&survey.Input{Message: "Rating (0-5):", Default: "0"}, &rating); err != nil {
				return err
			}
			if rating < 0 || rating > 5 {
				return fmt.Errorf("rating must be between 0 and 5")
			}

			item := models.Item{
				Title:       picked.Title,
				CategoryID:  cat.ID,
				Rating:      rating,
				ImageURL:    picked.Image,
				Description: picked.Description,
			}
			if err := env.Store.AddItem(c.Context, item); err != nil {
				fmt.Printf("Error adding item: %v\n", err)
				return err
			}

			fmt.Printf("✅ '%s' added to %s.\n", picked.Title, cat.Name)
			return nil
		},
	}
}
