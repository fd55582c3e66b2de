package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v2"

	"github.com/colecta/colecta-cli/internal/stats"
)

var (
	statsTitleStyle = lipgloss.NewStyle().Bold(true)
	statsBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	statsFaintStyle = lipgloss.NewStyle().Faint(true)
)

// NewStatsCommand renders the items-per-category breakdown.
func NewStatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show the distribution of your collection",
		Action: func(c *cli.Context) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			env.Store.FetchCategories(c.Context)
			env.Store.FetchItems(c.Context)

			buckets := stats.ItemsPerCategory(env.Store.Categories(), env.Store.Items())
			if len(buckets) == 0 {
				fmt.Println("Nothing to chart yet.")
				return nil
			}

			total := 0
			max := 0
			nameWidth := 0
			for _, b := range buckets {
				total += b.Count
				if b.Count > max {
					max = b.Count
				}
				if len(b.Name) > nameWidth {
					nameWidth = len(b.Name)
				}
			}

			if !isTTY() {
				for _, b := range buckets {
					fmt.Printf("%s\t%d\n", b.Name, b.Count)
				}
				return nil
			}

			fmt.Println(statsTitleStyle.Render("Your collection"))
			fmt.Println()

			barWidth := terminalWidth() - nameWidth - 12
			if barWidth < 10 {
				barWidth = 10
			}
			for _, b := range buckets {
				length := 0
				if max > 0 {
					length = b.Count * barWidth / max
				}
				if b.Count > 0 && length == 0 {
					length = 1
				}
				icon := b.Icon
				if icon == "" {
					icon = "·"
				}
				fmt.Printf("%s %-*s %s %d\n",
					icon,
					nameWidth, b.Name,
					statsBarStyle.Render(strings.Repeat("█", length)),
					b.Count)
			}

			fmt.Println()
			fmt.Println(statsFaintStyle.Render(fmt.Sprintf("%d item(s) total", total)))
			return nil
		},
	}
}
