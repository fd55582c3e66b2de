package commands

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v2"

	"github.com/colecta/colecta-cli/internal/models"
	"github.com/colecta/colecta-cli/internal/store"
)

func itemReorderCmd() *cli.Command {
	return &cli.Command{
		Name:  "reorder",
		Usage: "Interactively reorder items",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "category",
				Aliases: []string{"c"},
				Value:   store.CategoryAll,
				Usage:   "Limit reordering to one category",
			},
		},
		Action: func(c *cli.Context) error {
			if !isTTY() {
				return fmt.Errorf("reorder needs an interactive terminal")
			}

			env, err := newEnv()
			if err != nil {
				return err
			}
			env.Store.FetchCategories(c.Context)
			env.Store.FetchItems(c.Context)

			categoryID := c.String("category")
			if categoryID != store.CategoryAll {
				cat, ok := findCategory(env.Store, categoryID)
				if !ok {
					return fmt.Errorf("category %q not found", categoryID)
				}
				categoryID = cat.ID
			}

			visible := env.Store.ItemsByCategory(categoryID)
			if len(visible) < 2 {
				fmt.Println("Nothing to reorder.")
				return nil
			}

			final, err := tea.NewProgram(newReorderModel(visible)).Run()
			if err != nil {
				return fmt.Errorf("reorder UI failed: %w", err)
			}

			m := final.(reorderModel)
			if !m.saved {
				fmt.Println("Reorder cancelled.")
				return nil
			}

			ids := make([]string, len(m.items))
			for i, it := range m.items {
				ids[i] = it.ID
			}
			// The reordered subset goes to the front; items outside the
			// current view keep their relative order behind it.
			env.Store.ReorderItems(ids)
			fmt.Println("✅ Order saved.")
			return nil
		},
	}
}

type reorderKeymap struct {
	Up     key.Binding
	Down   key.Binding
	Raise  key.Binding
	Lower  key.Binding
	Save   key.Binding
	Cancel key.Binding
}

var reorderKeys = reorderKeymap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move cursor up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move cursor down")),
	Raise:  key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("shift+↑/K", "move item up")),
	Lower:  key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("shift+↓/J", "move item down")),
	Save:   key.NewBinding(key.WithKeys("enter", "s"), key.WithHelp("enter/s", "save")),
	Cancel: key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc/q", "cancel")),
}

var (
	reorderTitleStyle    = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	reorderSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	reorderHelpStyle     = lipgloss.NewStyle().Faint(true).MarginTop(1)
)

type reorderModel struct {
	items  []models.Item
	cursor int
	saved  bool
}

func newReorderModel(items []models.Item) reorderModel {
	// Work on a copy so cancelling leaves the store untouched.
	cp := make([]models.Item, len(items))
	copy(cp, items)
	return reorderModel{items: cp}
}

func (m reorderModel) Init() tea.Cmd {
	return nil
}

func (m reorderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, reorderKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, reorderKeys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, reorderKeys.Raise):
		if m.cursor > 0 {
			m.items[m.cursor-1], m.items[m.cursor] = m.items[m.cursor], m.items[m.cursor-1]
			m.cursor--
		}
	case key.Matches(keyMsg, reorderKeys.Lower):
		if m.cursor < len(m.items)-1 {
			m.items[m.cursor+1], m.items[m.cursor] = m.items[m.cursor], m.items[m.cursor+1]
			m.cursor++
		}
	case key.Matches(keyMsg, reorderKeys.Save):
		m.saved = true
		return m, tea.Quit
	case key.Matches(keyMsg, reorderKeys.Cancel):
		return m, tea.Quit
	}
	return m, nil
}

func (m reorderModel) View() string {
	view := reorderTitleStyle.Render("Reorder items") + "\n"
	for i, it := range m.items {
		line := fmt.Sprintf("  %s %s", starRating(it.Rating), truncateString(it.Title, 50))
		if i == m.cursor {
			line = reorderSelectedStyle.Render("▸" + line[1:])
		}
		view += line + "\n"
	}
	view += reorderHelpStyle.Render("↑/↓ move cursor · shift+↑/↓ move item · enter save · esc cancel")
	return view
}
