package commands

// Helper functions shared across commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"

	"github.com/colecta/colecta-cli/internal/models"
	"github.com/colecta/colecta-cli/internal/store"
)

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// isTTY reports whether stdout is an interactive terminal; prompts and
// styling are skipped when it is not.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// terminalWidth returns the stdout width, defaulting to 80 columns.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

func starRating(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// confirm asks an interactive yes/no question; non-interactive runs refuse
// unless the command passed --yes.
func confirm(message string, assumeYes bool) bool {
	if assumeYes {
		return true
	}
	if !isTTY() {
		fmt.Println("Refusing without confirmation; pass --yes to proceed.")
		return false
	}
	ok := false
	if err := survey.AskOne(&survey.Confirm{Message: message}, &ok); err != nil {
		return false
	}
	return ok
}

// findCategory resolves a user-supplied reference — id or exact name — to
// a category in the store.
func findCategory(s *store.Store, ref string) (*models.Category, bool) {
	categories := s.Categories()
	for i := range categories {
		if categories[i].ID == ref {
			return &categories[i], true
		}
	}
	for i := range categories {
		if strings.EqualFold(categories[i].Name, ref) {
			return &categories[i], true
		}
	}
	return nil, false
}

// findItem resolves an item by id, or by unique id prefix for convenience.
func findItem(s *store.Store, ref string) (*models.Item, bool) {
	items := s.Items()
	for i := range items {
		if items[i].ID == ref {
			return &items[i], true
		}
	}
	var match *models.Item
	for i := range items {
		if strings.HasPrefix(items[i].ID, ref) {
			if match != nil {
				return nil, false // ambiguous prefix
			}
			match = &items[i]
		}
	}
	return match, match != nil
}

// selectCategory prompts for a category when none was given on the command
// line.
func selectCategory(s *store.Store) (*models.Category, error) {
	categories := s.Categories()
	if len(categories) == 0 {
		return nil, fmt.Errorf("no categories yet; create one with 'colecta category add'")
	}
	options := make([]string, len(categories))
	for i, c := range categories {
		options[i] = fmt.Sprintf("%s %s", c.Icon, c.Name)
	}
	var choice int
	prompt := &survey.Select{Message: "Category:", Options: options}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return nil, err
	}
	return &categories[choice], nil
}
