package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/AlecAivazis/survey/v2"
	"github.com/urfave/cli/v2"
)

// iconChoices is the glyph palette offered by the interactive picker.
var iconChoices = []string{"📁", "🎬", "📚", "🎮", "🎵", "🍿", "📺", "🎨", "🏆", "🧩", "💿", "🃏"}

// NewCategoryCommand creates all subcommands for the 'category' command group.
func NewCategoryCommand() *cli.Command {
	return &cli.Command{
		Name:    "category",
		Aliases: []string{"cat"},
		Usage:   "Manage collection categories",
		Subcommands: []*cli.Command{
			categoryListCmd(),
			categoryAddCmd(),
			categoryUpdateCmd(),
			categoryDeleteCmd(),
		},
	}
}

func categoryListCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List all categories",
		Action: func(c *cli.Context) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			env.Store.FetchCategories(c.Context)
			env.Store.FetchItems(c.Context)

			categories := env.Store.Categories()
			if len(categories) == 0 {
				fmt.Println("No categories found. Use 'colecta category add' to create one.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ICON\tNAME\tITEMS\tID")
			fmt.Fprintln(w, "----\t----\t-----\t--")
			for _, cat := range categories {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
					cat.Icon,
					cat.Name,
					len(env.Store.ItemsByCategory(cat.ID)),
					cat.ID)
			}
			w.Flush()
			return nil
		},
	}
}

func categoryAddCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a new category",
		ArgsUsage: "[name]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "icon",
				Aliases: []string{"i"},
				Usage:   "Category icon glyph",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("category name is required")
			}
			name := c.Args().First()
			icon := c.String("icon")

			env, err := newEnv()
			if err != nil {
				return err
			}
			env.Store.FetchCategories(c.Context)
			env.Store.FetchItems(c.Context)

			if icon == "" && isTTY() {
				prompt := &survey.Select{Message: "Icon:", Options: iconChoices}
				if err := survey.AskOne(prompt, &icon); err != nil {
					return err
				}
			}

			if err := env.Store.AddCategory(c.Context, name, icon); err != nil {
				fmt.Printf("Error creating category: %v\n", err)
				return err
			}

			fmt.Printf("✅ Category '%s' created.\n", name)
			return nil
		},
	}
}

func categoryUpdateCmd() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Rename a category or change its icon",
		ArgsUsage: "[id or name]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "New name"},
			&cli.StringFlag{Name: "icon", Aliases: []string{"i"}, Usage: "New icon glyph"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("category id or name is required")
			}

			updates := map[string]any{}
			if v := c.String("name"); v != "" {
				updates["name"] = v
			}
			if v := c.String("icon"); v != "" {
				updates["icon"] = v
			}
			if len(updates) == 0 {
				return fmt.Errorf("nothing to update; pass --name or --icon")
			}

			env, err := newEnv()
			if err != nil {
				return err
			}
			env.Store.FetchCategories(c.Context)
			env.Store.FetchItems(c.Context)

			cat, ok := findCategory(env.Store, c.Args().First())
			if !ok {
				return fmt.Errorf("category %q not found", c.Args().First())
			}

			if err := env.Store.UpdateCategory(c.Context, cat.ID, updates); err != nil {
				fmt.Printf("Error updating category: %v\n", err)
				return err
			}

			fmt.Println("✅ Category updated.")
			return nil
		},
	}
}

func categoryDeleteCmd() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a category and every item in it",
		ArgsUsage: "[id or name]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip confirmation"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("category id or name is required")
			}

			env, err := newEnv()
			if err != nil {
				return err
			}
			env.Store.FetchCategories(c.Context)
			env.Store.FetchItems(c.Context)

			cat, ok := findCategory(env.Store, c.Args().First())
			if !ok {
				return fmt.Errorf("category %q not found", c.Args().First())
			}

			count := len(env.Store.ItemsByCategory(cat.ID))
			message := fmt.Sprintf("Delete '%s' and its %d item(s)?", cat.Name, count)
			if !confirm(message, c.Bool("yes")) {
				return nil
			}

			if err := env.Store.DeleteCategory(c.Context, cat.ID); err != nil {
				fmt.Printf("Error deleting category: %v\n", err)
				return err
			}

			fmt.Printf("🗑️  Category '%s' deleted (%d item(s) removed).\n", cat.Name, count)
			return nil
		},
	}
}
