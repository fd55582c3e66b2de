package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v2"

	"github.com/colecta/colecta-cli/internal/models"
	"github.com/colecta/colecta-cli/internal/store"
)

// NewItemCommand creates all subcommands for the 'item' command group.
func NewItemCommand() *cli.Command {
	return &cli.Command{
		Name:    "item",
		Aliases: []string{"i"},
		Usage:   "Manage collection items",
		Subcommands: []*cli.Command{
			itemListCmd(),
			itemAddCmd(),
			itemShowCmd(),
			itemUpdateCmd(),
			itemDeleteCmd(),
			itemReorderCmd(),
		},
	}
}

func itemListCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List items, optionally filtered by category",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "category",
				Aliases: []string{"c"},
				Value:   store.CategoryAll,
				Usage:   "Category id or name, or 'all'",
			},
		},
		Action: func(c *cli.Context) error {
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

			items := env.Store.ItemsByCategory(categoryID)
			if len(items) == 0 {
				fmt.Println("No items found. Use 'colecta item add' to create one.")
				return nil
			}

			titleWidth := terminalWidth() - 40
			if titleWidth < 16 {
				titleWidth = 16
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TITLE\tRATING\tCATEGORY\tID")
			fmt.Fprintln(w, "-----\t------\t--------\t--")
			for _, it := range items {
				categoryName := it.CategoryID
				if cat, ok := findCategory(env.Store, it.CategoryID); ok {
					categoryName = cat.Name
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					truncateString(it.Title, titleWidth),
					starRating(it.Rating),
					categoryName,
					it.ID)
			}
			w.Flush()
			return nil
		},
	}
}

func itemAddCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add an item to the collection",
		ArgsUsage: "[title]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category id or name"},
			&cli.IntFlag{Name: "rating", Aliases: []string{"r"}, Usage: "Rating 0-5"},
			&cli.StringFlag{Name: "image", Usage: "Cover image URL"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Description (markdown)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("item title is required")
			}
			title := c.Args().First()

			rating := c.Int("rating")
			if rating < 0 || rating > 5 {
				return fmt.Errorf("rating must be between 0 and 5")
			}

			env, err := newEnv()
			if err != nil {
				return err
			}
			env.Store.FetchCategories(c.Context)
			env.Store.FetchItems(c.Context)

			var categoryID string
			if ref := c.String("category"); ref != "" {
				cat, ok := findCategory(env.Store, ref)
				if !ok {
					return fmt.Errorf("category %q not found", ref)
				}
				categoryID = cat.ID
			} else if isTTY() {
				cat, err := selectCategory(env.Store)
				if err != nil {
					return err
				}
				categoryID = cat.ID
			} else {
				return fmt.Errorf("--category is required in non-interactive mode")
			}

			item := models.Item{
				Title:       title,
				CategoryID:  categoryID,
				Rating:      rating,
				ImageURL:    c.String("image"),
				Description: c.String("description"),
			}
			if err := env.Store.AddItem(c.Context, item); err != nil {
				fmt.Printf("Error adding item: %v\n", err)
				return err
			}

			fmt.Printf("✅ '%s' added to the collection.\n", title)
			return nil
		},
	}
}

func itemShowCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show details for an item",
		ArgsUsage: "[id]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("item id is required")
			}

			env, err := newEnv()
			if err != nil {
				return err
			}
			env.Store.FetchCategories(c.Context)
			env.Store.FetchItems(c.Context)

			item, ok := findItem(env.Store, c.Args().First())
			if !ok {
				return fmt.Errorf("item %q not found", c.Args().First())
			}

			categoryName := item.CategoryID
			if cat, ok := findCategory(env.Store, item.CategoryID); ok {
				categoryName = fmt.Sprintf("%s %s", cat.Icon, cat.Name)
			}

			// The placeholder is derived for display only; the stored record
			// keeps image_url empty.
			image := item.ImageURL
			if image == "" {
				image = models.PlaceholderImageURL(item.Title)
			}

			fmt.Printf("%s\n", item.Title)
			fmt.Printf("----------------------------------\n")
			fmt.Printf("ID:        %s\n", item.ID)
			fmt.Printf("Category:  %s\n", categoryName)
			fmt.Printf("Rating:    %s\n", starRating(item.Rating))
			fmt.Printf("Image:     %s\n", image)
			fmt.Printf("Added:     %s\n", item.CreatedAt)

			if item.Description != "" {
				if isTTY() {
					rendered, err := glamour.Render(item.Description, "auto")
					if err == nil {
						fmt.Print(rendered)
						return nil
					}
				}
				fmt.Printf("\n%s\n", item.Description)
			}
			return nil
		},
	}
}

func itemUpdateCmd() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update fields of an item",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "New category id or name"},
			&cli.IntFlag{Name: "rating", Aliases: []string{"r"}, Value: -1, Usage: "New rating 0-5"},
			&cli.StringFlag{Name: "image", Usage: "New cover image URL"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "New description"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("item id is required")
			}

			env, err := newEnv()
			if err != nil {
				return err
			}
			env.Store.FetchCategories(c.Context)
			env.Store.FetchItems(c.Context)

			item, ok := findItem(env.Store, c.Args().First())
			if !ok {
				return fmt.Errorf("item %q not found", c.Args().First())
			}

			updates := map[string]any{}
			if v := c.String("title"); v != "" {
				updates["title"] = v
			}
			if v := c.String("category"); v != "" {
				cat, ok := findCategory(env.Store, v)
				if !ok {
					return fmt.Errorf("category %q not found", v)
				}
				updates["category_id"] = cat.ID
			}
			if v := c.Int("rating"); v != -1 {
				if v < 0 || v > 5 {
					return fmt.Errorf("rating must be between 0 and 5")
				}
				updates["rating"] = v
			}
			if c.IsSet("image") {
				updates["image_url"] = c.String("image")
			}
			if c.IsSet("description") {
				updates["description"] = c.String("description")
			}
			if len(updates) == 0 {
				return fmt.Errorf("nothing to update")
			}

			if err := env.Store.UpdateItem(c.Context, item.ID, updates); err != nil {
				fmt.Printf("Error updating item: %v\n", err)
				return err
			}

			fmt.Println("✅ Item updated.")
			return nil
		},
	}
}

func itemDeleteCmd() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete an item",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip confirmation"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("item id is required")
			}

			env, err := newEnv()
			if err != nil {
				return err
			}
			env.Store.FetchCategories(c.Context)
			env.Store.FetchItems(c.Context)

			item, ok := findItem(env.Store, c.Args().First())
			if !ok {
				return fmt.Errorf("item %q not found", c.Args().First())
			}

			if !confirm(fmt.Sprintf("Delete '%s'?", item.Title), c.Bool("yes")) {
				return nil
			}

			if err := env.Store.DeleteItem(c.Context, item.ID); err != nil {
				fmt.Printf("Error deleting item: %v\n", err)
				return err
			}

			fmt.Printf("🗑️  '%s' deleted.\n", item.Title)
			return nil
		},
	}
}
