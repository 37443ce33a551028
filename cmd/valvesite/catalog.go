package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Faultbox/valvesite/internal/catalog"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4FC3F7"))
	slugStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E"))
	labelStyle = lipgloss.NewStyle().Bold(true).Width(22)
	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#00796B")).
			Padding(0, 1)
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E57373"))
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the product catalog",
}

var catalogListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List categories and their products",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCatalog()
		if err != nil {
			return err
		}
		listCatalog(cmd.OutOrStdout(), c)
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <category> [product]",
	Short: "Show a category or a single product",
	Example: `  valvesite catalog show ball-valves
  valvesite catalog show ball-valves 3-piece-ball-valve`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCatalog()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			cat, ok := c.CategoryBySlug(args[0])
			if !ok {
				return fmt.Errorf("category %q not found", args[0])
			}
			showCategory(out, cat)
			return nil
		}
		p, ok := c.ProductByID(args[0], args[1])
		if !ok {
			return fmt.Errorf("product %q not found in %q", args[1], args[0])
		}
		showProduct(out, args[0], p)
		return nil
	},
}

func listCatalog(w io.Writer, c *catalog.Catalog) {
	total := 0
	for _, cat := range c.Categories() {
		fmt.Fprintf(w, "%s %s\n", titleStyle.Render(cat.Title), slugStyle.Render("/"+cat.Slug))
		for _, p := range cat.Products {
			line := "  " + p.Name + " " + slugStyle.Render(p.ID)
			if p.HasModel() {
				line += " " + badgeStyle.Render("3D")
			}
			fmt.Fprintln(w, line)
		}
		total += len(cat.Products)
	}
	fmt.Fprintf(w, "\n%d categories, %d products, %d with 3D models\n", c.Len(), total, len(c.WithModel()))
}

func showCategory(w io.Writer, cat catalog.Category) {
	fmt.Fprintln(w, titleStyle.Render(cat.Title))
	fmt.Fprintln(w, cat.Description)
	fmt.Fprintln(w)
	for _, p := range cat.Products {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(p.Name), slugStyle.Render("/products/"+cat.Slug+"/"+p.ID))
	}
}

func showProduct(w io.Writer, slug string, p catalog.Product) {
	fmt.Fprintln(w, titleStyle.Render(p.Name))
	fmt.Fprintln(w, slugStyle.Render("/products/"+slug+"/"+p.ID))
	fmt.Fprintln(w)
	fmt.Fprintln(w, p.Description)
	if p.DetailedDescription != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, p.DetailedDescription)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Image"), p.ImageURL)
	model := errStyle.Render("none (image only)")
	if p.HasModel() {
		model = p.Model3D
	}
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("3D model"), model)

	for _, e := range p.Specifications.Entries() {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(e.Label), e.Value)
	}
	if len(p.Applications) > 0 {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Applications"), strings.Join(p.Applications, ", "))
	}
	for _, f := range p.FAQs {
		fmt.Fprintf(w, "\nQ: %s\nA: %s\n", f.Question, f.Answer)
	}
}
