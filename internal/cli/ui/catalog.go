package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/fatih/color"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain/entity"
)

var (
	// Tree node styles
	productStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)  // Cyan
	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))            // Gray
	valueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))            // Yellow
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true) // Pink

	// Summary line style
	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)
)

// RenderProductTree renders a ranked product list as a tree, one node per
// product with price, category, and any search highlights as children.
func RenderProductTree(products []entity.Product) string {
	if len(products) == 0 {
		return keyStyle.Render("No products found")
	}

	var output strings.Builder
	for i, p := range products {
		output.WriteString(buildProductNode(p).String())
		if i < len(products)-1 {
			output.WriteString("\n")
		}
	}
	return output.String()
}

// buildProductNode creates a tree node for a single product
func buildProductNode(p entity.Product) *tree.Tree {
	label := productStyle.Render(p.Title)
	if p.Score > 0 {
		label += keyStyle.Render(fmt.Sprintf(" (score %.2f)", p.Score))
	}

	node := tree.New().Root(label)
	node.Child(formatKeyValue("id", p.ID))
	node.Child(formatKeyValue("price", fmt.Sprintf("$%.2f", p.Price)))
	if p.Category != "" {
		node.Child(formatKeyValue("category", p.Category))
	}
	if p.Brand != "" {
		node.Child(formatKeyValue("brand", p.Brand))
	}
	if p.Rating > 0 {
		node.Child(formatKeyValue("rating", fmt.Sprintf("%.1f", p.Rating)))
	}
	for _, fragment := range highlightFragments(p.Highlight) {
		node.Child(keyStyle.Render("match: ") + highlightStyle.Render(fragment))
	}
	return node
}

// highlightFragments flattens search highlights into display lines. The
// fragments carry <em> tags from the search engine; strip them for the
// terminal.
func highlightFragments(highlight map[string][]string) []string {
	var fragments []string
	for _, field := range []string{"title", "description"} {
		for _, raw := range highlight[field] {
			clean := strings.NewReplacer("<em>", "", "</em>", "").Replace(raw)
			fragments = append(fragments, clean)
		}
	}
	return fragments
}

func formatKeyValue(key, value string) string {
	return fmt.Sprintf("%s %s", keyStyle.Render(key+":"), valueStyle.Render(value))
}

// RenderSearchSummary renders the result count line below a product tree
func RenderSearchSummary(result *entity.SearchResult) string {
	label := fmt.Sprintf("%d of %d results", len(result.Products), result.Total)
	if result.Type != "" {
		label += fmt.Sprintf(" (%s search)", result.Type)
	}
	return summaryStyle.Render(label)
}

// RenderCart renders a priced cart as a tree with totals and loyalty perks.
func RenderCart(cart *entity.Cart) string {
	if len(cart.Items) == 0 {
		return keyStyle.Render("Your cart is empty")
	}

	root := tree.Root(productStyle.Render("Cart"))
	for _, line := range cart.Items {
		label := fmt.Sprintf("%s %s",
			valueStyle.Render(line.Title),
			keyStyle.Render(fmt.Sprintf("×%d  $%.2f", line.Quantity, line.Subtotal)),
		)
		root.Child(label)
	}

	var totals strings.Builder
	totals.WriteString(fmt.Sprintf("\nSubtotal:  $%.2f\n", cart.Subtotal))
	if cart.Discount > 0 {
		fmt.Fprintf(&totals, "Discount: -$%.2f\n", cart.Discount)
	}
	totals.WriteString(color.New(color.Bold).Sprintf("Total:     $%.2f", cart.Total))
	for _, perk := range cart.LoyaltyPerks {
		totals.WriteString("\n" + highlightStyle.Render("★ "+perk))
	}

	return root.String() + totals.String()
}
