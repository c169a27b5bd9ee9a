package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/client"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/config"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/ui"
)

var cartQuantity int

// cartCmd groups the cart subcommands
var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "manage your shopping cart",
	Long: `Manage the shopping cart for the configured shopper. Pricing applies
your configured loyalty tier: platinum gets 10% off with free overnight
shipping, business gets 15% off with net-30 payment terms.`,
	Example: `  # Show the priced cart
  $ wayctl cart show

  # Add two of a product
  $ wayctl cart add trailblazer-gtx -q 2

  # Remove a product
  $ wayctl cart remove trailblazer-gtx

  # Empty the cart
  $ wayctl cart clear`,
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "show the priced cart",
	RunE:  runCartShow,
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product_id>",
	Short: "add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartAdd,
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product_id>",
	Short: "remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartRemove,
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "empty the cart",
	RunE:  runCartClear,
}

func init() {
	cartAddCmd.Flags().IntVarP(&cartQuantity, "quantity", "q", 1, "Quantity to add")

	cartCmd.AddCommand(cartShowCmd)
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartClearCmd)

	cartCmd.SilenceUsage = true
	for _, sub := range cartCmd.Commands() {
		sub.SilenceUsage = true
	}
}

// cartClient loads the config and builds a client; shared by all subcommands
func cartClient() (*client.APIClient, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return nil, nil, fmt.Errorf("config load failed")
	}

	apiClient, err := client.NewAPIClient(cfg.Server, cfg.APIKey)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return nil, nil, fmt.Errorf("client creation failed")
	}

	return apiClient, cfg, nil
}

func cartContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func runCartShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := cartContext()
	defer cancel()

	apiClient, cfg, err := cartClient()
	if err != nil {
		return err
	}

	cart, err := apiClient.GetCart(ctx, cfg.UserID, cfg.LoyaltyTier)
	if err != nil {
		ui.PrintErrorBox("Cart Unavailable", err.Error())
		return fmt.Errorf("cart fetch failed")
	}

	fmt.Println(ui.RenderCart(cart))
	return nil
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := cartContext()
	defer cancel()

	apiClient, cfg, err := cartClient()
	if err != nil {
		return err
	}

	if err := apiClient.AddToCart(ctx, cfg.UserID, args[0], cartQuantity); err != nil {
		ui.PrintErrorBox("Add Failed", err.Error())
		return fmt.Errorf("cart add failed")
	}

	ui.PrintSuccess("added %s ×%d to cart", args[0], cartQuantity)
	return nil
}

func runCartRemove(cmd *cobra.Command, args []string) error {
	ctx, cancel := cartContext()
	defer cancel()

	apiClient, cfg, err := cartClient()
	if err != nil {
		return err
	}

	if err := apiClient.RemoveFromCart(ctx, cfg.UserID, args[0]); err != nil {
		ui.PrintErrorBox("Remove Failed", err.Error())
		return fmt.Errorf("cart remove failed")
	}

	ui.PrintSuccess("removed %s from cart", args[0])
	return nil
}

func runCartClear(cmd *cobra.Command, args []string) error {
	ctx, cancel := cartContext()
	defer cancel()

	apiClient, cfg, err := cartClient()
	if err != nil {
		return err
	}

	if err := apiClient.ClearCart(ctx, cfg.UserID); err != nil {
		ui.PrintErrorBox("Clear Failed", err.Error())
		return fmt.Errorf("cart clear failed")
	}

	ui.PrintSuccess("cart emptied")
	return nil
}
