package cli

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"productcatalog/service"
	"productcatalog/util"
)

func parseDecimal(flag, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid --%s %q: %w", flag, s, err)
	}
	return d, nil
}

func init() {
	productCmd := &cobra.Command{
		Use:   "product",
		Short: "Manage products",
	}
	rootCmd.AddCommand(productCmd)

	// create
	var name, description, price string
	var stock int
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseDecimal("price", price)
			if err != nil {
				return err
			}
			out, err := services.Products.Create(cmd.Context(), service.CreateProductRequest{
				Name:        name,
				Description: description,
				Price:       p,
				Stock:       stock,
			})
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "name")
	createCmd.Flags().StringVar(&description, "description", "", "description")
	createCmd.Flags().StringVar(&price, "price", "0", "price")
	createCmd.Flags().IntVar(&stock, "stock", 0, "units in stock")
	productCmd.AddCommand(createCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get product by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := util.ParseID(args[0])
			if err != nil {
				return err
			}
			out, err := services.Products.GetByID(cmd.Context(), id)
			if err != nil {
				return reportNotFound(err)
			}
			return printJSON(out)
		},
	}
	productCmd.AddCommand(getCmd)

	// list
	var lOutput string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := services.Products.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			if lOutput == "json" {
				return printJSON(out)
			}
			for _, p := range out {
				fmt.Printf("%s | %s | %s | %d | active=%t\n",
					p.ID, p.Name, p.Price.StringFixed(2), p.Stock, p.IsActive)
			}
			fmt.Printf("%d products, stock value %s\n", len(out), service.TotalValue(out).StringFixed(2))
			return nil
		},
	}
	listCmd.Flags().StringVar(&lOutput, "output", "", "output format")
	productCmd.AddCommand(listCmd)

	// update
	var uName, uDescription, uPrice string
	var uStock int
	var uActive bool
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := util.ParseID(args[0])
			if err != nil {
				return err
			}
			cur, err := services.Products.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}

			req := service.UpdateProductRequest{
				Name:        cur.Name,
				Description: cur.Description,
				Price:       cur.Price,
				Stock:       cur.Stock,
				IsActive:    cur.IsActive,
			}
			if cmd.Flags().Changed("name") {
				req.Name = uName
			}
			if cmd.Flags().Changed("description") {
				req.Description = uDescription
			}
			if cmd.Flags().Changed("price") {
				if req.Price, err = parseDecimal("price", uPrice); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("stock") {
				req.Stock = uStock
			}
			if cmd.Flags().Changed("active") {
				req.IsActive = uActive
			}

			out, err := services.Products.Update(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	updateCmd.Flags().StringVar(&uName, "name", "", "name")
	updateCmd.Flags().StringVar(&uDescription, "description", "", "description")
	updateCmd.Flags().StringVar(&uPrice, "price", "", "price")
	updateCmd.Flags().IntVar(&uStock, "stock", 0, "units in stock")
	updateCmd.Flags().BoolVar(&uActive, "active", true, "whether the product is active")
	productCmd.AddCommand(updateCmd)

	// delete
	var force bool
	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := util.ParseID(args[0])
			if err != nil {
				return err
			}
			if !confirm(cmd, force, args[0]) {
				return nil
			}
			if err := services.Products.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println("deleted")
			return nil
		},
	}
	deleteCmd.Flags().BoolVar(&force, "force", false, "skip confirmation")
	productCmd.AddCommand(deleteCmd)

	// change-price
	var newPrice string
	changePriceCmd := &cobra.Command{
		Use:   "change-price <id>",
		Short: "Change price; increases above 50% are rejected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := util.ParseID(args[0])
			if err != nil {
				return err
			}
			p, err := parseDecimal("price", newPrice)
			if err != nil {
				return err
			}
			out, err := services.Products.ChangePrice(cmd.Context(), id, service.ChangePriceRequest{Price: p})
			if err != nil {
				slog.Warn("price change rejected", "product_id", id, "error", err)
				return err
			}
			return printJSON(out)
		},
	}
	changePriceCmd.Flags().StringVar(&newPrice, "price", "", "new price")
	_ = changePriceCmd.MarkFlagRequired("price")
	productCmd.AddCommand(changePriceCmd)

	// discount
	var percentage string
	discountCmd := &cobra.Command{
		Use:   "discount <id>",
		Short: "Apply a percentage discount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := util.ParseID(args[0])
			if err != nil {
				return err
			}
			pct, err := parseDecimal("percentage", percentage)
			if err != nil {
				return err
			}
			out, err := services.Products.ApplyDiscount(cmd.Context(), id, service.DiscountRequest{Percentage: pct})
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	discountCmd.Flags().StringVar(&percentage, "percentage", "", "discount percentage (0-100)")
	_ = discountCmd.MarkFlagRequired("percentage")
	productCmd.AddCommand(discountCmd)

	// restock / withdraw
	var restockQty, withdrawQty int
	restockCmd := &cobra.Command{
		Use:   "restock <id>",
		Short: "Increase stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := util.ParseID(args[0])
			if err != nil {
				return err
			}
			out, err := services.Products.IncreaseStock(cmd.Context(), id, service.StockRequest{Quantity: restockQty})
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	restockCmd.Flags().IntVar(&restockQty, "quantity", 0, "units to add")
	productCmd.AddCommand(restockCmd)

	withdrawCmd := &cobra.Command{
		Use:   "withdraw <id>",
		Short: "Decrease stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := util.ParseID(args[0])
			if err != nil {
				return err
			}
			out, err := services.Products.DecreaseStock(cmd.Context(), id, service.StockRequest{Quantity: withdrawQty})
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	withdrawCmd.Flags().IntVar(&withdrawQty, "quantity", 0, "units to remove")
	productCmd.AddCommand(withdrawCmd)

	// assign-category
	var categoryID string
	assignCmd := &cobra.Command{
		Use:   "assign-category <id>",
		Short: "Assign a product to a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := util.ParseID(args[0])
			if err != nil {
				return err
			}
			cid, err := util.ParseID(categoryID)
			if err != nil {
				return err
			}
			out, err := services.Products.AssignCategory(cmd.Context(), id, service.AssignCategoryRequest{CategoryID: cid})
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	assignCmd.Flags().StringVar(&categoryID, "category", "", "category id")
	_ = assignCmd.MarkFlagRequired("category")
	productCmd.AddCommand(assignCmd)
}
