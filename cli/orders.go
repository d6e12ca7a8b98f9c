package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"productcatalog/service"
	"productcatalog/util"
)

// parseItem reads an order line given as "<product-id>:<quantity>".
func parseItem(s string) (service.OrderItemRequest, error) {
	idPart, qtyPart, ok := strings.Cut(s, ":")
	if !ok {
		return service.OrderItemRequest{}, fmt.Errorf("invalid --item %q: want <product-id>:<quantity>", s)
	}
	id, err := util.ParseID(idPart)
	if err != nil {
		return service.OrderItemRequest{}, err
	}
	qty, err := strconv.Atoi(strings.TrimSpace(qtyPart))
	if err != nil {
		return service.OrderItemRequest{}, fmt.Errorf("invalid quantity in --item %q: %w", s, err)
	}
	return service.OrderItemRequest{ProductID: id, Quantity: qty}, nil
}

func init() {
	orderCmd := &cobra.Command{
		Use:   "order",
		Short: "Place and manage orders",
	}
	rootCmd.AddCommand(orderCmd)

	var customer string
	var items []string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Place an order; stock is taken only if every line can be filled",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.CreateOrderRequest{CustomerName: customer}
			for _, it := range items {
				line, err := parseItem(it)
				if err != nil {
					return err
				}
				req.Items = append(req.Items, line)
			}
			out, err := services.Orders.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	createCmd.Flags().StringVar(&customer, "customer", "", "customer name")
	createCmd.Flags().StringArrayVar(&items, "item", nil, "order line as <product-id>:<quantity> (repeatable)")
	orderCmd.AddCommand(createCmd)

	orderCmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Get order by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := util.ParseID(args[0])
			if err != nil {
				return err
			}
			out, err := services.Orders.GetByID(cmd.Context(), id)
			if err != nil {
				return reportNotFound(err)
			}
			return printJSON(out)
		},
	})

	orderCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := services.Orders.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	})

	var force bool
	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an order (stock is not returned)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := util.ParseID(args[0])
			if err != nil {
				return err
			}
			if !confirm(cmd, force, args[0]) {
				return nil
			}
			if err := services.Orders.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println("deleted")
			return nil
		},
	}
	deleteCmd.Flags().BoolVar(&force, "force", false, "skip confirmation")
	orderCmd.AddCommand(deleteCmd)
}
