package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"productcatalog/service"
	"productcatalog/util"
)

func init() {
	categoryCmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}
	rootCmd.AddCommand(categoryCmd)

	var name, description string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := services.Categories.Create(cmd.Context(), service.CreateCategoryRequest{
				Name:        name,
				Description: description,
			})
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "name")
	createCmd.Flags().StringVar(&description, "description", "", "description")
	categoryCmd.AddCommand(createCmd)

	categoryCmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Get category by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := util.ParseID(args[0])
			if err != nil {
				return err
			}
			out, err := services.Categories.GetByID(cmd.Context(), id)
			if err != nil {
				return reportNotFound(err)
			}
			return printJSON(out)
		},
	})

	categoryCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := services.Categories.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	})

	var uName, uDescription string
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := util.ParseID(args[0])
			if err != nil {
				return err
			}
			cur, err := services.Categories.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			req := service.UpdateCategoryRequest{Name: cur.Name, Description: cur.Description}
			if cmd.Flags().Changed("name") {
				req.Name = uName
			}
			if cmd.Flags().Changed("description") {
				req.Description = uDescription
			}
			out, err := services.Categories.Update(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	updateCmd.Flags().StringVar(&uName, "name", "", "name")
	updateCmd.Flags().StringVar(&uDescription, "description", "", "description")
	categoryCmd.AddCommand(updateCmd)

	var force bool
	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := util.ParseID(args[0])
			if err != nil {
				return err
			}
			if !confirm(cmd, force, args[0]) {
				return nil
			}
			if err := services.Categories.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println("deleted")
			return nil
		},
	}
	deleteCmd.Flags().BoolVar(&force, "force", false, "skip confirmation")
	categoryCmd.AddCommand(deleteCmd)
}
