package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"go-stockyng/internal/model"
	"go-stockyng/internal/search"
	"go-stockyng/internal/service"
)

// command is one stockctl subcommand.
type command struct {
	name    string
	summary string
	flags   func(fs *pflag.FlagSet) func(ctx context.Context, a *app) error
}

var commands = []command{
	{name: "login", summary: "Sign in and keep the session on this device", flags: loginCommand},
	{name: "register", summary: "Create a regular account and sign in", flags: registerCommand},
	{name: "logout", summary: "Forget the stored session", flags: logoutCommand},
	{name: "whoami", summary: "Show the signed-in identity", flags: whoamiCommand},
	{name: "products", summary: "List products, optionally filtered and live", flags: productsCommand},
	{name: "add-product", summary: "Add a product", flags: addProductCommand},
	{name: "edit-product", summary: "Edit a product; omitted fields keep their value", flags: editProductCommand},
	{name: "delete-product", summary: "Delete a product", flags: deleteProductCommand},
	{name: "users", summary: "List users (admin only)", flags: usersCommand},
}

func findCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// run parses args for the named command and executes it.
func run(ctx context.Context, a *app, name string, args []string) error {
	cmd, ok := findCommand(name)
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}
	fs := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
	fs.SetOutput(a.out)
	exec := cmd.flags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	return exec(ctx, a)
}

func loginCommand(fs *pflag.FlagSet) func(context.Context, *app) error {
	var req service.LoginRequest
	fs.StringVarP(&req.Email, "email", "e", "", "account email")
	fs.StringVarP(&req.Password, "password", "p", "", "account password")
	return func(ctx context.Context, a *app) error {
		result, err := a.auth.Login(ctx, &req)
		if err != nil {
			return err
		}
		return a.landed(result)
	}
}

func registerCommand(fs *pflag.FlagSet) func(context.Context, *app) error {
	var req service.RegisterRequest
	fs.StringVar(&req.Name, "name", "", "display name")
	fs.StringVar(&req.Email, "email", "", "account email")
	fs.StringVar(&req.Username, "username", "", "unique username")
	fs.StringVar(&req.Password, "password", "", "password, at least 8 characters")
	fs.StringVar(&req.ConfirmPassword, "confirm-password", "", "repeat the password")
	return func(ctx context.Context, a *app) error {
		result, err := a.auth.Register(ctx, &req)
		if err != nil {
			return err
		}
		return a.landed(result)
	}
}

func (a *app) landed(result *service.LoginResult) error {
	switch result.Route {
	case service.RouteAdmin:
		_, err := fmt.Fprintf(a.out, "Signed in as %s (admin)\n", result.Session.Name)
		return err
	default:
		_, err := fmt.Fprintf(a.out, "Welcome, %s\n", result.Session.Username)
		return err
	}
}

func logoutCommand(*pflag.FlagSet) func(context.Context, *app) error {
	return func(ctx context.Context, a *app) error {
		if err := a.auth.Logout(ctx); err != nil {
			return err
		}
		_, err := fmt.Fprintln(a.out, "Signed out")
		return err
	}
}

func whoamiCommand(*pflag.FlagSet) func(context.Context, *app) error {
	return func(_ context.Context, a *app) error {
		s, err := a.authorize("")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(a.out, "%s <%s> @%s role=%s\n", s.Name, s.Email, s.Username, model.NormalizeRole(s.Role))
		return err
	}
}

func productsCommand(fs *pflag.FlagSet) func(context.Context, *app) error {
	query := fs.StringP("search", "s", "", "case-insensitive name filter")
	watch := fs.BoolP("watch", "w", false, "keep printing the list on every change")
	return func(ctx context.Context, a *app) error {
		if _, err := a.authorize(model.PrivProductView); err != nil {
			return err
		}
		if !*watch {
			products, err := a.inventory.SearchProducts(ctx, *query)
			if err != nil {
				return err
			}
			return a.printProducts(products)
		}

		sub, err := a.inventory.LiveProducts(ctx)
		if err != nil {
			return err
		}
		defer sub.Cancel()
		for {
			select {
			case <-ctx.Done():
				return nil
			case err := <-sub.Err():
				fmt.Fprintf(a.out, "! %v\n", err)
			case products, ok := <-sub.Snapshots():
				if !ok {
					return nil
				}
				if err := a.printProducts(search.Filter(products, *query, service.ProductSearchFields)); err != nil {
					return err
				}
			}
		}
	}
}

func (a *app) printProducts(products []model.Product) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tINVENTORY\tPURCHASE\tSALE\tEDITED")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Quantity, p.PurchasePrice, p.SalePrice, p.LastEditedDate)
	}
	return tw.Flush()
}

func addProductCommand(fs *pflag.FlagSet) func(context.Context, *app) error {
	var req service.ProductRequest
	fs.StringVar(&req.Name, "name", "", "product name")
	fs.StringVar(&req.Quantity, "inventory", "", "quantity on hand")
	fs.StringVar(&req.PurchasePrice, "purchase-price", "", "unit purchase price")
	fs.StringVar(&req.SalePrice, "sale-price", "", "unit sale price")
	imagePath := fs.String("image", "", "path to a JPEG image")
	return func(ctx context.Context, a *app) error {
		if _, err := a.authorize(model.PrivProductCreate); err != nil {
			return err
		}
		img, closeImg, err := openImage(*imagePath)
		if err != nil {
			return err
		}
		defer closeImg()

		p, err := a.inventory.CreateProduct(ctx, &req, img)
		return a.saved("Product added", p, err)
	}
}

func editProductCommand(fs *pflag.FlagSet) func(context.Context, *app) error {
	var req service.ProductEditRequest
	id := fs.String("id", "", "product id")
	fs.StringVar(&req.Name, "name", "", "new name")
	fs.StringVar(&req.Quantity, "inventory", "", "new quantity")
	fs.StringVar(&req.PurchasePrice, "purchase-price", "", "new purchase price")
	fs.StringVar(&req.SalePrice, "sale-price", "", "new sale price")
	imagePath := fs.String("image", "", "path to a replacement JPEG image")
	return func(ctx context.Context, a *app) error {
		if _, err := a.authorize(model.PrivProductUpdate); err != nil {
			return err
		}
		if *id == "" {
			return errors.New("--id is required")
		}
		img, closeImg, err := openImage(*imagePath)
		if err != nil {
			return err
		}
		defer closeImg()

		p, err := a.inventory.UpdateProduct(ctx, *id, &req, img)
		return a.saved("Product updated", p, err)
	}
}

// saved reports a product write. A failed image upload is a warning.
func (a *app) saved(msg string, p *model.Product, err error) error {
	if err != nil && !errors.Is(err, model.ErrImageUploadFailed) {
		return err
	}
	fmt.Fprintf(a.out, "%s: %s\n", msg, p.ID)
	if err != nil {
		fmt.Fprintf(a.out, "warning: %v\n", err)
	}
	return nil
}

func openImage(path string) (*service.Image, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, nil, fmt.Errorf("open image: %w", err)
	}
	ct := "image/jpeg"
	if strings.EqualFold(filepath.Ext(path), ".png") {
		ct = "image/png"
	}
	return &service.Image{Body: f, ContentType: ct}, func() { _ = f.Close() }, nil
}

func deleteProductCommand(fs *pflag.FlagSet) func(context.Context, *app) error {
	id := fs.String("id", "", "product id")
	yes := fs.BoolP("yes", "y", false, "confirm the deletion")
	return func(ctx context.Context, a *app) error {
		if _, err := a.authorize(model.PrivProductDelete); err != nil {
			return err
		}
		if *id == "" {
			return errors.New("--id is required")
		}
		if !*yes {
			return errors.New("deletion not confirmed; pass --yes")
		}
		if err := a.inventory.DeleteProduct(ctx, *id); err != nil {
			return err
		}
		_, err := fmt.Fprintf(a.out, "Product %s deleted\n", *id)
		return err
	}
}

func usersCommand(fs *pflag.FlagSet) func(context.Context, *app) error {
	query := fs.StringP("search", "s", "", "filter by name, email or username")
	return func(ctx context.Context, a *app) error {
		if _, err := a.authorize(model.PrivUserView); err != nil {
			return err
		}
		users, err := a.users.SearchUsers(ctx, *query)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tUSERNAME\tROLE")
		for _, u := range users {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Username, model.NormalizeRole(u.Role))
		}
		return tw.Flush()
	}
}
