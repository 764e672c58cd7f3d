// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for listing and editing contacts
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/query"
	"github.com/harperreed/dealdesk/service"
)

func newContactsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"contact"},
		Short:   "Manage contacts",
	}
	cmd.AddCommand(
		newListContactsCommand(rt),
		newShowContactCommand(rt),
		newAddContactCommand(rt),
		newUpdateContactCommand(rt),
		newDeleteContactCommand(rt),
	)
	return cmd
}

func newListContactsCommand(rt *runtime) *cobra.Command {
	var search, sortBy string
	var desc bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rt.stores()
			if err != nil {
				return err
			}

			ctx, col := capture(cmd.Context())
			contacts, err := app.Contacts.GetAll(ctx)
			flushWarnings(cmd.ErrOrStderr(), col)
			if err != nil {
				warn(cmd.ErrOrStderr(), "backend unavailable, showing an empty list")
			}

			dir := query.Asc
			if desc {
				dir = query.Desc
			}
			contacts = query.SortContacts(query.FilterContacts(contacts, search), sortBy, dir)

			out := cmd.OutOrStdout()
			if len(contacts) == 0 {
				_, _ = fmt.Fprintln(out, "No contacts found")
				return nil
			}

			w := newTable(out, "ID", "NAME", "COMPANY", "EMAIL", "PHONE")
			for _, c := range contacts {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					c.ID, c.Name, orDash(c.Company), orDash(c.Email), orDash(c.Phone))
			}
			_ = w.Flush()

			_, _ = fmt.Fprintf(out, "\nTotal: %d contact(s)\n", len(contacts))
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "query", "", "Search by name, company, or email")
	cmd.Flags().StringVar(&sortBy, "sort", "name", "Sort by name, company, email, or created")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	return cmd
}

func newShowContactCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "contact")
			if err != nil {
				return err
			}
			app, err := rt.stores()
			if err != nil {
				return err
			}

			ctx, col := capture(cmd.Context())
			c, err := app.Contacts.GetByID(ctx, id)
			flushWarnings(cmd.ErrOrStderr(), col)
			if service.Missing(c, err) {
				return fmt.Errorf("contact not found: %d", id)
			}
			if err != nil {
				return fmt.Errorf("failed to get contact: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Contact %d: %s\n", c.ID, c.Name)
			_, _ = fmt.Fprintf(out, "  Company: %s\n", orDash(c.Company))
			_, _ = fmt.Fprintf(out, "  Email:   %s\n", orDash(c.Email))
			_, _ = fmt.Fprintf(out, "  Phone:   %s\n", orDash(c.Phone))
			_, _ = fmt.Fprintf(out, "  Tags:    %s\n", orDash(c.Tags))
			if c.Owner != nil {
				_, _ = fmt.Fprintf(out, "  Owner:   %s\n", *c.Owner)
			}
			_, _ = fmt.Fprintf(out, "  Created: %s\n", c.CreatedAt.Format("2006-01-02 15:04"))
			return nil
		},
	}
}

type contactFlags struct {
	name, company, email, phone, tags, owner string
}

func (f *contactFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Contact name")
	cmd.Flags().StringVar(&f.company, "company", "", "Company name")
	cmd.Flags().StringVar(&f.email, "email", "", "Email address")
	cmd.Flags().StringVar(&f.phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&f.tags, "tags", "", "Comma separated tags")
	cmd.Flags().StringVar(&f.owner, "owner", "", "Owner reference")
}

// apply overlays the flags the user set onto in.
func (f *contactFlags) apply(cmd *cobra.Command, in models.ContactInput) models.ContactInput {
	changed := cmd.Flags().Changed
	if changed("name") {
		in.Name = f.name
	}
	if changed("company") {
		in.Company = f.company
	}
	if changed("email") {
		in.Email = f.email
	}
	if changed("phone") {
		in.Phone = f.phone
	}
	if changed("tags") {
		in.Tags = f.tags
	}
	if changed("owner") {
		in.Owner = models.StrPtr(f.owner)
	}
	return in
}

func newAddContactCommand(rt *runtime) *cobra.Command {
	var flags contactFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := flags.apply(cmd, models.ContactInput{})
			if err := in.Validate(); err != nil {
				return err
			}
			app, err := rt.stores()
			if err != nil {
				return err
			}

			ctx, col := capture(cmd.Context())
			c, err := app.Contacts.Create(ctx, in)
			flushWarnings(cmd.ErrOrStderr(), col)
			if err != nil {
				return fmt.Errorf("failed to create contact: %w", err)
			}

			success(cmd.OutOrStdout(), "Contact created: %s (ID: %d)", c.Name, c.ID)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newUpdateContactCommand(rt *runtime) *cobra.Command {
	var flags contactFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a contact; unset flags keep their current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "contact")
			if err != nil {
				return err
			}
			app, err := rt.stores()
			if err != nil {
				return err
			}

			ctx, col := capture(cmd.Context())
			existing, err := app.Contacts.GetByID(ctx, id)
			if service.Missing(existing, err) {
				flushWarnings(cmd.ErrOrStderr(), col)
				return fmt.Errorf("contact not found: %d", id)
			}
			if err != nil {
				flushWarnings(cmd.ErrOrStderr(), col)
				return fmt.Errorf("failed to get contact: %w", err)
			}

			in := flags.apply(cmd, existing.Input())
			if err := in.Validate(); err != nil {
				return err
			}
			c, err := app.Contacts.Update(ctx, id, in)
			flushWarnings(cmd.ErrOrStderr(), col)
			if err != nil {
				return fmt.Errorf("failed to update contact: %w", err)
			}

			success(cmd.OutOrStdout(), "Contact updated: %s (ID: %d)", c.Name, c.ID)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newDeleteContactCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "contact")
			if err != nil {
				return err
			}
			app, err := rt.stores()
			if err != nil {
				return err
			}

			ctx, col := capture(cmd.Context())
			ok, err := app.Contacts.Delete(ctx, id)
			flushWarnings(cmd.ErrOrStderr(), col)
			if err != nil {
				return fmt.Errorf("failed to delete contact: %w", err)
			}
			if !ok {
				return fmt.Errorf("contact %d was not deleted", id)
			}

			success(cmd.OutOrStdout(), "Contact deleted: %d", id)
			return nil
		},
	}
}
