// ABOUTME: Deal CLI commands
// ABOUTME: Human-friendly commands for listing and editing pipeline deals
package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/query"
	"github.com/harperreed/dealdesk/service"
	"github.com/harperreed/dealdesk/viz"
)

func newDealsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deals",
		Aliases: []string{"deal"},
		Short:   "Manage deals",
	}
	cmd.AddCommand(
		newListDealsCommand(rt),
		newShowDealCommand(rt),
		newAddDealCommand(rt),
		newUpdateDealCommand(rt),
		newDeleteDealCommand(rt),
	)
	return cmd
}

func newListDealsCommand(rt *runtime) *cobra.Command {
	var search, stage, sortBy string
	var desc bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if stage != "" && !models.Stage(stage).Valid() {
				return fmt.Errorf("unknown stage %q", stage)
			}
			app, err := rt.stores()
			if err != nil {
				return err
			}

			ctx, col := capture(cmd.Context())
			deals, err := app.Deals.GetAll(ctx)
			flushWarnings(cmd.ErrOrStderr(), col)
			if err != nil {
				warn(cmd.ErrOrStderr(), "backend unavailable, showing an empty list")
			}

			dir := query.Asc
			if desc {
				dir = query.Desc
			}
			deals = query.FilterStage(query.FilterDeals(deals, search), models.Stage(stage))
			deals = query.SortDeals(deals, sortBy, dir)

			out := cmd.OutOrStdout()
			if len(deals) == 0 {
				_, _ = fmt.Fprintln(out, "No deals found")
				return nil
			}

			w := newTable(out, "ID", "NAME", "STAGE", "VALUE", "CONTACT")
			for _, d := range deals {
				contact := "-"
				if d.ContactID != nil {
					contact = strconv.Itoa(*d.ContactID)
				}
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					d.ID, d.Name, d.Stage.Label(), viz.FormatCurrency(d.Value), contact)
			}
			_ = w.Flush()

			_, _ = fmt.Fprintf(out, "\nTotal: %d deal(s), %s\n", len(deals), viz.FormatCurrency(query.TotalValue(deals)))
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "query", "", "Search by name or stage")
	cmd.Flags().StringVar(&stage, "stage", "", "Only deals in this stage")
	cmd.Flags().StringVar(&sortBy, "sort", "name", "Sort by name, value, or stage")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	return cmd
}

func newShowDealCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one deal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "deal")
			if err != nil {
				return err
			}
			app, err := rt.stores()
			if err != nil {
				return err
			}

			ctx, col := capture(cmd.Context())
			d, err := app.Deals.GetByID(ctx, id)
			flushWarnings(cmd.ErrOrStderr(), col)
			if service.Missing(d, err) {
				return fmt.Errorf("deal not found: %d", id)
			}
			if err != nil {
				return fmt.Errorf("failed to get deal: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Deal %d: %s\n", d.ID, d.Name)
			_, _ = fmt.Fprintf(out, "  Stage:   %s\n", d.Stage.Label())
			_, _ = fmt.Fprintf(out, "  Value:   %s\n", viz.FormatCurrency(d.Value))
			if d.ContactID != nil {
				_, _ = fmt.Fprintf(out, "  Contact: %d\n", *d.ContactID)
			}
			_, _ = fmt.Fprintf(out, "  Tags:    %s\n", orDash(d.Tags))
			if d.Owner != nil {
				_, _ = fmt.Fprintf(out, "  Owner:   %s\n", *d.Owner)
			}
			_, _ = fmt.Fprintf(out, "  Created: %s\n", d.CreatedAt.Format("2006-01-02 15:04"))
			return nil
		},
	}
}

type dealFlags struct {
	name, value, stage, tags, owner string
	contact                         int
}

func (f *dealFlags) register(cmd *cobra.Command, defaultStage models.Stage) {
	cmd.Flags().StringVar(&f.name, "name", "", "Deal name")
	cmd.Flags().StringVar(&f.value, "value", "", "Deal value in dollars")
	cmd.Flags().StringVar(&f.stage, "stage", string(defaultStage), "Pipeline stage")
	cmd.Flags().IntVar(&f.contact, "contact", 0, "Related contact ID (0 for none)")
	cmd.Flags().StringVar(&f.tags, "tags", "", "Comma separated tags")
	cmd.Flags().StringVar(&f.owner, "owner", "", "Owner reference")
}

// apply overlays the flags the user set onto in.
func (f *dealFlags) apply(cmd *cobra.Command, in models.DealInput) models.DealInput {
	changed := cmd.Flags().Changed
	if changed("name") {
		in.Name = f.name
	}
	if changed("value") {
		in.Value = f.value
	}
	if changed("stage") {
		in.Stage = models.Stage(f.stage)
	}
	if changed("contact") {
		in.ContactID = ""
		if f.contact != 0 {
			in.ContactID = strconv.Itoa(f.contact)
		}
	}
	if changed("tags") {
		in.Tags = f.tags
	}
	if changed("owner") {
		in.Owner = models.StrPtr(f.owner)
	}
	return in
}

func newAddDealCommand(rt *runtime) *cobra.Command {
	var flags dealFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a deal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := flags.apply(cmd, models.DealInput{Stage: models.Stage(flags.stage)})
			if err := in.Validate(); err != nil {
				return err
			}
			app, err := rt.stores()
			if err != nil {
				return err
			}

			ctx, col := capture(cmd.Context())
			d, err := app.Deals.Create(ctx, in)
			flushWarnings(cmd.ErrOrStderr(), col)
			if err != nil {
				return fmt.Errorf("failed to create deal: %w", err)
			}

			success(cmd.OutOrStdout(), "Deal created: %s (ID: %d, %s, %s)",
				d.Name, d.ID, d.Stage.Label(), viz.FormatCurrency(d.Value))
			return nil
		},
	}
	flags.register(cmd, models.StageLead)
	return cmd
}

func newUpdateDealCommand(rt *runtime) *cobra.Command {
	var flags dealFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a deal; unset flags keep their current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "deal")
			if err != nil {
				return err
			}
			app, err := rt.stores()
			if err != nil {
				return err
			}

			ctx, col := capture(cmd.Context())
			existing, err := app.Deals.GetByID(ctx, id)
			if service.Missing(existing, err) {
				flushWarnings(cmd.ErrOrStderr(), col)
				return fmt.Errorf("deal not found: %d", id)
			}
			if err != nil {
				flushWarnings(cmd.ErrOrStderr(), col)
				return fmt.Errorf("failed to get deal: %w", err)
			}

			in := flags.apply(cmd, existing.Input())
			if err := in.Validate(); err != nil {
				return err
			}
			d, err := app.Deals.Update(ctx, id, in)
			flushWarnings(cmd.ErrOrStderr(), col)
			if err != nil {
				return fmt.Errorf("failed to update deal: %w", err)
			}

			success(cmd.OutOrStdout(), "Deal updated: %s (ID: %d, %s, %s)",
				d.Name, d.ID, d.Stage.Label(), viz.FormatCurrency(d.Value))
			return nil
		},
	}
	flags.register(cmd, "")
	return cmd
}

func newDeleteDealCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a deal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "deal")
			if err != nil {
				return err
			}
			app, err := rt.stores()
			if err != nil {
				return err
			}

			ctx, col := capture(cmd.Context())
			ok, err := app.Deals.Delete(ctx, id)
			flushWarnings(cmd.ErrOrStderr(), col)
			if err != nil {
				return fmt.Errorf("failed to delete deal: %w", err)
			}
			if !ok {
				return fmt.Errorf("deal %d was not deleted", id)
			}

			success(cmd.OutOrStdout(), "Deal deleted: %d", id)
			return nil
		},
	}
}
