package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	formsports "github.com/Apurer/adoptionos/internal/domains/forms/ports"
)

func newWizardCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Fill in adoption, surrender and volunteer applications step by step",
		Long: `Drive an application wizard. Progress is kept in the state directory between runs.

Examples:
  adoptionctl wizard show volunteer
  echo '{"firstName":"Ada"}' | adoptionctl wizard set volunteer
  adoptionctl wizard next surrender
  adoptionctl wizard submit volunteer`,
	}
	cmd.AddCommand(
		wizardCommand(rt, "show", "Show the current step and its missing fields", nil),
		newWizardSetCommand(rt),
		wizardCommand(rt, "next", "Advance to the next step", formsports.Controller.Advance),
		wizardCommand(rt, "back", "Go back one step", formsports.Controller.Retreat),
		wizardCommand(rt, "submit", "Submit the application from the final step", formsports.Controller.Submit),
		wizardCommand(rt, "reset", "Discard the application", func(c formsports.Controller, ctx context.Context) error {
			c.Reset(ctx)
			return nil
		}),
	)
	return cmd
}

func (rt *runtime) wizard(ctx context.Context, form string) (formsports.Controller, error) {
	client, err := rt.portal(ctx)
	if err != nil {
		return nil, err
	}
	return client.Forms.Controller(form)
}

func wizardCommand(rt *runtime, use, short string, step func(formsports.Controller, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:       use + " <form>",
		Short:     short,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"adoption", "surrender", "volunteer"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, err := rt.wizard(ctx, args[0])
			if err != nil {
				return err
			}
			var stepErr error
			if step != nil {
				stepErr = step(w, ctx)
			}
			if err := rt.printView(w.View(ctx)); err != nil {
				return err
			}
			return stepErr
		},
	}
}

func newWizardSetCommand(rt *runtime) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "set <form>",
		Short: "Merge a JSON object of field values into the form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, err := rt.wizard(ctx, args[0])
			if err != nil {
				return err
			}
			data, err := readInput(rt, path)
			if err != nil {
				return err
			}
			if err := w.Patch(ctx, data); err != nil {
				return err
			}
			return rt.printView(w.View(ctx))
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "-", "JSON file with field values, - for stdin")
	return cmd
}

func (rt *runtime) printView(v formsports.View) error {
	return rt.output(v, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "FORM\t%s\n", v.Form)
		fmt.Fprintf(tw, "STEP\t%d/%d %s\n", v.Step+1, v.StepCount, v.StepTitle)
		fmt.Fprintf(tw, "MISSING\t%s\n", joinOrDash(v.Validation))
		if v.Submitted {
			fmt.Fprintf(tw, "STATUS\tsubmitted\n")
		}
		if v.LastError != "" {
			fmt.Fprintf(tw, "ERROR\t%s\n", v.LastError)
		}
		return tw.Flush()
	})
}
