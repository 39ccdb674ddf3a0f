package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	petsdomain "github.com/Apurer/adoptionos/internal/domains/pets/domain"
)

func newPetsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pets",
		Short: "List and update shelter pets",
	}
	cmd.AddCommand(
		newPetsAvailableCommand(rt),
		newPetsSpotlightCommand(rt),
		newPetsAdminCommand(rt),
		newPetsAdoptedCommand(rt),
		newPetsUpdateCommand(rt),
	)
	return cmd
}

func newPetsAvailableCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "available",
		Short: "List adoptable pets, youngest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := rt.portal(ctx)
			if err != nil {
				return err
			}
			pets := client.Pets.FetchAvailable(ctx, true)
			if msg := client.Pets.Err(); msg != "" {
				return fmt.Errorf("failed to list pets: %s", msg)
			}
			return rt.output(pets, petTable(pets))
		},
	}
}

func newPetsSpotlightCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "spotlight",
		Short: "List the pets featured on the home page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := rt.portal(ctx)
			if err != nil {
				return err
			}
			pets := client.Pets.Spotlight(ctx)
			return rt.output(pets, petTable(pets))
		},
	}
}

type petsAdminFlags struct {
	status  string
	species string
	search  string
	limit   int
}

func newPetsAdminCommand(rt *runtime) *cobra.Command {
	flags := &petsAdminFlags{}
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "List pets with admin filters (requires login)",
		Long: `List pets with admin filters.

Examples:
  adoptionctl pets admin --status hold
  adoptionctl pets admin --species dog --search rex --limit 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := rt.requireLogin(ctx)
			if err != nil {
				return err
			}
			pets, err := client.Pets.FetchAdmin(ctx, flags.query(), true)
			if err != nil {
				return err
			}
			return rt.output(pets, petTable(pets))
		},
	}
	cmd.Flags().StringVar(&flags.status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&flags.species, "species", "", "Filter by species (cat, dog)")
	cmd.Flags().StringVar(&flags.search, "search", "", "Free-text search")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "Maximum number of results")
	return cmd
}

func (f *petsAdminFlags) query() string {
	q := url.Values{}
	if f.status != "" {
		q.Set("status", f.status)
	}
	if f.species != "" {
		q.Set("species", f.species)
	}
	if f.search != "" {
		q.Set("search", f.search)
	}
	if f.limit > 0 {
		q.Set("limit", fmt.Sprint(f.limit))
	}
	return q.Encode()
}

func newPetsAdoptedCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "adopted",
		Short: "List adopted pets (requires login)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := rt.requireLogin(ctx)
			if err != nil {
				return err
			}
			pets, err := client.Pets.FetchAdopted(ctx)
			if err != nil {
				return err
			}
			return rt.output(pets, petTable(pets))
		},
	}
}

func newPetsUpdateCommand(rt *runtime) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a pet record from a JSON file (requires login)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := rt.requireLogin(ctx)
			if err != nil {
				return err
			}
			data, err := readInput(rt, path)
			if err != nil {
				return err
			}
			var pet petsdomain.Pet
			if err := json.Unmarshal(data, &pet); err != nil {
				return fmt.Errorf("decode pet: %w", err)
			}
			pet.ID = args[0]
			if err := client.Pets.UpdatePet(ctx, pet); err != nil {
				return err
			}
			_, err = fmt.Fprintf(rt.opts.Out, "Updated pet %s.\n", pet.ID)
			return err
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "-", "JSON file with the pet record, - for stdin")
	return cmd
}

// readInput reads path, or stdin when path is "-".
func readInput(rt *runtime, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(rt.opts.In)
	}
	data, err := afero.ReadFile(rt.opts.FS, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
