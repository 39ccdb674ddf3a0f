// Package cli implements adoptionctl, the operator CLI driving the portal stores from a terminal.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Apurer/adoptionos/internal/platform/storage/file"
	"github.com/Apurer/adoptionos/internal/portal"
)

// cliTab names the single "tab" the CLI acts as; its session scope is kept on disk so wizard
// progress survives between invocations.
const cliTab = "cli"

var errNotLoggedIn = errors.New("not logged in; run adoptionctl login")

// Options injects the process environment.
type Options struct {
	FS          afero.Fs
	In          io.Reader
	Out         io.Writer
	Err         io.Writer
	ProfilePath string
	Logger      *slog.Logger
}

type runtime struct {
	opts    Options
	profile Profile

	apiURL   string
	stateDir string
	jsonOut  bool

	client *portal.Client
}

// NewRoot builds the adoptionctl command tree.
func NewRoot(opts Options) *cobra.Command {
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.ProfilePath == "" {
		opts.ProfilePath = DefaultProfilePath()
	}
	rt := &runtime{opts: opts}

	root := &cobra.Command{
		Use:           "adoptionctl",
		Short:         "Operate the AdoptionOS shelter backend from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.load()
		},
	}
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	root.PersistentFlags().StringVar(&rt.opts.ProfilePath, "profile", opts.ProfilePath, "Path of the YAML profile")
	root.PersistentFlags().StringVar(&rt.apiURL, "api-url", "", "Shelter API base URL (overrides the profile)")
	root.PersistentFlags().StringVar(&rt.stateDir, "state-dir", "", "Directory for stored session state (overrides the profile)")
	root.PersistentFlags().BoolVar(&rt.jsonOut, "json", false, "Output in JSON format")

	root.AddCommand(
		newProfileCommand(rt),
		newLoginCommand(rt),
		newLogoutCommand(rt),
		newWhoamiCommand(rt),
		newPetsCommand(rt),
		newWizardCommand(rt),
		newDemoCommand(rt),
	)
	return root
}

func (rt *runtime) load() error {
	p, err := LoadProfile(rt.opts.FS, rt.opts.ProfilePath)
	if err != nil {
		return err
	}
	if rt.apiURL != "" {
		p.APIURL = rt.apiURL
	}
	if rt.stateDir != "" {
		p.StateDir = rt.stateDir
	}
	rt.profile = p
	return nil
}

// portal lazily builds the client whose stores the commands drive.
func (rt *runtime) portal(ctx context.Context) (*portal.Client, error) {
	if rt.client != nil {
		return rt.client, nil
	}
	session, err := file.NewBackend(rt.opts.FS, filepath.Join(rt.profile.StateDir, "session"))
	if err != nil {
		return nil, fmt.Errorf("open session state: %w", err)
	}
	durable, err := file.NewBackend(rt.opts.FS, filepath.Join(rt.profile.StateDir, "durable"))
	if err != nil {
		return nil, fmt.Errorf("open durable state: %w", err)
	}
	client, err := portal.NewClient(ctx, portal.Deps{
		APIURL:         rt.profile.APIURL,
		RequestTimeout: rt.profile.Timeout,
		Session:        session,
		Durable:        durable,
		Logger:         rt.opts.Logger,
	}, cliTab, rt.profile.Device)
	if err != nil {
		return nil, err
	}
	rt.client = client
	return client, nil
}

func (rt *runtime) requireLogin(ctx context.Context) (*portal.Client, error) {
	client, err := rt.portal(ctx)
	if err != nil {
		return nil, err
	}
	if !client.Session.IsAuthenticated() {
		return nil, errNotLoggedIn
	}
	return client, nil
}
