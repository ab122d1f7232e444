package panel

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Connector opens a coordinator connection for the given address.
type Connector func(addr string) (Settings, io.Closer, error)

const defaultAddr = "localhost:50061"

// NewRootCmd builds the panel command tree. connect is called lazily by
// each subcommand.
func NewRootCmd(connect Connector) *cobra.Command {
	root := &cobra.Command{
		Use:           "panel",
		Short:         "Read and change keyword highlighting settings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("addr", defaultAddr, "coordinator address")
	root.PersistentFlags().StringP("output", "o", "", "Output format (json)")

	run := func(fn func(ctx context.Context, c PanelCmd, output string, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			output, _ := cmd.Flags().GetString("output")

			svc, closer, err := connect(addr)
			if err != nil {
				return err
			}
			defer closer.Close()

			return fn(cmd.Context(), NewPanelCmd(svc, cmd.OutOrStdout()), output, args)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show the current settings",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, c PanelCmd, output string, _ []string) error {
				return c.Status(ctx, output)
			}),
		},
		&cobra.Command{
			Use:   "on",
			Short: "Turn highlighting on",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, c PanelCmd, _ string, _ []string) error {
				return c.SetEnabled(ctx, true)
			}),
		},
		&cobra.Command{
			Use:   "off",
			Short: "Turn highlighting off",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, c PanelCmd, _ string, _ []string) error {
				return c.SetEnabled(ctx, false)
			}),
		},
		&cobra.Command{
			Use:   "toggle",
			Short: "Flip highlighting on or off",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, c PanelCmd, _ string, _ []string) error {
				return c.Toggle(ctx)
			}),
		},
		keywordsCmd(run),
		&cobra.Command{
			Use:   "id",
			Short: "Show the user identifier",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, c PanelCmd, output string, _ []string) error {
				return c.UserID(ctx, output)
			}),
		},
		&cobra.Command{
			Use:   "shell",
			Short: "Interactive panel session",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, c PanelCmd, _ string, _ []string) error {
				return c.Shell(ctx, os.Stdin)
			}),
		},
	)
	return root
}

func keywordsCmd(run func(func(context.Context, PanelCmd, string, []string) error) func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Show or set the keyword text",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Show the keyword text",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, c PanelCmd, output string, _ []string) error {
				return c.KeywordsGet(ctx, output)
			}),
		},
		&cobra.Command{
			Use:   "set <text>...",
			Short: "Replace the keyword text",
			Args:  cobra.MinimumNArgs(1),
			RunE: run(func(ctx context.Context, c PanelCmd, _ string, args []string) error {
				return c.KeywordsSet(ctx, strings.Join(args, " "))
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all keywords",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, c PanelCmd, _ string, _ []string) error {
				return c.KeywordsSet(ctx, "")
			}),
		},
	)
	return cmd
}
