package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"prepdeck/internal/app"
	"prepdeck/internal/render"
	"prepdeck/internal/ui"
)

type options struct {
	ConfigPath string
	Memory     bool
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "prepdeck",
		Short:        "Interview question manager for the terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  prepdeck

  # Scriptable commands
  prepdeck list --tag go --sort answersFirst
  prepdeck export --out questions.csv
  prepdeck import questions.csv
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to config.toml (default: $PREPDECK_CONFIG or the user config dir)")
	cmd.PersistentFlags().BoolVar(&opts.Memory, "memory", false, "Keep questions in memory only; nothing is saved")

	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newShowCmd(opts))
	cmd.AddCommand(newExportCmd(opts))
	cmd.AddCommand(newImportCmd(opts))
	cmd.AddCommand(newClearCmd(opts))

	return cmd
}

func openApp(ctx context.Context, opts *options) (*app.App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return app.Open(ctx, app.Options{ConfigPath: opts.ConfigPath, Memory: opts.Memory})
}

func runTUI(ctx context.Context, opts *options) error {
	a, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	welcome := ""
	if a.FirstLaunch {
		welcome = "Created config at " + a.ConfigPath + ". Press ? for keyboard shortcuts."
	}
	return ui.Run(a.Store, ui.Options{
		Config:      a.Config,
		Log:         a.Log,
		Sort:        a.DefaultSort,
		NotifyAfter: a.NotifyDuration(),
		Renderer:    render.New(""),
		Welcome:     welcome,
	})
}
