package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/generate"
	"github.com/matzehuels/scatter/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for scatter.

To load completions:

Bash:
  $ source <(scatter completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ scatter completion bash > /etc/bash_completion.d/scatter
  # macOS:
  $ scatter completion bash > $(brew --prefix)/etc/bash_completion.d/scatter

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ scatter completion zsh > "${fpath[1]}/_scatter"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ scatter completion fish | source

  # To load completions for each session, execute once:
  $ scatter completion fish > ~/.config/fish/completions/scatter.fish

PowerShell:
  PS> scatter completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> scatter completion powershell > scatter.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}

// flagValues lists the accepted values of flags that take a fixed set of
// names, keyed by flag name.
var flagValues = map[string][]string{
	"format":     {pipeline.FormatSVG, pipeline.FormatJSON, pipeline.FormatPNG, pipeline.FormatPDF, pipeline.FormatPreview},
	"patterns":   art.Patterns,
	"pattern":    art.Patterns,
	"bg-pattern": art.Patterns,
	"texture":    {string(art.TextureSolid), string(art.TexturePattern), string(art.TextureStamp)},
	"bg-texture": {string(art.TextureSolid), string(art.TexturePattern), string(art.TextureStamp)},
	"placement":  {string(generate.PlacementSpread), string(generate.PlacementBounded)},
	"layer":      {"1", "2", "3", "4", "5", art.StampLayer.String()},
}

// registerFlagCompletions attaches value completions for flagValues to
// every command in the tree that defines one of those flags.
func registerFlagCompletions(cmd *cobra.Command) {
	for name, values := range flagValues {
		if cmd.Flags().Lookup(name) != nil {
			_ = cmd.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
		}
	}
	for _, sub := range cmd.Commands() {
		registerFlagCompletions(sub)
	}
}
