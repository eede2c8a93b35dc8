package main

import (
	"github.com/hupe1980/agentzero/config"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	configPath string
	provider   string
	model      string
	logLevel   string
	maxRounds  int
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "agentzero",
		Short: "Autonomous agent that uses tools and delegates to subordinate agents",
		Long: `agentzero drives a language model in a loop: it streams the model output,
runs the tools the model asks for and feeds the results back until the agent
answers. Agents can hand sub-tasks to subordinate agents.

Configuration is read from --config, ./agentzero.yaml or
~/.config/agentzero/config.yaml; flags override the file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file")
	cmd.PersistentFlags().StringVar(&flags.provider, "provider", "", "model provider: openai, anthropic or mock")
	cmd.PersistentFlags().StringVar(&flags.model, "model", "", "model name")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	cmd.PersistentFlags().IntVar(&flags.maxRounds, "max-rounds", -1, "generation rounds per message (0 = unbounded)")

	cmd.AddCommand(newChatCmd(flags))
	cmd.AddCommand(newRunCmd(flags))

	return cmd
}

// load reads the configuration and applies flag overrides.
func (f *globalFlags) load() (*config.Config, error) {
	cfg, _, err := config.LoadOrDefault(f.configPath)
	if err != nil {
		return nil, err
	}

	if f.provider != "" {
		cfg.Model.Provider = f.provider
		if f.model == "" {
			// The file's model name belongs to the file's provider.
			cfg.Model.Name = ""
		}
	}
	if f.model != "" {
		cfg.Model.Name = f.model
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.maxRounds >= 0 {
		cfg.Agent.MaxRounds = f.maxRounds
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
