// Package cmd wires the CLI surface to the commit pipeline.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/arlev/gca/internal/config"
	"github.com/arlev/gca/internal/git"
	"github.com/arlev/gca/internal/hooks"
	"github.com/arlev/gca/internal/llm"
	"github.com/arlev/gca/internal/workflow"
	"github.com/spf13/cobra"
)

const reviewContextLines = 10

var (
	cfgFile     string
	addAll      bool
	review      bool
	extraPrompt string
	dryRun      bool
	verbose     bool
	configErr   error

	runCtx = context.Background()

	rootCmd = &cobra.Command{
		Use:   "gca [path]",
		Short: "gca - AI-assisted git commits and reviews",
		Long: `gca stages and commits changes, generating the commit message (or a
code-review comment with -r) by sending the staged diff to an
OpenAI-compatible API.`,
		Version: Version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configErr != nil {
				return fmt.Errorf("configuration error: %w", configErr)
			}
			return runPipeline(cmd, args)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

// SetContext installs the context commands run under, so an interrupt can
// cancel an in-flight generation call.
func SetContext(ctx context.Context) {
	runCtx = ctx
}

func Execute() error {
	return rootCmd.ExecuteContext(runCtx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Configuration file path (default is $HOME/.gca.yaml)")
	rootCmd.Flags().BoolVarP(&addAll, "all", "a", false,
		"Stage all tracked changes before generating")
	rootCmd.Flags().BoolVarP(&review, "review", "r", false,
		"Print a code review of the staged diff instead of committing")
	rootCmd.Flags().StringVarP(&extraPrompt, "prompt", "p", "",
		"Extra instructions for the reviewer (requires --review)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Generate the message only, do not commit")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "V", false,
		"Show git commands as they run")

	// Flag errors still print usage even though run errors stay terse.
	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		c.Println(c.UsageString())
		return err
	})
}

func initConfig() {
	configErr = config.InitConfig(cfgFile)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	opts := workflow.Options{
		Review:      review,
		ExtraPrompt: extraPrompt,
		Path:        path,
		AddAll:      addAll,
		DryRun:      dryRun,
		Model:       cfg.ModelFor(review),
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokensFor(review),
		OutWriter:   cmd.OutOrStdout(),
		ErrWriter:   cmd.ErrOrStderr(),
		Stdin:       os.Stdin,
	}
	if review {
		opts.ContextLines = reviewContextLines
	}

	// Flag combinations are rejected before the repository is touched.
	if err := opts.Validate(); err != nil {
		return err
	}

	gitClient := git.NewClient(git.Options{Verbose: verbose, Logger: cmd.ErrOrStderr()})
	if !gitClient.IsRepository() {
		return errors.New("not a git repository")
	}

	llmClient := llm.NewClient(llm.Options{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.APIBase,
		Timeout: cfg.Timeout(),
	})

	flow := workflow.New(gitClient, llmClient,
		hooks.Runner{Verbose: verbose, Logger: cmd.ErrOrStderr()}, opts)

	_, err = flow.Run(cmd.Context())
	return err
}
