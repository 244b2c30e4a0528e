// Copyright (c) OpenMMLab. All rights reserved.

// Package cli wires the megarun command line: a root command carrying the
// parallelism/batch override flags and a version subcommand.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gilbert12tw/HPC-II-Megatron-LLM/logger"
	versioncmd "github.com/gilbert12tw/HPC-II-Megatron-LLM/pkg/cli/version"
	"github.com/gilbert12tw/HPC-II-Megatron-LLM/pkg/config"
	"github.com/gilbert12tw/HPC-II-Megatron-LLM/pkg/launch"
)

// readConfig reads path/runtime parameters from the configuration file
func readConfig(configPath string) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("megarun")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	if err := viper.ReadInConfig(); err != nil {
		logger.Logger.Debug("no configuration file, using defaults", zap.Error(err))
	}
}

func NewMegarunCommand(exitCode *int) *cobra.Command {
	var configPath string
	var dryRun bool

	cmds := &cobra.Command{
		Use:   "megarun",
		Short: "Launch Megatron-LM pretraining inside a container",
		Long: `Validate the parallel layout, assemble the pretraining command and run
it inside the container image.

Example:
  megarun --tp 4 --pp 1 --seq-len 2048 --train-iters 500`,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Unrecognized flags are logged and ignored, never fatal.
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			readConfig(configPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range config.IgnoredFlags(os.Args[1:], cmd.Flags()) {
				logger.Logger.Warn("ignoring unrecognized flag", zap.String("flag", f))
			}

			ov, notes := config.OverridesFromFlags(cmd.Flags())
			for _, n := range notes {
				logger.Logger.Info(n)
			}

			cfg, violations := config.Apply(config.FromViper(config.Defaults()), ov)
			for _, v := range violations {
				if v.Fatal {
					fmt.Fprintln(os.Stderr, v)
				} else {
					fmt.Println(v)
				}
			}
			if config.HasFatal(violations) {
				*exitCode = 1
				return errors.New("invalid parallel configuration, aborting before launch")
			}

			logger.Logger.Debug("effective configuration: " + logger.ToPrettyJSON(cfg))

			if dryRun {
				launch.PrintSummary(cfg)
				fmt.Println("\nContainer command (dry run):")
				for _, tok := range launch.ContainerArgs(cfg, ".", "<run-script>") {
					fmt.Println("  " + tok)
				}
				return nil
			}

			result, err := launch.Run(cmd.Context(), cfg)
			*exitCode = result.ExitCode
			return err
		},
	}

	// Disable auto-completion command
	cmds.CompletionOptions.DisableDefaultCmd = true

	config.RegisterFlags(cmds.Flags())
	cmds.Flags().BoolVar(&dryRun, "dry-run", false, "print the container command without executing it")
	cmds.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the configuration file")

	cmds.AddCommand(
		versioncmd.NewCmdVersion(),
	)

	return cmds
}

// Execute runs the root command and returns the process exit code: 1 on
// preflight or validation failure, otherwise the exit code of the external
// training process.
func Execute() int {
	var exitCode int
	cmd := NewMegarunCommand(&exitCode)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if exitCode == 0 {
			exitCode = 1
		}
	}
	return exitCode
}
