// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package cmd provides the root command for the spartaup CLI.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/defenseunicorns/spartaup"
	"github.com/defenseunicorns/spartaup/config"
	configv0 "github.com/defenseunicorns/spartaup/config/v0"
)

// NewRootCmd creates the root command for the spartaup CLI.
func NewRootCmd() *cobra.Command {
	var (
		level      string
		ver        bool
		explain    bool
		dry        bool
		dir        string
		configPath string
		timeout    time.Duration
		policy     = spartaup.DefaultFailurePolicy // VarP does not allow you to set a default value
		dataDir    string
		baseline   string
		working    string
	)

	var cfg *configv0.Config // cfg is not set via CLI flag

	loadConfig := func(cmd *cobra.Command) error {
		open := func(path string) error {
			f, err := os.Open(os.ExpandEnv(path))
			if err != nil {
				return fmt.Errorf("failed to open config file: %w", err)
			}
			defer f.Close()
			cfg, err = configv0.LoadConfig(f)
			if err != nil {
				return fmt.Errorf("failed to load config file: %w", err)
			}
			return nil
		}

		switch {
		case cmd.Flags().Changed("config"):
			return open(configPath)
		case os.Getenv(config.EnvVar) != "":
			return open(os.Getenv(config.EnvVar))
		default:
			var err error
			cfg, err = configv0.LoadDefaultConfig()
			return err
		}
	}

	root := &cobra.Command{
		Use:   "spartaup <version>",
		Short: "Refresh the SPARTA techniques in the D3FEND ontology",
		Long: `Seeds src/ontology/d3fend-protege.sparta.ttl from the baseline ontology,
downloads the SPARTA dataset for <version> when it is missing, then validates,
updates and formats the working copy. The result is left for manual review.`,
		Example: `
spartaup 1.6

spartaup -C ~/src/d3fend-ontology 1.6 --dry-run

spartaup 1.6 --failure-policy strict -l debug
`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if dir != "" {
				if err := os.Chdir(dir); err != nil {
					return err
				}
			}

			return loadConfig(cmd)
		},
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			l, err := log.ParseLevel(level)
			if err != nil {
				return err
			}
			logger := log.FromContext(cmd.Context())
			logger.SetLevel(l)

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			if ver && len(args) == 0 {
				bi, ok := debug.ReadBuildInfo()
				if !ok {
					return fmt.Errorf("version information not available")
				}
				switch bi.Main.Path {
				case "github.com/defenseunicorns/spartaup":
					fmt.Fprintln(os.Stdout, bi.Main.Version)
				default:
					for _, dep := range bi.Deps {
						if dep.Path == "github.com/defenseunicorns/spartaup" {
							fmt.Fprintln(os.Stdout, dep.Version)
							break
						}
					}
				}
				return nil
			}

			if len(args) != 1 {
				return fmt.Errorf("requires a SPARTA version (e.g. %q)", "1.6")
			}
			version := args[0]

			// default < cfg < flags
			opts := cfg.Options()
			if cmd.Flags().Changed("failure-policy") {
				opts.Policy = policy
			}
			if cmd.Flags().Changed("data-dir") {
				opts.Paths.DataDir = dataDir
			}
			if cmd.Flags().Changed("baseline") {
				opts.Paths.Baseline = baseline
			}
			if cmd.Flags().Changed("working") {
				opts.Paths.Working = working
			}
			opts.Fs = afero.NewOsFs()
			opts.Runner = spartaup.NewExecRunner("")
			opts.Env = os.Environ()
			opts.Dry = dry

			if explain {
				md, err := spartaup.Explain(version, opts)
				if err != nil {
					return err
				}
				return printMarkdown(md)
			}

			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
				cmd.SetContext(ctx)
			}

			report, err := spartaup.Run(ctx, version, opts)
			logger.Debug("report", "version", version, "stages", "\n"+report.String())
			return err
		},
	}

	root.Flags().StringVarP(&level, "log-level", "l", "info", "Set log level")
	_ = root.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{log.DebugLevel.String(), log.InfoLevel.String(), log.WarnLevel.String(), log.ErrorLevel.String(), log.FatalLevel.String()}, cobra.ShellCompDirectiveNoFileComp
	})
	root.Flags().BoolVarP(&ver, "version", "V", false, "Print version number and exit")
	root.Flags().BoolVar(&explain, "explain", false, "Print explanation of the update plan and exit")
	root.Flags().BoolVar(&dry, "dry-run", false, "Don't actually run anything; just print")
	root.Flags().DurationVarP(&timeout, "timeout", "t", time.Hour, "Maximum time allowed for execution")
	root.Flags().StringVarP(&dir, "directory", "C", "", "Change to directory before doing anything")
	_ = root.MarkFlagDirname("directory")
	root.Flags().StringVarP(&configPath, "config", "", "${HOME}/.spartaup/config.yaml", "Path to spartaup config file") // mirrors config.DefaultDirectory
	_ = root.MarkFlagFilename("config", "yaml", "yml")
	root.Flags().VarP(&policy, "failure-policy", "p", fmt.Sprintf(`Set failure policy for acquire and format ("%s")`, strings.Join(spartaup.AvailablePolicies(), `", "`)))
	_ = root.RegisterFlagCompletionFunc("failure-policy", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return spartaup.AvailablePolicies(), cobra.ShellCompDirectiveNoFileComp
	})
	root.Flags().StringVar(&dataDir, "data-dir", spartaup.DefaultDataDir, "Directory holding SPARTA datasets")
	_ = root.MarkFlagDirname("data-dir")
	root.Flags().StringVar(&baseline, "baseline", spartaup.DefaultBaseline, "Baseline ontology file")
	_ = root.MarkFlagFilename("baseline", "ttl")
	root.Flags().StringVar(&working, "working", spartaup.DefaultWorking, "Working ontology file")
	_ = root.MarkFlagFilename("working", "ttl")

	return root
}

func printMarkdown(md string) error {
	if termenv.EnvNoColor() || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stdout, md)
		return nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return err
	}

	out, err := r.Render(md)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, out)
	return nil
}

// Main executes the root command for the spartaup CLI.
//
// It returns 0 on success, the failing collaborator's exit status or 1 on failure and logs any errors.
func Main() int {
	cli := NewRootCmd()

	ctx := context.Background()

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.NewWithOptions(os.Stdout, log.Options{
		ReportTimestamp: false,
	})

	logger.SetStyles(DefaultStyles())

	ctx = log.WithContext(ctx, logger)
	cmd, err := cli.ExecuteContextC(ctx)
	if err != nil {
		logger.Print("")

		if errors.Is(cmd.Context().Err(), context.DeadlineExceeded) {
			logger.Error("update timed out")
		}

		var sErr *spartaup.StageError
		if errors.As(err, &sErr) {
			logger.Error(sErr.Unwrap(), "stage", sErr.Stage)
		} else {
			logger.Error(err)
		}
	}
	return ParseExitCode(err)
}

// ParseExitCode calculates the exit code from a given error
//
// 0 - the error was nil
// 1 - there was some error
// n - the underlying error from an exec.Command, or any error carrying an exit code
func ParseExitCode(err error) int {
	if err == nil {
		return 0
	}

	var eErr *exec.ExitError
	if errors.As(err, &eErr) {
		if status, ok := eErr.Sys().(syscall.WaitStatus); ok {
			if status.Exited() {
				return status.ExitStatus()
			}
			if status.Signaled() {
				if status.Signal() == syscall.SIGINT {
					return 130
				}
			}
		}
		return 1
	}

	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) && coded.ExitCode() > 0 {
		return coded.ExitCode()
	}
	return 1
}
