package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/plancheck/internal/config"
	"github.com/dgallion1/plancheck/internal/runner"
	"github.com/spf13/cobra"
)

var checkFlags struct {
	template  string
	glob      string
	lineLimit int
}

func init() {
	checkCmd.Flags().StringVarP(&checkFlags.template, "template", "t", "",
		"Global template document (default PLANCHECK_TEMPLATE)")
	checkCmd.Flags().StringVarP(&checkFlags.glob, "glob", "g", "",
		"Glob pattern for plan documents (default PLANCHECK_GLOB)")
	checkCmd.Flags().IntVar(&checkFlags.lineLimit, "line-limit", 0,
		"Maximum allowed line length (default PLANCHECK_LINE_LIMIT)")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [plan files]",
	Short: "Check plan documents against their templates",
	Long: `Check discovers plan documents (by glob, or from the arguments),
resolves each one's template (a template co-located with the plan wins
over the global one), and reports every missing section, subsection,
subsubsection and metadata field plus all formatting violations.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg := config.Load()
	if checkFlags.template != "" {
		cfg.TemplatePath = checkFlags.template
	}
	if checkFlags.glob != "" {
		cfg.PlanGlob = checkFlags.glob
	}
	if checkFlags.lineLimit > 0 {
		cfg.LineLimit = checkFlags.lineLimit
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	r := runner.New(cfg, log)

	var reports []runner.Report
	var err error
	if len(args) > 0 {
		reports, err = r.RunFiles(args)
	} else {
		reports, err = r.Run()
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, rep := range reports {
		fmt.Println(rep.Message())
		if rep.Failed() {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d documents failed\n", failed, len(reports))
		os.Exit(1)
	}
	return nil
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
