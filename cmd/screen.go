package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/adscreen/internal/dispatch"
	"github.com/sells-group/adscreen/internal/model"
)

var (
	screenText       string
	screenModules    []string
	screenSequential bool
	screenTimeout    time.Duration
	screenFailFast   bool
	screenFormat     string
	screenNoColor    bool
)

var screenCmd = &cobra.Command{
	Use:   "screen [file|-]",
	Short: "Screen advertising copy and print the verdict",
	Long:  "Screens the text given by --text, a file argument, or stdin (no argument or \"-\").",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("screen"); err != nil {
			return err
		}
		if screenFormat != "json" && screenFormat != "text" {
			return eris.Errorf("screen: unknown format %q", screenFormat)
		}

		text, err := readInput(cmd.InOrStdin(), screenText, args)
		if err != nil {
			return err
		}

		env, err := newScreeningEnv(cfg)
		if err != nil {
			return err
		}

		opts := dispatch.RouteOptions{
			Modules: screenModules,
			Timeout: screenTimeout,
		}
		if screenSequential {
			opts.Parallel = boolPtr(false)
		}
		if screenFailFast {
			opts.ContinueOnError = boolPtr(false)
		}

		return runScreen(cmd.Context(), env, text, opts, screenFormat, cmd.OutOrStdout())
	},
}

func init() {
	screenCmd.Flags().StringVar(&screenText, "text", "", "text to screen (instead of a file or stdin)")
	screenCmd.Flags().StringSliceVar(&screenModules, "modules", nil, "modules to run (default all enabled)")
	screenCmd.Flags().BoolVar(&screenSequential, "sequential", false, "run modules one at a time")
	screenCmd.Flags().DurationVar(&screenTimeout, "timeout", 0, "per-module timeout (default from config)")
	screenCmd.Flags().BoolVar(&screenFailFast, "fail-fast", false, "abort on the first module failure")
	screenCmd.Flags().StringVar(&screenFormat, "format", "json", "output format: json or text")
	screenCmd.Flags().BoolVar(&screenNoColor, "no-color", false, "disable colored text output")
	rootCmd.AddCommand(screenCmd)
}

// readInput picks the text source: the flag, then a file argument, then stdin.
func readInput(stdin io.Reader, flagText string, args []string) (string, error) {
	if flagText != "" {
		return flagText, nil
	}
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", eris.Wrapf(err, "screen: read %s", args[0])
		}
		return string(data), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", eris.Wrap(err, "screen: read stdin")
	}
	return string(data), nil
}

func runScreen(ctx context.Context, env *screeningEnv, text string, opts dispatch.RouteOptions, format string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out, err := env.Dispatcher.Route(ctx, model.ModuleInput{Text: text}, opts)
	if err != nil {
		return eris.Wrap(err, "screen: route")
	}

	if format == "text" {
		return writeText(w, out, screenNoColor)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

var severityColors = map[model.Severity]*color.Color{
	model.SeverityHigh:   color.New(color.FgRed, color.Bold),
	model.SeverityMedium: color.New(color.FgYellow),
	model.SeverityLow:    color.New(color.FgCyan),
}

func writeText(w io.Writer, out *model.ModuleOutput, noColor bool) error {
	paint := func(c *color.Color, s string) string {
		if noColor || c == nil {
			return s
		}
		return c.Sprint(s)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", paint(color.New(color.FgWhite, color.Bold), out.Summary))
	fmt.Fprintf(&b, "confidence: %.2f  elapsed: %dms  id: %s\n", out.Confidence, out.ProcessingTime, out.ID)
	for i, v := range out.Violations {
		tag := paint(severityColors[v.Severity], fmt.Sprintf("[%s/%s]", v.Status, v.Severity))
		fmt.Fprintf(&b, "%d. %s %s %q (%.2f, %s)\n", i+1, tag, v.Type, v.MatchedText, v.Confidence, v.Source)
		if v.Description != "" {
			fmt.Fprintf(&b, "   %s\n", v.Description)
		}
		for _, lb := range v.LegalBasis {
			fmt.Fprintf(&b, "   %s %s\n", lb.Law, lb.Article)
		}
	}
	for _, m := range out.Modules {
		if m.Error != "" {
			fmt.Fprintf(&b, "%s\n", paint(color.New(color.FgRed), fmt.Sprintf("module %s failed: %s", m.ModuleName, m.Error)))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func boolPtr(b bool) *bool { return &b }
