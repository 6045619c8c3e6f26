package cli

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-mockup/internal/autoscaler"
	"github.com/askiada/go-mockup/internal/build"
	"github.com/askiada/go-mockup/internal/source"
	"github.com/askiada/go-mockup/pkg/evaluator"
	"github.com/askiada/go-mockup/pkg/mockup"
)

type renderOpts struct {
	dest             string
	ext              string
	config           string
	templateDirs     []string
	templateProperty string
	include          []string
	concurrency      int
	read             bool
	buffer           bool
	keepGoing        bool
	graph            string
	measure          bool
}

func (o *renderOpts) mode() source.Mode {
	switch {
	case !o.read:
		return source.Deferred
	case !o.buffer:
		return source.Streamed
	default:
		return source.Buffered
	}
}

// NewRenderCmd creates the render command.
func NewRenderCmd(root *rootOpts) *cobra.Command {
	opts := &renderOpts{}

	renderCmd := &cobra.Command{
		Use:   "render [flags] SRC...",
		Short: "Render the data files found under the source directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, root, opts, args)
		},
	}

	flags := renderCmd.Flags()
	flags.StringVarP(&opts.dest, "dest", "d", "dist", "Destination directory")
	flags.StringVar(&opts.ext, "ext", ".html", "Extension of the written files, empty to keep the source one")
	flags.StringVarP(&opts.config, "config", "c", "", "YAML file with the render options")
	flags.StringSliceVarP(&opts.templateDirs, "template-dir", "t", nil, "Template search directory, repeatable")
	flags.StringVarP(&opts.templateProperty, "template-property", "p", "", "Path of the template name in the data")
	flags.StringSliceVarP(&opts.include, "include", "i", nil, "Glob pattern source files must match, repeatable")
	flags.IntVarP(&opts.concurrency, "concurrency", "j", runtime.NumCPU(), "Number of files rendered at once")
	flags.BoolVar(&opts.read, "read", true, "Read file contents while walking the sources")
	flags.BoolVar(&opts.buffer, "buffer", true, "Buffer file contents instead of streaming them")
	flags.BoolVarP(&opts.keepGoing, "keep-going", "k", false, "Skip files failing to render")
	flags.StringVar(&opts.graph, "graph", "", "Write a DOT drawing of the pipeline to this file")
	flags.BoolVar(&opts.measure, "measure", false, "Report step durations")

	return renderCmd
}

func runRender(cmd *cobra.Command, root *rootOpts, opts *renderOpts, sources []string) error {
	logger := root.logger(cmd)

	raw, err := loadConfig(opts.config)
	if err != nil {
		return err
	}

	registry := evaluator.NewRegistry()
	stageOpts := []mockup.Option{mockup.WithLogger(logger), mockup.WithEvaluator(registry)}

	// flags win over the config file
	if cmd.Flags().Changed("template-dir") {
		stageOpts = append(stageOpts, mockup.WithTemplateDirectories(opts.templateDirs...))
	}
	if cmd.Flags().Changed("template-property") {
		stageOpts = append(stageOpts, mockup.WithTemplateProperty(opts.templateProperty))
	}

	stage, err := mockup.NewFromMap(raw, stageOpts...)
	if err != nil {
		return errors.Wrap(err, "unable to create render stage")
	}

	dest, err := homedir.Expand(opts.dest)
	if err != nil {
		return errors.Wrapf(err, "unable to expand %s", opts.dest)
	}

	report, runErr := build.Run(cmd.Context(), stage, build.Options{
		Sources:     sources,
		Include:     opts.include,
		Accept:      registry.Supports,
		Mode:        opts.mode(),
		Dest:        dest,
		Ext:         opts.ext,
		Concurrency: opts.concurrency,
		KeepGoing:   opts.keepGoing,
		GraphFile:   opts.graph,
		Measure:     opts.measure,
	}, logger)

	if report != nil {
		printReport(cmd.OutOrStdout(), report)

		for _, flow := range autoscaler.Bottlenecks(report.Slowest) {
			logger.WithField("wait", flow.Wait).Infof("slowest path: %s takes %s per file", flow.Step, flow.Average)
		}
	}

	return runErr
}

func printReport(w io.Writer, report *build.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Done", "Missing", "Undefined", "Failed", "Written", "Size"})
	t.AppendRow(table.Row{
		report.Stats.Done,
		report.Stats.Missing,
		report.Stats.Undefined,
		report.Stats.Failed,
		report.Files,
		humanize.Bytes(uint64(report.Bytes)), //nolint:gosec // never negative
	})
	t.Render()

	if len(report.Summaries) == 0 {
		return
	}

	steps := table.NewWriter()
	steps.SetOutputMirror(w)
	steps.AppendHeader(table.Row{"Step", "Items", "Average", "Total", "Inputs"})
	for _, sum := range report.Summaries {
		inputs := make([]string, 0, len(sum.Transport))
		for input, elapsed := range sum.Transport {
			inputs = append(inputs, fmt.Sprintf("%s %s", input, elapsed))
		}
		sort.Strings(inputs)
		steps.AppendRow(table.Row{sum.Step, sum.Count, sum.Average, sum.Total, strings.Join(inputs, ", ")})
	}
	steps.Render()
}
