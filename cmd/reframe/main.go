// Command reframe transforms, validates and generates MT and MX messages with a
// rule package, and replays the package regression scenarios.
//
// Usage:
//
//	reframe transform -package URL [-direction mt-to-mx|mx-to-mt] [-out URL] [-workers N] <message|->...
//	reframe validate  -package URL [-direction ...] <message|->
//	reframe generate  -package URL -family pacs.008 -direction mt-to-mx [-params JSON]
//	reframe scenarios -package URL [name...]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/reframe"
	"github.com/viant/reframe/internal/yml"
	"github.com/viant/reframe/model"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
	"github.com/viant/reframe/runtime/orchestrator"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(runWithArgs(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	config    string
	pkg       string
	direction string
	family    string
	params    string
	out       string
	workers   int
	verbose   bool
}

func runWithArgs(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}
	command := args[0]
	fs := flag.NewFlagSet("reframe "+command, flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := &options{}
	fs.StringVar(&opts.config, "config", "", "engine config URL (YAML or JSON)")
	fs.StringVar(&opts.pkg, "package", "", "package descriptor URL, overrides config")
	fs.StringVar(&opts.direction, "direction", string(model.DirectionAuto), "mt-to-mx, mx-to-mt or auto")
	fs.StringVar(&opts.family, "family", "", "message family to generate, e.g. pacs.008")
	fs.StringVar(&opts.params, "params", "{}", "generate parameters as JSON")
	fs.StringVar(&opts.out, "out", "", "write output to URL instead of stdout")
	fs.IntVar(&opts.workers, "workers", 4, "concurrent requests when transforming several messages")
	fs.BoolVar(&opts.verbose, "v", false, "debug logging")
	if err := fs.Parse(args[1:]); err != nil {
		return exitUsage
	}
	switch command {
	case "transform", "validate", "generate", "scenarios":
	default:
		fmt.Fprintf(stderr, "error: unknown command %q\n", command)
		usage(stderr)
		return exitUsage
	}
	runtime, err := newRuntime(ctx, opts)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitFailure
	}
	switch command {
	case "scenarios":
		return scenarios(ctx, runtime, fs.Args(), stdout, stderr)
	case "generate":
		return generate(ctx, runtime, opts, stdout, stderr)
	}
	direction := model.Direction(opts.direction)
	if command == "transform" && fs.NArg() > 1 {
		return batch(ctx, runtime, opts, fs.Args(), stdin, stdout, stderr)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "error: exactly one message argument is required, use - for stdin")
		return exitUsage
	}
	input, err := readInput(ctx, fs.Arg(0), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitFailure
	}
	if command == "validate" {
		result, err := runtime.Validate(ctx, input, direction)
		return report(result, err, "", stdout, stderr)
	}
	result, err := runtime.Transform(ctx, input, direction)
	return report(result, err, opts.out, stdout, stderr)
}

// batch transforms several messages concurrently, -out is then a folder URL
func batch(ctx context.Context, runtime *reframe.Runtime, opts *options, names []string, stdin io.Reader, stdout, stderr io.Writer) int {
	requests := make([]*orchestrator.Request, 0, len(names))
	for _, name := range names {
		input, err := readInput(ctx, name, stdin)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return exitFailure
		}
		requests = append(requests, &orchestrator.Request{Kind: model.KindTransform, Direction: model.Direction(opts.direction), Input: input})
	}
	outcomes, err := runtime.RunBatch(ctx, opts.workers, requests...)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitFailure
	}
	code := exitOK
	for i, outcome := range outcomes {
		name := names[i]
		out := ""
		if opts.out != "" {
			out = url.Join(location(opts.out), path.Base(name)+".out")
		} else {
			fmt.Fprintf(stdout, "==> %v <==\n", name)
		}
		if report(outcome.Result, outcome.Err, out, stdout, stderr) != exitOK {
			fmt.Fprintf(stderr, "%v: failed\n", name)
			code = exitFailure
		}
	}
	return code
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: reframe <transform|validate|generate|scenarios> -package URL [options] [args]")
}

func newRuntime(ctx context.Context, opts *options) (*reframe.Runtime, error) {
	config := reframe.DefaultConfig()
	if opts.config != "" {
		var err error
		if config, err = reframe.LoadConfig(ctx, location(opts.config)); err != nil {
			return nil, err
		}
	} else {
		config.Logging.Level = "error"
	}
	if opts.verbose {
		config.Logging.Level = "debug"
	}
	if opts.pkg != "" {
		config.Package = location(opts.pkg)
	}
	if config.Package == "" {
		return nil, fmt.Errorf("-package is required")
	}
	srv, err := reframe.NewFromConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	return srv.Runtime(), nil
}

// location turns local paths into file URLs so that package relative resources resolve
func location(URL string) string {
	if !strings.Contains(URL, "://") {
		return url.Normalize(URL, file.Scheme)
	}
	return URL
}

func readInput(ctx context.Context, arg string, stdin io.Reader) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(stdin)
	}
	return afs.New().DownloadWithURL(ctx, location(arg))
}

func generate(ctx context.Context, runtime *reframe.Runtime, opts *options, stdout, stderr io.Writer) int {
	if opts.family == "" {
		fmt.Fprintln(stderr, "error: -family is required")
		return exitUsage
	}
	parameters, err := value.ParseJSON([]byte(opts.params))
	if err != nil {
		fmt.Fprintf(stderr, "error: invalid -params: %v\n", err)
		return exitUsage
	}
	result, err := runtime.Generate(ctx, opts.family, model.Direction(opts.direction), parameters)
	return report(result, err, opts.out, stdout, stderr)
}

func report(result *orchestrator.Result, err error, out string, stdout, stderr io.Writer) int {
	if result != nil {
		for _, diagnostic := range result.Diagnostics {
			fmt.Fprintf(stderr, "%v %v: %v (%v/%v)\n", diagnostic.Kind, diagnostic.Code, diagnostic.Message, diagnostic.Workflow, diagnostic.Task)
		}
	}
	if err != nil {
		if len(types.DiagnosticsOf(err)) == 0 {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return exitFailure
	}
	if result.Output == nil {
		fmt.Fprintf(stdout, "%v %v: valid\n", result.Family, result.Variant)
		return exitOK
	}
	text := result.Output.Text
	if !result.Output.HasText {
		text = result.Output.Document.String()
		// structured output written to a yaml URL keeps mapping order
		if ext := strings.ToLower(path.Ext(out)); ext == ".yaml" || ext == ".yml" {
			data, err := yml.Encode(result.Output.Document)
			if err != nil {
				fmt.Fprintf(stderr, "error: %v\n", err)
				return exitFailure
			}
			text = string(data)
		}
	}
	if out == "" {
		fmt.Fprintln(stdout, text)
		return exitOK
	}
	if err = afs.New().Upload(context.Background(), location(out), file.DefaultFileOsMode, strings.NewReader(text)); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitFailure
	}
	return exitOK
}

func scenarios(ctx context.Context, runtime *reframe.Runtime, names []string, stdout, stderr io.Writer) int {
	report, err := runtime.RunScenarios(ctx, names...)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitFailure
	}
	for _, outcome := range report.Outcomes {
		status := "PASS"
		if !outcome.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(stdout, "%v %v (%v, %v)\n", status, outcome.Name, outcome.Direction, outcome.Elapsed)
		if outcome.Error != "" {
			fmt.Fprintf(stdout, "  %v\n", outcome.Error)
		}
		if outcome.Diff != "" {
			fmt.Fprintln(stdout, outcome.Diff)
		}
	}
	fmt.Fprintf(stdout, "%v: %d passed, %d failed\n", report.Package, report.Passed, report.Failed)
	if report.Failed > 0 {
		return exitFailure
	}
	return exitOK
}
