package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// sourceFlags locate the data set and the content site.
type sourceFlags struct {
	dataDir string
	baseURL string
}

// generateFlags holds all flags for the hymns and collections commands.
type generateFlags struct {
	common  commonFlags
	source  sourceFlags
	output  string
	timeout string
	force   bool
	limit   int
}

// indexFlags holds flags for the index command.
type indexFlags struct {
	common      commonFlags
	source      sourceFlags
	output      string
	collections bool
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	source sourceFlags
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addSourceFlags adds data and content source flags to a FlagSet.
func addSourceFlags(fs *flag.FlagSet, f *sourceFlags) {
	fs.StringVar(&f.dataDir, "data-dir", "", "directory holding the hymnal JSON data")
	fs.StringVar(&f.baseURL, "base-url", "", "content site serving hymn pages")
}

// newFlagSet returns a FlagSet that reports parse errors to the caller
// and prints usage to stderr on --help.
func newFlagSet(name string, stderr io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// parseGenerateFlags parses hymns/collections flags and returns positional args.
func parseGenerateFlags(name string, args []string, stderr io.Writer) (*generateFlags, []string, error) {
	f := &generateFlags{}
	fs := newFlagSet(name, stderr, func(w io.Writer) { printGenerateUsage(w, name) })

	fs.StringVarP(&f.output, "output", "o", "", "output directory for PDFs")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "page navigation timeout (e.g., 60s, 2m)")
	fs.BoolVar(&f.force, "force", false, "regenerate existing PDFs")
	fs.IntVar(&f.limit, "limit", 0, "max hymns per collection (hymns) or collections (collections), 0 = all")
	addCommonFlags(fs, &f.common)
	addSourceFlags(fs, &f.source)

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseIndexFlags parses index command flags.
func parseIndexFlags(args []string, stderr io.Writer) (*indexFlags, []string, error) {
	f := &indexFlags{}
	fs := newFlagSet("index", stderr, printIndexUsage)

	fs.StringVarP(&f.output, "output", "o", "", "output directory to index")
	fs.BoolVar(&f.collections, "collections", false, "index the collection PDF directory")
	addCommonFlags(fs, &f.common)
	addSourceFlags(fs, &f.source)

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string, stderr io.Writer) (*doctorFlags, []string, error) {
	f := &doctorFlags{}
	fs := newFlagSet("doctor", stderr, printDoctorUsage)

	fs.BoolVar(&f.json, "json", false, "print the report as JSON")
	addCommonFlags(fs, &f.common)
	addSourceFlags(fs, &f.source)

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
