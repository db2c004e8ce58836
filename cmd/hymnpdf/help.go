package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: hymnpdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  hymns        Generate one PDF per hymn")
	fmt.Fprintln(w, "  collections  Generate one PDF per hymnal collection")
	fmt.Fprintln(w, "  index        Rebuild index.json for an output directory")
	fmt.Fprintln(w, "  doctor       Check browser, content source and data set")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w, "  help         Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'hymnpdf help <command>' for details on a specific command.")
}

// printGenerateUsage prints usage for the hymns and collections commands.
func printGenerateUsage(w io.Writer, name string) {
	fmt.Fprintf(w, "Usage: hymnpdf %s [filter] [flags]\n", name)
	fmt.Fprintln(w)
	if name == "collections" {
		fmt.Fprintln(w, "Generate one assembled PDF per collection: title page, table of contents")
		fmt.Fprintln(w, "and hymn sections. Large collections are sampled.")
	} else {
		fmt.Fprintln(w, "Generate one PDF per hymn from the content site.")
	}
	fmt.Fprintln(w, "Existing PDFs are skipped unless --force is given; index.json is rewritten")
	fmt.Fprintln(w, "after every run.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  filter    Collection id, slug or name fragment (case-insensitive),")
	fmt.Fprintln(w, "            or \"all\" (default)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w, "  -t, --timeout <dur>       Page navigation timeout (e.g., 60s, 2m)")
	fmt.Fprintln(w, "      --force               Regenerate existing PDFs")
	if name == "collections" {
		fmt.Fprintln(w, "      --limit <n>           Max collections (0 = all)")
	} else {
		fmt.Fprintln(w, "      --limit <n>           Max hymns per collection (0 = all)")
	}
	printSourceFlags(w)
	printCommonFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintf(w, "  hymnpdf %s\n", name)
	fmt.Fprintf(w, "  hymnpdf %s SDAH --limit 5\n", name)
	fmt.Fprintf(w, "  hymnpdf %s \"christ in song\" --force -o ./pdfs\n", name)
}

// printIndexUsage prints usage for the index command.
func printIndexUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: hymnpdf index [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rebuild index.json from the PDFs present in the output directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w, "      --collections         Index the collection PDF directory")
	printSourceFlags(w)
	printCommonFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: hymnpdf doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that Chrome, the content site and the data set are usable.")
	fmt.Fprintln(w, "Exits 1 when a check fails.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print the report as JSON")
	printSourceFlags(w)
	printCommonFlags(w)
}

func printSourceFlags(w io.Writer) {
	fmt.Fprintln(w, "      --data-dir <dir>      Hymnal JSON data directory")
	fmt.Fprintln(w, "      --base-url <url>      Content site serving hymn pages")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
}

// runHelp prints help for a command, or the main usage.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "hymns", "collections":
		printGenerateUsage(env.Stdout, args[0])
	case "index":
		printIndexUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: hymnpdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
