package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	ansi "github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"github.com/bandstand-io/bandstand/internal/domain"
	"github.com/bandstand-io/bandstand/internal/export"
	"github.com/bandstand-io/bandstand/internal/timing"
)

func main() {
	setlistPath := flag.String("setlist", "", "Path to the setlist JSON file (required)")
	outPath := flag.String("out", "", "Output PDF path (defaults to <setlist name>.pdf)")
	showBPM := flag.Bool("show-bpm", false, "Annotate songs with their BPM")
	showKey := flag.Bool("show-key", false, "Annotate songs with their key")
	schedule := flag.String("schedule", "", "Recompute start times before rendering: sequential, breaks or even")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *setlistPath == "" {
		log.Fatal("Missing required flag: -setlist")
	}

	data, err := os.ReadFile(*setlistPath)
	if err != nil {
		log.Fatal(err)
	}
	var set domain.Setlist
	if err := json.Unmarshal(data, &set); err != nil {
		log.Fatalf("Invalid setlist file: %v", err)
	}
	if set.Name == "" {
		log.Fatal("Setlist file has no name")
	}

	if *schedule != "" {
		if err := reschedule(&set, *schedule); err != nil {
			log.Fatal(err)
		}
	}

	// An empty setlist still renders a header-only page.
	totalPages := (len(set.Songs) + export.PageCapacity - 1) / export.PageCapacity
	if totalPages == 0 {
		totalPages = 1
	}
	bar := progressbar.NewOptions(
		totalPages,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan][1/1][reset] Rendering pages..."),
	)

	result, err := export.ExportWithProgress(&set, export.Options{ShowBPM: *showBPM, ShowKey: *showKey}, func(page, total int) {
		bar.Add(1)
	})
	if err != nil {
		log.Fatal(err)
	}

	out := *outPath
	if out == "" {
		out = sanitizeName(set.Name) + ".pdf"
	}
	if err := os.WriteFile(out, result.PDF, 0644); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\nWrote %s (%d pages, %d songs)\n", out, result.PageCount, result.SongCount)
}

// reschedule recomputes start times in place using the setlist's own
// concert parameters.
func reschedule(set *domain.Setlist, mode string) error {
	if set.ConcertDate == nil {
		return fmt.Errorf("schedule requires a concert date on the setlist")
	}
	switch mode {
	case "sequential":
		timing.Recalculate(set.Songs, *set.ConcertDate)
	case "breaks":
		timing.AddBreaks(set.Songs, *set.ConcertDate, set.ConcertEnd, set.BreakMinutes)
	case "even":
		if set.ConcertEnd == nil {
			return fmt.Errorf("even distribution requires a concert end time")
		}
		timing.DistributeEvenly(set.Songs, *set.ConcertDate, *set.ConcertEnd)
	default:
		return fmt.Errorf("unknown schedule mode %q", mode)
	}
	return nil
}

func sanitizeName(name string) string {
	replacer := strings.NewReplacer("/", "-", ":", "-", "\"", "'", "?", "", "\\", "-", "|", "-")
	return strings.TrimSpace(replacer.Replace(name))
}
