package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"shredsafe/internal/database"
	"shredsafe/internal/exitcodes"
)

func main() {
	// Parse command-line flags
	dbPath := flag.String("db", "/var/lib/shredsafe/history.db", "Path to shred history database")
	recent := flag.Int("recent", 0, "Show N most recent shred events")
	stats := flag.Bool("stats", false, "Show shred statistics")
	action := flag.String("action", "", "Filter by action (SHRED, SKIP, ERROR)")
	pathPattern := flag.String("path", "", "Filter by path pattern (SQL LIKE syntax)")
	largest := flag.Int("largest", 0, "Show N largest shredded files")
	days := flag.Int("days", 30, "Number of days for statistics (default: 30)")
	purge := flag.Int("purge", 0, "Delete history older than N days")
	jsonOutput := flag.Bool("json", false, "Output in JSON format")
	flag.Parse()

	// Open database
	db, err := database.NewShredDB(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to open database %s: %v", *dbPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database: %v", err)
		}
	}()

	// Handle different query modes
	switch {
	case *stats:
		showStats(db, *days, *jsonOutput)
	case *recent > 0:
		showRecent(db, *recent, *jsonOutput)
	case *action != "":
		showByAction(db, *action, *jsonOutput)
	case *pathPattern != "":
		showByPath(db, *pathPattern, *jsonOutput)
	case *largest > 0:
		showLargest(db, *largest, *jsonOutput)
	case *purge > 0:
		purgeOld(db, *purge)
	default:
		flag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  shredsafe-query --recent 10           # Show 10 most recent shred events")
		fmt.Println("  shredsafe-query --stats               # Show shred statistics")
		fmt.Println("  shredsafe-query --action SHRED        # Show only successful shreds")
		fmt.Println("  shredsafe-query --path '/home/%'      # Show events under /home")
		fmt.Println("  shredsafe-query --largest 10          # Show 10 largest shredded files")
		fmt.Println("  shredsafe-query --purge 90            # Delete history older than 90 days")
		os.Exit(exitcodes.InvalidConfig)
	}
}

func showStats(db *database.ShredDB, days int, jsonOutput bool) {
	stats, err := db.GetShredStats(days)
	if err != nil {
		log.Fatalf("ERROR: Failed to get statistics: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Shred Statistics (Last %d days)\n", days)
	fmt.Printf("Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Printf("Total Shredded:   %d\n", stats.TotalShredded)
	fmt.Printf("Total Skipped:    %d\n", stats.TotalSkipped)
	fmt.Printf("Total Errors:     %d\n", stats.TotalErrors)
	fmt.Printf("Bytes Covered:    %s\n\n", formatBytes(stats.TotalBytesCovered))

	if len(stats.ByAction) > 0 {
		fmt.Println("By Action:")
		for action, count := range stats.ByAction {
			fmt.Printf("  %-15s %d\n", action, count)
		}
	}
}

func showRecent(db *database.ShredDB, limit int, jsonOutput bool) {
	records, err := db.GetRecentShreds(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get recent events: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	printRecords(records)
}

func showByAction(db *database.ShredDB, action string, jsonOutput bool) {
	records, err := db.GetShredsByAction(action)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by action: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Records with action: %s\n\n", action)
	printRecords(records)
}

func showByPath(db *database.ShredDB, pathPattern string, jsonOutput bool) {
	records, err := db.GetShredsByPath(pathPattern)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by path: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Events matching path pattern: %s\n\n", pathPattern)
	printRecords(records)
}

func showLargest(db *database.ShredDB, limit int, jsonOutput bool) {
	records, err := db.GetLargestShreds(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get largest shreds: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Largest %d shredded files:\n\n", limit)
	printRecords(records)
}

func purgeOld(db *database.ShredDB, days int) {
	removed, err := db.DeleteOldRecords(days)
	if err != nil {
		log.Fatalf("ERROR: Failed to purge old records: %v", err)
	}
	if err := db.Vacuum(); err != nil {
		log.Fatalf("ERROR: Failed to vacuum database: %v", err)
	}
	fmt.Printf("Removed %d record(s) older than %d days\n", removed, days)
}

func printRecords(records []database.ShredRecord) {
	if len(records) == 0 {
		fmt.Println("No records found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTimestamp\tAction\tPasses\tSize\tPath")
	_, _ = fmt.Fprintln(w, "--\t---------\t------\t------\t----\t----")

	for _, r := range records {
		timestamp := r.Timestamp.Format("2006-01-02 15:04:05")
		size := formatBytes(r.Size)
		fullPath := r.Path
		if r.FileName != "" {
			fullPath = fullPath + "/" + r.FileName
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, timestamp, r.Action, r.Passes, size, fullPath)
	}
	_ = w.Flush()
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
