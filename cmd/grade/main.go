package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tuannm99/sqllab/internal"
	"github.com/tuannm99/sqllab/internal/grader"
	"github.com/tuannm99/sqllab/internal/logging"
)

func listExercises(w io.Writer, c *grader.Catalog, category string) {
	for _, cat := range c.Categories() {
		if category != "" && !strings.EqualFold(cat, category) {
			continue
		}
		fmt.Fprintf(w, "%s\n", cat)
		for _, ex := range c.Exercises {
			if ex.Category != cat {
				continue
			}
			fmt.Fprintf(w, "  %-4s [%s] %s\n", ex.ID, ex.Difficulty, ex.Question)
		}
	}
}

func printVerdict(w io.Writer, v *grader.Verdict, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	mark := "FAIL"
	if v.Correct {
		mark = "PASS"
	}
	_, err := fmt.Fprintf(w, "%s exercise %s (%s): %s\n", mark, v.ExerciseID, v.Mode, v.Message)
	return err
}

func main() {
	var (
		cfgPath  = flag.String("config", "", "config file (yaml)")
		catalog  = flag.String("exercises", "", "exercise catalog (overrides grader.exercises)")
		backend  = flag.String("backend", "", "memory or sqlite (overrides grader.backend)")
		list     = flag.Bool("list", false, "list exercises and exit")
		category = flag.String("category", "", "with -list, only this category")
		id       = flag.String("id", "", "exercise id to check")
		query    = flag.String("sql", "", "answer to check; read from stdin when empty")
		asJSON   = flag.Bool("json", false, "print the verdict as JSON")
	)
	flag.Parse()

	cfg, err := internal.LoadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, closeLog := logging.SetupLogger(logging.Options{Level: cfg.Log.Level, SeqURL: cfg.Log.SeqURL})
	defer closeLog()
	slog.SetDefault(log)

	if *catalog == "" {
		*catalog = cfg.Grader.Exercises
	}
	if *backend == "" {
		*backend = cfg.Grader.Backend
	}

	c, err := grader.LoadCatalog(*catalog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *list {
		listExercises(os.Stdout, c, *category)
		return
	}
	if *id == "" {
		fmt.Fprintln(os.Stderr, "grade: -id is required (see -list)")
		os.Exit(2)
	}

	answer := *query
	if answer == "" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read answer: %v\n", err)
			os.Exit(1)
		}
		answer = string(b)
	}

	open, err := grader.BackendByName(*backend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	v, err := grader.New(c, open, log).Check(context.Background(), *id, answer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if err := printVerdict(os.Stdout, v, *asJSON); err != nil {
		os.Exit(1)
	}
	if !v.Correct {
		os.Exit(1)
	}
}
