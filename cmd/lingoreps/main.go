package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/lingoreps/lingoreps/internal/config"
	"github.com/lingoreps/lingoreps/internal/itemsource"
	"github.com/lingoreps/lingoreps/internal/review"
	"github.com/lingoreps/lingoreps/internal/srs"
	"github.com/lingoreps/lingoreps/internal/storage"
)

func main() {
	flags := pflag.NewFlagSet("lingoreps", pflag.ExitOnError)

	configFile := flags.String("config", "", "Path to a YAML config file")
	flags.String("db-path", "", "Path to the SQLite database file")
	flags.String("repos-dir", "", "Directory for git word-list checkouts")
	flags.String("learner", "", "Learner whose records to operate on")
	flags.Int("due-limit", 0, "Maximum number of due items to list")

	addSource := flags.String("add-source", "", "Register a word-list source (directory or git URL)")
	doSync := flags.Bool("sync", false, "Sync all sources into the item store")
	enroll := flags.Bool("enroll", false, "Create review records for items the learner has none for")
	listDue := flags.Bool("due", false, "List the learner's due items")
	reviewTerm := flags.String("review", "", "Submit a review for the given term")
	quality := flags.Int("quality", -1, "Recall quality for --review: 0 (blackout) to 5 (perfect)")

	if err := flags.Parse(os.Args[1:]); err != nil {
		fatal("parse flags", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load(config.FindConfigFile(*configFile), flags)
	if err != nil {
		fatal("load config", err)
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		fatal("open database", err)
	}
	defer db.Close()

	svc := review.NewService(db, slog.Default())
	today := time.Now()

	switch {
	case *addSource != "":
		src, err := itemsource.AddSource(db, *addSource)
		if err != nil {
			fatal("add source", err)
		}
		fmt.Printf("Source %d registered (%s): %s\n", src.ID, src.Type, src.Path)

	case *doSync:
		if err := itemsource.SyncAll(db, cfg.ReposDir); err != nil {
			fatal("sync sources", err)
		}

	case *enroll:
		n, err := svc.Enroll(cfg.Learner)
		if err != nil {
			fatal("enroll learner", err)
		}
		fmt.Printf("Enrolled %s in %d new items.\n", cfg.Learner, n)

	case *reviewTerm != "":
		if *quality < 0 {
			fatal("submit review", fmt.Errorf("--review requires --quality 0..5"))
		}
		rec, err := svc.Submit(cfg.Learner, itemsource.Key(*reviewTerm), srs.Quality(*quality), today)
		if err != nil {
			fatal("submit review", err)
		}
		fmt.Printf("%q scored %d: next review %s (interval %d days, ease %.2f)\n",
			*reviewTerm, *quality,
			rec.NextReview.Format("2006-01-02"), rec.IntervalDays, rec.EaseFactor)

	case *listDue:
		printDue(svc, db, cfg.Learner, today, cfg.DueLimit)

	default:
		fmt.Fprintln(os.Stderr, "Usage of lingoreps:")
		flags.PrintDefaults()
		os.Exit(2)
	}
}

func printDue(svc *review.Service, db *storage.DB, learner string, asOf time.Time, limit int) {
	rows, err := svc.Due(learner, asOf, limit)
	if err != nil {
		fatal("list due items", err)
	}
	if len(rows) == 0 {
		fmt.Printf("Nothing due for %s.\n", learner)
		return
	}

	fmt.Printf("%d item(s) due for %s:\n", len(rows), learner)
	for _, row := range rows {
		term := row.ItemKey
		if item, err := db.FindItemByKey(row.ItemKey); err == nil && item != nil {
			term = item.Term
		}
		when := "never reviewed"
		if row.Record.NextReview != nil {
			when = "due " + row.Record.NextReview.Format("2006-01-02")
		}
		fmt.Printf("- %s (%s, %d reviews)\n", term, when, row.Record.ReviewCount)
	}
}

func fatal(action string, err error) {
	slog.Error(action, "error", err)
	os.Exit(1)
}
