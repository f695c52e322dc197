package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gatebank/internal/answers"
	"gatebank/internal/bank"
	"gatebank/internal/canon"
	"gatebank/internal/config"
	"gatebank/internal/domain"
	pgloader "gatebank/internal/infra/postgres"
	"gatebank/internal/pipeline"
	"gatebank/internal/scrape"
	"gatebank/internal/taxonomy"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewPipelineCmd groups the offline data stages.
func NewPipelineCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run the offline data pipeline",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Harvest, merge, normalise, validate, and audit the question bank",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPipeline(cmd.Context(), *configPath)
			},
		},
		&cobra.Command{
			Use:   "precompute",
			Short: "Regenerate the subtopic lookup file",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load(*configPath)
				if err != nil {
					return err
				}
				return pipeline.Precompute(lookupPath(cfg))
			},
		},
		&cobra.Command{
			Use:   "audit",
			Short: "Write the audit CSV reports for the stored bank",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load(*configPath)
				if err != nil {
					return err
				}
				return runAudit(cfg)
			},
		},
	)
	return cmd
}

func runPipeline(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	dataDir := cfg.Pipeline.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	statePath := filepath.Join(dataDir, pipeline.StateFileName)
	state, err := pipeline.LoadState(statePath)
	if err != nil {
		return err
	}

	sourcePath := filepath.Join(dataDir, "questions.json")
	existing, err := loadSourceFile(sourcePath)
	if err != nil {
		return err
	}

	if !state.Done("harvest") {
		client := scrape.NewClient()
		harvested, counts, err := pipeline.Harvest(ctx, client, cfg.Pipeline.BaseURL, sittings(cfg))
		if err != nil {
			return err
		}
		merged, report := pipeline.Merge(existing, harvested)
		existing = merged
		if err := writeSourceFile(sourcePath, merged); err != nil {
			return err
		}
		log.Printf("harvest: %d added, %d duplicates", report.Added, report.Duplicates)

		stageCounts := report.Counts()
		for tag, n := range counts {
			stageCounts["tag_"+tag] = n
		}
		state = state.Complete("harvest", stageCounts)
		if err := state.Save(statePath); err != nil {
			return err
		}
	}

	normalizer := canon.NewNormalizer(nil)
	canonical, normReport := pipeline.Normalise(existing, normalizer)
	log.Printf("normalise: %d questions, %d unknown subject", normReport.Total, normReport.UnknownSubject)
	state = state.Complete("normalise", normReport.Counts())
	if err := state.Save(statePath); err != nil {
		return err
	}

	store, err := answers.Load(answers.Paths{
		ByQuestionUID: cfg.Answers.ByQuestionUID,
		Master:        cfg.Answers.Master,
		ByExamUID:     cfg.Answers.ByExamUID,
		Unsupported:   cfg.Answers.Unsupported,
	})
	if err != nil {
		return err
	}
	recovered, backfillReport := pipeline.Backfill(canonical, store)
	if len(recovered) > 0 {
		if err := pipeline.WriteBackfilledRecords(filepath.Join(dataDir, "answers-backfilled.json"), recovered); err != nil {
			return err
		}
	}
	log.Printf("backfill: %d of %d missing answers recovered", backfillReport.Filled, backfillReport.Missing)
	state = state.Complete("backfill", backfillReport.Counts())
	if err := state.Save(statePath); err != nil {
		return err
	}

	validation, err := pipeline.Validate(canonical)
	state = state.Complete("validate", validation.Counts())
	if saveErr := state.Save(statePath); saveErr != nil {
		return saveErr
	}
	if err != nil {
		return err
	}

	if err := writeAuditReports(dataDir, canonical); err != nil {
		return err
	}
	state = state.Complete("audit", map[string]int{"questions": len(canonical)})
	if err := state.Save(statePath); err != nil {
		return err
	}

	if err := pipeline.Precompute(lookupPath(cfg)); err != nil {
		return err
	}
	state = state.Complete("precompute", nil)
	if err := state.Save(statePath); err != nil {
		return err
	}

	// Publish only a bank that passed validation.
	if cfg.Postgres.URL != "" && len(cfg.Bank.Sources) > 0 {
		if err := publishSource(ctx, cfg, cfg.Bank.Sources[0], existing); err != nil {
			return err
		}
		log.Printf("published %d questions as source %s", len(existing), cfg.Bank.Sources[0])
		state = state.Complete("publish", map[string]int{"questions": len(existing)})
		if err := state.Save(statePath); err != nil {
			return err
		}
	}
	return nil
}

func publishSource(ctx context.Context, cfg config.Config, name string, questions []domain.RawQuestion) error {
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	data, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	return pgloader.NewSourceLoader(pool).UpsertSource(ctx, name, data)
}

// sittings expands the configured year window into probe targets. Set
// numbers above what a year actually had simply find no tag.
func sittings(cfg config.Config) []canon.YearSet {
	from, to := cfg.Pipeline.YearFrom, cfg.Pipeline.YearTo
	if from == 0 {
		from = 1991
	}
	if to == 0 {
		to = time.Now().Year()
	}
	var out []canon.YearSet
	for year := from; year <= to; year++ {
		out = append(out, canon.YearSet{Year: year, Set: 0})
		out = append(out, canon.YearSet{Year: year, Set: 1})
		out = append(out, canon.YearSet{Year: year, Set: 2})
	}
	return out
}

func runAudit(cfg config.Config) error {
	dataDir := cfg.Pipeline.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	existing, err := loadSourceFile(filepath.Join(dataDir, "questions.json"))
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return fmt.Errorf("no stored bank to audit")
	}
	canonical, _ := pipeline.Normalise(existing, canon.NewNormalizer(nil))
	return writeAuditReports(dataDir, canonical)
}

func writeAuditReports(dataDir string, canonical []domain.CanonicalQuestion) error {
	auditDir := filepath.Join(dataDir, "audit")
	if err := os.MkdirAll(auditDir, 0o755); err != nil {
		return err
	}
	lookup := taxonomy.BuildLookup()

	reports := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{"counts_by_subject.csv", []string{"subject", "count"}, pipeline.CountsBySubject(canonical)},
		{"counts_by_yearset.csv", []string{"year_set", "count"}, pipeline.CountsByYearSet(canonical)},
		{"unknown_subject.csv", []string{"uid", "title", "tags"}, pipeline.UnknownSubjects(canonical)},
		{"subject_conflicts.csv", []string{"uid", "assigned", "candidates"}, pipeline.SubjectConflicts(canonical, lookup)},
		{"subtopic_leakage.csv", []string{"uid", "subject", "subtopic"}, pipeline.SubtopicLeakage(canonical)},
	}
	for _, report := range reports {
		if err := pipeline.WriteCSV(filepath.Join(auditDir, report.name), report.header, report.rows); err != nil {
			return err
		}
	}
	return nil
}

func lookupPath(cfg config.Config) string {
	if cfg.Pipeline.Lookup != "" {
		return cfg.Pipeline.Lookup
	}
	dataDir := cfg.Pipeline.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	return filepath.Join(dataDir, "subtopics.json")
}

func loadSourceFile(path string) ([]domain.RawQuestion, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return bank.DecodeSource(data)
}

func writeSourceFile(path string, questions []domain.RawQuestion) error {
	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
