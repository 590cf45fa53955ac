package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"debo-engineering/job-portal/internal/logger"
	"debo-engineering/job-portal/internal/repositories"
	"debo-engineering/job-portal/internal/services"
)

var reindexJobsCmd = &cobra.Command{
	Use:   "reindex-jobs",
	Short: "Re-embed every active job into the Qdrant index",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openDatabase()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		appLog := logger.NewStructured(cfg.Log.Level, cfg.Log.Format)

		index, closeIndex, err := services.NewJobIndexFromConfig(ctx,
			cfg.Gemini.APIKey,
			cfg.Gemini.EmbedModel,
			cfg.Qdrant.URL,
			cfg.Qdrant.APIKey,
			cfg.Qdrant.Collection,
			appLog,
		)
		if err != nil {
			return err
		}
		defer closeIndex()

		if !index.Enabled() {
			return fmt.Errorf("semantic index is disabled: set GEMINI_API_KEY")
		}
		if err := index.InitCollection(ctx); err != nil {
			return err
		}

		jobs, err := repositories.NewJobRepository(db).ListActive(ctx)
		if err != nil {
			return err
		}

		log.Printf("🚀 Reindexing %d active jobs...", len(jobs))

		failed := 0
		for i := range jobs {
			if err := index.IndexJob(ctx, &jobs[i]); err != nil {
				log.Printf("   ❌ %s (id %d): %v", jobs[i].Title, jobs[i].ID, err)
				failed++
				continue
			}
			if (i+1)%10 == 0 || i == len(jobs)-1 {
				log.Printf("   📊 Progress: %d/%d jobs", i+1, len(jobs))
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d jobs failed to index", failed, len(jobs))
		}

		fmt.Println(successStyle.Render(fmt.Sprintf("✅ Indexed %d jobs", len(jobs))))
		return nil
	},
}
