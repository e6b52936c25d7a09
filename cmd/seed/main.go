// Command seed loads a handful of demo training sessions so the pipeline
// can be exercised locally without a real capture front-end.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"training-enrichment/internal/config"
	"training-enrichment/internal/domain/model"
	pg "training-enrichment/internal/infra/db/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 2)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	repo := pg.NewTrainingSessionRepo(pool)
	for _, s := range demoSessions() {
		if err := repo.Save(ctx, nil, s); err != nil {
			log.Fatalf("save %s: %v", s.ID, err)
		}
		fmt.Printf("seeded session %s (%s, %s)\n", s.ID, s.CoachType, s.EnrichmentStatus)
	}
}

func demoSessions() []*model.TrainingSession {
	force := model.NewTrainingSession("seed-force-1", "seed-user", model.CoachForce, "Lower body strength", model.SessionFast)
	force.Exercises = []model.Exercise{
		{Name: "Back Squat", Sets: 5, Reps: "5", Load: "80%", RestSec: 180},
		{Name: "Romanian Deadlift", Sets: 3, Reps: "8", Load: "65%", RestSec: 120},
	}

	endurance := model.NewTrainingSession("seed-endurance-1", "seed-user", model.CoachEndurance, "Threshold intervals", model.SessionFast)
	endurance.Exercises = []model.Exercise{
		{Name: "Run 4x8min @ threshold", Sets: 4, Reps: "8min", RestSec: 120},
	}

	calis := model.NewTrainingSession("seed-calisthenics-1", "seed-user", model.CoachCalisthenics, "Pull session", model.SessionFast)
	calis.Exercises = []model.Exercise{
		{Name: "Weighted Pull-up", Sets: 5, Reps: "5", Load: "+10kg", RestSec: 150},
		{Name: "Ring Dip", Sets: 4, Reps: "8", RestSec: 120},
	}

	// Already fully enriched at capture time, never queued.
	full := model.NewTrainingSession("seed-full-1", "seed-user", model.CoachFunctional, "Mixed conditioning", model.SessionFull)
	full.Exercises = []model.Exercise{
		{Name: "Wall Ball", Sets: 3, Reps: "20", RestSec: 60},
	}

	return []*model.TrainingSession{force, endurance, calis, full}
}
