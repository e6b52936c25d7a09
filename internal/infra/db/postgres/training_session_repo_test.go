//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"training-enrichment/internal/domain"
	"training-enrichment/internal/domain/model"
)

func TestTrainingSessionRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewTrainingSessionRepo(testPool)

	newSession := func(id string) *model.TrainingSession {
		s := model.NewTrainingSession(id, "user-1", model.CoachForce, "Strength", model.SessionFast)
		s.Exercises = []model.Exercise{
			{Name: "Back Squat", Sets: 5, Reps: "5", Load: "85%", RestSec: 180},
			{Name: "Bench Press", Sets: 3, Reps: "8", Load: "70%", RestSec: 120},
		}
		return s
	}

	t.Run("should save and find a session", func(t *testing.T) {
		cleanup(t)
		s := newSession("s1")
		if err := repo.Save(ctx, nil, s); err != nil {
			t.Fatalf("save: %v", err)
		}

		got, err := repo.FindByID(ctx, nil, "s1")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got.CoachType != model.CoachForce || got.EnrichmentStatus != model.SessionFast {
			t.Errorf("session = %+v", got)
		}
		if len(got.Exercises) != 2 || got.Exercises[0].Name != "Back Squat" {
			t.Errorf("exercises = %+v", got.Exercises)
		}

		if _, err := repo.FindByID(ctx, nil, "ghost"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("should update on conflicting save", func(t *testing.T) {
		cleanup(t)
		s := newSession("s1")
		if err := repo.Save(ctx, nil, s); err != nil {
			t.Fatal(err)
		}
		s.Title = "Strength v2"
		if err := repo.Save(ctx, nil, s); err != nil {
			t.Fatalf("upsert: %v", err)
		}

		got, _ := repo.FindByID(ctx, nil, "s1")
		if got.Title != "Strength v2" {
			t.Errorf("title = %q", got.Title)
		}
	})

	t.Run("should read and update the status", func(t *testing.T) {
		cleanup(t)
		if err := repo.Save(ctx, nil, newSession("s1")); err != nil {
			t.Fatal(err)
		}

		status, err := repo.ReadStatus(ctx, "s1")
		if err != nil || status != model.SessionFast {
			t.Fatalf("status = %s, err = %v", status, err)
		}

		if err := repo.UpdateStatus(ctx, nil, "s1", model.SessionEnriching); err != nil {
			t.Fatalf("update status: %v", err)
		}
		status, _ = repo.ReadStatus(ctx, "s1")
		if status != model.SessionEnriching {
			t.Errorf("status = %s, want enriching", status)
		}

		if _, err := repo.ReadStatus(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := repo.UpdateStatus(ctx, nil, "ghost", model.SessionFast); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("should persist enriched content with the status flip", func(t *testing.T) {
		cleanup(t)
		s := newSession("s1")
		s.EnrichmentStatus = model.SessionEnriching
		if err := repo.Save(ctx, nil, s); err != nil {
			t.Fatal(err)
		}

		s.Exercises[0].CoachingCues = []string{"Controlled eccentric phase"}
		s.Analysis.VolumeAnalysis = &model.VolumeAnalysis{TotalVolume: 49}
		if err := repo.UpdateEnriched(ctx, nil, s); err != nil {
			t.Fatalf("update enriched: %v", err)
		}

		got, err := repo.FindByID(ctx, nil, "s1")
		if err != nil {
			t.Fatal(err)
		}
		if got.EnrichmentStatus != model.SessionEnriched {
			t.Errorf("status = %s, want enriched", got.EnrichmentStatus)
		}
		if len(got.Exercises[0].CoachingCues) != 1 {
			t.Errorf("cues = %+v", got.Exercises[0].CoachingCues)
		}
		if got.Analysis.VolumeAnalysis == nil || got.Analysis.VolumeAnalysis.TotalVolume != 49 {
			t.Errorf("analysis = %+v", got.Analysis)
		}

		ghost := newSession("ghost")
		if err := repo.UpdateEnriched(ctx, nil, ghost); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
