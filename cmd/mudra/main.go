package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/ayusman/mudra/internal/classifier"
	"github.com/ayusman/mudra/internal/landmark"
	"github.com/ayusman/mudra/internal/recognizer"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/training"
)

func main() {
	fmt.Println("Mudra - Hand Gesture Recognition")

	// Optional env overrides; a missing .env is fine.
	_ = godotenv.Load()

	dbPath := os.Getenv("MUDRA_DB")
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}

		dataDir := filepath.Join(homeDir, ".mudra")
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
		dbPath = filepath.Join(dataDir, "mudra.db")
	}

	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	trainer := training.NewTrainer(st, classifier.NearestCentroid{})

	// Restore the latest model, training a baseline over the built-in
	// taxonomy on first run.
	modelRec, err := st.Models().Latest()
	if errors.Is(err, store.ErrNotFound) {
		model, terr := trainer.Train(nil, training.DefaultOptions())
		if terr != nil {
			log.Fatalf("Failed to train baseline model: %v", terr)
		}
		modelRec, err = st.Models().GetByID(model.ModelID())
	}
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}

	model, err := classifier.LoadArtifact(modelRec.Artifact)
	if err != nil {
		log.Fatalf("Failed to restore model %s: %v", modelRec.ID, err)
	}

	cls := classifier.New(classifier.DefaultConfig())
	if err := cls.Activate(model); err != nil {
		log.Fatalf("Failed to activate model: %v", err)
	}
	log.Printf("Active model %s v%d (%d labels)", model.ModelID(), model.Version(), len(model.LabelSet()))

	recog := recognizer.New(recognizer.Config{
		Classifier: cls,
		Recorder:   training.NewRecorder(st),
	})

	// Run the canonical poses through the live path once as a smoke check.
	for _, name := range classifier.Builtins() {
		pose, ok := landmark.BuiltinPose(name)
		if !ok {
			continue
		}

		frame, err := recog.Process(landmark.RawObservation{
			Landmarks:  pose.Points[:],
			Handedness: string(pose.Handedness),
			Score:      pose.Score,
			Box:        &pose.Box,
		})
		if err != nil {
			log.Printf("Failed to classify %s pose: %v", name, err)
			continue
		}
		fmt.Printf("%-12s -> %s (confidence %.3f, %.2fms)\n",
			name, frame.Label, frame.Confidence, frame.LatencyMS)
	}

	stats := recog.Stats()
	fmt.Printf("Latency: %d frames, avg %.2fms, median %.2fms, target-met %.0f%%\n",
		stats.Count, stats.Average, stats.Median, stats.TargetMetRatio*100)
}
