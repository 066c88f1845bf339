// FILE: tonic/example/main.go
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	tonic "github.com/nmichlo/tonic-config"
)

// TrainParams are the configurable parameters of train.
type TrainParams struct {
	Optimizer string        `toml:"optimizer"`
	LR        float64       `toml:"lr"`
	Epochs    int           `toml:"epochs"`
	Timeout   time.Duration `toml:"timeout"`
	Seed      int64         `toml:"seed"`
}

// LoaderParams are the configurable parameters of loader.
type LoaderParams struct {
	BatchSize int   `toml:"batch_size"`
	Shuffle   bool  `toml:"shuffle"`
	Seed      int64 `toml:"seed"`
}

func train(p TrainParams) (string, error) {
	return fmt.Sprintf("%s(lr=%g) for %d epochs, timeout %s, seed %d",
		p.Optimizer, p.LR, p.Epochs, p.Timeout, p.Seed), nil
}

func loader(p LoaderParams) (string, error) {
	return fmt.Sprintf("batches of %d (shuffle=%t, seed %d)", p.BatchSize, p.Shuffle, p.Seed), nil
}

const configFilePath = "train.toml"

func main() {
	// =========================================================================
	// PART 1: INITIAL SETUP
	// Write a configuration file for the program to read.
	// =========================================================================
	log.Println("---")
	log.Println("PART 1: Creating initial configuration file...")

	defer func() {
		log.Println("---")
		log.Println("Cleaning up...")
		os.Remove(configFilePath)
	}()

	initial := tonic.FlatConfig{
		"*.seed":        int64(42),
		"train.lr":      0.01,
		"train.epochs":  int64(5),
		"train.timeout": "30s",
	}
	if err := tonic.SaveFile(configFilePath, initial); err != nil {
		log.Fatalf("Failed during initial file creation: %v", err)
	}
	log.Printf("Initial configuration saved to %s.", configFilePath)

	// =========================================================================
	// PART 2: CONFIGURING WITH THE BUILDER
	// Setup registers the functions, the file replaces the configuration and
	// command-line overrides are merged last.
	// =========================================================================
	log.Println("---")
	log.Println("PART 2: Building the configuration...")

	var (
		trainFn  *tonic.TypedFunc[TrainParams, string]
		loaderFn *tonic.TypedFunc[LoaderParams, string]
	)
	setup := func(c *tonic.Config) error {
		var err error
		trainFn, err = tonic.RegisterFunc(c, train, TrainParams{Optimizer: "adam", LR: 0.001, Epochs: 1})
		if err != nil {
			return err
		}
		loaderFn, err = tonic.RegisterFunc(c, loader, LoaderParams{BatchSize: 32})
		return err
	}

	validator := func(c *tonic.Config) error {
		lr, ok := c.ToFlatConfig()["train.lr"].(float64)
		if ok && (lr <= 0 || lr > 1) {
			return fmt.Errorf("train.lr %g is outside (0, 1]", lr)
		}
		return nil
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Try: go run ./example --train.epochs 20 --loader.shuffle
	cfg, err := tonic.NewBuilder().
		WithStrict(true).
		WithLogger(logger).
		WithSetup(setup).
		WithFile(configFilePath).
		WithArgs(os.Args[1:]).
		WithValidator(validator).
		Build()
	if err != nil {
		log.Fatalf("Builder failed: %v", err)
	}
	log.Println("Builder finished successfully.")

	if err := cfg.Pretty(os.Stdout, tonic.PrettyOptions{Color: true}); err != nil {
		log.Fatalf("Pretty failed: %v", err)
	}

	// =========================================================================
	// PART 3: CALLING CONFIGURED FUNCTIONS
	// =========================================================================
	log.Println("---")
	log.Println("PART 3: Calling the configured functions...")

	run := func() {
		plan, err := trainFn.Call(nil)
		if err != nil {
			log.Fatalf("train failed: %v", err)
		}
		batches, err := loaderFn.Call(nil)
		if err != nil {
			log.Fatalf("loader failed: %v", err)
		}
		fmt.Println("   train: ", plan)
		fmt.Println("   loader:", batches)
	}
	run()

	if err := cfg.Update(tonic.FlatConfig{"train.optimizer": "sgd", "loader.seed": int64(7)}); err != nil {
		log.Fatalf("Update failed: %v", err)
	}
	log.Println("Updated train.optimizer and loader.seed.")
	run()

	for _, info := range cfg.Describe() {
		fmt.Printf("   %-20s %-8s %v\n", info.Key(), info.Provenance, info.Value)
	}
}
