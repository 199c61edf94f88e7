// scanctl submits medical scan images to the NeuroScan inference
// service and inspects results, local history and the classification
// catalog.
//
// Usage:
//
//	scanctl submit [flags] <image> [extra images are ignored]
//	scanctl result <scan-id>
//	scanctl history
//	scanctl classifications
package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/neuroscan/scanclient/internal/catalog"
	"github.com/neuroscan/scanclient/internal/config"
	"github.com/neuroscan/scanclient/internal/history"
	"github.com/neuroscan/scanclient/internal/models"
	"github.com/neuroscan/scanclient/internal/scan"
	"github.com/neuroscan/scanclient/internal/transfer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	command := os.Args[1]
	flags := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := flags.String("config", defaultConfigPath(), "Path to the client config file")
	patientID := flags.String("patient-id", "", "Optional patient identifier")
	patientAge := flags.Int("patient-age", 0, "Optional patient age")
	patientGender := flags.String("patient-gender", "", "Optional patient gender (male, female, other)")
	patientNotes := flags.String("patient-notes", "", "Optional clinical notes")
	flags.Parse(os.Args[2:])

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	logger := log.WithField("component", "scanctl")

	client := transfer.New(
		cfg.Service.Origin,
		transfer.WithTimeout(time.Duration(cfg.Service.TimeoutSeconds)*time.Second),
		transfer.WithMiddleware(transfer.RequestLogging(logger)),
	)

	store, err := openHistory(cfg)
	if err != nil {
		log.Fatalf("opening history store: %v", err)
	}

	controller := scan.NewController(client, store, logger, scan.WithProgress(func(percent int) {
		logger.Debugf("upload progress: %d%%", percent)
	}))

	ctx := context.Background()

	switch command {
	case "submit":
		runSubmit(ctx, controller, flags.Args(), patientInfo(*patientID, *patientAge, *patientGender, *patientNotes))
	case "result":
		runResult(ctx, controller, flags.Args())
	case "history":
		runHistory(controller)
	case "classifications":
		cat := catalog.New(client, cfg.Catalog.CachePath, time.Duration(cfg.Catalog.TTLMinutes)*time.Minute, logger)
		runClassifications(ctx, cat)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: scanctl <submit|result|history|classifications> [flags] [args]")
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "neuroscan.yaml"
	}
	return filepath.Join(home, ".neuroscan", "config.yaml")
}

func patientInfo(id string, age int, gender, notes string) *models.PatientInfo {
	if id == "" && age == 0 && gender == "" && notes == "" {
		return nil
	}
	return &models.PatientInfo{ID: id, Age: age, Gender: gender, Notes: notes}
}

func openHistory(cfg *config.AppConfig) (history.Store, error) {
	switch cfg.History.Backend {
	case "duckdb":
		return history.NewDuckStore(cfg.History.Path)
	default:
		return history.NewFileStore(cfg.History.Path)
	}
}

func runSubmit(ctx context.Context, controller *scan.Controller, args []string, patient *models.PatientInfo) {
	if len(args) == 0 {
		log.Fatal("submit requires an image path")
	}
	// One file per submission; extras from a multi-file pick are
	// ignored, not an error.
	if len(args) > 1 {
		log.Warnf("only one scan per submission, ignoring %d extra file(s)", len(args)-1)
	}
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("opening scan image: %v", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		log.Fatalf("reading scan image: %v", err)
	}

	sub := models.ScanSubmission{
		File:      f,
		Filename:  filepath.Base(path),
		MIMEType:  mime.TypeByExtension(filepath.Ext(path)),
		SizeBytes: stat.Size(),
		Patient:   patient,
	}

	for transition := range controller.Submit(ctx, sub) {
		switch transition.State {
		case scan.StateFailed:
			log.Fatalf("submission failed (%s): %v", transition.Failure.Class, transition.Failure.Err)
		case scan.StateSucceeded:
			printResult(transition.Result)
		default:
			fmt.Printf("-> %s\n", transition.State)
		}
	}
}

func runResult(ctx context.Context, controller *scan.Controller, args []string) {
	if len(args) == 0 {
		log.Fatal("result requires a scan id")
	}
	result, err := controller.FetchResult(ctx, args[0])
	if err != nil {
		log.Fatalf("fetching result: %v", err)
	}
	printResult(result)
}

func runHistory(controller *scan.Controller) {
	entries := controller.History()
	if len(entries) == 0 {
		fmt.Println("no scans in local history")
		return
	}
	for _, e := range entries {
		fmt.Printf("%s  %-12s  %5.1f%%  %s\n", e.Timestamp, e.Classification, e.Confidence*100, e.ID)
	}
}

func runClassifications(ctx context.Context, cat *catalog.Catalog) {
	classifications, err := cat.Get(ctx)
	if err != nil {
		log.Fatalf("fetching classifications: %v", err)
	}
	for _, c := range classifications {
		fmt.Printf("%-12s %s: %s\n", c.ID, c.Name, c.Description)
	}
}

func printResult(result *models.ScanResult) {
	fmt.Printf("scan:           %s\n", result.ID)
	fmt.Printf("timestamp:      %s\n", result.Timestamp)
	fmt.Printf("image:          %s\n", result.ImageURL)
	fmt.Printf("classification: %s (%.1f%% confidence)\n",
		result.Prediction.Classification, result.Prediction.Confidence*100)
	for label, p := range result.Prediction.Probabilities {
		fmt.Printf("  %-12s %.4f\n", label, p)
	}
	if result.PatientInfo != nil && result.PatientInfo.ID != "" {
		fmt.Printf("patient:        %s\n", result.PatientInfo.ID)
	}
}
