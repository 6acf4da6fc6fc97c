package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/titorm/shop-wise-sub000/internal/app"
	"github.com/titorm/shop-wise-sub000/internal/config"
	"github.com/titorm/shop-wise-sub000/internal/domain"
	"github.com/titorm/shop-wise-sub000/internal/extraction"
	"github.com/titorm/shop-wise-sub000/internal/logger"
	"github.com/titorm/shop-wise-sub000/internal/pipeline"
	"github.com/titorm/shop-wise-sub000/internal/purchase"
	"github.com/titorm/shop-wise-sub000/internal/storage"
	"github.com/titorm/shop-wise-sub000/internal/suggest"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "extract":
		runExtract(log)
	case "upload":
		runUpload(log)
	case "suggest":
		runSuggest(log)
	case "reconcile":
		runReconcile(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("ShopWise CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  extract    Extract and unify the products of a receipt, optionally saving the purchase")
	fmt.Println("  upload     Upload a receipt file to GCS")
	fmt.Println("  suggest    Ask for shopping-list suggestions")
	fmt.Println("  reconcile  Apply an edited item set (JSON file) to a saved purchase")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func setup(log zerolog.Logger, timeout time.Duration) (context.Context, context.CancelFunc, *app.App) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log = log.Level(logger.NewWithLevel(cfg.LogLevel).GetLevel())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = logger.WithContext(ctx, log)

	services, err := app.New(ctx, cfg, log)
	if err != nil {
		cancel()
		log.Fatal().Err(err).Msg("Failed to wire services")
	}
	return ctx, func() {
		services.Close()
		cancel()
	}, services
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
	}
}

func runExtract(log zerolog.Logger) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	channel := fs.String("channel", "pdf_document", "Extraction channel: "+strings.Join(channelNames(), ", "))
	file := fs.String("file", "", "Local receipt file (PDF or image)")
	receiptURL := fs.String("url", "", "Receipt URL (url channel)")
	gcsURI := fs.String("gcs-uri", "", "Receipt already stored in GCS")
	household := fs.String("household", "", "Household ID")
	save := fs.Bool("save", false, "Save the unified items as a new purchase of -household")
	allowUnlinked := fs.Bool("allow-unlinked", false, "Save items without a catalog link when the catalog fails")
	fs.Parse(os.Args[2:])

	c, err := extraction.ParseChannel(*channel)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid channel")
	}
	if *save && *household == "" {
		log.Fatal().Msg("Error: -save requires -household")
	}

	req := pipeline.ImportRequest{HouseholdID: *household, Channel: c, GCSURI: *gcsURI}
	switch {
	case *file != "":
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read receipt file")
		}
		req.Document = extraction.Document{MIMEType: storage.ContentTypeFor(*file), Data: data}
	case *receiptURL != "":
		req.Document = extraction.Document{URL: *receiptURL}
	case *gcsURI == "":
		log.Fatal().Msg("Usage: cli extract -channel C (-file PATH | -url URL | -gcs-uri URI)")
	}

	ctx, done, services := setup(log, 5*time.Minute)
	defer done()

	if services.Importer == nil {
		log.Fatal().Msg("Extraction is not configured: set GEMINI_API_KEY or GCP_PROJECT")
	}

	draft, err := services.Importer.Import(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}

	if !*save {
		printJSON(draft)
		return
	}

	header := domain.Purchase{Date: civil.DateOf(time.Now())}
	if draft.Store != nil {
		header.Store = draft.Store
		header.StoreName = draft.Store.Name
	}
	if draft.Date != nil {
		header.Date = *draft.Date
	}

	items := make([]purchase.EditedItem, len(draft.Items))
	for i, line := range draft.Items {
		items[i] = purchase.EditedItem{ID: domain.NewItem(fmt.Sprintf("line-%d", i+1)), Line: line}
	}

	res, err := services.Purchases.Create(ctx, *household, header, items, purchase.Options{AllowUnlinked: *allowUnlinked})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to save purchase")
	}
	printJSON(map[string]interface{}{
		"purchaseId":  res.PurchaseID,
		"assigned":    res.Assigned,
		"totalAmount": res.Plan.TotalAmount,
	})
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to local receipt file")
	household := fs.String("household", "", "Household ID used in the object path")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -file PATH [-household ID]")
	}

	ctx, done, services := setup(log, 5*time.Minute)
	defer done()

	if services.Storage == nil {
		log.Fatal().Msg("Uploads are disabled: set GCS_BUCKET")
	}

	objectName := storage.ObjectName(*household, filepath.Base(*filePath), time.Now())
	log.Info().Str("object", objectName).Str("file", *filePath).Msg("Uploading receipt to GCS")

	gcsURI, err := services.Storage.UploadFile(ctx, objectName, *filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, gcsURI)
}

func runSuggest(log zerolog.Logger) {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	history := fs.String("history", "", "Purchase history summary")
	adults := fs.Int("adults", 1, "Number of adults")
	children := fs.Int("children", 0, "Number of children")
	existing := fs.String("existing", "", "Comma-separated items already on the list")
	fs.Parse(os.Args[2:])

	ctx, done, services := setup(log, time.Minute)
	defer done()

	if services.Suggester == nil {
		log.Fatal().Msg("Suggestions are not configured: set GEMINI_API_KEY or GCP_PROJECT")
	}

	items, err := suggest.Intake(ctx, services.Suggester, *history, suggest.FamilySize{Adults: *adults, Children: *children})
	if err != nil {
		log.Warn().Err(err).Msg("No suggestions available")
		items = nil
	}
	if *existing != "" {
		items = suggest.MergeNew(strings.Split(*existing, ","), items)
	}

	for _, item := range items {
		fmt.Println(item)
	}
}

func runReconcile(log zerolog.Logger) {
	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)
	household := fs.String("household", "", "Household ID")
	purchaseID := fs.String("purchase", "", "Purchase ID")
	file := fs.String("file", "", "JSON file with the edited item list")
	allowUnlinked := fs.Bool("allow-unlinked", false, "Save items without a catalog link when the catalog fails")
	fs.Parse(os.Args[2:])

	if *household == "" || *purchaseID == "" || *file == "" {
		log.Fatal().Msg("Usage: cli reconcile -household ID -purchase ID -file edited.json")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read edited items")
	}
	var edited []purchase.EditedItem
	if err := json.Unmarshal(data, &edited); err != nil {
		log.Fatal().Err(err).Msg("Invalid edited items JSON")
	}

	ctx, done, services := setup(log, 2*time.Minute)
	defer done()

	res, err := services.Purchases.Reconcile(ctx, *household, *purchaseID, edited, purchase.Options{AllowUnlinked: *allowUnlinked})
	if err != nil {
		log.Fatal().Err(err).Msg("Reconcile failed")
	}

	printJSON(map[string]interface{}{
		"purchaseId":  res.PurchaseID,
		"assigned":    res.Assigned,
		"inserted":    len(res.Plan.Inserts),
		"updated":     len(res.Plan.Updates),
		"deleted":     len(res.Plan.Deletes),
		"totalAmount": res.Plan.TotalAmount,
	})
}

func channelNames() []string {
	names := make([]string, len(extraction.Channels))
	for i, c := range extraction.Channels {
		names[i] = string(c)
	}
	return names
}
