package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/luandatrans/backoffice/internal/invoice"
	"github.com/luandatrans/backoffice/internal/logger"
	"github.com/luandatrans/backoffice/internal/ocr"
)

func main() {
	var (
		filePath = flag.String("file", "", "Path to a local invoice image or PDF")
		mimeType = flag.String("mime-type", "", "Content type (defaults from file extension)")
		model    = flag.String("model", ocr.DefaultModelName, "Vision model to use")
	)
	flag.Parse()

	log := logger.New()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: parse-invoice -file PATH [-mime-type TYPE] [-model NAME]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	blob, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read invoice file")
	}

	if *mimeType == "" {
		*mimeType = mime.TypeByExtension(filepath.Ext(*filePath))
		if *mimeType == "" {
			*mimeType = "application/pdf"
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().Str("file", *filePath).Str("mime_type", *mimeType).Msg("Extracting invoice")

	raw, err := ocr.NewClient(*model).ExtractInvoice(ctx, blob, *mimeType)
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}

	extraction, err := invoice.ParseExtraction(raw)
	if err != nil {
		var modelErr *invoice.ModelOutputError
		if errors.As(err, &modelErr) {
			log.Error().Str("raw_output", modelErr.Raw).Msg("Model returned unusable output")
		}
		log.Fatal().Err(err).Msg("Failed to parse model output")
	}

	mapper := invoice.NewLineItemMapper(invoice.NewCatalogMatcher(invoice.CandidateNames(nil)))
	items := mapper.MapAll(extraction)

	log.Info().Int("items", len(items)).Msg("Invoice mapped")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode items")
	}
}
