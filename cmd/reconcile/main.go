package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/luandatrans/backoffice/internal/domain"
	"github.com/luandatrans/backoffice/internal/logger"
	"github.com/luandatrans/backoffice/internal/reconcile"
)

// fileReportSource serves operational day records from a local JSON export
// instead of BigQuery, so verifications can be re-run offline.
type fileReportSource struct {
	records []domain.OperationalDayRecord
}

func (s *fileReportSource) OperationalReports(ctx context.Context, start, end time.Time) ([]domain.OperationalDayRecord, error) {
	var out []domain.OperationalDayRecord
	for _, r := range s.records {
		if r.ReportDate.Before(start) || r.ReportDate.After(end) {
			continue
		}
		if r.Status != domain.ReportStatusOperational {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func main() {
	var (
		bankName    = flag.String("bank", "", "Bank name: \"Caixa Angola\" or \"BAI\"")
		startStr    = flag.String("start", "", "Range start date (YYYY-MM-DD)")
		endStr      = flag.String("end", "", "Range end date (YYYY-MM-DD)")
		reportsPath = flag.String("reports", "", "Path to JSON export of daily reports")
		cashPath    = flag.String("account002", "", "Path to Account 002 (cash) statement export")
		tpaPath     = flag.String("account001", "", "Path to Account 001 (TPA) statement export")
		tolerance   = flag.Float64("tolerance", reconcile.DefaultTolerance, "Match tolerance in Kz")
		agaseke     = flag.String("agaseke-plates", "", "Comma-separated Agaseke vehicle plates")
	)
	flag.Parse()

	log := logger.New()

	if *bankName == "" || *startStr == "" || *endStr == "" || *reportsPath == "" || *cashPath == "" || *tpaPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: reconcile -bank NAME -start DATE -end DATE -reports FILE -account002 FILE -account001 FILE")
		flag.PrintDefaults()
		os.Exit(1)
	}

	bank, err := domain.ParseBankAccount(*bankName)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid bank")
	}

	start, err := time.Parse("2006-01-02", *startStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid start date")
	}
	end, err := time.Parse("2006-01-02", *endStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid end date")
	}

	reportsData, err := os.ReadFile(*reportsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read reports file")
	}
	var records []domain.OperationalDayRecord
	if err := json.Unmarshal(reportsData, &records); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse reports file")
	}

	cashCSV, err := os.ReadFile(*cashPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read account 002 statement")
	}
	tpaCSV, err := os.ReadFile(*tpaPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read account 001 statement")
	}

	var plates []string
	if *agaseke != "" {
		for _, p := range strings.Split(*agaseke, ",") {
			plates = append(plates, strings.TrimSpace(p))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	service := reconcile.NewService(
		&fileReportSource{records: records},
		reconcile.NewRevenueAggregator(plates),
		*tolerance,
		log,
	)

	result, err := service.Verify(ctx, reconcile.VerifyInput{
		Bank:          bank,
		Start:         start,
		End:           end,
		Account002CSV: string(cashCSV),
		Account001CSV: string(tpaCSV),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Verification failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode result")
	}
}
