// cmd/seeder/main.go
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"os"

	"github.com/joho/godotenv"

	"github.com/leadmasterhq/leadmaster-backend/internal/config"
	"github.com/leadmasterhq/leadmaster-backend/internal/db"
	"github.com/leadmasterhq/leadmaster-backend/internal/logger"
	"github.com/leadmasterhq/leadmaster-backend/internal/repository"
	"github.com/leadmasterhq/leadmaster-backend/internal/service"
	"github.com/leadmasterhq/leadmaster-backend/internal/validation"
)

// Seeds the delivery queue from a CSV of "email,name" rows. Addresses go
// through the same MX admission as the API, so a bad list never pollutes
// the queue.
func main() {
	var (
		file   = flag.String("file", "seed/leads.csv", "CSV file with email,name rows")
		skipMX = flag.Bool("skip-mx", false, "enqueue without MX validation")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		// OS environment variables may carry everything.
	}

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat).WithComponent("seeder")

	if err := cfg.ValidateDB(); err != nil {
		log.Fatal().Err(err).Msg("configuration invalid")
	}

	database, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("database unreachable")
	}
	defer database.Close()

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("cannot open seed file")
	}
	defer f.Close()

	candidates, err := readCandidates(f)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("cannot parse seed file")
	}

	leadRepo := &repository.LeadRepository{DB: database}
	ctx := context.Background()

	if *skipMX {
		enqueued := 0
		for _, c := range candidates {
			inserted, err := leadRepo.Enqueue(ctx, c.Email, c.Name)
			if err != nil {
				log.Error().Err(err).Str("email", c.Email).Msg("enqueue failed")
				continue
			}
			if inserted {
				enqueued++
			}
		}
		log.Info().Int("candidates", len(candidates)).Int("enqueued", enqueued).Msg("seeding done")
		return
	}

	leads := &service.LeadService{LeadRepo: leadRepo, Validator: validation.New()}
	results, err := leads.AdmitBatch(ctx, candidates)
	if err != nil {
		log.Fatal().Err(err).Msg("admission failed")
	}

	enqueued, invalid := 0, 0
	for _, r := range results {
		if !r.IsValid {
			invalid++
			log.Warn().Str("email", r.Email).Msg("rejected by MX validation")
			continue
		}
		if r.Enqueued {
			enqueued++
		}
	}
	log.Info().
		Int("candidates", len(candidates)).
		Int("enqueued", enqueued).
		Int("invalid", invalid).
		Msg("seeding done")
}

func readCandidates(r io.Reader) ([]service.CampaignRecipient, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var out []service.CampaignRecipient
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 0 || record[0] == "" || record[0] == "email" {
			continue
		}
		c := service.CampaignRecipient{Email: record[0]}
		if len(record) > 1 {
			c.Name = record[1]
		}
		out = append(out, c)
	}
}
