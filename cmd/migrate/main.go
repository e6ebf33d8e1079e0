// cmd/migrate/main.go
package main

import (
	"github.com/joho/godotenv"

	"github.com/leadmasterhq/leadmaster-backend/internal/config"
	"github.com/leadmasterhq/leadmaster-backend/internal/db"
	"github.com/leadmasterhq/leadmaster-backend/internal/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS leads (
    email       TEXT PRIMARY KEY,
    name        TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL DEFAULT 'PENDING',
    attempts    INT  NOT NULL DEFAULT 0,
    last_error  TEXT,
    claimed_by  TEXT,
    claimed_at  TIMESTAMPTZ,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_leads_claimable
    ON leads (updated_at)
    WHERE status IN ('PENDING', 'ERROR');

CREATE TABLE IF NOT EXISTS campaign_logs (
    id        SERIAL PRIMARY KEY,
    email     TEXT NOT NULL REFERENCES leads(email),
    action    TEXT NOT NULL,
    details   TEXT,
    timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_campaign_logs_email
    ON campaign_logs (email, timestamp DESC);

CREATE TABLE IF NOT EXISTS campaigns (
    id            UUID PRIMARY KEY,
    subject       TEXT NOT NULL,
    category      TEXT NOT NULL DEFAULT '',
    html_template TEXT NOT NULL,
    analysis_note TEXT,
    total_sent    INT NOT NULL DEFAULT 0,
    delivered     INT NOT NULL DEFAULT 0,
    failed        INT NOT NULL DEFAULT 0,
    unique_opens  INT NOT NULL DEFAULT 0,
    total_opens   INT NOT NULL DEFAULT 0,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS campaign_recipients (
    id           UUID PRIMARY KEY,
    campaign_id  UUID NOT NULL REFERENCES campaigns(id),
    position     INT  NOT NULL,
    email        TEXT NOT NULL,
    status       TEXT NOT NULL DEFAULT 'SENT',
    open_count   INT  NOT NULL DEFAULT 0,
    last_open_at TIMESTAMPTZ,
    UNIQUE (campaign_id, email)
);

CREATE INDEX IF NOT EXISTS idx_campaign_recipients_campaign
    ON campaign_recipients (campaign_id, position);
`

func main() {
	if err := godotenv.Load(); err != nil {
		// OS environment variables may carry everything.
	}

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat).WithComponent("migrate")

	if err := cfg.ValidateDB(); err != nil {
		log.Fatal().Err(err).Msg("configuration invalid")
	}

	database, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("database unreachable")
	}
	defer database.Close()

	if _, err := database.Exec(schema); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	log.Info().Str("database", cfg.DB.Name).Msg("schema applied")
}
