package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"sol-volume-bot/internal/interfaces"
	"sol-volume-bot/internal/types"
)

// PostgresStore persists projects in a single flat table keyed by
// (owner_id, token_mint). Wallets and custom settings are JSONB columns;
// the record is flat enough that relational modelling buys nothing.
type PostgresStore struct {
	db *sqlx.DB
}

var _ interfaces.ProjectStore = (*PostgresStore)(nil)

const projectsSchema = `
CREATE TABLE IF NOT EXISTS projects (
	owner_id        BIGINT      NOT NULL,
	token_mint      TEXT        NOT NULL,
	token_name      TEXT        NOT NULL DEFAULT '',
	status          TEXT        NOT NULL DEFAULT '',
	onboarded_at    TEXT        NOT NULL DEFAULT '',
	project_wallet  JSONB,
	worker_wallets  JSONB       NOT NULL DEFAULT '[]',
	custom_settings JSONB       NOT NULL DEFAULT '{}',
	PRIMARY KEY (owner_id, token_mint)
)`

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := db.Exec(projectsSchema); err != nil {
		return nil, fmt.Errorf("ensure projects table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

type projectRow struct {
	OwnerID        int64  `db:"owner_id"`
	TokenMint      string `db:"token_mint"`
	TokenName      string `db:"token_name"`
	Status         string `db:"status"`
	OnboardedAt    string `db:"onboarded_at"`
	ProjectWallet  []byte `db:"project_wallet"`
	WorkerWallets  []byte `db:"worker_wallets"`
	CustomSettings []byte `db:"custom_settings"`
}

func (s *PostgresStore) Get(ctx context.Context, ownerID int64, tokenMint string) (*types.Project, error) {
	var row projectRow
	err := s.db.GetContext(ctx, &row,
		`SELECT owner_id, token_mint, token_name, status, onboarded_at,
		        project_wallet, worker_wallets, custom_settings
		   FROM projects WHERE owner_id = $1 AND token_mint = $2`,
		ownerID, tokenMint)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return row.toProject()
}

func (s *PostgresStore) Upsert(ctx context.Context, p *types.Project) error {
	row, err := toRow(p)
	if err != nil {
		return err
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO projects (owner_id, token_mint, token_name, status, onboarded_at,
		                      project_wallet, worker_wallets, custom_settings)
		VALUES (:owner_id, :token_mint, :token_name, :status, :onboarded_at,
		        :project_wallet, :worker_wallets, :custom_settings)
		ON CONFLICT (owner_id, token_mint) DO UPDATE SET
			token_name      = EXCLUDED.token_name,
			status          = EXCLUDED.status,
			onboarded_at    = EXCLUDED.onboarded_at,
			project_wallet  = EXCLUDED.project_wallet,
			worker_wallets  = EXCLUDED.worker_wallets,
			custom_settings = EXCLUDED.custom_settings`,
		row)
	if err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID int64) ([]types.Project, error) {
	var rows []projectRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT owner_id, token_mint, token_name, status, onboarded_at,
		        project_wallet, worker_wallets, custom_settings
		   FROM projects WHERE owner_id = $1 ORDER BY token_mint`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	out := make([]types.Project, 0, len(rows))
	for _, r := range rows {
		p, err := r.toProject()
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func toRow(p *types.Project) (*projectRow, error) {
	workers, err := json.Marshal(p.WorkerWallets)
	if err != nil {
		return nil, fmt.Errorf("marshal worker wallets: %w", err)
	}
	settings, err := json.Marshal(p.CustomSettings)
	if err != nil {
		return nil, fmt.Errorf("marshal custom settings: %w", err)
	}
	row := &projectRow{
		OwnerID:        p.OwnerID,
		TokenMint:      p.TokenMint,
		TokenName:      p.TokenName,
		Status:         p.Status,
		OnboardedAt:    p.OnboardedAt,
		WorkerWallets:  workers,
		CustomSettings: settings,
	}
	if p.ProjectWallet != nil {
		pw, err := json.Marshal(p.ProjectWallet)
		if err != nil {
			return nil, fmt.Errorf("marshal project wallet: %w", err)
		}
		row.ProjectWallet = pw
	}
	return row, nil
}

func (r *projectRow) toProject() (*types.Project, error) {
	p := &types.Project{
		OwnerID:     r.OwnerID,
		TokenMint:   r.TokenMint,
		TokenName:   r.TokenName,
		Status:      r.Status,
		OnboardedAt: r.OnboardedAt,
	}
	if len(r.ProjectWallet) > 0 {
		var w types.Wallet
		if err := json.Unmarshal(r.ProjectWallet, &w); err != nil {
			return nil, fmt.Errorf("unmarshal project wallet: %w", err)
		}
		p.ProjectWallet = &w
	}
	if len(r.WorkerWallets) > 0 {
		if err := json.Unmarshal(r.WorkerWallets, &p.WorkerWallets); err != nil {
			return nil, fmt.Errorf("unmarshal worker wallets: %w", err)
		}
	}
	if len(r.CustomSettings) > 0 {
		if err := json.Unmarshal(r.CustomSettings, &p.CustomSettings); err != nil {
			return nil, fmt.Errorf("unmarshal custom settings: %w", err)
		}
	}
	return p, nil
}
