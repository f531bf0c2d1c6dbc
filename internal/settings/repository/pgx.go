package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGRepository struct{ pg *pgxpool.Pool }

func New(pg *pgxpool.Pool) *PGRepository { return &PGRepository{pg: pg} }

func toPgUUIDPtr(u *uuid.UUID) pgtype.UUID {
	if u == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *u, Valid: true}
}

const (
	getOrgSetting    = `SELECT value FROM app_settings WHERE key = $1 AND org_id = $2`
	getGlobalSetting = `SELECT value FROM app_settings WHERE key = $1 AND org_id IS NULL`
	upsertSetting    = `
INSERT INTO app_settings (id, org_id, key, value, is_secret)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (key, COALESCE(org_id, '00000000-0000-0000-0000-000000000000'::uuid))
DO UPDATE SET value = EXCLUDED.value, is_secret = EXCLUDED.is_secret, updated_at = now()`
)

func (r *PGRepository) Get(ctx context.Context, key string, orgID *uuid.UUID) (string, bool, error) {
	var v string
	if orgID != nil {
		err := r.pg.QueryRow(ctx, getOrgSetting, key, toPgUUIDPtr(orgID)).Scan(&v)
		if err == nil {
			return v, true, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return "", false, err
		}
	}
	err := r.pg.QueryRow(ctx, getGlobalSetting, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *PGRepository) Upsert(ctx context.Context, key string, orgID *uuid.UUID, value string, secret bool) error {
	_, err := r.pg.Exec(ctx, upsertSetting, uuid.New(), toPgUUIDPtr(orgID), key, value, secret)
	return err
}
