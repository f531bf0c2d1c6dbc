package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	sdomain "github.com/dillanmilo/railcore/internal/settings/domain"
)

type Service struct{ repo sdomain.Repository }

func New(repo sdomain.Repository) *Service { return &Service{repo: repo} }

var _ sdomain.Service = (*Service)(nil)

// lookup returns the trimmed stored value, or ok=false when it is absent or blank.
func (s *Service) lookup(ctx context.Context, key string, orgID *uuid.UUID) (string, bool, error) {
	v, ok, err := s.repo.Get(ctx, key, orgID)
	if err != nil || !ok {
		return "", false, err
	}
	v = strings.TrimSpace(v)
	return v, v != "", nil
}

func (s *Service) GetString(ctx context.Context, key string, orgID *uuid.UUID, def string) (string, error) {
	v, ok, err := s.lookup(ctx, key, orgID)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

func (s *Service) GetDuration(ctx context.Context, key string, orgID *uuid.UUID, def time.Duration) (time.Duration, error) {
	v, ok, err := s.lookup(ctx, key, orgID)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, nil
	}
	return d, nil
}

func (s *Service) GetInt(ctx context.Context, key string, orgID *uuid.UUID, def int) (int, error) {
	v, ok, err := s.lookup(ctx, key, orgID)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, nil
	}
	return n, nil
}
