package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"ledgerly-backend/internal/billing"
	"ledgerly-backend/internal/cache"
	"ledgerly-backend/internal/models"
	"ledgerly-backend/internal/repositories"
)

var ErrInvalidTaxRate = errors.New("default tax rate must be between 0 and 100")

type SettingsService struct {
	Repo *repositories.SettingsRepository
}

func NewSettingsService(repo *repositories.SettingsRepository) *SettingsService {
	return &SettingsService{Repo: repo}
}

// Get returns the user's settings, creating the default row on first
// access
func (s *SettingsService) Get(ctx context.Context, userID int) (*models.InvoiceSettings, error) {
	if data, ok := cache.GetCachedSettings(ctx, userID); ok {
		var settings models.InvoiceSettings
		if err := json.Unmarshal(data, &settings); err == nil {
			return &settings, nil
		}
	}

	settings, err := s.Repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(settings); err == nil {
		cache.CacheSettings(ctx, userID, data)
	}
	return settings, nil
}

func (s *SettingsService) Update(ctx context.Context, userID int, req *models.UpdateSettingsRequest) (*models.InvoiceSettings, error) {
	if req.DefaultTaxRate < 0 || req.DefaultTaxRate > 100 {
		return nil, ErrInvalidTaxRate
	}
	req.InvoicePrefix = strings.TrimSpace(req.InvoicePrefix)
	if req.InvoicePrefix == "" {
		req.InvoicePrefix = "INV"
	}
	req.DefaultCurrency = strings.ToUpper(strings.TrimSpace(req.DefaultCurrency))
	if len(req.DefaultCurrency) != 3 {
		req.DefaultCurrency = "USD"
	}

	// Row must exist before the update
	if _, err := s.Repo.Get(ctx, userID); err != nil {
		return nil, err
	}

	settings, err := s.Repo.Update(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	cache.InvalidateSettings(ctx, userID)
	return settings, nil
}

// NextInvoiceNumber claims the next number in the user's sequence and
// returns it formatted
func (s *SettingsService) NextInvoiceNumber(ctx context.Context, userID int) (string, error) {
	prefix, seq, err := s.Repo.NextInvoiceNumber(ctx, userID)
	if err != nil {
		return "", err
	}
	cache.InvalidateSettings(ctx, userID)
	return billing.FormatInvoiceNumber(prefix, seq), nil
}
