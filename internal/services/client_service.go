package services

import (
	"context"
	"errors"
	"strings"

	"ledgerly-backend/internal/models"
	"ledgerly-backend/internal/repositories"
)

var ErrClientNameRequired = errors.New("client name is required")

type ClientService struct {
	Repo *repositories.ClientRepository
}

func NewClientService(repo *repositories.ClientRepository) *ClientService {
	return &ClientService{Repo: repo}
}

func (s *ClientService) Create(ctx context.Context, userID int, req *models.ClientRequest) (*models.Client, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrClientNameRequired
	}

	client := &models.Client{
		UserID:  userID,
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   req.Phone,
		Address: req.Address,
		Company: req.Company,
		TaxID:   req.TaxID,
		Notes:   req.Notes,
	}
	if err := s.Repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ClientService) Get(ctx context.Context, userID, id int) (*models.Client, error) {
	return s.Repo.Get(ctx, userID, id)
}

func (s *ClientService) List(ctx context.Context, userID int, search string) ([]*models.Client, error) {
	return s.Repo.List(ctx, userID, search)
}

func (s *ClientService) Update(ctx context.Context, userID, id int, req *models.ClientRequest) (*models.Client, error) {
	client, err := s.Repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrClientNameRequired
	}

	client.Name = strings.TrimSpace(req.Name)
	client.Email = strings.TrimSpace(req.Email)
	client.Phone = req.Phone
	client.Address = req.Address
	client.Company = req.Company
	client.TaxID = req.TaxID
	client.Notes = req.Notes

	if err := s.Repo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ClientService) Delete(ctx context.Context, userID, id int) (bool, error) {
	return s.Repo.Delete(ctx, userID, id)
}
