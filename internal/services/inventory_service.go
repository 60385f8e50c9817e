package services

import (
	"database/sql"
	"errors"

	"partsdesk/internal/domain"
	"partsdesk/internal/repos"
)

type InventoryService struct {
	Parts *repos.PartRepo
}

func NewInventoryService(parts *repos.PartRepo) *InventoryService {
	return &InventoryService{Parts: parts}
}

// CheckAvailability converts qty to IN_STOCK / LOW_STOCK / OUT_OF_STOCK for
// the public probe. Hidden or archived parts read as out of stock.
func (s *InventoryService) CheckAvailability(partID string) (domain.Availability, error) {
	p, err := s.Parts.Get(partID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Availability{Status: "OUT_OF_STOCK", Qty: 0}, nil
	}
	if err != nil {
		return domain.Availability{}, err
	}
	if !p.IsPublic || p.IsArchived {
		return domain.Availability{Status: "OUT_OF_STOCK", Qty: 0}, nil
	}

	status := "OUT_OF_STOCK"
	switch {
	case p.Qty >= 5:
		status = "IN_STOCK"
	case p.Qty > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Status: status, Qty: p.Qty}, nil
}
