package handlers

import (
	"github.com/jmoiron/sqlx"

	"partsdesk/internal/config"
	"partsdesk/internal/repos"
	"partsdesk/internal/services"
)

type Deps struct {
	OrderHandler     *OrderHandler
	AdminHandler     *AdminHandler
	InventoryHandler *InventoryHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, notify services.Notifier) *Deps {
	partRepo := repos.NewPartRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	pricer := services.Pricer{
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		FlatRate:              cfg.ShippingFlatRate,
	}
	orderSvc := services.NewOrderService(db, partRepo, orderRepo, pricer, notify)
	lifecycle := services.NewLifecycleService(db, orderRepo, partRepo, notify)
	invSvc := services.NewInventoryService(partRepo)

	return &Deps{
		OrderHandler:     &OrderHandler{Order: orderSvc, Repo: orderRepo},
		AdminHandler:     &AdminHandler{Lifecycle: lifecycle, OrderRepo: orderRepo, Parts: partRepo},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
	}
}
