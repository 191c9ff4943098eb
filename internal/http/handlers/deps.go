package handlers

import (
	"github.com/jmoiron/sqlx"

	"shinejewelry/internal/config"
	"shinejewelry/internal/mail"
	"shinejewelry/internal/repos"
	"shinejewelry/internal/services"
	"shinejewelry/internal/store"
	"shinejewelry/internal/uploads"
)

type Deps struct {
	Catalog  *CatalogHandler
	Category *CategoryHandler
	Product  *ProductHandler
	Order    *OrderHandler
	Contact  *ContactHandler
}

// NewDeps wires repositories and services into handlers. db may be nil
// (archive disabled); everything else is required.
func NewDeps(cfg config.Config, st *store.Store, files *uploads.Manager, db *sqlx.DB, mailer mail.Mailer) *Deps {
	var orderRepo *repos.OrderRepo
	var contactRepo *repos.ContactRepo
	if db != nil {
		orderRepo = repos.NewOrderRepo(db)
		contactRepo = repos.NewContactRepo(db)
	}

	catalogSvc := services.NewCatalogService(st, files)
	pending := services.NewPending(cfg.PendingTTL)
	orderSvc := services.NewOrderService(mailer, pending, orderRepo, cfg.OwnerEmail, cfg.BaseURL)
	contactSvc := services.NewContactService(mailer, contactRepo, cfg.OwnerEmail)

	return &Deps{
		Catalog:  &CatalogHandler{Catalog: catalogSvc},
		Category: &CategoryHandler{Catalog: catalogSvc},
		Product:  &ProductHandler{Catalog: catalogSvc, Files: files},
		Order:    &OrderHandler{Order: orderSvc},
		Contact:  &ContactHandler{Contact: contactSvc},
	}
}
