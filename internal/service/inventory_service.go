package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fabrikaops/internal/model"
	"fabrikaops/internal/repository"

	"github.com/google/uuid"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// --- DTOs ---

type CreateItemRequest struct {
	Name     string `json:"name" binding:"required"`
	Code     string `json:"code" binding:"required"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
	MinStock int    `json:"min_stock"`
}

type UpdateItemRequest struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Unit     *string `json:"unit"`
	MinStock *int    `json:"min_stock"`
}

type StockMoveRequest struct {
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Note     string `json:"note"`
}

// InventoryService tracks items and their stock ledger. Stock moves run inside
// a transaction with the item row locked, so concurrent moves cannot lose
// updates or drive stock negative.
type InventoryService interface {
	CreateItem(ctx context.Context, req CreateItemRequest) (*model.InventoryItem, error)
	UpdateItem(ctx context.Context, id string, req UpdateItemRequest) (*model.InventoryItem, error)
	DeleteItem(ctx context.Context, id string) error
	GetItem(ctx context.Context, id string) (*model.InventoryItem, error)
	ListItems(ctx context.Context, page, limit int) ([]model.InventoryItem, int64, error)
	ListLowStock(ctx context.Context) ([]model.InventoryItem, error)
	StockIn(ctx context.Context, id string, req StockMoveRequest, actorID *uuid.UUID) (*model.InventoryItem, error)
	StockOut(ctx context.Context, id string, req StockMoveRequest, actorID *uuid.UUID) (*model.InventoryItem, error)
	ListTransactions(ctx context.Context, itemID string, page, limit int) ([]model.StockTransaction, int64, error)
}

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
	notifier      interface{ BroadcastEvent(event string, payload interface{}) }
}

func NewInventoryService(inventoryRepo repository.InventoryRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager, notifier interface{ BroadcastEvent(event string, payload interface{}) }) InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
		notifier:      notifier,
	}
}

func (s *inventoryService) CreateItem(ctx context.Context, req CreateItemRequest) (*model.InventoryItem, error) {
	item := &model.InventoryItem{
		Name:     req.Name,
		Code:     req.Code,
		Category: req.Category,
		Unit:     req.Unit,
		MinStock: req.MinStock,
	}
	if err := s.inventoryRepo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return item, nil
}

func (s *inventoryService) UpdateItem(ctx context.Context, id string, req UpdateItemRequest) (*model.InventoryItem, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid item id: %w", err)
	}

	item, err := s.inventoryRepo.FindItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("item not found: %w", err)
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.MinStock != nil {
		item.MinStock = *req.MinStock
	}

	if err := s.inventoryRepo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return item, nil
}

func (s *inventoryService) DeleteItem(ctx context.Context, id string) error {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid item id: %w", err)
	}
	return s.inventoryRepo.DeleteItem(ctx, itemID)
}

func (s *inventoryService) GetItem(ctx context.Context, id string) (*model.InventoryItem, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid item id: %w", err)
	}
	return s.inventoryRepo.FindItem(ctx, itemID)
}

func (s *inventoryService) ListItems(ctx context.Context, page, limit int) ([]model.InventoryItem, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.inventoryRepo.ListItems(ctx, (page-1)*limit, limit)
}

func (s *inventoryService) ListLowStock(ctx context.Context) ([]model.InventoryItem, error) {
	return s.inventoryRepo.ListLowStock(ctx)
}

func (s *inventoryService) StockIn(ctx context.Context, id string, req StockMoveRequest, actorID *uuid.UUID) (*model.InventoryItem, error) {
	return s.move(ctx, id, req, actorID, model.StockTxTypeIn)
}

func (s *inventoryService) StockOut(ctx context.Context, id string, req StockMoveRequest, actorID *uuid.UUID) (*model.InventoryItem, error) {
	return s.move(ctx, id, req, actorID, model.StockTxTypeOut)
}

func (s *inventoryService) move(ctx context.Context, id string, req StockMoveRequest, actorID *uuid.UUID, txType string) (*model.InventoryItem, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid item id: %w", err)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	var item *model.InventoryItem
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		item, findErr = s.inventoryRepo.FindItemForUpdate(txCtx, itemID)
		if findErr != nil {
			return fmt.Errorf("item not found: %w", findErr)
		}

		delta := req.Quantity
		action := model.ActionStockIn
		if txType == model.StockTxTypeOut {
			if item.CurrentStock < req.Quantity {
				return fmt.Errorf("%w: have %d, requested %d", ErrInsufficientStock, item.CurrentStock, req.Quantity)
			}
			delta = -req.Quantity
			action = model.ActionStockOut
		}
		item.CurrentStock += delta

		if err := s.inventoryRepo.UpdateItem(txCtx, item); err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}

		stockTx := &model.StockTransaction{
			ItemID:          item.ID,
			TransactionType: txType,
			QuantityChanged: delta,
			StockAfter:      item.CurrentStock,
			Note:            req.Note,
			CreatedBy:       actorID,
		}
		if err := s.inventoryRepo.CreateTransaction(txCtx, stockTx); err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"code":        item.Code,
			"quantity":    delta,
			"stock_after": item.CurrentStock,
		})
		return s.auditRepo.Create(txCtx, &model.AuditLog{
			UserID:     actorID,
			Action:     action,
			EntityID:   item.ID.String(),
			EntityName: item.Name,
			Details:    string(details),
		})
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil && item.CurrentStock <= item.MinStock {
		s.notifier.BroadcastEvent("inventory.low_stock", map[string]interface{}{
			"item_id": item.ID.String(),
			"code":    item.Code,
			"name":    item.Name,
			"current": item.CurrentStock,
			"min":     item.MinStock,
		})
	}
	return item, nil
}

func (s *inventoryService) ListTransactions(ctx context.Context, itemID string, page, limit int) ([]model.StockTransaction, int64, error) {
	id, err := uuid.Parse(itemID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid item id: %w", err)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.inventoryRepo.ListTransactions(ctx, id, (page-1)*limit, limit)
}
