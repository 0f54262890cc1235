package service

import (
	"context"
	"errors"
	"testing"

	"fabrikaops/internal/model"

	"github.com/google/uuid"
)

type inventoryRepoMock struct {
	items map[uuid.UUID]*model.InventoryItem
	txs   []model.StockTransaction
}

func newInventoryRepoMock() *inventoryRepoMock {
	return &inventoryRepoMock{items: make(map[uuid.UUID]*model.InventoryItem)}
}

func (m *inventoryRepoMock) CreateItem(_ context.Context, item *model.InventoryItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *inventoryRepoMock) UpdateItem(_ context.Context, item *model.InventoryItem) error {
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *inventoryRepoMock) DeleteItem(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *inventoryRepoMock) FindItem(_ context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, errNotFound{}
	}
	cp := *item
	return &cp, nil
}

func (m *inventoryRepoMock) FindItemForUpdate(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	return m.FindItem(ctx, id)
}

func (m *inventoryRepoMock) ListItems(_ context.Context, _, _ int) ([]model.InventoryItem, int64, error) {
	return nil, 0, nil
}

func (m *inventoryRepoMock) ListLowStock(_ context.Context) ([]model.InventoryItem, error) {
	return nil, nil
}

func (m *inventoryRepoMock) CreateTransaction(_ context.Context, tx *model.StockTransaction) error {
	m.txs = append(m.txs, *tx)
	return nil
}

func (m *inventoryRepoMock) ListTransactions(_ context.Context, _ uuid.UUID, _, _ int) ([]model.StockTransaction, int64, error) {
	return nil, 0, nil
}

func seedItem(repo *inventoryRepoMock, stock, min int) uuid.UUID {
	id := uuid.New()
	repo.items[id] = &model.InventoryItem{
		ID: id, Name: "Conta", Code: "CNT-01", CurrentStock: stock, MinStock: min,
	}
	return id
}

func TestInventoryStockFlow(t *testing.T) {
	repo := newInventoryRepoMock()
	audit := &auditRepoMock{}
	notifier := &notifierMock{}
	svc := NewInventoryService(repo, audit, &txManagerMock{}, notifier)

	itemID := seedItem(repo, 10, 3)
	ctx := context.Background()

	item, err := svc.StockIn(ctx, itemID.String(), StockMoveRequest{Quantity: 5}, nil)
	if err != nil {
		t.Fatalf("StockIn: %v", err)
	}
	if item.CurrentStock != 15 {
		t.Errorf("stock after in = %d, want 15", item.CurrentStock)
	}

	item, err = svc.StockOut(ctx, itemID.String(), StockMoveRequest{Quantity: 13}, nil)
	if err != nil {
		t.Fatalf("StockOut: %v", err)
	}
	if item.CurrentStock != 2 {
		t.Errorf("stock after out = %d, want 2", item.CurrentStock)
	}

	// Ledger carries signed deltas and resulting levels.
	if len(repo.txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(repo.txs))
	}
	if repo.txs[0].QuantityChanged != 5 || repo.txs[0].StockAfter != 15 {
		t.Errorf("in tx = %+v", repo.txs[0])
	}
	if repo.txs[1].QuantityChanged != -13 || repo.txs[1].StockAfter != 2 {
		t.Errorf("out tx = %+v", repo.txs[1])
	}

	// Dropping to min stock fires the low-stock broadcast.
	found := false
	for _, e := range notifier.events {
		if e == "inventory.low_stock" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected low_stock broadcast, got %v", notifier.events)
	}

	if len(audit.entries) != 2 {
		t.Errorf("got %d audit entries, want 2", len(audit.entries))
	}
}

func TestInventoryStockOutInsufficient(t *testing.T) {
	repo := newInventoryRepoMock()
	svc := NewInventoryService(repo, &auditRepoMock{}, &txManagerMock{}, nil)

	itemID := seedItem(repo, 4, 0)

	_, err := svc.StockOut(context.Background(), itemID.String(), StockMoveRequest{Quantity: 5}, nil)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("got %v, want ErrInsufficientStock", err)
	}

	item, _ := repo.FindItem(context.Background(), itemID)
	if item.CurrentStock != 4 {
		t.Errorf("stock changed on failed move: %d", item.CurrentStock)
	}
	if len(repo.txs) != 0 {
		t.Errorf("transaction recorded for failed move")
	}
}
