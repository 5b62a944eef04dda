package repository

import (
	"context"
	"sync"

	"github.com/themagicbeanstock/backend-go/internal/domain"
)

// MemoryStore keeps datasets in process memory. It implements both
// PlanningRepository and IngestRepository and backs local runs and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*accountData
}

type accountData struct {
	inventory   map[string]domain.InventoryItem
	sales       map[string]domain.SalesRecord
	recipes     map[string]domain.Recipe
	menu        map[string]domain.MenuCatalogEntry
	conversions map[string]domain.UnitConversion
	forecasts   map[string]domain.ForecastEntry

	// insertion order per dataset so listings are stable
	inventoryKeys, salesKeys, recipeKeys, menuKeys, conversionKeys, forecastKeys []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]*accountData)}
}

func (s *MemoryStore) account(accountID string) *accountData {
	a, ok := s.accounts[accountID]
	if !ok {
		a = &accountData{
			inventory:   make(map[string]domain.InventoryItem),
			sales:       make(map[string]domain.SalesRecord),
			recipes:     make(map[string]domain.Recipe),
			menu:        make(map[string]domain.MenuCatalogEntry),
			conversions: make(map[string]domain.UnitConversion),
			forecasts:   make(map[string]domain.ForecastEntry),
		}
		s.accounts[accountID] = a
	}
	return a
}

func upsert[T any](m map[string]T, keys *[]string, key string, v T) {
	if _, ok := m[key]; !ok {
		*keys = append(*keys, key)
	}
	m[key] = v
}

func list[T any](m map[string]T, keys []string) []T {
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func (s *MemoryStore) ListInventory(_ context.Context, accountID string) ([]domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return []domain.InventoryItem{}, nil
	}
	return list(a.inventory, a.inventoryKeys), nil
}

func (s *MemoryStore) ListForecasts(_ context.Context, accountID, date string) ([]domain.ForecastEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.ForecastEntry{}
	a, ok := s.accounts[accountID]
	if !ok {
		return out, nil
	}
	for _, f := range list(a.forecasts, a.forecastKeys) {
		if f.Date == date {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListMenuCatalog(_ context.Context, accountID string) ([]domain.MenuCatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return []domain.MenuCatalogEntry{}, nil
	}
	return list(a.menu, a.menuKeys), nil
}

func (s *MemoryStore) ListRecipes(_ context.Context, accountID string) ([]domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return []domain.Recipe{}, nil
	}
	return list(a.recipes, a.recipeKeys), nil
}

func (s *MemoryStore) GetRecipe(_ context.Context, accountID, recipeID string) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	r, ok := a.recipes[recipeID]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) DatasetCounts(_ context.Context, accountID string) (map[domain.Dataset]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.Dataset]int, len(domain.AllDatasets))
	a, ok := s.accounts[accountID]
	if !ok {
		return counts, nil
	}
	counts[domain.DatasetInventory] = len(a.inventory)
	counts[domain.DatasetSalesDaily] = len(a.sales)
	counts[domain.DatasetRecipes] = len(a.recipes)
	counts[domain.DatasetMenuCatalog] = len(a.menu)
	counts[domain.DatasetUnitConversions] = len(a.conversions)
	counts[domain.DatasetForecasts] = len(a.forecasts)
	return counts, nil
}

func (s *MemoryStore) UpsertInventory(_ context.Context, accountID string, items []domain.InventoryItem) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.account(accountID)
	for _, it := range items {
		it.AccountID = accountID
		upsert(a.inventory, &a.inventoryKeys, it.ItemName, it)
	}
	return len(items), nil
}

func (s *MemoryStore) UpsertSales(_ context.Context, accountID string, records []domain.SalesRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.account(accountID)
	for _, r := range records {
		r.AccountID = accountID
		upsert(a.sales, &a.salesKeys, r.Key(), r)
	}
	return len(records), nil
}

func (s *MemoryStore) UpsertRecipes(_ context.Context, accountID string, recipes []domain.Recipe) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.account(accountID)
	for _, r := range recipes {
		r.AccountID = accountID
		upsert(a.recipes, &a.recipeKeys, r.RecipeID, r)
	}
	return len(recipes), nil
}

func (s *MemoryStore) UpsertMenuCatalog(_ context.Context, accountID string, entries []domain.MenuCatalogEntry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.account(accountID)
	for _, e := range entries {
		e.AccountID = accountID
		upsert(a.menu, &a.menuKeys, e.MenuItemID, e)
	}
	return len(entries), nil
}

func (s *MemoryStore) UpsertUnitConversions(_ context.Context, accountID string, conversions []domain.UnitConversion) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.account(accountID)
	for _, c := range conversions {
		c.AccountID = accountID
		upsert(a.conversions, &a.conversionKeys, c.Key(), c)
	}
	return len(conversions), nil
}

func (s *MemoryStore) UpsertForecasts(_ context.Context, accountID string, forecasts []domain.ForecastEntry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.account(accountID)
	for _, f := range forecasts {
		f.AccountID = accountID
		upsert(a.forecasts, &a.forecastKeys, f.Date+"_"+f.MenuItemID, f)
	}
	return len(forecasts), nil
}

var (
	_ PlanningRepository = (*MemoryStore)(nil)
	_ IngestRepository   = (*MemoryStore)(nil)
)
