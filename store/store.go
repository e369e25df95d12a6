package store

import (
	"context"
	"sync/atomic"

	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/models"
	"gorm.io/gorm"
)

const insertBatchSize = 500

// Store owns dataset persistence. The gorm handle is injected by main; the
// aggregation engine never sees it.
type Store struct {
	db      *gorm.DB
	version atomic.Int64
}

func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(
		&models.Sale{},
		&models.Purchase{},
		&models.Expense{},
		&models.PayrollEntry{},
		&models.StockSnapshot{},
		&models.SalesGoal{},
	); err != nil {
		return nil, err
	}
	s := &Store{db: db}
	s.version.Store(1)
	return s, nil
}

// Version changes whenever a dataset is replaced. Report cache keys embed it
// so stale payloads expire immediately on upload.
func (s *Store) Version() int64 {
	return s.version.Load()
}

// ReplaceSales swaps the sales dataset atomically.
func (s *Store) ReplaceSales(ctx context.Context, records []models.Sale) error {
	return s.replace(ctx, &models.Sale{}, records)
}

func (s *Store) ReplacePurchases(ctx context.Context, records []models.Purchase) error {
	return s.replace(ctx, &models.Purchase{}, records)
}

func (s *Store) ReplaceExpenses(ctx context.Context, records []models.Expense) error {
	return s.replace(ctx, &models.Expense{}, records)
}

func (s *Store) ReplacePayroll(ctx context.Context, records []models.PayrollEntry) error {
	return s.replace(ctx, &models.PayrollEntry{}, records)
}

func (s *Store) ReplaceStock(ctx context.Context, records []models.StockSnapshot) error {
	return s.replace(ctx, &models.StockSnapshot{}, records)
}

func (s *Store) ReplaceGoals(ctx context.Context, records []models.SalesGoal) error {
	return s.replace(ctx, &models.SalesGoal{}, records)
}

func (s *Store) replace(ctx context.Context, model any, records any) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(records, insertBatchSize).Error
	})
	if err != nil {
		return err
	}
	s.version.Add(1)
	return nil
}

func (s *Store) LoadSales(ctx context.Context) ([]models.Sale, error) {
	var records []models.Sale
	err := s.db.WithContext(ctx).Order("date, id").Find(&records).Error
	return records, err
}

func (s *Store) LoadPurchases(ctx context.Context) ([]models.Purchase, error) {
	var records []models.Purchase
	err := s.db.WithContext(ctx).Order("date, id").Find(&records).Error
	return records, err
}

func (s *Store) LoadExpenses(ctx context.Context) ([]models.Expense, error) {
	var records []models.Expense
	err := s.db.WithContext(ctx).Order("date, id").Find(&records).Error
	return records, err
}

func (s *Store) LoadPayroll(ctx context.Context) ([]models.PayrollEntry, error) {
	var records []models.PayrollEntry
	err := s.db.WithContext(ctx).Order("date, id").Find(&records).Error
	return records, err
}

func (s *Store) LoadStock(ctx context.Context) ([]models.StockSnapshot, error) {
	var records []models.StockSnapshot
	err := s.db.WithContext(ctx).Order("date, id").Find(&records).Error
	return records, err
}

func (s *Store) LoadGoals(ctx context.Context) ([]models.SalesGoal, error) {
	var records []models.SalesGoal
	err := s.db.WithContext(ctx).Order("year, month, branch").Find(&records).Error
	return records, err
}

// Counts reports the row count per dataset kind.
func (s *Store) Counts(ctx context.Context) (map[models.DatasetKind]int64, error) {
	out := make(map[models.DatasetKind]int64, 5)
	tables := []struct {
		kind  models.DatasetKind
		model any
	}{
		{models.DatasetSales, &models.Sale{}},
		{models.DatasetPurchases, &models.Purchase{}},
		{models.DatasetExpenses, &models.Expense{}},
		{models.DatasetHR, &models.PayrollEntry{}},
		{models.DatasetStock, &models.StockSnapshot{}},
	}
	for _, t := range tables {
		var count int64
		if err := s.db.WithContext(ctx).Model(t.model).Count(&count).Error; err != nil {
			return nil, err
		}
		out[t.kind] = count
	}
	return out, nil
}
