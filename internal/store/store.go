// Package store is the persistence layer. Each entity has a small repository
// interface returning value types; Store.Transaction scopes a unit of work.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound means a referenced row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey means a unique constraint rejected the write.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Store bundles the repositories over one *gorm.DB (plain or transactional).
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{db: db} }

// Transaction runs fn inside a database transaction. Any error returned by fn
// rolls back every write made through tx.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Users() UserRepository                   { return gormUsers{s.db} }
func (s *Store) Managers() ManagerRepository             { return gormManagers{s.db} }
func (s *Store) Documentation() DocumentationRepository  { return gormDocumentation{s.db} }
func (s *Store) LegalAdvisors() LegalAdvisorRepository   { return gormLegalAdvisors{s.db} }
func (s *Store) Contracts() ContractRepository           { return gormContracts{s.db} }
func (s *Store) Manufacturers() ManufacturerRepository   { return gormManufacturers{s.db} }
func (s *Store) Deals() DealRepository                   { return gormDeals{s.db} }
func (s *Store) ProfitHandlers() ProfitHandlerRepository { return gormProfitHandlers{s.db} }
func (s *Store) Accountants() AccountantRepository       { return gormAccountants{s.db} }
func (s *Store) Retailers() RetailerRepository           { return gormRetailers{s.db} }

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDuplicateKey):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint failed"), strings.Contains(msg, "duplicate key"):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	case strings.Contains(msg, "foreign key constraint"):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

// findOrCreateByName returns the row whose name column equals name, inserting
// fresh when absent. Concurrent inserts of the same name collapse onto one row
// through the unique index.
func findOrCreateByName[T any](ctx context.Context, db *gorm.DB, name string, fresh T) (T, bool, error) {
	var found T
	err := db.WithContext(ctx).Where("name = ?", name).First(&found).Error
	if err == nil {
		return found, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return found, false, translate(err)
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&fresh)
	if res.Error != nil {
		return found, false, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if err := db.WithContext(ctx).Where("name = ?", name).First(&found).Error; err != nil {
			return found, false, translate(err)
		}
		return found, false, nil
	}
	return fresh, true, nil
}

func first[T any](ctx context.Context, db *gorm.DB, id uint) (T, error) {
	var v T
	err := db.WithContext(ctx).First(&v, id).Error
	return v, translate(err)
}
