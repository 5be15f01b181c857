package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/database/settings"
	"github.com/mrlokans/librarian/internal/entities"
)

const insertBatchSize = 200

// SaveSnapshot replaces every stored row with the contents of snap in a
// single transaction.
func (d *Database) SaveSnapshot(ctx context.Context, snap catalog.Snapshot) error {
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&entities.Loan{}, &entities.Book{}, &entities.Member{}, &entities.Author{}, &entities.Genre{}} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear %T: %w", model, err)
			}
		}

		if err := insertAll(tx, snap.Books); err != nil {
			return fmt.Errorf("failed to save books: %w", err)
		}
		if err := insertAll(tx, snap.Members); err != nil {
			return fmt.Errorf("failed to save members: %w", err)
		}
		if err := insertAll(tx, snap.Loans); err != nil {
			return fmt.Errorf("failed to save loans: %w", err)
		}
		if err := insertAll(tx, snap.Authors); err != nil {
			return fmt.Errorf("failed to save authors: %w", err)
		}
		if err := insertAll(tx, snap.Genres); err != nil {
			return fmt.Errorf("failed to save genres: %w", err)
		}

		repo := settings.NewRepository(tx)
		if err := repo.SetUint(entities.SettingKeyLoanSequence, snap.LoanSequence); err != nil {
			return fmt.Errorf("failed to save loan sequence: %w", err)
		}
		return repo.SetTime(entities.SettingKeySnapshotSavedAt, time.Now())
	})
	if err != nil {
		return err
	}

	log.Printf("[SNAPSHOT] Saved %d books, %d members, %d loans", len(snap.Books), len(snap.Members), len(snap.Loans))
	return nil
}

func insertAll[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(&rows, insertBatchSize).Error
}

// LoadSnapshot reads the stored rows back. An empty database yields an empty
// snapshot.
func (d *Database) LoadSnapshot(ctx context.Context) (catalog.Snapshot, error) {
	var snap catalog.Snapshot
	db := d.DB.WithContext(ctx)

	if err := db.Order("isbn").Find(&snap.Books).Error; err != nil {
		return catalog.Snapshot{}, fmt.Errorf("failed to load books: %w", err)
	}
	if err := db.Order("email").Find(&snap.Members).Error; err != nil {
		return catalog.Snapshot{}, fmt.Errorf("failed to load members: %w", err)
	}
	if err := db.Order("id").Find(&snap.Loans).Error; err != nil {
		return catalog.Snapshot{}, fmt.Errorf("failed to load loans: %w", err)
	}
	if err := db.Order("id").Find(&snap.Authors).Error; err != nil {
		return catalog.Snapshot{}, fmt.Errorf("failed to load authors: %w", err)
	}
	if err := db.Order("id").Find(&snap.Genres).Error; err != nil {
		return catalog.Snapshot{}, fmt.Errorf("failed to load genres: %w", err)
	}

	seq, _, err := settings.NewRepository(db).GetUint(entities.SettingKeyLoanSequence)
	if err != nil {
		return catalog.Snapshot{}, err
	}
	snap.LoanSequence = seq

	return snap, nil
}

// LastSavedAt returns when the last snapshot was written, or the zero time.
func (d *Database) LastSavedAt(ctx context.Context) (time.Time, error) {
	return settings.NewRepository(d.DB.WithContext(ctx)).GetTime(entities.SettingKeySnapshotSavedAt)
}
