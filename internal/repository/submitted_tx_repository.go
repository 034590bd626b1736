package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"chainbank-backend/internal/models"
)

// SubmittedTxRepository defines data access for gateway transaction records.
type SubmittedTxRepository interface {
	Create(ctx context.Context, tx *models.SubmittedTransaction) error
	GetByIdempotencyKey(ctx context.Context, operation, key string) (*models.SubmittedTransaction, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SetTxHash(ctx context.Context, id, txHash string) error
}

// submittedTxRepository implements SubmittedTxRepository.
type submittedTxRepository struct {
	db *gorm.DB
}

// NewSubmittedTxRepository creates a new SubmittedTxRepository instance.
func NewSubmittedTxRepository(db *gorm.DB) SubmittedTxRepository {
	return &submittedTxRepository{db: db}
}

func (r *submittedTxRepository) Create(ctx context.Context, tx *models.SubmittedTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *submittedTxRepository) GetByIdempotencyKey(ctx context.Context, operation, key string) (*models.SubmittedTransaction, error) {
	var record models.SubmittedTransaction
	err := r.db.WithContext(ctx).
		Where("operation = ? AND idempotency_key = ?", operation, key).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *submittedTxRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.SubmittedTransaction{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *submittedTxRepository) SetTxHash(ctx context.Context, id, txHash string) error {
	return r.db.WithContext(ctx).
		Model(&models.SubmittedTransaction{}).
		Where("id = ?", id).
		Update("tx_hash", txHash).Error
}
