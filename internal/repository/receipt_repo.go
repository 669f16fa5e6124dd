package repository

import (
	"context"

	"go-kiosk-pos/internal/model"

	"gorm.io/gorm"
)

type ReceiptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, r *model.Receipt) error
	FindByNumber(ctx context.Context, receiptNo string) (*model.Receipt, error)
}

type receiptRepo struct {
	db *gorm.DB
}

func NewReceiptRepo(db *gorm.DB) ReceiptRepository {
	return &receiptRepo{db}
}

func (r *receiptRepo) Create(ctx context.Context, tx *gorm.DB, receipt *model.Receipt) error {
	return conn(ctx, r.db, tx).Create(receipt).Error
}

func (r *receiptRepo) FindByNumber(ctx context.Context, receiptNo string) (*model.Receipt, error) {
	var receipt model.Receipt
	if err := r.db.WithContext(ctx).Where("receipt_no = ?", receiptNo).First(&receipt).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}
