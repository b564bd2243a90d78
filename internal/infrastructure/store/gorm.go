package store

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"airledger-backend/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is the relational row holding one ledger record.
type Record struct {
	Address   string         `gorm:"column:address;type:varchar(64);primaryKey"`
	Kind      string         `gorm:"column:kind;type:varchar(16);index;not null"`
	Version   int            `gorm:"column:version;not null"`
	Payload   []byte         `gorm:"column:payload;not null"`
	Document  datatypes.JSON `gorm:"column:document"`
	UpdatedAt time.Time      `gorm:"column:updatedAt"`
}

func (Record) TableName() string { return "Records" }

// GormBackend keeps records in a SQL table through GORM.
type GormBackend struct {
	DB *gorm.DB
}

func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{DB: db}
}

func (b *GormBackend) Update(ctx context.Context, fn func(Txn) error) error {
	return b.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTxn{tx: tx, writable: true})
	})
}

func (b *GormBackend) View(ctx context.Context, fn func(Txn) error) error {
	return b.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTxn{tx: tx})
	})
}

func (b *GormBackend) Ping(ctx context.Context) error {
	sqlDB, err := b.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (b *GormBackend) Close() error {
	sqlDB, err := b.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormTxn struct {
	tx       *gorm.DB
	writable bool
}

func (t *gormTxn) Get(kind RecordKind, address domain.Address) ([]byte, error) {
	q := t.tx
	// row locks serialize concurrent units touching the same record;
	// sqlite has a single writer and no FOR UPDATE
	if t.writable && t.tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var rec Record
	err := q.Where("address = ? AND kind = ?", address.String(), kind.String()).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.Payload, nil
}

func newRecord(e Entry) Record {
	return Record{
		Address:   e.Address.String(),
		Kind:      e.Kind.String(),
		Version:   int(layoutVersion),
		Payload:   e.Payload,
		Document:  datatypes.JSON(e.Document),
		UpdatedAt: time.Now().UTC(),
	}
}

func (t *gormTxn) Put(e Entry) error {
	if !t.writable {
		return ErrReadOnly
	}
	rec := newRecord(e)
	return t.tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		UpdateAll: true,
	}).Create(&rec).Error
}

// Insert relies on the primary key rather than a prior read: a missing row
// takes no FOR UPDATE lock, but a concurrent insert of the same key blocks
// until the first unit commits and then hits the conflict.
func (t *gormTxn) Insert(e Entry) error {
	if !t.writable {
		return ErrReadOnly
	}
	rec := newRecord(e)
	res := t.tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordExists
	}
	return nil
}

func (t *gormTxn) Scan(kind RecordKind, fn func(domain.Address, []byte) error) error {
	var rows []Record
	if err := t.tx.Where("kind = ?", kind.String()).Order("address").Find(&rows).Error; err != nil {
		return err
	}
	for _, rec := range rows {
		var addr domain.Address
		raw, err := hex.DecodeString(rec.Address)
		if err != nil || len(raw) != domain.AddressLength {
			return &ErrCorruptRecord{Kind: kind, Reason: "bad address " + rec.Address}
		}
		copy(addr[:], raw)
		if err := fn(addr, rec.Payload); err != nil {
			return err
		}
	}
	return nil
}
