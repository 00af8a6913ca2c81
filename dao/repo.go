package dao

import (
	"context"
	"errors"
	"strings"

	"github.com/3xSu/FilmComment/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrUniqueViolation    = errors.New("unique constraint violated")
	ErrOptimisticConflict = errors.New("optimistic lock conflict")
	ErrTransient          = errors.New("transient storage failure")
)

type txKey struct{}

// Repo 通用持久层，事务通过 ctx 传递
type Repo[T any] struct {
	Db *gorm.DB
}

func NewRepo[T any](db *gorm.DB) Repo[T] {
	return Repo[T]{Db: db}
}

// DB ctx 中有事务时使用事务连接
func (r *Repo[T]) DB(ctx context.Context) *gorm.DB {
	return conn(ctx, r.Db)
}

func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}

func (r *Repo[T]) Model(ctx context.Context) *gorm.DB {
	return r.DB(ctx).Model(new(T))
}

func (r *Repo[T]) FindById(ctx context.Context, id any) (*T, error) {
	var item T
	tx := r.DB(ctx).Limit(1).Find(&item, id)
	if tx.Error != nil {
		return nil, translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (r *Repo[T]) FindByWhere(ctx context.Context, where string, args ...any) (*T, error) {
	var item T
	tx := r.DB(ctx).Where(where, args...).Limit(1).Find(&item)
	if tx.Error != nil {
		return nil, translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (r *Repo[T]) FindAll(ctx context.Context, where string, args ...any) ([]*T, error) {
	var items []*T
	if err := r.DB(ctx).Where(where, args...).Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (r *Repo[T]) FindCount(ctx context.Context, where string, args ...any) (int64, error) {
	var count int64
	if err := r.Model(ctx).Where(where, args...).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}

func (r *Repo[T]) IsExist(ctx context.Context, where string, args ...any) (bool, error) {
	var one int
	tx := r.Model(ctx).Select("1").Where(where, args...).Limit(1).Scan(&one)
	if tx.Error != nil {
		return false, translate(tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

func (r *Repo[T]) Create(ctx context.Context, item *T) error {
	models.SetTimestamps(item, true)
	return translate(r.DB(ctx).Create(item).Error)
}

func (r *Repo[T]) Creates(ctx context.Context, items []*T) error {
	if len(items) == 0 {
		return nil
	}
	for _, item := range items {
		models.SetTimestamps(item, true)
	}
	return translate(r.DB(ctx).Create(items).Error)
}

// Updates 按条件更新，自动刷新 updated_at
func (r *Repo[T]) Updates(ctx context.Context, values map[string]any, where string, args ...any) (int64, error) {
	if _, ok := values["updated_at"]; !ok && hasColumn(r.Db, new(T), "updated_at") {
		values["updated_at"] = models.Now()
	}
	tx := r.Model(ctx).Where(where, args...).Updates(values)
	return tx.RowsAffected, translate(tx.Error)
}

func (r *Repo[T]) UpdateById(ctx context.Context, id any, values map[string]any) (int64, error) {
	var item T
	pk := primaryKey(r.Db, &item)
	return r.Updates(ctx, values, pk+" = ?", id)
}

// Delete 物理删除
func (r *Repo[T]) Delete(ctx context.Context, where string, args ...any) (int64, error) {
	tx := r.DB(ctx).Where(where, args...).Delete(new(T))
	return tx.RowsAffected, translate(tx.Error)
}

func hasColumn(db *gorm.DB, model any, column string) bool {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return false
	}
	return stmt.Schema.LookUpField(column) != nil
}

func primaryKey(db *gorm.DB, model any) string {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err == nil && stmt.Schema.PrioritizedPrimaryField != nil {
		return stmt.Schema.PrioritizedPrimaryField.DBName
	}
	return "id"
}

// TxManager 把事务放进 ctx，嵌套调用复用外层事务
type TxManager struct {
	Db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{Db: db}
}

func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return fn(ctx)
	}
	return m.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// translate 把驱动错误映射为持久层哨兵错误
func translate(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrUniqueViolation
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return errors.Join(ErrTransient, err)
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Duplicate entry"), strings.Contains(msg, "UNIQUE constraint failed"):
		return ErrUniqueViolation
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "bad connection"),
		strings.Contains(msg, "connection refused"), strings.Contains(msg, "Deadlock found"):
		return errors.Join(ErrTransient, err)
	}
	return err
}
