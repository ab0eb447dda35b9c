package reactive

import (
	"context"

	"gorm.io/gorm"
)

// ReactiveDB wraps a gorm.DB so queries are exposed as streams. Each
// subscription runs its query on its own goroutine with a context that is
// cancelled on unsubscribe; results are delivered through the scheduler.
type ReactiveDB struct {
	db   *gorm.DB
	opts []Option
}

// NewReactiveDB creates a new ReactiveDB
func NewReactiveDB(db *gorm.DB, opts ...Option) *ReactiveDB {
	return &ReactiveDB{db: db, opts: opts}
}

func (r *ReactiveDB) with(db *gorm.DB) *ReactiveDB {
	return &ReactiveDB{db: db, opts: r.opts}
}

// Where adds a where clause to the query
func (r *ReactiveDB) Where(query any, args ...any) *ReactiveDB {
	return r.with(r.db.Where(query, args...))
}

// Order adds an order clause to the query
func (r *ReactiveDB) Order(value any) *ReactiveDB {
	return r.with(r.db.Order(value))
}

// Limit adds a limit clause to the query
func (r *ReactiveDB) Limit(limit int) *ReactiveDB {
	return r.with(r.db.Limit(limit))
}

// Offset adds an offset clause to the query
func (r *ReactiveDB) Offset(offset int) *ReactiveDB {
	return r.with(r.db.Offset(offset))
}

// DB returns the underlying gorm handle
func (r *ReactiveDB) DB() *gorm.DB {
	return r.db
}

func (r *ReactiveDB) exec(fn func(db *gorm.DB) error) Observable[struct{}] {
	return FromFunc(func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(r.db.WithContext(ctx))
	}, r.opts...)
}

// Find emits every record matching the query, one at a time, then completes
func Find[T any](r *ReactiveDB, conds ...any) Observable[T] {
	rows := FromFunc(func(ctx context.Context) ([]T, error) {
		var dest []T
		err := r.db.WithContext(ctx).Find(&dest, conds...).Error
		return dest, err
	}, r.opts...)
	return ConcatMap(From[T])(rows)
}

// First emits the first record matching the query. gorm.ErrRecordNotFound
// is delivered as an error.
func First[T any](r *ReactiveDB, conds ...any) Observable[T] {
	return FromFunc(func(ctx context.Context) (T, error) {
		var dest T
		err := r.db.WithContext(ctx).First(&dest, conds...).Error
		return dest, err
	}, r.opts...)
}

// Count emits the number of T records matching the query
func Count[T any](r *ReactiveDB) Observable[int64] {
	return FromFunc(func(ctx context.Context) (int64, error) {
		var n int64
		err := r.db.WithContext(ctx).Model(new(T)).Count(&n).Error
		return n, err
	}, r.opts...)
}

// Create inserts value and emits it with generated fields filled in
func Create[T any](r *ReactiveDB, value *T) Observable[*T] {
	return Map(func(struct{}) *T { return value })(r.exec(func(db *gorm.DB) error {
		return db.Create(value).Error
	}))
}

// Update sets column on the records selected by model and the query, and
// emits the number of affected rows
func (r *ReactiveDB) Update(model any, column string, value any) Observable[int64] {
	return FromFunc(func(ctx context.Context) (int64, error) {
		res := r.db.WithContext(ctx).Model(model).Update(column, value)
		return res.RowsAffected, res.Error
	}, r.opts...)
}

// Delete emits the number of deleted rows
func (r *ReactiveDB) Delete(value any, conds ...any) Observable[int64] {
	return FromFunc(func(ctx context.Context) (int64, error) {
		res := r.db.WithContext(ctx).Delete(value, conds...)
		return res.RowsAffected, res.Error
	}, r.opts...)
}

// Raw runs a raw SQL query and emits each row as a column -> value map
func (r *ReactiveDB) Raw(sql string, values ...any) Observable[map[string]any] {
	rows := FromFunc(func(ctx context.Context) ([]map[string]any, error) {
		rows, err := r.db.WithContext(ctx).Raw(sql, values...).Rows()
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		columns, err := rows.Columns()
		if err != nil {
			return nil, err
		}
		var out []map[string]any
		for rows.Next() {
			vals := make([]any, len(columns))
			ptrs := make([]any, len(columns))
			for i := range vals {
				ptrs[i] = &vals[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return nil, err
			}
			row := make(map[string]any, len(columns))
			for i, col := range columns {
				row[col] = vals[i]
			}
			out = append(out, row)
		}
		return out, rows.Err()
	}, r.opts...)
	return ConcatMap(From[map[string]any])(rows)
}
