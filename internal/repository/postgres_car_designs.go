package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"demohub/internal/car"
)

// PostgresCarDesignsRepo 汽车设计 Repository 的 PostgreSQL 实现
// design 字段以 jsonb 存储，读取时重新校验目录 ID
type PostgresCarDesignsRepo struct {
	db *sql.DB
}

func NewPostgresCarDesignsRepo(db *sql.DB) *PostgresCarDesignsRepo {
	return &PostgresCarDesignsRepo{db: db}
}

// 确保实现了接口
var _ CarDesignsRepository = (*PostgresCarDesignsRepo)(nil)

// CarDesignsSchema 建表语句（启动时执行，幂等）
const CarDesignsSchema = `
CREATE TABLE IF NOT EXISTS car_designs (
	design_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	owner     TEXT NOT NULL,
	name      TEXT NOT NULL,
	design    JSONB NOT NULL,
	price     INTEGER NOT NULL,
	saved_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_car_designs_owner ON car_designs (owner, saved_at);
`

// EnsureSchema 创建表和索引
func (r *PostgresCarDesignsRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, CarDesignsSchema); err != nil {
		return fmt.Errorf("failed to ensure car_designs schema: %w", err)
	}
	return nil
}

// Create 保存设计
func (r *PostgresCarDesignsRepo) Create(ctx context.Context, d *car.SavedDesign) (string, error) {
	if d == nil {
		return "", fmt.Errorf("design is required")
	}
	if d.Owner == "" {
		return "", fmt.Errorf("owner is required")
	}
	raw, err := json.Marshal(d.Design)
	if err != nil {
		return "", fmt.Errorf("failed to marshal design: %w", err)
	}

	query := `
		INSERT INTO car_designs (owner, name, design, price, saved_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING design_id::text
	`
	var id string
	if err := r.db.QueryRowContext(ctx, query, d.Owner, d.Name, raw, d.Price, d.SavedAt).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to create car design: %w", err)
	}
	return id, nil
}

// List 列出 owner 的设计（按保存时间升序）
func (r *PostgresCarDesignsRepo) List(ctx context.Context, owner string) ([]car.SavedDesign, error) {
	query := `
		SELECT design_id::text, owner, name, design, price, saved_at
		FROM car_designs
		WHERE owner = $1
		ORDER BY saved_at ASC, design_id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list car designs: %w", err)
	}
	defer rows.Close()

	out := make([]car.SavedDesign, 0)
	for rows.Next() {
		d, err := scanCarDesign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate car designs: %w", err)
	}
	return out, nil
}

// Get 获取单个设计
func (r *PostgresCarDesignsRepo) Get(ctx context.Context, owner, id string) (*car.SavedDesign, error) {
	query := `
		SELECT design_id::text, owner, name, design, price, saved_at
		FROM car_designs
		WHERE owner = $1 AND design_id::text = $2
	`
	d, err := scanCarDesign(r.db.QueryRowContext(ctx, query, owner, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("design %s: %w", id, car.ErrDesignNotFound)
		}
		return nil, err
	}
	return d, nil
}

// Delete 删除设计
func (r *PostgresCarDesignsRepo) Delete(ctx context.Context, owner, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM car_designs WHERE owner = $1 AND design_id::text = $2`,
		owner, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete car design: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete car design: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("design %s: %w", id, car.ErrDesignNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCarDesign(row rowScanner) (*car.SavedDesign, error) {
	var d car.SavedDesign
	var raw []byte
	if err := row.Scan(&d.ID, &d.Owner, &d.Name, &raw, &d.Price, &d.SavedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan car design: %w", err)
	}
	if err := json.Unmarshal(raw, &d.Design); err != nil {
		return nil, fmt.Errorf("failed to decode design %s: %w", d.ID, err)
	}
	return &d, nil
}
