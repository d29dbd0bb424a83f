package repository

import (
	"context"

	"demohub/internal/car"
)

// CarDesignsRepository 保存的汽车设计 Repository 接口
// 按 owner（会话 ID）隔离，每个 owner 只能看到自己的设计
type CarDesignsRepository interface {
	// Create 保存设计，返回新的 design_id
	Create(ctx context.Context, d *car.SavedDesign) (string, error)
	// List 按保存时间顺序列出 owner 的设计
	List(ctx context.Context, owner string) ([]car.SavedDesign, error)
	// Get 获取单个设计；不存在时返回 car.ErrDesignNotFound
	Get(ctx context.Context, owner, id string) (*car.SavedDesign, error)
	// Delete 删除设计；不存在时返回 car.ErrDesignNotFound
	Delete(ctx context.Context, owner, id string) error
}

var _ car.DesignStore = (CarDesignsRepository)(nil)
