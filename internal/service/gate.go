package service

import (
	"context"
	"sync/atomic"

	pkgredis "csa-reg/pkg/redis"
)

// 审核闸门状态的对外取值
const (
	GateStatusOpen   = "STATUS_OPEN"
	GateStatusClosed = "STATUS_CLOSED"
)

// gateKey 闸门在 Redis 中的键，多实例部署时共享
const gateKey = "csp:audit:gate"

// AdmissionGate 全局 CSP 审核闸门
type AdmissionGate interface {
	IsOpen(ctx context.Context) (bool, error)
	Set(ctx context.Context, open bool) error
}

// ── 进程内实现 ──

type memoryGate struct {
	open atomic.Bool
}

// NewMemoryGate 创建进程内闸门，未配置 Redis 时使用
func NewMemoryGate(open bool) AdmissionGate {
	g := &memoryGate{}
	g.open.Store(open)
	return g
}

func (g *memoryGate) IsOpen(context.Context) (bool, error) {
	return g.open.Load(), nil
}

func (g *memoryGate) Set(_ context.Context, open bool) error {
	g.open.Store(open)
	return nil
}

// ── Redis 实现 ──

type redisGate struct {
	client *pkgredis.Client
	def    bool
}

// NewRedisGate 创建 Redis 闸门；键不存在时写入初始值，已存在则沿用
func NewRedisGate(ctx context.Context, client *pkgredis.Client, open bool) (AdmissionGate, error) {
	if _, err := client.SetFlagNX(ctx, gateKey, open); err != nil {
		return nil, err
	}
	return &redisGate{client: client, def: open}, nil
}

func (g *redisGate) IsOpen(ctx context.Context) (bool, error) {
	return g.client.GetFlag(ctx, gateKey, g.def)
}

func (g *redisGate) Set(ctx context.Context, open bool) error {
	return g.client.SetFlag(ctx, gateKey, open)
}

func gateStatus(open bool) string {
	if open {
		return GateStatusOpen
	}
	return GateStatusClosed
}
