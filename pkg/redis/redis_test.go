package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"csa-reg/config"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	c, err := NewClient(&config.RedisConfig{Addr: s.Addr()}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient 失败: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, s
}

func TestNewClient_Unreachable(t *testing.T) {
	s := miniredis.RunT(t)
	addr := s.Addr()
	s.Close()

	if _, err := NewClient(&config.RedisConfig{Addr: addr}, zap.NewNop()); err == nil {
		t.Error("连接已关闭的 Redis 应返回错误")
	}
}

func TestBlacklistToken(t *testing.T) {
	c, s := setupTestRedis(t)
	ctx := context.Background()

	if err := c.BlacklistToken(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("BlacklistToken 失败: %v", err)
	}
	ok, err := c.IsBlacklisted(ctx, "jti-1")
	if err != nil || !ok {
		t.Fatalf("期望 jti-1 在黑名单中, ok=%v err=%v", ok, err)
	}

	s.FastForward(2 * time.Minute)
	ok, _ = c.IsBlacklisted(ctx, "jti-1")
	if ok {
		t.Error("TTL 过期后不应仍在黑名单中")
	}
}

func TestBlacklistToken_ExpiredTTL(t *testing.T) {
	c, _ := setupTestRedis(t)
	ctx := context.Background()

	if err := c.BlacklistToken(ctx, "jti-2", 0); err != nil {
		t.Fatalf("BlacklistToken 失败: %v", err)
	}
	ok, _ := c.IsBlacklisted(ctx, "jti-2")
	if ok {
		t.Error("已过期 Token 不应写入黑名单")
	}
}

func TestFlag(t *testing.T) {
	c, s := setupTestRedis(t)
	ctx := context.Background()

	v, err := c.GetFlag(ctx, "flag", false)
	if err != nil || v {
		t.Fatalf("键不存在时应返回默认值 false, v=%v err=%v", v, err)
	}

	if err := c.SetFlag(ctx, "flag", true); err != nil {
		t.Fatalf("SetFlag 失败: %v", err)
	}
	v, _ = c.GetFlag(ctx, "flag", false)
	if !v {
		t.Error("期望开关为 true")
	}

	written, err := c.SetFlagNX(ctx, "flag", false)
	if err != nil || written {
		t.Errorf("键已存在时 SetFlagNX 不应写入, written=%v err=%v", written, err)
	}

	s.Set("flag", "garbage")
	if _, err := c.GetFlag(ctx, "flag", false); err == nil {
		t.Error("非法值应返回错误")
	}
}

func TestCheckRateLimit(t *testing.T) {
	c, _ := setupTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := c.CheckRateLimit(ctx, "rl:test", 3, time.Minute)
		if err != nil {
			t.Fatalf("CheckRateLimit 失败: %v", err)
		}
		if !ok {
			t.Fatalf("第 %d 次请求应放行", i+1)
		}
	}

	ok, err := c.CheckRateLimit(ctx, "rl:test", 3, time.Minute)
	if err != nil {
		t.Fatalf("CheckRateLimit 失败: %v", err)
	}
	if ok {
		t.Error("超过限额的请求应被拒绝")
	}
}
