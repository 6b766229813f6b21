package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"backend/internal/identity"
	"backend/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	roleUsersCachePrefix = "moderation:role_users:"
	roleUsersCacheTTL    = 5 * time.Minute
)

// StoreEligibilityResolver 默认的角色成员解析器：
// 角色用户集合 = {绑定用户} ∪ {绑定用户组成员}，结果可缓存到 Redis
type StoreEligibilityResolver struct {
	identities *identity.Service
	rdb        redis.UniversalClient // 可为 nil，缓存随之关闭
}

// NewStoreEligibilityResolver 创建解析器
func NewStoreEligibilityResolver(identities *identity.Service, rdb redis.UniversalClient) *StoreEligibilityResolver {
	return &StoreEligibilityResolver{identities: identities, rdb: rdb}
}

// UsersEligibleFor 解析角色当前有权审批的用户集合
func (r *StoreEligibilityResolver) UsersEligibleFor(ctx context.Context, role *Role) ([]string, error) {
	if cached, ok := r.fromCache(ctx, role.ID); ok {
		return cached, nil
	}

	seen := make(map[string]struct{})
	var users []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		users = append(users, id)
	}

	add(role.UserID)
	if role.GroupID != "" {
		members, err := r.identities.ListGroupMemberIDs(ctx, role.GroupID)
		if err != nil {
			return nil, fmt.Errorf("解析角色 %s 的组成员失败: %w", role.Name, err)
		}
		for _, m := range members {
			add(m)
		}
	}

	sort.Strings(users)
	r.toCache(ctx, role.ID, users)
	return users, nil
}

// Invalidate 角色或组成员变更后清除缓存
func (r *StoreEligibilityResolver) Invalidate(ctx context.Context, roleID string) {
	if r.rdb == nil {
		return
	}
	if err := r.rdb.Del(ctx, roleUsersCachePrefix+roleID).Err(); err != nil {
		logger.Warn("清除角色成员缓存失败", zap.String("roleId", roleID), zap.Error(err))
	}
}

func (r *StoreEligibilityResolver) fromCache(ctx context.Context, roleID string) ([]string, bool) {
	if r.rdb == nil {
		return nil, false
	}
	raw, err := r.rdb.Get(ctx, roleUsersCachePrefix+roleID).Result()
	if err != nil {
		return nil, false
	}
	var users []string
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, false
	}
	return users, true
}

func (r *StoreEligibilityResolver) toCache(ctx context.Context, roleID string, users []string) {
	if r.rdb == nil {
		return
	}
	raw, err := json.Marshal(users)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, roleUsersCachePrefix+roleID, raw, roleUsersCacheTTL).Err(); err != nil {
		logger.Warn("写入角色成员缓存失败", zap.String("roleId", roleID), zap.Error(err))
	}
}
