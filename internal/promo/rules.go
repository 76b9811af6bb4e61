package promo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// Kind 规则类型
type Kind string

const (
	KindValid   Kind = "valid"
	KindExpired Kind = "expired"
	KindInvalid Kind = "invalid"
)

// Rule 优惠码规则
type Rule struct {
	Code     string       `json:"code"`
	Kind     Kind         `json:"kind"`
	Amount   models.Money `json:"amount"`
	EndsAt   *time.Time   `json:"ends_at,omitempty"`
	Inactive bool         `json:"inactive,omitempty"`
}

// RuleSource 规则来源；未命中返回 nil, nil
type RuleSource interface {
	Lookup(ctx context.Context, code string) (*Rule, error)
}

// NormalizeCode 去空白并转大写
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// StaticRules 内存规则表
type StaticRules struct {
	rules map[string]Rule
}

// NewStaticRules 创建内存规则表
func NewStaticRules(rules ...Rule) *StaticRules {
	table := make(map[string]Rule, len(rules))
	for _, rule := range rules {
		rule.Code = NormalizeCode(rule.Code)
		if rule.Code == "" {
			continue
		}
		table[rule.Code] = rule
	}
	return &StaticRules{rules: table}
}

// RulesFromConfig 从配置构建规则表
func RulesFromConfig(items []config.PromoRuleConfig) (*StaticRules, error) {
	rules := make([]Rule, 0, len(items))
	for _, item := range items {
		kind, err := parseKind(item.Kind)
		if err != nil {
			return nil, fmt.Errorf("promo rule %s: %w", item.Code, err)
		}
		amount, err := models.ParseMoney(item.Amount)
		if err != nil {
			return nil, fmt.Errorf("promo rule %s: %w", item.Code, err)
		}
		rules = append(rules, Rule{Code: item.Code, Kind: kind, Amount: amount.NonNegative()})
	}
	return NewStaticRules(rules...), nil
}

// Lookup 查找规则
func (s *StaticRules) Lookup(_ context.Context, code string) (*Rule, error) {
	rule, ok := s.rules[NormalizeCode(code)]
	if !ok {
		return nil, nil
	}
	return &rule, nil
}

func parseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindValid, "":
		return KindValid, nil
	case KindExpired:
		return KindExpired, nil
	case KindInvalid:
		return KindInvalid, nil
	default:
		return "", fmt.Errorf("unknown kind %q", raw)
	}
}

const ruleCacheTTL = 5 * time.Minute

// GormRules 基于 promo_rules 表的规则来源，Redis 启用时缓存命中结果
type GormRules struct {
	repo repository.PromoRuleRepository
}

// NewGormRules 创建数据库规则来源
func NewGormRules(repo repository.PromoRuleRepository) *GormRules {
	return &GormRules{repo: repo}
}

// Lookup 查找规则
func (g *GormRules) Lookup(ctx context.Context, code string) (*Rule, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, nil
	}
	cacheKey := ruleCacheKey(normalized)
	var cached Rule
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	row, err := g.repo.GetByCode(normalized)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	kind, err := parseKind(row.Kind)
	if err != nil {
		kind = KindInvalid
	}
	rule := &Rule{
		Code:     normalized,
		Kind:     kind,
		Amount:   row.Amount.NonNegative(),
		EndsAt:   row.EndsAt,
		Inactive: !row.IsActive,
	}
	_ = cache.SetJSON(ctx, cacheKey, rule, ruleCacheTTL)
	return rule, nil
}

// Save 写入规则并清除缓存
func (g *GormRules) Save(ctx context.Context, row *models.PromoRule) error {
	if row == nil {
		return nil
	}
	row.Code = NormalizeCode(row.Code)
	if row.Code == "" {
		return fmt.Errorf("promo rule: empty code")
	}
	if err := g.repo.Upsert(row); err != nil {
		return err
	}
	return cache.Del(ctx, ruleCacheKey(row.Code))
}

func ruleCacheKey(code string) string {
	return "promo_rule:" + code
}

// ChainRules 依次查询多个来源，返回首个命中
type ChainRules []RuleSource

// Lookup 查找规则
func (c ChainRules) Lookup(ctx context.Context, code string) (*Rule, error) {
	for _, source := range c {
		if source == nil {
			continue
		}
		rule, err := source.Lookup(ctx, code)
		if err != nil {
			return nil, err
		}
		if rule != nil {
			return rule, nil
		}
	}
	return nil, nil
}
