package services

import (
	"context"
	"fmt"
	"time"

	"fortuna/internal/datastore"
	"fortuna/internal/models"
	"fortuna/internal/pkg/caching"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

// Condition JSON understood by the rule engine:
//
//	{"all": [cond, ...]}
//	{"any": [cond, ...]}
//	{"field": "deposit_amount", "op": ">=", "value": 1000000}
//	{"field": "last_charge_at", "op": "is_null"}
//
// Ops: == != > >= < <= is_null not_null. Datetime fields support only the
// null checks; day-count fields carry the same signal in comparable form.
type ServiceSegment struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	appConfig *models.AppConfig
}

func NewServiceSegment(container *do.Injector) (*ServiceSegment, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	appConfig, err := do.Invoke[*models.AppConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceSegment{container, postgresDB, readonlyPostgresDB, cache, readonlyCache, appConfig}, nil
}

// MatchesCondition evaluates one condition node against the snapshot.
func MatchesCondition(condition map[string]interface{}, ctx *models.SegmentContext) (bool, error) {
	if items, ok := condition["all"]; ok {
		list, ok := items.([]interface{})
		if !ok {
			return false, fmt.Errorf("INVALID_ALL")
		}
		for _, item := range list {
			child, ok := item.(map[string]interface{})
			if !ok {
				return false, fmt.Errorf("INVALID_ALL")
			}
			matched, err := MatchesCondition(child, ctx)
			if err != nil || !matched {
				return false, err
			}
		}
		return true, nil
	}

	if items, ok := condition["any"]; ok {
		list, ok := items.([]interface{})
		if !ok {
			return false, fmt.Errorf("INVALID_ANY")
		}
		for _, item := range list {
			child, ok := item.(map[string]interface{})
			if !ok {
				return false, fmt.Errorf("INVALID_ANY")
			}
			matched, err := MatchesCondition(child, ctx)
			if err != nil {
				return false, err
			}
			if matched {
				return true, nil
			}
		}
		return false, nil
	}

	field, _ := condition["field"].(string)
	op, _ := condition["op"].(string)
	if field == "" || op == "" {
		return false, fmt.Errorf("INVALID_PREDICATE")
	}

	actual, isNull, err := segmentField(ctx, field)
	if err != nil {
		return false, err
	}

	switch op {
	case "is_null":
		return isNull, nil
	case "not_null":
		return !isNull, nil
	}
	if isNull {
		return false, nil
	}

	expected, ok := coerceNumber(condition["value"])
	if !ok {
		return false, nil
	}

	switch op {
	case "==":
		return actual == expected, nil
	case "!=":
		return actual != expected, nil
	case ">":
		return actual > expected, nil
	case ">=":
		return actual >= expected, nil
	case "<":
		return actual < expected, nil
	case "<=":
		return actual <= expected, nil
	}
	return false, fmt.Errorf("UNKNOWN_OP:%s", op)
}

// segmentField resolves a field name to a comparable number. Datetime
// fields only answer null checks, so their numeric value is zero.
func segmentField(ctx *models.SegmentContext, field string) (value float64, isNull bool, err error) {
	switch field {
	case "last_login_at":
		return 0, ctx.LastLoginAt == nil, nil
	case "last_charge_at":
		return 0, ctx.LastChargeAt == nil, nil
	case "last_active_at":
		return 0, ctx.LastActiveAt == nil, nil
	case "days_since_last_login":
		return floatOrNull(ctx.DaysSinceLastLogin)
	case "days_since_last_charge":
		return floatOrNull(ctx.DaysSinceLastCharge)
	case "days_since_last_active":
		return floatOrNull(ctx.DaysSinceLastActive)
	case "deposit_amount":
		return float64(ctx.DepositAmount), false, nil
	case "roulette_plays":
		return float64(ctx.RoulettePlays), false, nil
	case "dice_plays":
		return float64(ctx.DicePlays), false, nil
	case "lottery_plays":
		return float64(ctx.LotteryPlays), false, nil
	case "total_play_duration":
		return float64(ctx.TotalPlayDuration), false, nil
	}
	return 0, false, fmt.Errorf("UNKNOWN_FIELD:%s", field)
}

func floatOrNull(v *int) (float64, bool, error) {
	if v == nil {
		return 0, true, nil
	}
	return float64(*v), false, nil
}

func coerceNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// ResolveSegment walks the active rules in priority order and returns the
// first matching segment key; "" means no segment. A malformed rule is
// skipped rather than failing the lookup.
func (service *ServiceSegment) ResolveSegment(ctx context.Context, userID int64, now time.Time) (string, error) {
	rules, err := service.activeRules(ctx)
	if err != nil {
		return "", err
	}

	segmentCtx, err := service.BuildContext(ctx, userID, now)
	if err != nil {
		return "", err
	}

	for _, rule := range rules {
		matched, err := MatchesCondition(rule.Condition, segmentCtx)
		if err != nil {
			continue
		}
		if matched {
			return rule.SegmentKey, nil
		}
	}
	return "", nil
}

// BuildContext assembles the activity snapshot the rules compare against.
func (service *ServiceSegment) BuildContext(ctx context.Context, userID int64, now time.Time) (*models.SegmentContext, error) {
	activity, err := datastore.GetOrCreateActivity(ctx, service.postgresDB, userID)
	if err != nil {
		return nil, err
	}

	segmentCtx := &models.SegmentContext{
		LastLoginAt:       activity.LastLoginAt,
		LastChargeAt:      activity.LastChargeAt,
		RoulettePlays:     activity.RoulettePlays,
		DicePlays:         activity.DicePlays,
		LotteryPlays:      activity.LotteryPlays,
		TotalPlayDuration: activity.TotalPlayDuration,
	}

	lastActive := activity.LastLoginAt
	if activity.LastBonusUsedAt != nil && (lastActive == nil || activity.LastBonusUsedAt.After(*lastActive)) {
		lastActive = activity.LastBonusUsedAt
	}
	segmentCtx.LastActiveAt = lastActive

	segmentCtx.DaysSinceLastLogin = daysSince(activity.LastLoginAt, now)
	segmentCtx.DaysSinceLastCharge = daysSince(activity.LastChargeAt, now)
	segmentCtx.DaysSinceLastActive = daysSince(lastActive, now)

	external, err := datastore.GetExternalRankingByUser(ctx, service.readonlyPostgresDB, userID)
	if err == nil {
		segmentCtx.DepositAmount = external.DepositAmount
	}

	return segmentCtx, nil
}

func daysSince(t *time.Time, now time.Time) *int {
	if t == nil {
		return nil
	}
	days := int(now.Sub(*t).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return &days
}

func (service *ServiceSegment) activeRules(ctx context.Context) ([]*models.SegmentRule, error) {
	callback := func() ([]*models.SegmentRule, error) {
		return datastore.ListActiveSegmentRules(ctx, service.readonlyPostgresDB)
	}

	// Rule writes delete this key, so the TTL only bounds staleness after
	// a missed invalidation.
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeySegmentRules(), CACHE_TTL_1_HOUR, callback)
}

func (service *ServiceSegment) CreateRule(ctx context.Context, rule *models.SegmentRule) error {
	if rule.SegmentKey == "" || rule.Condition == nil {
		return ErrInvalidConfig
	}

	err := datastore.InsertSegmentRule(ctx, service.postgresDB, rule)
	if err != nil {
		return err
	}
	return service.cache.Delete(ctx, DBKeySegmentRules())
}

func (service *ServiceSegment) UpdateRule(ctx context.Context, rule *models.SegmentRule) error {
	err := datastore.UpdateSegmentRule(ctx, service.postgresDB, rule)
	if err != nil {
		return err
	}
	return service.cache.Delete(ctx, DBKeySegmentRules())
}

func (service *ServiceSegment) DeleteRule(ctx context.Context, ruleID int64) error {
	deleted, err := datastore.DeleteSegmentRule(ctx, service.postgresDB, ruleID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrInvalidConfig
	}
	return service.cache.Delete(ctx, DBKeySegmentRules())
}

func (service *ServiceSegment) ListRules(ctx context.Context) ([]*models.SegmentRule, error) {
	return datastore.ListActiveSegmentRules(ctx, service.readonlyPostgresDB)
}
