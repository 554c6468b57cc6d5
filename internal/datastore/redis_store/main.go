package redis_store

import (
	"context"
	"fmt"
	"time"

	"fortuna/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

func dbKeyRankingToday(date string) string {
	return fmt.Sprintf("ranking:today:%s", date)
}

func dbKeyTeamStandings(seasonID int64) string {
	return fmt.Sprintf("team_battle:standings:%d", seasonID)
}

// GetRankingSnapshot returns the cached projection for a date, redis.Nil
// when absent.
func GetRankingSnapshot(ctx context.Context, cmd redis.Cmdable, date string) (*models.RankingToday, error) {
	b, err := cmd.Get(ctx, dbKeyRankingToday(date)).Bytes()
	if err != nil {
		return nil, err
	}

	var v *models.RankingToday
	err = msgpack.Unmarshal(b, &v)
	return v, err
}

func SetRankingSnapshot(ctx context.Context, cmd redis.Cmdable, date string, v *models.RankingToday, ttl time.Duration) error {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}

	return cmd.Set(ctx, dbKeyRankingToday(date), b, ttl).Err()
}

func DeleteRankingSnapshot(ctx context.Context, cmd redis.Cmdable, date string) error {
	return cmd.Del(ctx, dbKeyRankingToday(date)).Err()
}

func GetTeamStandings(ctx context.Context, cmd redis.Cmdable, seasonID int64) ([]*models.TeamStanding, error) {
	b, err := cmd.Get(ctx, dbKeyTeamStandings(seasonID)).Bytes()
	if err != nil {
		return nil, err
	}

	var v []*models.TeamStanding
	err = msgpack.Unmarshal(b, &v)
	return v, err
}

func SetTeamStandings(ctx context.Context, cmd redis.Cmdable, seasonID int64, v []*models.TeamStanding, ttl time.Duration) error {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}

	return cmd.Set(ctx, dbKeyTeamStandings(seasonID), b, ttl).Err()
}

func DeleteTeamStandings(ctx context.Context, cmd redis.Cmdable, seasonID int64) error {
	return cmd.Del(ctx, dbKeyTeamStandings(seasonID)).Err()
}
