package services

import "fortuna/internal/models"

// RouletteSegments is the default wheel. Weights are relative slot odds,
// not percentages.
func RouletteSegments() []models.PrizeSegment {
	return []models.PrizeSegment{
		{Label: "POINT_100", Weight: 40, RewardType: models.RewardPoint, RewardAmount: 100},
		{Label: "POINT_300", Weight: 25, RewardType: models.RewardPoint, RewardAmount: 300},
		{Label: "POINT_500", Weight: 15, RewardType: models.RewardPoint, RewardAmount: 500},
		{Label: "POINT_1000", Weight: 8, RewardType: models.RewardPoint, RewardAmount: 1000},
		{Label: "COUPON_SMALL", Weight: 7, RewardType: models.RewardCoupon, RewardAmount: 1},
		{Label: "COUPON_BIG", Weight: 2, RewardType: models.RewardCoupon, RewardAmount: 1},
		{Label: "JACKPOT_5000", Weight: 3, RewardType: models.RewardPoint, RewardAmount: 5000},
	}
}
