package services

import "fortuna/internal/models"

// LotterySegments is the scratch-ticket table. MISS pays nothing and
// dominates the odds.
func LotterySegments() []models.PrizeSegment {
	return []models.PrizeSegment{
		{Label: "MISS", Weight: 55, RewardType: models.RewardPoint, RewardAmount: 0},
		{Label: "POINT_200", Weight: 20, RewardType: models.RewardPoint, RewardAmount: 200},
		{Label: "POINT_500", Weight: 12, RewardType: models.RewardPoint, RewardAmount: 500},
		{Label: "POINT_1500", Weight: 7, RewardType: models.RewardPoint, RewardAmount: 1500},
		{Label: "COUPON", Weight: 5, RewardType: models.RewardCoupon, RewardAmount: 1},
		{Label: "JACKPOT_10000", Weight: 1, RewardType: models.RewardPoint, RewardAmount: 10000},
	}
}
