package services

import "fortuna/internal/models"

// DiceSegments maps the six faces to payouts; higher faces are rarer so
// the expected value stays below the wheel's.
func DiceSegments() []models.PrizeSegment {
	return []models.PrizeSegment{
		{Label: "FACE_1", Weight: 25, RewardType: models.RewardPoint, RewardAmount: 50},
		{Label: "FACE_2", Weight: 22, RewardType: models.RewardPoint, RewardAmount: 100},
		{Label: "FACE_3", Weight: 20, RewardType: models.RewardPoint, RewardAmount: 150},
		{Label: "FACE_4", Weight: 10, RewardType: models.RewardPoint, RewardAmount: 200},
		{Label: "FACE_5", Weight: 8, RewardType: models.RewardPoint, RewardAmount: 300},
		{Label: "FACE_6", Weight: 5, RewardType: models.RewardPoint, RewardAmount: 600},
	}
}

// NewMemberDiceSegments is the one-shot welcome roll; every face pays.
func NewMemberDiceSegments() []models.PrizeSegment {
	return []models.PrizeSegment{
		{Label: "FACE_1", Weight: 30, RewardType: models.RewardPoint, RewardAmount: 500},
		{Label: "FACE_2", Weight: 25, RewardType: models.RewardPoint, RewardAmount: 1000},
		{Label: "FACE_3", Weight: 20, RewardType: models.RewardPoint, RewardAmount: 1500},
		{Label: "FACE_4", Weight: 13, RewardType: models.RewardPoint, RewardAmount: 2000},
		{Label: "FACE_5", Weight: 8, RewardType: models.RewardPoint, RewardAmount: 3000},
		{Label: "FACE_6", Weight: 4, RewardType: models.RewardPoint, RewardAmount: 5000},
	}
}
