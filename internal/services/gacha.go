package services

import (
	"fortuna/internal/models"

	"github.com/mroth/weightedrand/v2"
)

type ServiceGacha struct {
	chooser  *weightedrand.Chooser[models.PrizeSegment, int]
	segments []models.PrizeSegment
}

// NewServiceGacha builds a weighted picker over the prize table. Segments
// with non-positive weight are rejected by the chooser.
func NewServiceGacha(segments []models.PrizeSegment) (*ServiceGacha, error) {
	choices := make([]weightedrand.Choice[models.PrizeSegment, int], 0, len(segments))
	for _, segment := range segments {
		choices = append(choices, weightedrand.NewChoice(segment, segment.Weight))
	}

	chooser, err := weightedrand.NewChooser(choices...)
	if err != nil {
		return nil, err
	}

	return &ServiceGacha{chooser, segments}, nil
}

func (service *ServiceGacha) Pick() models.PrizeSegment {
	return service.chooser.Pick()
}

func (service *ServiceGacha) Segments() []models.PrizeSegment {
	return service.segments
}
