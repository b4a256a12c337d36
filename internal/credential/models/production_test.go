package models

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ProductionSuite struct {
	suite.Suite
}

func TestProductionSuite(t *testing.T) {
	suite.Run(t, new(ProductionSuite))
}

func (s *ProductionSuite) TestProgressPercent() {
	s.Run("strictly increasing along the workflow", func() {
		prev := 0.0
		for _, status := range ProductionOrder() {
			pct := status.ProgressPercent()
			s.Greater(pct, prev, "status %s", status)
			prev = pct
		}
	})

	s.Run("hundred only at the terminal state", func() {
		for _, status := range ProductionOrder() {
			if status == ProductionDelivered {
				s.InDelta(100, status.ProgressPercent(), 0.0001)
			} else {
				s.Less(status.ProgressPercent(), 100.0)
			}
		}
	})

	s.Run("unknown status reports zero", func() {
		s.Equal(float64(0), ProductionStatus("lost").ProgressPercent())
	})
}

func (s *ProductionSuite) TestNext() {
	s.Run("walks the whole chain", func() {
		status := ProductionRegistered
		visited := []ProductionStatus{status}
		for {
			next, ok := status.Next()
			if !ok {
				break
			}
			visited = append(visited, next)
			status = next
		}
		s.Equal(ProductionOrder(), visited)
	})

	s.Run("terminal state has no next", func() {
		_, ok := ProductionDelivered.Next()
		s.False(ok)
	})

	s.Run("unknown status has no next", func() {
		_, ok := ProductionStatus("lost").Next()
		s.False(ok)
	})
}

func (s *ProductionSuite) TestCanAdvance() {
	s.Run("forward moves allowed, skipping included", func() {
		s.True(ProductionRegistered.CanAdvance(ProductionBatched))
		s.True(ProductionRegistered.CanAdvance(ProductionProduced))
	})

	s.Run("backward and same-state moves rejected", func() {
		s.False(ProductionShipped.CanAdvance(ProductionExported))
		s.False(ProductionExported.CanAdvance(ProductionExported))
	})

	s.Run("unknown target rejected", func() {
		s.False(ProductionRegistered.CanAdvance(ProductionStatus("lost")))
	})
}

func (s *ProductionSuite) TestDisplayConfig() {
	s.Run("every state has a label, description and color", func() {
		for _, status := range ProductionOrder() {
			s.NotEmpty(status.Label(), "label %s", status)
			s.NotEmpty(status.Description(), "description %s", status)
			s.NotEmpty(status.Color(), "color %s", status)
		}
	})

	s.Run("unknown status falls back to the initial state's display", func() {
		s.Equal(ProductionRegistered.Label(), ProductionStatus("lost").Label())
	})
}
