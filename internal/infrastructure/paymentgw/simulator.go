package paymentgw

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/storefronthq/storefront/internal/domain/payment"
)

// Simulator is a local stand-in for the hosted provider, used when no
// endpoint is configured. Sessions succeed with a fixed probability so
// failure paths stay reachable in dev.
type Simulator struct {
	mu          sync.Mutex
	random      *rand.Rand
	successRate float64
	idGenerator interface{ NewID() string }
}

func NewSimulator(idGen interface{ NewID() string }) *Simulator {
	return &Simulator{
		random:      rand.New(rand.NewSource(time.Now().UnixNano())),
		successRate: 0.9,
		idGenerator: idGen,
	}
}

func (s *Simulator) CreateSession(ctx context.Context, req payment.SessionRequest) (*payment.Session, error) {
	_ = ctx
	if len(req.LineItems) == 0 {
		return nil, fmt.Errorf("%w: no line items", payment.ErrProvider)
	}
	for _, li := range req.LineItems {
		if li.Quantity <= 0 || li.UnitAmount < 0 {
			return nil, fmt.Errorf("%w: invalid line item for product %s", payment.ErrProvider, li.ProductID)
		}
	}

	s.mu.Lock()
	roll := s.random.Float64()
	s.mu.Unlock()
	if roll > s.successRate {
		return nil, fmt.Errorf("%w: simulated decline", payment.ErrProvider)
	}

	id := s.idGenerator.NewID()
	return &payment.Session{
		ID:  "sim_" + id,
		URL: "https://pay.example.com/session/" + id,
	}, nil
}
