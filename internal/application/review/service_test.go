package review

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefronthq/storefront/internal/application/auth"
	domain "github.com/storefronthq/storefront/internal/domain/catalog"
	"github.com/storefronthq/storefront/internal/infrastructure/memory"
)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

var (
	ada = auth.Identity{UserID: "u1", Username: "ada"}
	bob = auth.Identity{UserID: "u2", Username: "bob"}
)

func newService(t *testing.T) *Service {
	t.Helper()
	repo := memory.NewProductRepository()
	p, err := domain.NewProduct("p1", "Kettle", "", "", 25, 5)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), p))
	return NewService(repo, &seqIDs{})
}

func TestAddReview(t *testing.T) {
	svc := newService(t)

	updated, err := svc.AddReview(context.Background(), ada, "p1", "solid kettle", 4)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ReviewCount())
	assert.InDelta(t, 4.0, updated.Rating(), 1e-9)
}

func TestAddReviewTwiceForbidden(t *testing.T) {
	svc := newService(t)

	_, err := svc.AddReview(context.Background(), ada, "p1", "solid", 4)
	require.NoError(t, err)

	_, err = svc.AddReview(context.Background(), ada, "p1", "changed my mind", 1)
	assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)
}

func TestAddReviewDifferentUsers(t *testing.T) {
	svc := newService(t)

	_, err := svc.AddReview(context.Background(), ada, "p1", "solid", 4)
	require.NoError(t, err)
	updated, err := svc.AddReview(context.Background(), bob, "p1", "meh", 2)
	require.NoError(t, err)

	assert.Equal(t, 2, updated.ReviewCount())
	assert.InDelta(t, 3.0, updated.Rating(), 1e-9)
}

func TestAddReviewUnknownProduct(t *testing.T) {
	svc := newService(t)
	_, err := svc.AddReview(context.Background(), ada, "ghost", "x", 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddReviewUnauthenticated(t *testing.T) {
	svc := newService(t)
	_, err := svc.AddReview(context.Background(), auth.Identity{}, "p1", "x", 3)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestEditReviewUpdatesInPlace(t *testing.T) {
	svc := newService(t)

	first, err := svc.AddReview(context.Background(), ada, "p1", "solid", 4)
	require.NoError(t, err)
	originalID := first.Reviews[0].ID
	originalCreatedAt := first.Reviews[0].CreatedAt

	updated, err := svc.EditReview(context.Background(), ada, "p1", "actually great", 5)
	require.NoError(t, err)

	require.Equal(t, 1, updated.ReviewCount(), "edit never creates a new entry")
	edited := updated.ReviewBy("ada")
	require.NotNil(t, edited)
	assert.Equal(t, originalID, edited.ID)
	assert.Equal(t, originalCreatedAt, edited.CreatedAt)
	assert.Equal(t, "actually great", edited.Body)
	assert.Equal(t, 5, edited.Rating)
}

func TestEditReviewWithoutPriorIsNotFound(t *testing.T) {
	svc := newService(t)
	_, err := svc.EditReview(context.Background(), ada, "p1", "x", 3)
	assert.ErrorIs(t, err, domain.ErrReviewNotFound)
}

func TestConcurrentAddReviewSameUser(t *testing.T) {
	svc := newService(t)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddReview(context.Background(), ada, "p1", "race", 4)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded, "two concurrent adds by one user must not both succeed")
}
