package catalog

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("catalog: product not found")
	ErrInvalidQuantity   = errors.New("catalog: quantity must be greater than zero")
	ErrInvalidPrice      = errors.New("catalog: price must be zero or greater")
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
	ErrNameRequired      = errors.New("catalog: name is required")
	ErrAlreadyReviewed   = errors.New("catalog: user already reviewed this product")
	ErrReviewNotFound    = errors.New("catalog: review not found")
	ErrInvalidRating     = errors.New("catalog: rating must be between 1 and 5")
)

const (
	RatingMin = 1
	RatingMax = 5
)

// Review is a single user review attached to a product. Username is a
// denormalized label copied at creation time, not a reference to a live
// user record.
type Review struct {
	ID        string
	Username  string
	Body      string
	Rating    int
	CreatedAt time.Time
}

type Product struct {
	ID          string
	Name        string
	Description string
	Image       string
	Price       float64
	SalePrice   float64
	OnSale      bool
	Stock       int
	Reviews     []Review
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewProduct(id, name, description, image string, price float64, stock int) (*Product, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if price < 0 {
		return nil, ErrInvalidPrice
	}
	if stock < 0 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now().UTC()
	return &Product{
		ID:          id,
		Name:        name,
		Description: description,
		Image:       image,
		Price:       price,
		Stock:       stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// EffectivePrice is the unit price a buyer pays right now.
func (p *Product) EffectivePrice() float64 {
	if p.OnSale {
		return p.SalePrice
	}
	return p.Price
}

func (p *Product) SetSalePrice(price float64) error {
	if price < 0 {
		return ErrInvalidPrice
	}
	p.SalePrice = price
	p.OnSale = true
	p.touch()
	return nil
}

func (p *Product) ClearSalePrice() {
	p.SalePrice = 0
	p.OnSale = false
	p.touch()
}

func (p *Product) AddStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	p.Stock += quantity
	p.touch()
	return nil
}

// RemoveStock deducts quantity, refusing to drive stock negative.
func (p *Product) RemoveStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > p.Stock {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	p.touch()
	return nil
}

// ReviewCount reports the number of reviews on the product.
func (p *Product) ReviewCount() int { return len(p.Reviews) }

// Rating is the arithmetic mean of all review ratings, computed on read.
// It is 0 when the product has no reviews.
func (p *Product) Rating() float64 {
	if len(p.Reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(p.Reviews))
}

// ReviewBy returns the review authored by username, or nil.
func (p *Product) ReviewBy(username string) *Review {
	for i := range p.Reviews {
		if p.Reviews[i].Username == username {
			return &p.Reviews[i]
		}
	}
	return nil
}

// AddReview appends a review, enforcing at most one review per username.
func (p *Product) AddReview(review Review) error {
	if review.Rating < RatingMin || review.Rating > RatingMax {
		return ErrInvalidRating
	}
	if p.ReviewBy(review.Username) != nil {
		return ErrAlreadyReviewed
	}
	p.Reviews = append(p.Reviews, review)
	p.touch()
	return nil
}

// EditReview overwrites the body and rating of the review authored by
// username, keeping its identifier and creation timestamp.
func (p *Product) EditReview(username, body string, rating int) error {
	if rating < RatingMin || rating > RatingMax {
		return ErrInvalidRating
	}
	existing := p.ReviewBy(username)
	if existing == nil {
		return ErrReviewNotFound
	}
	existing.Body = body
	existing.Rating = rating
	p.touch()
	return nil
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy so repository callers never alias stored state.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Reviews = append([]Review(nil), p.Reviews...)
	return &clone
}
