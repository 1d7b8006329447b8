package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/internal/repositories"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/models"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/logger"
)

// DeliveryFeeAmount is the flat delivery surcharge applied to any non-empty
// priced cart.
var DeliveryFeeAmount = decimal.NewFromInt(20)

// PricedLine is one cart line resolved against current catalog prices.
type PricedLine struct {
	ItemID    int64           `json:"item_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// PricedCart is the result of pricing a cart: the surviving lines in cart
// insertion order plus the running subtotal.
type PricedCart struct {
	Lines    []PricedLine    `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// IsEmpty reports whether pricing left no purchasable lines.
func (p *PricedCart) IsEmpty() bool {
	return len(p.Lines) == 0
}

// Summary renders the human-readable items snapshot stored on an order,
// e.g. "SATTU PARATHA x2, THEKUA x1".
func (p *PricedCart) Summary() string {
	parts := make([]string, 0, len(p.Lines))
	for _, line := range p.Lines {
		parts = append(parts, fmt.Sprintf("%s x%d", line.Name, line.Quantity))
	}
	return strings.Join(parts, ", ")
}

type CartServiceInterface interface {
	Price(ctx context.Context, cart *models.Cart) (*PricedCart, error)
	DeliveryFee(subtotal decimal.Decimal) decimal.Decimal
}

type CartService struct {
	menuRepo repositories.MenuRepositoryInterface
	logger   *logger.Logger
}

func NewCartService(log *logger.Logger, menuRepo repositories.MenuRepositoryInterface) *CartService {
	return &CartService{
		menuRepo: menuRepo,
		logger:   log.WithComponent("cart_service"),
	}
}

// Price resolves the cart against the catalog in one batch lookup and prices
// every surviving line. Lines whose item no longer exists in the catalog are
// dropped without error; catalog drift between sessions is expected.
func (s *CartService) Price(ctx context.Context, cart *models.Cart) (*PricedCart, error) {
	lines := cart.Lines()
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ItemID)
	}

	items, err := s.menuRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to price cart: %w", err)
	}

	priced := &PricedCart{Subtotal: decimal.Zero}
	for _, line := range lines {
		item, ok := items[line.ItemID]
		if !ok {
			s.logger.Warn("Dropping cart line for missing menu item", "item_id", line.ItemID)
			continue
		}
		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		priced.Lines = append(priced.Lines, PricedLine{
			ItemID:    item.ID,
			Name:      item.Name,
			Quantity:  line.Quantity,
			UnitPrice: item.Price,
			LineTotal: lineTotal,
		})
		priced.Subtotal = priced.Subtotal.Add(lineTotal)
	}
	priced.Subtotal = priced.Subtotal.Round(2)
	return priced, nil
}

// DeliveryFee returns the flat surcharge for a non-empty subtotal, zero
// otherwise.
func (s *CartService) DeliveryFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.IsPositive() {
		return DeliveryFeeAmount
	}
	return decimal.Zero
}

var _ CartServiceInterface = (*CartService)(nil)
