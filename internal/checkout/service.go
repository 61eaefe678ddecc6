package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/aragel-soft/chulada-pos-sub001/internal/catalog"
	"github.com/aragel-soft/chulada-pos-sub001/internal/events"
	"github.com/aragel-soft/chulada-pos-sub001/internal/pricing"
	"github.com/aragel-soft/chulada-pos-sub001/internal/register"
)

// ErrEmptyTicket is returned when completing a ticket with no lines.
var ErrEmptyTicket = errors.New("ticket has no line items")

// Sale is a persisted, completed ticket.
type Sale struct {
	ID         uuid.UUID     `json:"id"`
	RegisterID string        `json:"registerId"`
	Subtotal   pricing.Money `json:"subtotal"`
	Discount   pricing.Money `json:"discount"`
	Total      pricing.Money `json:"total"`
	PaymentRef string        `json:"paymentRef"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// Service persists completed tickets and adjusts stock. Payment itself is an
// opaque reference supplied by the caller.
type Service struct {
	Pool    *pgxpool.Pool
	Catalog *catalog.Store
	Events  *events.Bus
	Logger  zerolog.Logger
	Now     func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Complete records the ticket as a sale, decrements stock for every line
// (gifts leave the shelf too), and emits sale.completed plus stock.low
// events. The caller is responsible for refusing checkout while a kit gift
// obligation is outstanding.
func (s *Service) Complete(ctx context.Context, registerID string, t *register.Ticket, paymentRef string) (Sale, error) {
	if t == nil || len(t.Lines) == 0 {
		return Sale{}, ErrEmptyTicket
	}
	summary := t.Total()
	sale := Sale{
		RegisterID: registerID,
		Subtotal:   summary.Subtotal,
		Discount:   summary.Discount,
		Total:      summary.Total,
		PaymentRef: paymentRef,
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return Sale{}, fmt.Errorf("begin checkout: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx,
		`INSERT INTO sales (register_id, subtotal, discount, total, payment_ref, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		registerID, sale.Subtotal, sale.Discount, sale.Total, paymentRef, s.now()).
		Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		return Sale{}, fmt.Errorf("insert sale: %w", err)
	}

	type lowStock struct {
		productID uuid.UUID
		remaining int
	}
	var low []lowStock
	for _, line := range t.Lines {
		if _, err := tx.Exec(ctx,
			`INSERT INTO sale_lines (sale_id, product_id, code, name, qty, unit_price, price_type, promo_id, kit_id, is_gift)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			sale.ID, line.ProductID, line.Code, line.Name, line.Qty, line.UnitPrice,
			string(line.PriceType), line.PromoID, line.KitID, line.IsGift); err != nil {
			return Sale{}, fmt.Errorf("insert sale line: %w", err)
		}
		remaining, minStock, err := s.Catalog.DecrementStock(ctx, tx, line.ProductID, line.Qty)
		if err != nil {
			return Sale{}, fmt.Errorf("decrement stock: %w", err)
		}
		if remaining <= minStock {
			low = append(low, lowStock{productID: line.ProductID, remaining: remaining})
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Sale{}, fmt.Errorf("commit checkout: %w", err)
	}

	if _, err := s.Events.Emit(ctx, events.TopicSaleCompleted, sale.ID, sale); err != nil {
		s.Logger.Error().Err(err).Str("sale_id", sale.ID.String()).Msg("emit sale.completed")
	}
	for _, l := range low {
		payload := map[string]any{"productId": l.productID, "remaining": l.remaining}
		if _, err := s.Events.Emit(ctx, events.TopicStockLow, l.productID, payload); err != nil {
			s.Logger.Error().Err(err).Str("product_id", l.productID.String()).Msg("emit stock.low")
		}
	}
	return sale, nil
}
