package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sajibhasan/gymkart/internal/domain/cart"
	"github.com/sajibhasan/gymkart/internal/domain/catalog"
	"github.com/sajibhasan/gymkart/internal/domain/customer"
	"github.com/sajibhasan/gymkart/internal/domain/discount"
	"github.com/sajibhasan/gymkart/internal/domain/shipping"
)

// InputError is a precondition failure detected before any I/O. The message
// is user-facing.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// ErrEmptyCart is returned when a checkout arrives with no items.
var ErrEmptyCart = &InputError{Message: "Your cart is empty"}

// AddressSaver merges the submitted shipping address into the shopper's
// saved address book and returns the customer's internal id.
type AddressSaver interface {
	SaveAddress(ctx context.Context, userID string, in customer.SaveAddressInput) (string, error)
}

// UsageRecorder increments a discount rule's usage counter.
// discount.Repository satisfies it.
type UsageRecorder interface {
	IncrementUses(ctx context.Context, id string) error
}

// CheckoutInput is the single entry-point contract for placing an order.
// UserID is empty for anonymous shoppers.
type CheckoutInput struct {
	Items         []cart.LineItem
	Address       customer.Address
	Email         string
	OrderNotes    string
	PaymentMethod PaymentMethod
	DiscountCode  string
	SaveAddress   bool
	MakeDefault   bool
	AddressKey    string
	UserID        string
}

// CheckoutResult is the sole success signal: the created order's storage id
// and its human-readable number.
type CheckoutResult struct {
	OrderID string
	Number  string
}

// Service runs the order-creation and inventory-reconciliation workflow.
type Service struct {
	catalog   catalog.Repository
	discounts discount.Validator
	usage     UsageRecorder
	addresses AddressSaver
	orders    Repository
	fees      shipping.FeeTable

	now   func() time.Time
	newID func() string
}

// NewService creates a checkout Service with the required collaborators.
func NewService(
	cat catalog.Repository,
	discounts discount.Validator,
	usage UsageRecorder,
	addresses AddressSaver,
	orders Repository,
	fees shipping.FeeTable,
) *Service {
	return &Service{
		catalog:   cat,
		discounts: discounts,
		usage:     usage,
		addresses: addresses,
		orders:    orders,
		fees:      fees,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// resolvedItem pairs a validated line item with its catalog record and the
// variant it resolved to (nil for base-stock products).
type resolvedItem struct {
	line    cart.LineItem
	product catalog.Product
	variant *catalog.Variant
}

// Checkout validates the cart against the catalog, prices the order,
// optionally saves the shipping address, persists the order, and applies
// the post-commit bookkeeping.
//
// Stock decrement and discount usage accounting run only after the order
// is committed and are best-effort: their failure is logged and swallowed,
// and the checkout is still reported successful. The order record is the
// source of truth for what was sold; stock figures may transiently drift.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	// Batch fetch every referenced product in one query.
	ids := make([]string, 0, len(in.Items))
	seen := make(map[string]struct{}, len(in.Items))
	for _, item := range in.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	fetched, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	products := make(map[string]catalog.Product, len(fetched))
	for _, p := range fetched {
		products[p.ID] = p
	}

	// Resolve variants and validate stock. All-or-nothing: any failing
	// item rejects the whole order with a single combined message.
	resolved := make([]resolvedItem, 0, len(in.Items))
	var problems []string
	for _, item := range in.Items {
		var v *catalog.Variant
		p, ok := products[item.ProductID]
		if ok {
			v = catalog.ResolveVariant(p, item.Variant)
		}
		if msg := catalog.CheckAvailability(products, item, v); msg != "" {
			problems = append(problems, msg)
			continue
		}
		resolved = append(resolved, resolvedItem{line: item, product: p, variant: v})
	}
	if len(problems) > 0 {
		return nil, &catalog.AvailabilityError{Problems: problems}
	}

	// Subtotal from the line items' own prices: the price shown at
	// add-to-cart time is honored at checkout, the catalog is consulted
	// only for stock and variant truth.
	subtotal := decimal.Zero
	for _, item := range in.Items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	shippingFee := s.fees.Fee(in.Address.Division, subtotal)

	discountAmount := decimal.Zero
	var resolution *discount.Resolution
	if in.DiscountCode != "" {
		resolution, err = s.discounts.Validate(ctx, in.DiscountCode, subtotal)
		if err != nil {
			return nil, err
		}
		discountAmount = resolution.AppliedAmount
	}

	// Total = max(0, subtotal - discount) + shipping. The clamp guards
	// against a misconfigured fixed discount exceeding the subtotal.
	total := subtotal.Sub(discountAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	total = total.Add(shippingFee).Round(2)

	customerID := ""
	if in.UserID != "" && in.SaveAddress {
		customerID, err = s.addresses.SaveAddress(ctx, in.UserID, customer.SaveAddressInput{
			Address:     in.Address,
			AddressKey:  in.AddressKey,
			MakeDefault: in.MakeDefault,
			Email:       in.Email,
		})
		if err != nil {
			return nil, errors.Wrap(err, "save address")
		}
	}

	method := in.PaymentMethod
	if method == "" {
		method = PaymentCOD
	}
	status := StatusCOD
	if method == PaymentOnline {
		status = StatusPaid
	}

	o := &Order{
		ID:             s.newID(),
		Number:         GenerateNumber(s.now()),
		CustomerID:     customerID,
		UserID:         in.UserID,
		Email:          in.Email,
		Items:          buildItems(resolved),
		Subtotal:       subtotal.Round(2),
		ShippingFee:    shippingFee.Round(2),
		DiscountAmount: discountAmount.Round(2),
		Total:          total,
		Status:         status,
		PaymentMethod:  method,
		Notes:          strings.TrimSpace(in.OrderNotes),
		Address:        snapshotAddress(in.Address),
		CreatedAt:      s.now(),
	}
	if resolution != nil {
		o.DiscountCode = resolution.Code
		o.DiscountTitle = resolution.Title
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	// Post-commit bookkeeping. The order is already the source of truth;
	// failures here are logged and swallowed.
	s.decrementStock(ctx, o.ID, resolved)
	if resolution != nil {
		s.recordDiscountUse(ctx, o.ID, resolution)
	}

	return &CheckoutResult{OrderID: o.ID, Number: o.Number}, nil
}

func (s *Service) decrementStock(ctx context.Context, orderID string, resolved []resolvedItem) {
	decs := make([]catalog.StockDecrement, len(resolved))
	for i, r := range resolved {
		dec := catalog.StockDecrement{
			ProductID: r.product.ID,
			Quantity:  r.line.Quantity,
		}
		if r.variant != nil {
			dec.VariantKey = r.variant.Key
		}
		decs[i] = dec
	}

	if err := s.catalog.DecrementStock(ctx, decs); err != nil {
		zctx.From(ctx).Error("stock decrement failed, figures will drift until reconciled",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
	}
}

func (s *Service) recordDiscountUse(ctx context.Context, orderID string, res *discount.Resolution) {
	if err := s.usage.IncrementUses(ctx, res.ID); err != nil {
		zctx.From(ctx).Error("discount usage increment failed",
			zap.String("order_id", orderID),
			zap.String("discount_code", res.Code),
			zap.Error(err),
		)
	}
}

func buildItems(resolved []resolvedItem) []Item {
	items := make([]Item, len(resolved))
	for i, r := range resolved {
		item := Item{
			ProductID:       r.product.ID,
			Name:            r.product.Name,
			Quantity:        r.line.Quantity,
			PriceAtPurchase: r.line.Price,
		}
		if r.variant != nil {
			item.VariantKey = r.variant.Key
			item.VariantSKU = r.variant.SKU
			item.VariantTitle = catalog.VariantLabel(r.variant)
			item.VariantOptions = r.variant.Options
		}
		items[i] = item
	}
	return items
}

// snapshotAddress strips address-book bookkeeping from the submitted
// address: the order stores an inline copy independent of any saved entry.
func snapshotAddress(a customer.Address) customer.Address {
	a.Key = ""
	a.IsDefault = false
	return a
}

func validateInput(in CheckoutInput) error {
	if len(in.Items) == 0 {
		return ErrEmptyCart
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return &InputError{Message: "Invalid quantity for " + item.Name}
		}
	}

	a := in.Address
	if isBlank(a.Name) || isBlank(a.Line1) || isBlank(a.Division) || isBlank(a.Phone) {
		return &InputError{Message: "Please provide your name, address, division and phone number"}
	}
	if !shipping.ValidDivision(a.Division) {
		return &InputError{Message: "We do not deliver to " + a.Division}
	}

	if in.PaymentMethod != "" && in.PaymentMethod != PaymentCOD && in.PaymentMethod != PaymentOnline {
		return &InputError{Message: "Unsupported payment method"}
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
