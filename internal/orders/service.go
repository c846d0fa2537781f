package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bandejao/cantina-backend/internal/cart"
	"github.com/bandejao/cantina-backend/pkg/config"
	"github.com/bandejao/cantina-backend/pkg/db/models"
	"github.com/bandejao/cantina-backend/pkg/enums"
	pkgerrors "github.com/bandejao/cantina-backend/pkg/errors"
)

// Service defines the order operations used by the controllers.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderDTO, error)
	Get(ctx context.Context, userID uuid.UUID, role enums.UserRole, orderID uuid.UUID) (*OrderDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID, filters ListFilters) ([]OrderDTO, error)
	ListAll(ctx context.Context, filters ListFilters) ([]OrderDTO, error)
	Cancel(ctx context.Context, userID uuid.UUID, role enums.UserRole, orderID uuid.UUID) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo  *Repository
	carts *cart.Repository
	tx    txRunner
	cfg   config.OrdersConfig
}

// ServiceParams bundles the dependencies required to build an order service.
type ServiceParams struct {
	OrderRepo *Repository
	CartRepo  *cart.Repository
	TxRunner  txRunner
	Config    config.OrdersConfig
}

// NewService constructs an order service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{
		repo:  params.OrderRepo,
		carts: params.CartRepo,
		tx:    params.TxRunner,
		cfg:   params.Config,
	}, nil
}

// orderLine is a validated line ready to be frozen into an order.
type orderLine struct {
	product  *models.Product
	quantity int
}

// Create converts the caller's cart (or an explicit item list) into an
// order. Counter claim, order insert, item snapshot, history row, and cart
// clearing happen in one transaction so a failure leaves no trace.
func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderDTO, error) {
	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		carts := s.carts.WithTx(tx)

		lines, fromCart, err := s.resolveLines(ctx, tx, carts, userID, req)
		if err != nil {
			return err
		}

		number, err := repo.NextOrderNumber(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim order number")
		}

		order := &models.Order{
			ID:          uuid.New(),
			OrderNumber: number,
			UserID:      userID,
			Status:      enums.OrderStatusPendente,
			Total:       decimal.Zero,
			Notes:       req.Notes,
		}
		for _, line := range lines {
			subtotal := line.product.Price.Mul(decimal.NewFromInt(int64(line.quantity)))
			order.Items = append(order.Items, models.OrderItem{
				ID:          uuid.New(),
				ProductID:   line.product.ID,
				ProductName: line.product.Name,
				Quantity:    line.quantity,
				UnitPrice:   line.product.Price,
				Subtotal:    subtotal,
			})
			order.Total = order.Total.Add(subtotal)
		}

		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		if err := repo.AppendHistory(ctx, &models.OrderStatusHistory{
			ID:      uuid.New(),
			OrderID: order.ID,
			Status:  enums.OrderStatusPendente,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append order history")
		}

		if fromCart != uuid.Nil {
			if err := carts.DeleteItems(ctx, fromCart); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
			}
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, created.ID)
}

func (s *service) Get(ctx context.Context, userID uuid.UUID, role enums.UserRole, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// Non-admins see their own orders only; other orders look absent.
	if role != enums.UserRoleAdmin && order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return fromModel(order), nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, filters ListFilters) ([]OrderDTO, error) {
	filters.UserID = &userID
	orders, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return fromModels(orders), nil
}

func (s *service) ListAll(ctx context.Context, filters ListFilters) ([]OrderDTO, error) {
	orders, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return fromModels(orders), nil
}

// Cancel moves an order to CANCELADO. Users may cancel their own PENDENTE
// orders; EM_PREPARO cancellation is admin-only and policy-gated.
func (s *service) Cancel(ctx context.Context, userID uuid.UUID, role enums.UserRole, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if role != enums.UserRoleAdmin && order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	switch order.Status {
	case enums.OrderStatusPendente:
	case enums.OrderStatusEmPreparo:
		if role != enums.UserRoleAdmin {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already being prepared")
		}
		if !s.cfg.AllowCancelInPreparo {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cancellation of orders in preparation is disabled")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order in status %s cannot be cancelled", order.Status))
	}

	if err := s.transition(ctx, order, enums.OrderStatusCancelado); err != nil {
		return nil, err
	}
	return s.reload(ctx, order.ID)
}

// UpdateStatus applies an admin transition, enforcing the lifecycle edges.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(order.Status, status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot transition from %s to %s", order.Status, status))
	}
	if order.Status == enums.OrderStatusEmPreparo &&
		status == enums.OrderStatusCancelado &&
		!s.cfg.AllowCancelInPreparo {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cancellation of orders in preparation is disabled")
	}

	if err := s.transition(ctx, order, status); err != nil {
		return nil, err
	}
	return s.reload(ctx, order.ID)
}

// transition updates the status and appends the history row atomically.
func (s *service) transition(ctx context.Context, order *models.Order, to enums.OrderStatus) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateStatus(ctx, order.ID, to.String()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
		if err := repo.AppendHistory(ctx, &models.OrderStatusHistory{
			ID:      uuid.New(),
			OrderID: order.ID,
			Status:  to,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append order history")
		}
		return nil
	})
}

// resolveLines validates and prices the order source. Returns the cart ID
// to clear when the order was sourced from the cart, uuid.Nil otherwise.
func (s *service) resolveLines(ctx context.Context, tx *gorm.DB, carts *cart.Repository, userID uuid.UUID, req CreateOrderRequest) ([]orderLine, uuid.UUID, error) {
	if len(req.Items) > 0 {
		lines := make([]orderLine, 0, len(req.Items))
		for _, item := range req.Items {
			if item.Quantity < 1 {
				return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
			}
			product, err := s.loadProduct(ctx, tx, item.ProductID)
			if err != nil {
				return nil, uuid.Nil, err
			}
			lines = append(lines, orderLine{product: product, quantity: item.Quantity})
		}
		return lines, uuid.Nil, nil
	}

	userCart, err := carts.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(userCart.Items) == 0 {
		return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	lines := make([]orderLine, 0, len(userCart.Items))
	for i := range userCart.Items {
		item := &userCart.Items[i]
		product := item.Product
		if product == nil {
			loaded, err := s.loadProduct(ctx, tx, item.ProductID)
			if err != nil {
				return nil, uuid.Nil, err
			}
			product = loaded
		}
		if !product.IsAvailable {
			return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("product %s is not available", product.Name))
		}
		lines = append(lines, orderLine{product: product, quantity: item.Quantity})
	}
	return lines, userCart.ID, nil
}

func (s *service) loadProduct(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := tx.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("product %s is not available", product.Name))
	}
	return &product, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return fromModel(order), nil
}
