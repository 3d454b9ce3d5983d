package services

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Seifallahbhj/beyana-Naturellement-Bio/models"
)

// Pricing constants. Hardcoded business values, not configuration.
var (
	taxRate               = decimal.RequireFromString("0.20") // flat 20% VAT
	freeShippingThreshold = decimal.NewFromInt(50)
	standardShippingPrice = decimal.RequireFromString("4.99")
	loyaltyPointUnit      = decimal.NewFromInt(10) // 1 point per 10 spent
)

const orderNumberPrefix = "BEY"

// OrderItemInput is one (product, quantity) pair from the client's cart
type OrderItemInput struct {
	ProductID uint `json:"product" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gte=1"`
}

// PlaceOrderInput is everything needed to place an order
type PlaceOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
}

// PlaceOrder validates the cart, prices it, persists the order and applies
// stock and loyalty side effects. All writes share one transaction: a
// failure anywhere leaves stock, sold counts and loyalty balances untouched.
func PlaceOrder(db *gorm.DB, userID uint, in PlaceOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, NewAppError("EMPTY_ORDER", http.StatusBadRequest, "Please add at least one product to your order")
	}

	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		// Read-only validation and pricing pass. No write happens until
		// every line item has been checked.
		itemsPrice := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(in.Items))

		for _, item := range in.Items {
			var product models.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return NewAppError("PRODUCT_NOT_FOUND", http.StatusNotFound,
						fmt.Sprintf("Product not found: %d", item.ProductID))
				}
				return err
			}

			if product.Stock < item.Quantity {
				return NewAppError("INSUFFICIENT_STOCK", http.StatusBadRequest,
					fmt.Sprintf("Insufficient stock for %s. Available: %d", product.Name, product.Stock))
			}

			unitPrice := product.UnitPrice()
			itemsPrice = itemsPrice.Add(unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))

			image := ""
			if len(product.Images) > 0 {
				image = product.Images[0]
			}
			orderItems = append(orderItems, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Image:     image,
				Price:     unitPrice,
				Quantity:  item.Quantity,
			})
		}

		taxPrice := itemsPrice.Mul(taxRate)
		shippingPrice := standardShippingPrice
		if itemsPrice.GreaterThan(freeShippingThreshold) {
			shippingPrice = decimal.Zero
		}
		totalPrice := itemsPrice.Add(taxPrice).Add(shippingPrice)
		loyaltyPoints := int(itemsPrice.Div(loyaltyPointUnit).IntPart())

		orderNumber, err := nextOrderNumber(tx, time.Now())
		if err != nil {
			return err
		}

		order = models.Order{
			OrderNumber:         orderNumber,
			UserID:              userID,
			Items:               orderItems,
			ShippingAddress:     in.ShippingAddress,
			PaymentMethod:       in.PaymentMethod,
			PaymentStatus:       models.PaymentStatusPending,
			Status:              models.OrderStatusPending,
			ItemsPrice:          itemsPrice,
			TaxPrice:            taxPrice,
			ShippingPrice:       shippingPrice,
			TotalPrice:          totalPrice,
			LoyaltyPointsEarned: loyaltyPoints,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		// Column arithmetic keeps concurrent orders on the same product
		// from losing updates.
		for _, item := range orderItems {
			if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
				Updates(map[string]interface{}{
					"stock": gorm.Expr("stock - ?", item.Quantity),
					"sold":  gorm.Expr("sold + ?", item.Quantity),
				}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("loyalty_points", gorm.Expr("loyalty_points + ?", loyaltyPoints)).Error; err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrder reverses an order's side effects: status becomes cancelled,
// stock and sold counts are restored, and loyalty points are clawed back if
// the order was paid. The stored points value is used, never a recompute.
func CancelOrder(db *gorm.DB, requester *models.User, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewAppError("ORDER_NOT_FOUND", http.StatusNotFound, "Order not found")
		}
		return nil, err
	}

	if order.UserID != requester.ID && !requester.IsAdmin() {
		return nil, NewAppError("FORBIDDEN", http.StatusForbidden, "You are not allowed to cancel this order")
	}

	if !order.Cancellable() {
		return nil, NewAppError("ORDER_NOT_CANCELLABLE", http.StatusBadRequest, "This order can no longer be cancelled")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Update("status", models.OrderStatusCancelled).Error; err != nil {
			return err
		}

		for _, item := range order.Items {
			if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
				Updates(map[string]interface{}{
					"stock": gorm.Expr("stock + ?", item.Quantity),
					"sold":  gorm.Expr("sold - ?", item.Quantity),
				}).Error; err != nil {
				return err
			}
		}

		if order.PaymentStatus == models.PaymentStatusPaid {
			if err := tx.Model(&models.User{}).Where("id = ?", order.UserID).
				Update("loyalty_points", gorm.Expr("loyalty_points - ?", order.LoyaltyPointsEarned)).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// nextOrderNumber produces BEY-YYMMDD-NNNN from a per-day counter row. The
// upsert increments the existing row, so two orders created the same day in
// concurrent transactions cannot get the same sequence.
func nextOrderNumber(tx *gorm.DB, now time.Time) (string, error) {
	day := now.Format("060102")

	counter := models.OrderCounter{Day: day, Seq: 1}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"seq": gorm.Expr("order_counters.seq + 1")}),
	}).Create(&counter).Error; err != nil {
		return "", err
	}

	if err := tx.First(&counter, "day = ?", day).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%s-%04d", orderNumberPrefix, day, counter.Seq), nil
}
