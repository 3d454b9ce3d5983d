package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Seifallahbhj/beyana-Naturellement-Bio/config"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/middleware"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/models"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/services"
)

// PlaceOrderRequest represents the request body for placing an order
type PlaceOrderRequest struct {
	Items           []services.OrderItemInput `json:"items" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddressRequest    `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                    `json:"paymentMethod" binding:"required,oneof=card paypal stripe"`
}

// ShippingAddressRequest carries the delivery address for a new order
type ShippingAddressRequest struct {
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

// UpdateOrderStatusRequest represents the request body for a status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdatePaymentStatusRequest represents the request body for a payment update
type UpdatePaymentStatusRequest struct {
	PaymentStatus string  `json:"paymentStatus" binding:"required"`
	TransactionID *string `json:"transactionId"`
}

// PlaceOrder handles POST /api/v1/orders
func PlaceOrder(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	order, err := services.PlaceOrder(config.GetDB(), user.ID, services.PlaceOrderInput{
		Items: req.Items,
		ShippingAddress: models.ShippingAddress{
			Street:     req.ShippingAddress.Street,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// GetOrders handles GET /api/v1/orders (admin) with filtering and pagination
func GetOrders(c *gin.Context) {
	db := config.GetDB()
	page, limit, offset := paginationParams(c)

	query := db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if paymentStatus := c.Query("paymentStatus"); paymentStatus != "" {
		query = query.Where("payment_status = ?", paymentStatus)
	}
	if orderNumber := c.Query("orderNumber"); orderNumber != "" {
		query = query.Where("order_number = ?", orderNumber)
	}
	if userID := c.Query("user"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("created_at >= ?", t)
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("created_at < ?", t.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}

	var orders []models.Order
	if err := query.Preload("User").Preload("Items").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       orders,
		"pagination": paginationMeta(page, limit, total),
	})
}

// GetMyOrders handles GET /api/v1/orders/me
func GetMyOrders(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	page, limit, offset := paginationParams(c)
	query := config.GetDB().Model(&models.Order{}).Where("user_id = ?", user.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       orders,
		"pagination": paginationMeta(page, limit, total),
	})
}

// GetOrder handles GET /api/v1/orders/:id - owner or admin only
func GetOrder(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var order models.Order
	if err := config.GetDB().Preload("User").Preload("Items").First(&order, id).Error; err != nil {
		respondError(c, err)
		return
	}

	if order.UserID != user.ID && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You are not allowed to view this order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrderStatus handles PUT /api/v1/orders/:id/status (admin/manager)
func UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if !models.ValidOrderStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": "Unknown order status: " + req.Status,
			},
		})
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, id).Error; err != nil {
		respondError(c, err)
		return
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Status == models.OrderStatusDelivered && order.DeliveredAt == nil {
		updates["delivered_at"] = time.Now()
	}
	if err := db.Model(&order).Updates(updates).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdatePaymentStatus handles PUT /api/v1/orders/:id/payment (admin/manager)
func UpdatePaymentStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if !models.ValidPaymentStatus(req.PaymentStatus) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": "Unknown payment status: " + req.PaymentStatus,
			},
		})
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, id).Error; err != nil {
		respondError(c, err)
		return
	}

	updates := map[string]interface{}{"payment_status": req.PaymentStatus}
	if req.TransactionID != nil {
		updates["transaction_id"] = *req.TransactionID
	}
	if err := db.Model(&order).Updates(updates).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// CancelOrder handles PUT /api/v1/orders/:id/cancel
func CancelOrder(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := services.CancelOrder(config.GetDB(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// orderStatusCount is one GROUP BY status row for the stats endpoint
type orderStatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// dailySalesRow is one per-day aggregate of paid orders
type dailySalesRow struct {
	Day     string  `json:"day"`
	Revenue float64 `json:"revenue"`
	Orders  int64   `json:"orders"`
}

// topProductRow is one best-seller entry derived from order line items
type topProductRow struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int64   `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

// GetOrderStats handles GET /api/v1/orders/stats (admin/manager)
func GetOrderStats(c *gin.Context) {
	db := config.GetDB()

	var summary struct {
		TotalOrders  int64   `json:"totalOrders"`
		TotalRevenue float64 `json:"totalRevenue"`
		AverageOrder float64 `json:"averageOrder"`
	}
	if err := db.Model(&models.Order{}).
		Select("COUNT(*) AS total_orders, COALESCE(SUM(total_price), 0) AS total_revenue, COALESCE(AVG(total_price), 0) AS average_order").
		Where("status <> ?", models.OrderStatusCancelled).
		Scan(&summary).Error; err != nil {
		respondError(c, err)
		return
	}

	var byStatus []orderStatusCount
	if err := db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").Scan(&byStatus).Error; err != nil {
		respondError(c, err)
		return
	}

	var dailySales []dailySalesRow
	if err := db.Model(&models.Order{}).
		Select("DATE(created_at) AS day, COALESCE(SUM(total_price), 0) AS revenue, COUNT(*) AS orders").
		Where("payment_status = ?", models.PaymentStatusPaid).
		Group("DATE(created_at)").Order("day DESC").Limit(30).
		Scan(&dailySales).Error; err != nil {
		respondError(c, err)
		return
	}

	var topProducts []topProductRow
	if err := db.Model(&models.OrderItem{}).
		Select("order_items.product_id, order_items.name, SUM(order_items.quantity) AS quantity, SUM(order_items.price * order_items.quantity) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status <> ?", models.OrderStatusCancelled).
		Group("order_items.product_id, order_items.name").
		Order("quantity DESC").Limit(5).
		Scan(&topProducts).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"summary":     summary,
			"byStatus":    byStatus,
			"dailySales":  dailySales,
			"topProducts": topProducts,
		},
	})
}
