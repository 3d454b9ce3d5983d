package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Seifallahbhj/beyana-Naturellement-Bio/models"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/tests/testutil"
)

// OrderServiceTestSuite defines the test suite for order placement and
// cancellation.
type OrderServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	user     models.User
	category models.Category
}

// SetupTest runs before each test
func (suite *OrderServiceTestSuite) SetupTest() {
	testutil.MustSetTestEnvironment(suite.T())

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.NoError(err)
	suite.db = db

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderCounter{},
	)
	suite.NoError(err)

	suite.user = models.User{
		FirstName: "Marie",
		LastName:  "Dupont",
		Email:     "marie@test.com",
		Role:      models.RoleUser,
	}
	suite.NoError(suite.user.SetPassword("password123"))
	suite.NoError(db.Create(&suite.user).Error)

	suite.category = models.Category{Name: "Superfoods", Slug: "superfoods"}
	suite.NoError(db.Create(&suite.category).Error)
}

func (suite *OrderServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

// createProduct inserts a product with the given price and stock
func (suite *OrderServiceTestSuite) createProduct(name, price string, stock int) models.Product {
	product := models.Product{
		Name:        name,
		Slug:        name,
		Description: "test product",
		Price:       decimal.RequireFromString(price),
		CategoryID:  suite.category.ID,
		Stock:       stock,
	}
	suite.NoError(suite.db.Create(&product).Error)
	return product
}

func (suite *OrderServiceTestSuite) shippingAddress() models.ShippingAddress {
	return models.ShippingAddress{
		Street:     "12 rue des Lilas",
		City:       "Lyon",
		PostalCode: "69003",
		Country:    "France",
	}
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_TotalsAboveFreeShippingThreshold() {
	product := suite.createProduct("quinoa", "30.00", 10)

	order, err := PlaceOrder(suite.db, suite.user.ID, PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: suite.shippingAddress(),
		PaymentMethod:   "card",
	})
	suite.NoError(err)

	// 60 items + 12 tax + free shipping
	suite.True(order.ItemsPrice.Equal(decimal.RequireFromString("60")))
	suite.True(order.TaxPrice.Equal(decimal.RequireFromString("12")))
	suite.True(order.ShippingPrice.IsZero())
	suite.True(order.TotalPrice.Equal(decimal.RequireFromString("72")))
	suite.Equal(6, order.LoyaltyPointsEarned)
	suite.Equal(models.OrderStatusPending, order.Status)
	suite.Equal(models.PaymentStatusPending, order.PaymentStatus)
	suite.Len(order.Items, 1)
	suite.Equal("quinoa", order.Items[0].Name)

	var updatedProduct models.Product
	suite.NoError(suite.db.First(&updatedProduct, product.ID).Error)
	suite.Equal(8, updatedProduct.Stock)
	suite.Equal(2, updatedProduct.Sold)

	var updatedUser models.User
	suite.NoError(suite.db.First(&updatedUser, suite.user.ID).Error)
	suite.Equal(6, updatedUser.LoyaltyPoints)
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_StandardShippingBelowThreshold() {
	product := suite.createProduct("chia", "10.00", 5)

	order, err := PlaceOrder(suite.db, suite.user.ID, PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: suite.shippingAddress(),
		PaymentMethod:   "card",
	})
	suite.NoError(err)

	// 20 items + 4 tax + 4.99 shipping
	suite.True(order.ShippingPrice.Equal(decimal.RequireFromString("4.99")))
	suite.True(order.TotalPrice.Equal(decimal.RequireFromString("28.99")))
	suite.Equal(2, order.LoyaltyPointsEarned)
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_ExactlyAtThresholdPaysShipping() {
	product := suite.createProduct("spiruline", "50.00", 5)

	order, err := PlaceOrder(suite.db, suite.user.ID, PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: suite.shippingAddress(),
		PaymentMethod:   "card",
	})
	suite.NoError(err)

	suite.True(order.ShippingPrice.Equal(decimal.RequireFromString("4.99")))
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_UsesDiscountPrice() {
	discount := decimal.RequireFromString("8.00")
	product := models.Product{
		Name:          "baies-goji",
		Slug:          "baies-goji",
		Description:   "test product",
		Price:         decimal.RequireFromString("12.00"),
		DiscountPrice: &discount,
		CategoryID:    suite.category.ID,
		Stock:         5,
	}
	suite.NoError(suite.db.Create(&product).Error)

	order, err := PlaceOrder(suite.db, suite.user.ID, PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: suite.shippingAddress(),
		PaymentMethod:   "card",
	})
	suite.NoError(err)

	suite.True(order.ItemsPrice.Equal(discount))
	suite.True(order.Items[0].Price.Equal(discount))
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_EmptyCart() {
	_, err := PlaceOrder(suite.db, suite.user.ID, PlaceOrderInput{
		ShippingAddress: suite.shippingAddress(),
		PaymentMethod:   "card",
	})

	var appErr *AppError
	suite.ErrorAs(err, &appErr)
	suite.Equal("EMPTY_ORDER", appErr.Code)
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_UnknownProduct() {
	_, err := PlaceOrder(suite.db, suite.user.ID, PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: 9999, Quantity: 1}},
		ShippingAddress: suite.shippingAddress(),
		PaymentMethod:   "card",
	})

	var appErr *AppError
	suite.ErrorAs(err, &appErr)
	suite.Equal("PRODUCT_NOT_FOUND", appErr.Code)
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_InsufficientStockLeavesNothingBehind() {
	inStock := suite.createProduct("amandes", "10.00", 10)
	scarce := suite.createProduct("cacao", "10.00", 1)

	_, err := PlaceOrder(suite.db, suite.user.ID, PlaceOrderInput{
		Items: []OrderItemInput{
			{ProductID: inStock.ID, Quantity: 2},
			{ProductID: scarce.ID, Quantity: 3},
		},
		ShippingAddress: suite.shippingAddress(),
		PaymentMethod:   "card",
	})

	var appErr *AppError
	suite.ErrorAs(err, &appErr)
	suite.Equal("INSUFFICIENT_STOCK", appErr.Code)

	// The transaction rolled back: no order, no stock movement, no points
	var orderCount int64
	suite.NoError(suite.db.Model(&models.Order{}).Count(&orderCount).Error)
	suite.Zero(orderCount)

	var untouched models.Product
	suite.NoError(suite.db.First(&untouched, inStock.ID).Error)
	suite.Equal(10, untouched.Stock)
	suite.Equal(0, untouched.Sold)

	var user models.User
	suite.NoError(suite.db.First(&user, suite.user.ID).Error)
	suite.Zero(user.LoyaltyPoints)
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_SequentialOrderNumbers() {
	product := suite.createProduct("avoine", "5.00", 100)

	first, err := PlaceOrder(suite.db, suite.user.ID, PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: suite.shippingAddress(),
		PaymentMethod:   "card",
	})
	suite.NoError(err)

	second, err := PlaceOrder(suite.db, suite.user.ID, PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: suite.shippingAddress(),
		PaymentMethod:   "card",
	})
	suite.NoError(err)

	suite.Regexp(`^BEY-\d{6}-0001$`, first.OrderNumber)
	suite.Regexp(`^BEY-\d{6}-0002$`, second.OrderNumber)
}

func (suite *OrderServiceTestSuite) placeOrder(productID uint, quantity int) *models.Order {
	order, err := PlaceOrder(suite.db, suite.user.ID, PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: productID, Quantity: quantity}},
		ShippingAddress: suite.shippingAddress(),
		PaymentMethod:   "card",
	})
	suite.NoError(err)
	return order
}

func (suite *OrderServiceTestSuite) TestCancelOrder_RestoresStockAndSold() {
	product := suite.createProduct("lentilles", "15.00", 10)
	order := suite.placeOrder(product.ID, 3)

	cancelled, err := CancelOrder(suite.db, &suite.user, order.ID)
	suite.NoError(err)
	suite.Equal(models.OrderStatusCancelled, cancelled.Status)

	var restored models.Product
	suite.NoError(suite.db.First(&restored, product.ID).Error)
	suite.Equal(10, restored.Stock)
	suite.Equal(0, restored.Sold)
}

func (suite *OrderServiceTestSuite) TestCancelOrder_ClawsBackLoyaltyWhenPaid() {
	product := suite.createProduct("noix", "40.00", 10)
	order := suite.placeOrder(product.ID, 2) // 80 items, 8 points

	suite.NoError(suite.db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("payment_status", models.PaymentStatusPaid).Error)

	_, err := CancelOrder(suite.db, &suite.user, order.ID)
	suite.NoError(err)

	var user models.User
	suite.NoError(suite.db.First(&user, suite.user.ID).Error)
	suite.Zero(user.LoyaltyPoints)
}

func (suite *OrderServiceTestSuite) TestCancelOrder_UnpaidKeepsLoyaltyUntouchedByClawback() {
	product := suite.createProduct("miel", "40.00", 10)
	order := suite.placeOrder(product.ID, 2) // 8 points earned

	_, err := CancelOrder(suite.db, &suite.user, order.ID)
	suite.NoError(err)

	// Unpaid order: accrued points stay, only stock is restored
	var user models.User
	suite.NoError(suite.db.First(&user, suite.user.ID).Error)
	suite.Equal(8, user.LoyaltyPoints)
}

func (suite *OrderServiceTestSuite) TestCancelOrder_RejectsShippedOrder() {
	product := suite.createProduct("sarrasin", "15.00", 10)
	order := suite.placeOrder(product.ID, 2)

	suite.NoError(suite.db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", models.OrderStatusShipped).Error)

	_, err := CancelOrder(suite.db, &suite.user, order.ID)

	var appErr *AppError
	suite.ErrorAs(err, &appErr)
	suite.Equal("ORDER_NOT_CANCELLABLE", appErr.Code)

	// Nothing moved
	var product2 models.Product
	suite.NoError(suite.db.First(&product2, product.ID).Error)
	suite.Equal(8, product2.Stock)
	suite.Equal(2, product2.Sold)
}

func (suite *OrderServiceTestSuite) TestCancelOrder_ForbiddenForOtherUsers() {
	product := suite.createProduct("tofu", "15.00", 10)
	order := suite.placeOrder(product.ID, 1)

	other := models.User{FirstName: "Paul", LastName: "Martin", Email: "paul@test.com", Role: models.RoleUser}
	suite.NoError(other.SetPassword("password123"))
	suite.NoError(suite.db.Create(&other).Error)

	_, err := CancelOrder(suite.db, &other, order.ID)

	var appErr *AppError
	suite.ErrorAs(err, &appErr)
	suite.Equal("FORBIDDEN", appErr.Code)
}

func (suite *OrderServiceTestSuite) TestCancelOrder_AdminMayCancelAnyOrder() {
	product := suite.createProduct("riz", "15.00", 10)
	order := suite.placeOrder(product.ID, 1)

	admin := models.User{FirstName: "Ava", LastName: "Admin", Email: "admin@test.com", Role: models.RoleAdmin}
	suite.NoError(admin.SetPassword("password123"))
	suite.NoError(suite.db.Create(&admin).Error)

	cancelled, err := CancelOrder(suite.db, &admin, order.ID)
	suite.NoError(err)
	suite.Equal(models.OrderStatusCancelled, cancelled.Status)
}

func (suite *OrderServiceTestSuite) TestCancelOrder_UnknownOrder() {
	_, err := CancelOrder(suite.db, &suite.user, 4242)

	var appErr *AppError
	suite.ErrorAs(err, &appErr)
	suite.Equal("ORDER_NOT_FOUND", appErr.Code)
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
