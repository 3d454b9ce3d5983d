package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/Seifallahbhj/beyana-Naturellement-Bio/controllers"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/models"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/tests/testutil"
)

// ProductControllerTestSuite defines the test suite for product endpoints
type ProductControllerTestSuite struct {
	suite.Suite
	router   *gin.Engine
	db       *gorm.DB
	category *models.Category
}

func (suite *ProductControllerTestSuite) SetupTest() {
	setupTestConfig(suite.T())
	suite.db = setupTestDB(suite.T())
	suite.category = createTestCategory(suite.T(), suite.db, "Superfoods", "superfoods")
	admin := createTestUser(suite.T(), suite.db, "admin@test.com", models.RoleAdmin)

	suite.router = gin.New()
	v1 := suite.router.Group("/api/v1")
	{
		v1.GET("/products", controllers.GetProducts)
		v1.GET("/products/featured", controllers.GetFeaturedProducts)
		v1.GET("/products/slug/:slug", controllers.GetProductBySlug)
		v1.GET("/products/:id", controllers.GetProduct)
		v1.GET("/products/:id/similar", controllers.GetSimilarProducts)

		staff := testutil.MockAuthMiddleware(admin)
		v1.POST("/products", staff, controllers.CreateProduct)
		v1.PUT("/products/:id", staff, controllers.UpdateProduct)
		v1.DELETE("/products/:id", staff, controllers.DeleteProduct)
		v1.PUT("/products/:id/stock", staff, controllers.UpdateProductStock)
	}
}

func (suite *ProductControllerTestSuite) TearDownTest() {
	closeTestDB(suite.db)
}

func (suite *ProductControllerTestSuite) TestGetProducts_KeywordFilter() {
	createTestProduct(suite.T(), suite.db, suite.category.ID, "quinoa-bio", "10.00", 5)
	createTestProduct(suite.T(), suite.db, suite.category.ID, "chia", "6.00", 5)

	w := performJSON(suite.router, http.MethodGet, "/api/v1/products?keyword=QUINOA", nil)

	suite.Equal(http.StatusOK, w.Code)
	body := decodeBody(suite.T(), w)
	data := body["data"].([]interface{})
	suite.Len(data, 1)
	suite.Equal("quinoa-bio", data[0].(map[string]interface{})["name"])
}

func (suite *ProductControllerTestSuite) TestGetProducts_PriceRange() {
	createTestProduct(suite.T(), suite.db, suite.category.ID, "cheap", "3.00", 5)
	createTestProduct(suite.T(), suite.db, suite.category.ID, "mid", "10.00", 5)
	createTestProduct(suite.T(), suite.db, suite.category.ID, "pricey", "30.00", 5)

	w := performJSON(suite.router, http.MethodGet, "/api/v1/products?minPrice=5&maxPrice=20", nil)

	suite.Equal(http.StatusOK, w.Code)
	data := decodeBody(suite.T(), w)["data"].([]interface{})
	suite.Len(data, 1)
	suite.Equal("mid", data[0].(map[string]interface{})["name"])
}

func (suite *ProductControllerTestSuite) TestGetProducts_CategorySlugFilter() {
	other := createTestCategory(suite.T(), suite.db, "Boissons", "boissons")
	createTestProduct(suite.T(), suite.db, suite.category.ID, "quinoa", "10.00", 5)
	createTestProduct(suite.T(), suite.db, other.ID, "kombucha", "4.00", 5)

	w := performJSON(suite.router, http.MethodGet, "/api/v1/products?category=boissons", nil)

	suite.Equal(http.StatusOK, w.Code)
	data := decodeBody(suite.T(), w)["data"].([]interface{})
	suite.Len(data, 1)
	suite.Equal("kombucha", data[0].(map[string]interface{})["name"])
}

func (suite *ProductControllerTestSuite) TestGetProducts_UnknownCategoryReturnsEmpty() {
	createTestProduct(suite.T(), suite.db, suite.category.ID, "quinoa", "10.00", 5)

	w := performJSON(suite.router, http.MethodGet, "/api/v1/products?category=nope", nil)

	suite.Equal(http.StatusOK, w.Code)
	data := decodeBody(suite.T(), w)["data"].([]interface{})
	suite.Empty(data)
}

func (suite *ProductControllerTestSuite) TestGetProducts_SortByPriceDescending() {
	createTestProduct(suite.T(), suite.db, suite.category.ID, "cheap", "3.00", 5)
	createTestProduct(suite.T(), suite.db, suite.category.ID, "pricey", "30.00", 5)

	w := performJSON(suite.router, http.MethodGet, "/api/v1/products?sort=-price", nil)

	suite.Equal(http.StatusOK, w.Code)
	data := decodeBody(suite.T(), w)["data"].([]interface{})
	suite.Equal("pricey", data[0].(map[string]interface{})["name"])
}

func (suite *ProductControllerTestSuite) TestGetProducts_Pagination() {
	for _, name := range []string{"a", "b", "c"} {
		createTestProduct(suite.T(), suite.db, suite.category.ID, name, "5.00", 5)
	}

	w := performJSON(suite.router, http.MethodGet, "/api/v1/products?page=2&limit=2", nil)

	suite.Equal(http.StatusOK, w.Code)
	body := decodeBody(suite.T(), w)
	suite.Len(body["data"].([]interface{}), 1)
	pagination := body["pagination"].(map[string]interface{})
	suite.Equal(float64(2), pagination["page"])
	suite.Equal(float64(2), pagination["totalPages"])
}

func (suite *ProductControllerTestSuite) TestGetFeaturedProducts() {
	product := createTestProduct(suite.T(), suite.db, suite.category.ID, "quinoa", "10.00", 5)
	suite.NoError(suite.db.Model(product).Update("featured", true).Error)
	createTestProduct(suite.T(), suite.db, suite.category.ID, "chia", "6.00", 5)

	w := performJSON(suite.router, http.MethodGet, "/api/v1/products/featured", nil)

	suite.Equal(http.StatusOK, w.Code)
	data := decodeBody(suite.T(), w)["data"].([]interface{})
	suite.Len(data, 1)
}

func (suite *ProductControllerTestSuite) TestGetProductBySlug() {
	createTestProduct(suite.T(), suite.db, suite.category.ID, "quinoa", "10.00", 5)

	w := performJSON(suite.router, http.MethodGet, "/api/v1/products/slug/quinoa", nil)

	suite.Equal(http.StatusOK, w.Code)
	data := decodeBody(suite.T(), w)["data"].(map[string]interface{})
	suite.Equal("quinoa", data["name"])
	suite.NotNil(data["category"]) // preloaded
}

func (suite *ProductControllerTestSuite) TestGetProduct_NotFound() {
	w := performJSON(suite.router, http.MethodGet, "/api/v1/products/999", nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("NOT_FOUND", errorCode(decodeBody(suite.T(), w)))
}

func (suite *ProductControllerTestSuite) TestGetSimilarProducts_ExcludesSelf() {
	target := createTestProduct(suite.T(), suite.db, suite.category.ID, "quinoa", "10.00", 5)
	createTestProduct(suite.T(), suite.db, suite.category.ID, "chia", "6.00", 5)
	createTestProduct(suite.T(), suite.db, suite.category.ID, "avoine", "4.00", 5)

	other := createTestCategory(suite.T(), suite.db, "Boissons", "boissons")
	createTestProduct(suite.T(), suite.db, other.ID, "kombucha", "4.00", 5)

	w := performJSON(suite.router, http.MethodGet, "/api/v1/products/"+itoa(target.ID)+"/similar", nil)

	suite.Equal(http.StatusOK, w.Code)
	data := decodeBody(suite.T(), w)["data"].([]interface{})
	suite.Len(data, 2)
	for _, entry := range data {
		suite.NotEqual("quinoa", entry.(map[string]interface{})["name"])
		suite.NotEqual("kombucha", entry.(map[string]interface{})["name"])
	}
}

func (suite *ProductControllerTestSuite) TestCreateProduct_DerivesSlug() {
	w := performJSON(suite.router, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":        "Thé Vert Matcha",
		"description": "a fine powdered green tea",
		"price":       "14.50",
		"category":    suite.category.ID,
		"stock":       10,
	})

	suite.Equal(http.StatusCreated, w.Code)
	data := decodeBody(suite.T(), w)["data"].(map[string]interface{})
	suite.Equal("the-vert-matcha", data["slug"])
	suite.Equal("14.5", data["price"])
}

func (suite *ProductControllerTestSuite) TestCreateProduct_UnknownCategory() {
	w := performJSON(suite.router, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":        "Orphan",
		"description": "no category to call home",
		"price":       "14.50",
		"category":    999,
		"stock":       10,
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("CATEGORY_NOT_FOUND", errorCode(decodeBody(suite.T(), w)))
}

func (suite *ProductControllerTestSuite) TestCreateProduct_DiscountMustBeBelowPrice() {
	w := performJSON(suite.router, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":          "Bad Deal",
		"description":   "the discount exceeds the price",
		"price":         "10.00",
		"discountPrice": "12.00",
		"category":      suite.category.ID,
		"stock":         10,
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("INVALID_DISCOUNT", errorCode(decodeBody(suite.T(), w)))
}

func (suite *ProductControllerTestSuite) TestCreateProduct_DuplicateSlug() {
	createTestProduct(suite.T(), suite.db, suite.category.ID, "quinoa", "10.00", 5)

	w := performJSON(suite.router, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":        "quinoa",
		"description": "slug collides with the existing product",
		"price":       "10.00",
		"category":    suite.category.ID,
		"stock":       5,
	})

	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("DUPLICATE_VALUE", errorCode(decodeBody(suite.T(), w)))
}

func (suite *ProductControllerTestSuite) TestUpdateProductStock() {
	product := createTestProduct(suite.T(), suite.db, suite.category.ID, "quinoa", "10.00", 5)

	w := performJSON(suite.router, http.MethodPut, "/api/v1/products/"+itoa(product.ID)+"/stock",
		map[string]interface{}{"stock": 42})

	suite.Equal(http.StatusOK, w.Code)

	var reloaded models.Product
	suite.NoError(suite.db.First(&reloaded, product.ID).Error)
	suite.Equal(42, reloaded.Stock)
}

func (suite *ProductControllerTestSuite) TestDeleteProduct() {
	product := createTestProduct(suite.T(), suite.db, suite.category.ID, "quinoa", "10.00", 5)

	w := performJSON(suite.router, http.MethodDelete, "/api/v1/products/"+itoa(product.ID), nil)
	suite.Equal(http.StatusOK, w.Code)

	var count int64
	suite.NoError(suite.db.Model(&models.Product{}).Where("id = ?", product.ID).Count(&count).Error)
	suite.Zero(count)
}

func TestProductControllerTestSuite(t *testing.T) {
	suite.Run(t, new(ProductControllerTestSuite))
}
