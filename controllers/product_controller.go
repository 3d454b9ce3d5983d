package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Seifallahbhj/beyana-Naturellement-Bio/config"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/models"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/utils"
)

var productSortColumns = map[string]bool{
	"name":       true,
	"price":      true,
	"created_at": true,
	"rating":     true,
	"sold":       true,
}

// ProductRequest represents the request body for creating/updating a product
type ProductRequest struct {
	Name            string                 `json:"name" binding:"required,min=2,max=100"`
	Slug            string                 `json:"slug"`
	Description     string                 `json:"description" binding:"required"`
	Price           decimal.Decimal        `json:"price" binding:"required"`
	DiscountPrice   *decimal.Decimal       `json:"discountPrice"`
	Images          []string               `json:"images"`
	CategoryID      uint                   `json:"category" binding:"required"`
	NutritionalInfo models.NutritionalInfo `json:"nutritionalInfo"`
	Ingredients     []string               `json:"ingredients"`
	Allergens       []string               `json:"allergens"`
	CountryOfOrigin string                 `json:"countryOfOrigin"`
	IsOrganic       bool                   `json:"isOrganic"`
	IsVegan         bool                   `json:"isVegan"`
	IsGlutenFree    bool                   `json:"isGlutenFree"`
	Stock           int                    `json:"stock" binding:"gte=0"`
	Featured        bool                   `json:"featured"`
}

// UpdateStockRequest represents the request body for a stock adjustment
type UpdateStockRequest struct {
	Stock int `json:"stock" binding:"gte=0"`
}

// GetProducts handles GET /api/v1/products with filtering, sorting and
// pagination.
func GetProducts(c *gin.Context) {
	db := config.GetDB()
	page, limit, offset := paginationParams(c)

	query := db.Model(&models.Product{})

	if keyword := c.Query("keyword"); keyword != "" {
		pattern := "%" + strings.ToLower(keyword) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	if categorySlug := c.Query("category"); categorySlug != "" {
		var category models.Category
		if err := db.Where("slug = ?", categorySlug).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusOK, gin.H{
					"success":    true,
					"data":       []models.Product{},
					"pagination": paginationMeta(page, limit, 0),
				})
				return
			}
			respondError(c, err)
			return
		}
		query = query.Where("category_id = ?", category.ID)
	}

	for param, column := range map[string]string{
		"isOrganic":    "is_organic",
		"isVegan":      "is_vegan",
		"isGlutenFree": "is_gluten_free",
	} {
		if raw := c.Query(param); raw != "" {
			if value, err := strconv.ParseBool(raw); err == nil {
				query = query.Where(column+" = ?", value)
			}
		}
	}

	if minPrice := c.Query("minPrice"); minPrice != "" {
		if value, err := decimal.NewFromString(minPrice); err == nil {
			query = query.Where("price >= ?", value)
		}
	}
	if maxPrice := c.Query("maxPrice"); maxPrice != "" {
		if value, err := decimal.NewFromString(maxPrice); err == nil {
			query = query.Where("price <= ?", value)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}

	var products []models.Product
	order := parseSort(c, productSortColumns, "created_at DESC")
	if err := query.Preload("Category").Order(order).
		Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       products,
		"pagination": paginationMeta(page, limit, total),
	})
}

// GetFeaturedProducts handles GET /api/v1/products/featured
func GetFeaturedProducts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "6"))
	if err != nil || limit < 1 || limit > 50 {
		limit = 6
	}

	var products []models.Product
	if err := config.GetDB().Preload("Category").
		Where("featured = ?", true).
		Order("created_at DESC").Limit(limit).Find(&products).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
	})
}

// GetProductBySlug handles GET /api/v1/products/slug/:slug
func GetProductBySlug(c *gin.Context) {
	var product models.Product
	if err := config.GetDB().Preload("Category").
		Where("slug = ?", c.Param("slug")).First(&product).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// GetProduct handles GET /api/v1/products/:id
func GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var product models.Product
	if err := config.GetDB().Preload("Category").First(&product, id).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// GetSimilarProducts handles GET /api/v1/products/:id/similar - other
// products from the same category.
func GetSimilarProducts(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		respondError(c, err)
		return
	}

	var similar []models.Product
	if err := db.Where("category_id = ? AND id <> ?", product.CategoryID, product.ID).
		Order("rating DESC").Limit(4).Find(&similar).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    similar,
	})
}

// CreateProduct handles POST /api/v1/products (admin/manager)
func CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	db := config.GetDB()
	var category models.Category
	if err := db.First(&category, req.CategoryID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CATEGORY_NOT_FOUND",
				"message": "The specified category does not exist",
			},
		})
		return
	}

	if req.DiscountPrice != nil && !req.DiscountPrice.LessThan(req.Price) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_DISCOUNT",
				"message": "The discount price must be lower than the regular price",
			},
		})
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}

	product := models.Product{
		Name:            req.Name,
		Slug:            slug,
		Description:     req.Description,
		Price:           req.Price,
		DiscountPrice:   req.DiscountPrice,
		Images:          req.Images,
		CategoryID:      req.CategoryID,
		NutritionalInfo: req.NutritionalInfo,
		Ingredients:     req.Ingredients,
		Allergens:       req.Allergens,
		CountryOfOrigin: req.CountryOfOrigin,
		IsOrganic:       req.IsOrganic,
		IsVegan:         req.IsVegan,
		IsGlutenFree:    req.IsGlutenFree,
		Stock:           req.Stock,
		Featured:        req.Featured,
	}
	if err := db.Create(&product).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    product,
	})
}

// UpdateProduct handles PUT /api/v1/products/:id (admin/manager)
func UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	db := config.GetDB()
	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		respondError(c, err)
		return
	}

	var category models.Category
	if err := db.First(&category, req.CategoryID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CATEGORY_NOT_FOUND",
				"message": "The specified category does not exist",
			},
		})
		return
	}

	if req.DiscountPrice != nil && !req.DiscountPrice.LessThan(req.Price) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_DISCOUNT",
				"message": "The discount price must be lower than the regular price",
			},
		})
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}

	product.Name = req.Name
	product.Slug = slug
	product.Description = req.Description
	product.Price = req.Price
	product.DiscountPrice = req.DiscountPrice
	product.Images = req.Images
	product.CategoryID = req.CategoryID
	product.NutritionalInfo = req.NutritionalInfo
	product.Ingredients = req.Ingredients
	product.Allergens = req.Allergens
	product.CountryOfOrigin = req.CountryOfOrigin
	product.IsOrganic = req.IsOrganic
	product.IsVegan = req.IsVegan
	product.IsGlutenFree = req.IsGlutenFree
	product.Stock = req.Stock
	product.Featured = req.Featured

	if err := db.Save(&product).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// DeleteProduct handles DELETE /api/v1/products/:id (admin/manager)
func DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		respondError(c, err)
		return
	}

	if err := db.Delete(&product).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product deleted successfully",
	})
}

// UpdateProductStock handles PUT /api/v1/products/:id/stock (admin/manager)
func UpdateProductStock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	db := config.GetDB()
	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		respondError(c, err)
		return
	}

	if err := db.Model(&product).Update("stock", req.Stock).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}
