package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Seifallahbhj/beyana-Naturellement-Bio/config"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/models"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/utils"
)

var categorySortColumns = map[string]bool{
	"name":       true,
	"level":      true,
	"created_at": true,
}

// CategoryRequest represents the request body for creating/updating a category
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=50"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
	ParentID    *uint  `json:"parent"`
	IsActive    *bool  `json:"isActive"`
}

// GetCategories handles GET /api/v1/categories
func GetCategories(c *gin.Context) {
	db := config.GetDB()
	query := db.Model(&models.Category{})

	if level := c.Query("level"); level != "" {
		query = query.Where("level = ?", level)
	}
	if parent := c.Query("parent"); parent != "" {
		if parent == "null" {
			query = query.Where("parent_id IS NULL")
		} else {
			query = query.Where("parent_id = ?", parent)
		}
	}
	if active := c.Query("active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var categories []models.Category
	order := parseSort(c, categorySortColumns, "name ASC")
	if err := query.Order(order).Find(&categories).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    categories,
	})
}

// GetCategory handles GET /api/v1/categories/:id
func GetCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var category models.Category
	if err := config.GetDB().First(&category, id).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    category,
	})
}

// GetCategoryBySlug handles GET /api/v1/categories/slug/:slug
func GetCategoryBySlug(c *gin.Context) {
	var category models.Category
	if err := config.GetDB().Where("slug = ?", c.Param("slug")).First(&category).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    category,
	})
}

// GetSubcategories handles GET /api/v1/categories/:id/subcategories
func GetSubcategories(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var category models.Category
	if err := db.First(&category, id).Error; err != nil {
		respondError(c, err)
		return
	}

	var subcategories []models.Category
	if err := db.Where("parent_id = ?", category.ID).Order("name ASC").Find(&subcategories).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    subcategories,
	})
}

// GetCategoryPath handles GET /api/v1/categories/:id/path - the breadcrumb
// from the root down to the category itself.
func GetCategoryPath(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var category models.Category
	if err := db.First(&category, id).Error; err != nil {
		respondError(c, err)
		return
	}

	path := []models.CategoryPathEntry{{ID: category.ID, Name: category.Name, Slug: category.Slug}}
	current := category
	for current.ParentID != nil {
		var parent models.Category
		if err := db.First(&parent, *current.ParentID).Error; err != nil {
			respondError(c, err)
			return
		}
		path = append([]models.CategoryPathEntry{{ID: parent.ID, Name: parent.Name, Slug: parent.Slug}}, path...)
		current = parent
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    path,
	})
}

// GetCategoryProducts handles GET /api/v1/categories/:id/products - products
// in the category or any of its direct subcategories, paginated.
func GetCategoryProducts(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var category models.Category
	if err := db.First(&category, id).Error; err != nil {
		respondError(c, err)
		return
	}

	var subcategoryIDs []uint
	if err := db.Model(&models.Category{}).Where("parent_id = ?", category.ID).
		Pluck("id", &subcategoryIDs).Error; err != nil {
		respondError(c, err)
		return
	}
	categoryIDs := append([]uint{category.ID}, subcategoryIDs...)

	page, limit, offset := paginationParams(c)
	query := db.Model(&models.Product{}).Where("category_id IN ?", categoryIDs)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}

	var products []models.Product
	order := parseSort(c, productSortColumns, "created_at DESC")
	if err := query.Order(order).Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       products,
		"pagination": paginationMeta(page, limit, total),
	})
}

// CreateCategory handles POST /api/v1/categories (admin/manager)
func CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	db := config.GetDB()
	level := 1
	if req.ParentID != nil {
		var parent models.Category
		if err := db.First(&parent, *req.ParentID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PARENT_NOT_FOUND",
					"message": "The specified parent category does not exist",
				},
			})
			return
		}
		level = parent.Level + 1
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}

	category := models.Category{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Image:       req.Image,
		ParentID:    req.ParentID,
		Level:       level,
		IsActive:    true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := db.Create(&category).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    category,
	})
}

// UpdateCategory handles PUT /api/v1/categories/:id (admin/manager)
func UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	db := config.GetDB()
	var category models.Category
	if err := db.First(&category, id).Error; err != nil {
		respondError(c, err)
		return
	}

	level := 1
	if req.ParentID != nil {
		if *req.ParentID == category.ID {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CIRCULAR_REFERENCE",
					"message": "A category cannot be its own parent",
				},
			})
			return
		}

		var parent models.Category
		if err := db.First(&parent, *req.ParentID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PARENT_NOT_FOUND",
					"message": "The specified parent category does not exist",
				},
			})
			return
		}

		// Walk up from the new parent; reaching this category again means
		// the move would create a cycle.
		ancestor := parent
		for ancestor.ParentID != nil {
			if *ancestor.ParentID == category.ID {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "CIRCULAR_REFERENCE",
						"message": "This change would create a circular category hierarchy",
					},
				})
				return
			}
			if err := db.First(&ancestor, *ancestor.ParentID).Error; err != nil {
				respondError(c, err)
				return
			}
		}

		level = parent.Level + 1
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}

	category.Name = req.Name
	category.Slug = slug
	category.Description = req.Description
	category.Image = req.Image
	category.ParentID = req.ParentID
	category.Level = level
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := db.Save(&category).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    category,
	})
}

// DeleteCategory handles DELETE /api/v1/categories/:id (admin/manager).
// Deletion is refused while subcategories or products still reference the
// category.
func DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var category models.Category
	if err := db.First(&category, id).Error; err != nil {
		respondError(c, err)
		return
	}

	var subcategoryCount int64
	if err := db.Model(&models.Category{}).Where("parent_id = ?", category.ID).
		Count(&subcategoryCount).Error; err != nil {
		respondError(c, err)
		return
	}
	if subcategoryCount > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CATEGORY_HAS_CHILDREN",
				"message": "Cannot delete a category that still has subcategories",
			},
		})
		return
	}

	var productCount int64
	if err := db.Model(&models.Product{}).Where("category_id = ?", category.ID).
		Count(&productCount).Error; err != nil {
		respondError(c, err)
		return
	}
	if productCount > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CATEGORY_HAS_PRODUCTS",
				"message": "Cannot delete a category that still has products",
			},
		})
		return
	}

	if err := db.Delete(&category).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Category deleted successfully",
	})
}
