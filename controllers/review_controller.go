package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Seifallahbhj/beyana-Naturellement-Bio/config"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/middleware"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/models"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/services"
)

// CreateReviewRequest represents the request body for creating a review
type CreateReviewRequest struct {
	ProductID uint     `json:"product" binding:"required"`
	Rating    int      `json:"rating" binding:"required,gte=1,lte=5"`
	Title     string   `json:"title" binding:"required,min=3,max=100"`
	Comment   string   `json:"comment" binding:"required,min=10"`
	Images    []string `json:"images"`
}

// UpdateReviewRequest represents the request body for updating a review
type UpdateReviewRequest struct {
	Rating  int      `json:"rating" binding:"omitempty,gte=1,lte=5"`
	Title   string   `json:"title" binding:"omitempty,min=3,max=100"`
	Comment string   `json:"comment" binding:"omitempty,min=10"`
	Images  []string `json:"images"`
}

// ApproveReviewRequest represents the request body for moderating a review
type ApproveReviewRequest struct {
	Approved string `json:"approved" binding:"required,oneof=pending approved rejected"`
}

// CreateReview handles POST /api/v1/reviews. The reviewer must have a
// shipped or delivered order containing the product, and may only review a
// product once. New reviews start pending moderation.
func CreateReview(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if len(req.Images) > models.MaxReviewImages {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TOO_MANY_IMAGES",
				"message": "A review may have at most 5 images",
			},
		})
		return
	}

	db := config.GetDB()
	var product models.Product
	if err := db.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PRODUCT_NOT_FOUND",
					"message": "Product not found",
				},
			})
			return
		}
		respondError(c, err)
		return
	}

	purchased, err := services.HasPurchased(db, user.ID, product.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !purchased {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PURCHASE_REQUIRED",
				"message": "You can only review products you have purchased",
			},
		})
		return
	}

	var existing models.Review
	if err := db.Where("user_id = ? AND product_id = ?", user.ID, product.ID).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DUPLICATE_REVIEW",
				"message": "You have already reviewed this product",
			},
		})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, err)
		return
	}

	review := models.Review{
		UserID:           user.ID,
		ProductID:        product.ID,
		Rating:           req.Rating,
		Title:            req.Title,
		Comment:          req.Comment,
		Images:           req.Images,
		VerifiedPurchase: true,
		Approved:         models.ReviewPending,
	}
	if err := db.Create(&review).Error; err != nil {
		respondError(c, err)
		return
	}

	if err := services.RecalcProductRating(db, product.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    review,
	})
}

// GetProductReviews handles GET /api/v1/products/:productId/reviews. Only
// approved reviews are visible unless the requester is an admin.
func GetProductReviews(c *gin.Context) {
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}

	db := config.GetDB()
	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		respondError(c, err)
		return
	}

	page, limit, offset := paginationParams(c)
	query := db.Model(&models.Review{}).Where("product_id = ?", product.ID)

	admin := false
	if user, err := middleware.CurrentUser(c); err == nil && user.IsAdmin() {
		admin = true
	}
	if !admin {
		query = query.Where("approved = ?", models.ReviewApproved)
	}

	if rating := c.Query("rating"); rating != "" {
		if value, err := strconv.Atoi(rating); err == nil && value >= 1 && value <= 5 {
			query = query.Where("rating = ?", value)
		}
	}
	if verified := c.Query("verifiedPurchase"); verified != "" {
		if value, err := strconv.ParseBool(verified); err == nil {
			query = query.Where("verified_purchase = ?", value)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}

	var reviews []models.Review
	if err := query.Preload("User").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&reviews).Error; err != nil {
		respondError(c, err)
		return
	}

	distribution, err := ratingDistribution(db, product.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"data":               reviews,
		"ratingDistribution": distribution,
		"pagination":         paginationMeta(page, limit, total),
	})
}

// ratingDistribution counts approved reviews per star value, including zero
// rows for absent ratings.
func ratingDistribution(db *gorm.DB, productID uint) (map[int]int64, error) {
	var rows []struct {
		Rating int
		Count  int64
	}
	err := db.Model(&models.Review{}).
		Select("rating, COUNT(*) AS count").
		Where("product_id = ? AND approved = ?", productID, models.ReviewApproved).
		Group("rating").Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	distribution := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, row := range rows {
		distribution[row.Rating] = row.Count
	}
	return distribution, nil
}

// GetReview handles GET /api/v1/reviews/:id. Unapproved reviews are visible
// only to their author or an admin.
func GetReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var review models.Review
	if err := config.GetDB().Preload("User").Preload("Product").First(&review, id).Error; err != nil {
		respondError(c, err)
		return
	}

	if !review.IsApproved() {
		user, err := middleware.CurrentUser(c)
		if err != nil || (user.ID != review.UserID && !user.IsAdmin()) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Resource not found",
				},
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    review,
	})
}

// UpdateReview handles PUT /api/v1/reviews/:id - author or admin only. Edits
// reset nothing moderation-wise; only a rating change triggers a recompute.
func UpdateReview(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if len(req.Images) > models.MaxReviewImages {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TOO_MANY_IMAGES",
				"message": "A review may have at most 5 images",
			},
		})
		return
	}

	db := config.GetDB()
	var review models.Review
	if err := db.First(&review, id).Error; err != nil {
		respondError(c, err)
		return
	}

	if review.UserID != user.ID && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You are not allowed to modify this review",
			},
		})
		return
	}

	ratingChanged := req.Rating != 0 && req.Rating != review.Rating

	if req.Rating != 0 {
		review.Rating = req.Rating
	}
	if req.Title != "" {
		review.Title = req.Title
	}
	if req.Comment != "" {
		review.Comment = req.Comment
	}
	if req.Images != nil {
		review.Images = req.Images
	}

	if err := db.Save(&review).Error; err != nil {
		respondError(c, err)
		return
	}

	if ratingChanged {
		if err := services.RecalcProductRating(db, review.ProductID); err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    review,
	})
}

// DeleteReview handles DELETE /api/v1/reviews/:id - author or admin only
func DeleteReview(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var review models.Review
	if err := db.First(&review, id).Error; err != nil {
		respondError(c, err)
		return
	}

	if review.UserID != user.ID && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You are not allowed to delete this review",
			},
		})
		return
	}

	// Physical delete: the (user, product) unique index frees up so the
	// user may review the product again later.
	if err := db.Delete(&review).Error; err != nil {
		respondError(c, err)
		return
	}

	if err := services.RecalcProductRating(db, review.ProductID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Review deleted successfully",
	})
}

// ApproveReview handles PUT /api/v1/reviews/:id/approve (admin/manager).
// The product rating is recomputed on every moderation decision since any
// transition can move a review into or out of the approved set.
func ApproveReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req ApproveReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	db := config.GetDB()
	var review models.Review
	if err := db.First(&review, id).Error; err != nil {
		respondError(c, err)
		return
	}

	if err := db.Model(&review).Update("approved", req.Approved).Error; err != nil {
		respondError(c, err)
		return
	}

	if err := services.RecalcProductRating(db, review.ProductID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    review,
	})
}

// LikeReview handles PUT /api/v1/reviews/:id/like - increments the helpful
// counter.
func LikeReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var review models.Review
	if err := db.First(&review, id).Error; err != nil {
		respondError(c, err)
		return
	}

	if err := db.Model(&review).
		Update("helpful_count", gorm.Expr("helpful_count + 1")).Error; err != nil {
		respondError(c, err)
		return
	}

	if err := db.First(&review, id).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    review,
	})
}

// GetMostHelpfulReviews handles GET /api/v1/reviews/most-helpful
func GetMostHelpfulReviews(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if err != nil || limit < 1 || limit > 50 {
		limit = 5
	}

	var reviews []models.Review
	if err := config.GetDB().Preload("User").Preload("Product").
		Where("approved = ?", models.ReviewApproved).
		Order("helpful_count DESC, created_at DESC").
		Limit(limit).Find(&reviews).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    reviews,
	})
}

// GetPendingReviews handles GET /api/v1/reviews/pending (admin/manager)
func GetPendingReviews(c *gin.Context) {
	page, limit, offset := paginationParams(c)
	query := config.GetDB().Model(&models.Review{}).Where("approved = ?", models.ReviewPending)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}

	var reviews []models.Review
	if err := query.Preload("User").Preload("Product").
		Order("created_at ASC").Limit(limit).Offset(offset).Find(&reviews).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       reviews,
		"pagination": paginationMeta(page, limit, total),
	})
}
