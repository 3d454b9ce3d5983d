package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Seifallahbhj/beyana-Naturellement-Bio/services"
)

var uploadFolders = map[string]bool{
	"products":   true,
	"reviews":    true,
	"categories": true,
}

// UploadImage handles POST /api/v1/uploads/images (admin/manager). Accepts a
// multipart "image" file and an optional folder parameter.
func UploadImage(c *gin.Context) {
	imageService := services.GetImageService()
	if imageService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_UNAVAILABLE",
				"message": "Image storage is not configured",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "Please attach an image file",
			},
		})
		return
	}

	folder := c.DefaultPostForm("folder", "products")
	if !uploadFolders[folder] {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FOLDER",
				"message": "Folder must be one of: products, reviews, categories",
			},
		})
		return
	}

	key, err := imageService.UploadImage(fileHeader, folder)
	if err != nil {
		respondError(c, err)
		return
	}

	url, err := imageService.GetImageURL(key)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"key": key,
			"url": url,
		},
	})
}
