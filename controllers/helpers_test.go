package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Seifallahbhj/beyana-Naturellement-Bio/config"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/models"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/tests/testutil"
)

// setupTestConfig pins GO_ENV=test and installs a test configuration with
// deterministic secrets.
func setupTestConfig(t *testing.T) {
	testutil.MustSetTestEnvironment(t)

	config.SetConfig(&config.Config{
		GoEnv:               "test",
		Port:                "8080",
		ClientURL:           "http://localhost:5173",
		JWTSecret:           "test-jwt-secret",
		JWTRefreshSecret:    "test-jwt-refresh-secret",
		JWTExpiresIn:        time.Hour,
		JWTRefreshExpiresIn: 24 * time.Hour,
	})
}

// setupTestDB opens an in-memory database with the full schema and installs
// it as the global connection.
func setupTestDB(t require.TestingT) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderCounter{},
		&models.Review{},
	)
	require.NoError(t, err)

	config.SetDB(db)
	return db
}

func closeTestDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

// createTestUser inserts a user with the given role
func createTestUser(t require.TestingT, db *gorm.DB, email, role string) *models.User {
	user := &models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Role:      role,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

// createTestCategory inserts a category
func createTestCategory(t require.TestingT, db *gorm.DB, name, slug string) *models.Category {
	category := &models.Category{Name: name, Slug: slug}
	require.NoError(t, db.Create(category).Error)
	return category
}

// createTestProduct inserts a product in the given category
func createTestProduct(t require.TestingT, db *gorm.DB, categoryID uint, name, price string, stock int) *models.Product {
	product := &models.Product{
		Name:        name,
		Slug:        name,
		Description: "a test product description",
		Price:       decimal.RequireFromString(price),
		CategoryID:  categoryID,
		Stock:       stock,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// performJSON sends a JSON request through the router and returns the recorder
func performJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = jsonReader(body)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

// itoa renders a record id for use in request paths
func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// ftoa renders an id decoded from a JSON number for use in request paths
func ftoa(id float64) string {
	return strconv.FormatUint(uint64(id), 10)
}

// jsonReader marshals a body for use with httptest.NewRequest
func jsonReader(body interface{}) io.Reader {
	payload, _ := json.Marshal(body)
	return bytes.NewBuffer(payload)
}

// decodeBody unmarshals the recorded response body into a generic map
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// errorCode extracts error.code from a decoded response body
func errorCode(body map[string]interface{}) string {
	errBlock, ok := body["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errBlock["code"].(string)
	return code
}

func init() {
	gin.SetMode(gin.TestMode)
}
