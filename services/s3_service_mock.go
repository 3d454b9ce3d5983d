package services

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MockS3Service is a mock implementation of S3Interface for testing
type MockS3Service struct {
	objects map[string]bool
	// UploadErr, when set, is returned by UploadFile to simulate failures
	UploadErr error
	mu        sync.RWMutex
}

// NewMockS3Service creates a new mock S3 service
func NewMockS3Service() *MockS3Service {
	return &MockS3Service{
		objects: make(map[string]bool),
	}
}

// SetAsMockForTesting sets this mock as the global S3 service instance for testing
func (m *MockS3Service) SetAsMockForTesting() {
	SetS3Service(m)
}

// UploadFile simulates an S3 upload and returns a uuid-based key
func (m *MockS3Service) UploadFile(fileHeader *multipart.FileHeader, folder string) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	s3Key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), ext)

	m.mu.Lock()
	m.objects[s3Key] = true
	m.mu.Unlock()

	return s3Key, nil
}

// GetPresignedURL simulates generating a presigned URL
func (m *MockS3Service) GetPresignedURL(s3Key string) (string, error) {
	if s3Key == "" {
		return "", nil
	}
	return fmt.Sprintf("https://test-bucket.s3.eu-west-3.amazonaws.com/%s?signed=true", s3Key), nil
}

// DeleteFile simulates deleting an S3 object
func (m *MockS3Service) DeleteFile(s3Key string) error {
	m.mu.Lock()
	delete(m.objects, s3Key)
	m.mu.Unlock()
	return nil
}

// ObjectExists checks if an object exists in mock storage
func (m *MockS3Service) ObjectExists(s3Key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[s3Key]
}
