package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/gridcast/gridcast/internal/logging"
	"github.com/gridcast/gridcast/internal/models"
	"github.com/gridcast/gridcast/internal/store"
)

func TestErrorHandler_FiberError(t *testing.T) {
	logger := logging.NewDevelopment()

	tests := []struct {
		name           string
		fiberError     *fiber.Error
		expectedStatus int
		expectedMsg    string
		expectedCode   string
	}{
		{
			name:           "BadRequest error",
			fiberError:     fiber.ErrBadRequest,
			expectedStatus: fiber.StatusBadRequest,
			expectedMsg:    "Bad Request",
			expectedCode:   "BAD_REQUEST",
		},
		{
			name:           "NotFound error",
			fiberError:     fiber.ErrNotFound,
			expectedStatus: fiber.StatusNotFound,
			expectedMsg:    "Not Found",
			expectedCode:   "NOT_FOUND",
		},
		{
			name:           "ServiceUnavailable error",
			fiberError:     fiber.ErrServiceUnavailable,
			expectedStatus: fiber.StatusServiceUnavailable,
			expectedMsg:    "Service Unavailable",
			expectedCode:   "UNAVAILABLE",
		},
		{
			name:           "Custom fiber error",
			fiberError:     fiber.NewError(fiber.StatusTeapot, "I'm a teapot"),
			expectedStatus: fiber.StatusTeapot,
			expectedMsg:    "I'm a teapot",
			expectedCode:   "INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{
				ErrorHandler: ErrorHandler(logger),
			})

			app.Get("/test", func(c *fiber.Ctx) error {
				return tt.fiberError
			})

			req := httptest.NewRequest("GET", "/test", nil)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to test request: %v", err)
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, resp.StatusCode)
			}

			body, _ := io.ReadAll(resp.Body)
			var errResp models.ErrorResponse
			if err := json.Unmarshal(body, &errResp); err != nil {
				t.Fatalf("Failed to unmarshal response: %v", err)
			}

			if errResp.Error.Message != tt.expectedMsg {
				t.Errorf("Expected message %q, got %q", tt.expectedMsg, errResp.Error.Message)
			}

			if errResp.Error.Code != tt.expectedCode {
				t.Errorf("Expected code %q, got %q", tt.expectedCode, errResp.Error.Code)
			}
		})
	}
}

func TestErrorHandler_GenericError(t *testing.T) {
	logger := logging.NewDevelopment()

	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(logger),
	})

	// Handler that returns a generic Go error (not fiber.Error)
	app.Get("/test", func(c *fiber.Ctx) error {
		return errors.New("something went wrong")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Generic errors should return 500 Internal Server Error
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", fiber.StatusInternalServerError, resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if errResp.Error.Message != "Internal Server Error" {
		t.Errorf("Expected message 'Internal Server Error', got %q", errResp.Error.Message)
	}
}

func TestErrorHandler_StoreNotFound(t *testing.T) {
	logger := logging.NewDevelopment()

	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(logger),
	})

	app.Get("/test", func(c *fiber.Ctx) error {
		return fmt.Errorf("load artifact: %w", store.ErrNotFound)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if errResp.Error.Code != "NOT_FOUND" {
		t.Errorf("Expected code 'NOT_FOUND', got %q", errResp.Error.Code)
	}
}

func TestErrorHandler_ResponseFormat(t *testing.T) {
	logger := logging.NewDevelopment()

	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(logger),
	})

	app.Get("/test", func(c *fiber.Ctx) error {
		return fiber.ErrBadRequest
	})

	req := httptest.NewRequest("GET", "/test", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	contentType := resp.Header.Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", contentType)
	}

	body, _ := io.ReadAll(resp.Body)
	var rawResp map[string]interface{}
	if err := json.Unmarshal(body, &rawResp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	errorObj, exists := rawResp["error"]
	if !exists {
		t.Error("Response should have 'error' key")
	}

	errorMap, ok := errorObj.(map[string]interface{})
	if !ok {
		t.Fatal("Error object should be a map")
	}

	if _, exists := errorMap["code"]; !exists {
		t.Error("Error object should have 'code' field")
	}

	if _, exists := errorMap["message"]; !exists {
		t.Error("Error object should have 'message' field")
	}
}
