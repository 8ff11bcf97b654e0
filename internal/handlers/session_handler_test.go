package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"dindin/internal/models"
	"dindin/internal/services"
	"dindin/internal/testutil"
)

func setupSessionRouter(handler *SessionHandler, userID string) *gin.Engine {
	r := gin.New()
	r.Use(injectUserID(userID))
	r.GET("/session", handler.GetSession)
	r.PUT("/session/view", handler.SetView)
	r.PUT("/session/period", handler.SetPeriod)
	r.GET("/summary", handler.GetSummary)
	return r
}

func TestSessionHandler_GetSession(t *testing.T) {
	_, registry, userID := newSeededRegistry(t)
	handler := NewSessionHandler(registry)
	r := setupSessionRouter(handler, userID)

	rec := doRequest(r, "GET", "/session", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	sess := result["session"].(map[string]interface{})
	if sess["period"] != services.CurrentPeriod() {
		t.Errorf("expected current period, got %v", sess["period"])
	}
	if sess["view"] != "dashboard" {
		t.Errorf("expected dashboard view, got %v", sess["view"])
	}
}

func TestSessionHandler_SetView(t *testing.T) {
	t.Run("selects a valid view", func(t *testing.T) {
		_, registry, userID := newSeededRegistry(t)
		handler := NewSessionHandler(registry)
		r := setupSessionRouter(handler, userID)

		rec := doRequest(r, "PUT", "/session/view", `{"view":"ai-chat"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		rec = doRequest(r, "GET", "/session", "")
		sess := parseJSON(t, rec)["session"].(map[string]interface{})
		if sess["view"] != "ai-chat" {
			t.Errorf("expected ai-chat view, got %v", sess["view"])
		}
	})

	t.Run("rejects an unknown view", func(t *testing.T) {
		_, registry, userID := newSeededRegistry(t)
		handler := NewSessionHandler(registry)
		r := setupSessionRouter(handler, userID)

		rec := doRequest(r, "PUT", "/session/view", `{"view":"reports"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestSessionHandler_SetPeriod(t *testing.T) {
	t.Run("selects an absolute month", func(t *testing.T) {
		_, registry, userID := newSeededRegistry(t)
		handler := NewSessionHandler(registry)
		r := setupSessionRouter(handler, userID)

		rec := doRequest(r, "PUT", "/session/period", `{"month":"2024-03"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["period"] != "2024-03" || result["period_label"] != "março de 2024" {
			t.Errorf("unexpected response: %v", result)
		}
	})

	t.Run("navigates by offset", func(t *testing.T) {
		_, registry, userID := newSeededRegistry(t)
		handler := NewSessionHandler(registry)
		r := setupSessionRouter(handler, userID)

		rec := doRequest(r, "PUT", "/session/period", `{"month":"2024-03"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		rec = doRequest(r, "PUT", "/session/period", `{"offset":-1}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if period := parseJSON(t, rec)["period"]; period != "2024-02" {
			t.Errorf("expected 2024-02, got %v", period)
		}
	})

	t.Run("rejects a malformed month", func(t *testing.T) {
		_, registry, userID := newSeededRegistry(t)
		handler := NewSessionHandler(registry)
		r := setupSessionRouter(handler, userID)

		rec := doRequest(r, "PUT", "/session/period", `{"month":"2024-3"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("requires month or offset", func(t *testing.T) {
		_, registry, userID := newSeededRegistry(t)
		handler := NewSessionHandler(registry)
		r := setupSessionRouter(handler, userID)

		rec := doRequest(r, "PUT", "/session/period", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestSessionHandler_GetSummary(t *testing.T) {
	t.Run("aggregates the requested month", func(t *testing.T) {
		db, registry, userID := newSeededRegistry(t)
		testutil.CreateTestTransaction(t, db, userID, models.TransactionTypeIncome, 500000, "2024-03-05", "Salário")
		testutil.CreateTestTransaction(t, db, userID, models.TransactionTypeExpense, 120000, "2024-03-10", "Alimentação")

		handler := NewSessionHandler(registry)
		r := setupSessionRouter(handler, userID)

		rec := doRequest(r, "GET", "/summary?month=2024-03", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		summary := parseJSON(t, rec)["summary"].(map[string]interface{})
		numbers := summary["numbers"].(map[string]interface{})
		if numbers["total_income"] != 5000.00 || numbers["total_expense"] != 1200.00 || numbers["balance"] != 3800.00 {
			t.Errorf("unexpected numbers: %v", numbers)
		}
		categories := summary["categories"].([]interface{})
		if len(categories) != 1 {
			t.Fatalf("expected 1 category, got %d", len(categories))
		}
		category := categories[0].(map[string]interface{})
		if category["category"] != "Alimentação" || category["percent_of_expenses"] != 1.0 {
			t.Errorf("unexpected category: %v", category)
		}
	})

	t.Run("rejects a malformed month", func(t *testing.T) {
		_, registry, userID := newSeededRegistry(t)
		handler := NewSessionHandler(registry)
		r := setupSessionRouter(handler, userID)

		rec := doRequest(r, "GET", "/summary?month=bogus", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_PERIOD")
	})
}
