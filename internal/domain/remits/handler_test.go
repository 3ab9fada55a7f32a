package remits

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/claimlink/claimlink/pkg/pagination"
)

func newTestHandler() (*Handler, *Service) {
	svc, _ := testRemitService(nil)
	return NewHandler(svc), svc
}

func newContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestHandlerIngest(t *testing.T) {
	h, _ := newTestHandler()
	c, rec := newContext(t, http.MethodPost, "/remits/ingest", sample835())

	if err := h.Ingest(c); err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var rm Remittance
	if err := json.Unmarshal(rec.Body.Bytes(), &rm); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if rm.Status != StatusParsed {
		t.Errorf("status = %q, want parsed", rm.Status)
	}
	if len(rm.Claims) != 2 {
		t.Errorf("expected 2 claim payments, got %d", len(rm.Claims))
	}
}

func TestHandlerIngest_RejectedDocument(t *testing.T) {
	h, _ := newTestHandler()
	c, rec := newContext(t, http.MethodPost, "/remits/ingest", "ISA*garbage~SE*1*0001~")

	if err := h.Ingest(c); err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	var rm Remittance
	if err := json.Unmarshal(rec.Body.Bytes(), &rm); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if rm.Status != StatusRejected {
		t.Errorf("status = %q, want rejected", rm.Status)
	}
	if len(rm.Diagnostics) == 0 {
		t.Error("expected diagnostics in response")
	}
}

func TestHandlerIngest_EmptyBody(t *testing.T) {
	h, _ := newTestHandler()
	c, _ := newContext(t, http.MethodPost, "/remits/ingest", "")

	err := h.Ingest(c)
	if status := httpStatus(t, err); status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}

func TestHandlerGetRemittance(t *testing.T) {
	h, svc := newTestHandler()
	rm, err := svc.Ingest(context.Background(), sample835())
	if err != nil {
		t.Fatalf("seeding remittance: %v", err)
	}

	c, rec := newContext(t, http.MethodGet, "/remits/x", "")
	c.SetParamNames("id")
	c.SetParamValues(rm.ID.String())

	if err := h.GetRemittance(c); err != nil {
		t.Fatalf("GetRemittance() error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got Remittance
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.ControlNumber != "000000905" {
		t.Errorf("control number = %q", got.ControlNumber)
	}
}

func TestHandlerGetRemittance_NotFound(t *testing.T) {
	h, _ := newTestHandler()

	c, _ := newContext(t, http.MethodGet, "/remits/x", "")
	c.SetParamNames("id")
	c.SetParamValues("9f0c8a6e-1f4b-4f43-a2a1-1c2d3e4f5a6b")

	err := h.GetRemittance(c)
	if status := httpStatus(t, err); status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestHandlerListRemittances(t *testing.T) {
	h, svc := newTestHandler()
	if _, err := svc.Ingest(context.Background(), sample835()); err != nil {
		t.Fatalf("seeding remittance: %v", err)
	}

	c, rec := newContext(t, http.MethodGet, "/remits?status=parsed", "")
	if err := h.ListRemittances(c); err != nil {
		t.Fatalf("ListRemittances() error: %v", err)
	}

	var resp pagination.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1", resp.Total)
	}
}

func TestHandlerGetRemittanceDocument(t *testing.T) {
	h, svc := newTestHandler()
	rm, err := svc.Ingest(context.Background(), sample835())
	if err != nil {
		t.Fatalf("seeding remittance: %v", err)
	}

	c, rec := newContext(t, http.MethodGet, "/remits/x/document", "")
	c.SetParamNames("id")
	c.SetParamValues(rm.ID.String())

	if err := h.GetRemittanceDocument(c); err != nil {
		t.Fatalf("GetRemittanceDocument() error: %v", err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q, want text/plain", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "ISA*") {
		t.Error("expected raw document body")
	}
}
