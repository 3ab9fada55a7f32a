package x12

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

// =========== Test Helpers ===========

func testClaimRequest() claim837Request {
	return claim837Request{
		Submitter: Party{Name: "SUNRISE BILLING", ID: "SUBMIT01", ContactName: "ANA ORTIZ", ContactPhone: "5551234567"},
		Receiver:  Party{Name: "ACME CLEARINGHOUSE", ID: "RECV01"},
		BillingProvider: Provider{
			OrgName:      "SUNRISE FAMILY MEDICINE",
			NPI:          "1234567893",
			TaxID:        "123456789",
			TaxonomyCode: "207Q00000X",
			Address:      Address{Line1: "100 MAIN ST", City: "SPRINGFIELD", State: "IL", Zip: "62701"},
		},
		Payer: Party{Name: "UNITED HEALTH", ID: "87726"},
		Subscriber: subscriberRequest{
			FirstName: "JANE",
			LastName:  "DOE",
			MemberID:  "W123456789",
			BirthDate: "1985-03-20",
			Gender:    "F",
			Address:   Address{Line1: "42 ELM ST", City: "SPRINGFIELD", State: "IL", Zip: "62704"},
		},
		PatientControlNumber: "CLM-1001",
		DiagnosisCodes:       []string{"E11.9", "I10"},
		ServiceLines: []serviceLineRequest{
			{
				ProcedureCode:     "99213",
				Modifiers:         []string{"25"},
				Charge:            85.00,
				Units:             1,
				ServiceDate:       "2024-01-10",
				DiagnosisPointers: []int{1, 2},
			},
		},
	}
}

func testInquiryRequest() eligibility270Request {
	return eligibility270Request{
		Payer: Party{Name: "UNITED HEALTH", ID: "87726"},
		Provider: Provider{
			OrgName: "SUNRISE FAMILY MEDICINE",
			NPI:     "1234567893",
			TaxID:   "123456789",
		},
		Subscriber: subscriberRequest{
			FirstName: "JANE",
			LastName:  "DOE",
			MemberID:  "W123456789",
			BirthDate: "1985-03-20",
			Gender:    "F",
		},
		ServiceDate: "2024-01-15",
		TraceNumber: "TRACE0001",
	}
}

// invoke runs one handler method against a recorded request and returns the
// response recorder.
func invoke(t *testing.T, handler echo.HandlerFunc, path, contentType string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload string
	switch v := body.(type) {
	case string:
		payload = v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		payload = string(raw)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// =========== Generation Endpoints ===========

func TestHandlerGenerate837P(t *testing.T) {
	h := NewHandler(testGenerator())
	rec := invoke(t, h.Generate837P, "/api/v1/x12/generate/837p", echo.MIMEApplicationJSON, testClaimRequest())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q, want text/plain", ct)
	}
	doc := rec.Body.String()
	if !strings.HasPrefix(doc, "ISA*") {
		t.Errorf("document does not begin with ISA: %q", doc[:20])
	}
	if !strings.Contains(doc, "CLM*CLM-1001*85.00*") {
		t.Errorf("document missing claim segment: %s", doc)
	}
	if !strings.Contains(doc, "DMG*D8*19850320*F~") {
		t.Errorf("birth date not carried through: %s", doc)
	}
}

func TestHandlerGenerate837PMalformedJSON(t *testing.T) {
	h := NewHandler(testGenerator())
	rec := invoke(t, h.Generate837P, "/api/v1/x12/generate/837p", echo.MIMEApplicationJSON, "{not json")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	decodeResponse(t, rec, &body)
	if !strings.Contains(body["error"], "invalid request body") {
		t.Errorf("unexpected error: %q", body["error"])
	}
}

func TestHandlerGenerate837PRejectsUnknownFields(t *testing.T) {
	h := NewHandler(testGenerator())
	rec := invoke(t, h.Generate837P, "/api/v1/x12/generate/837p", echo.MIMEApplicationJSON,
		`{"patient_control_number":"A","bogus_field":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerGenerate837PBadDate(t *testing.T) {
	req := testClaimRequest()
	req.Subscriber.BirthDate = "03/20/1985"
	h := NewHandler(testGenerator())
	rec := invoke(t, h.Generate837P, "/api/v1/x12/generate/837p", echo.MIMEApplicationJSON, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	decodeResponse(t, rec, &body)
	if !strings.Contains(body["error"], "YYYY-MM-DD") {
		t.Errorf("unexpected error: %q", body["error"])
	}
}

func TestHandlerGenerate837PGenerationFailure(t *testing.T) {
	req := testClaimRequest()
	req.BillingProvider.NPI = "123"
	h := NewHandler(testGenerator())
	rec := invoke(t, h.Generate837P, "/api/v1/x12/generate/837p", echo.MIMEApplicationJSON, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var body map[string]string
	decodeResponse(t, rec, &body)
	if !strings.Contains(body["error"], "npi") {
		t.Errorf("unexpected error: %q", body["error"])
	}
}

func TestHandlerGenerate270(t *testing.T) {
	h := NewHandler(testGenerator())
	rec := invoke(t, h.Generate270, "/api/v1/x12/generate/270", echo.MIMEApplicationJSON, testInquiryRequest())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	doc := rec.Body.String()
	if !strings.Contains(doc, "TRN*1*TRACE0001*9123456789~") {
		t.Errorf("trace segment missing: %s", doc)
	}
	if !strings.Contains(doc, "EQ*30~") {
		t.Errorf("default service type missing: %s", doc)
	}
}

func TestHandlerGenerate270MissingServiceDate(t *testing.T) {
	req := testInquiryRequest()
	req.ServiceDate = ""
	h := NewHandler(testGenerator())
	rec := invoke(t, h.Generate270, "/api/v1/x12/generate/270", echo.MIMEApplicationJSON, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// =========== Remittance Endpoints ===========

func TestHandlerValidate835Clean(t *testing.T) {
	h := NewHandler(nil)
	rec := invoke(t, h.Validate835, "/api/v1/x12/validate/835", echo.MIMETextPlain, minimal835())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Valid       bool         `json:"valid"`
		Diagnostics []Diagnostic `json:"diagnostics"`
	}
	decodeResponse(t, rec, &body)
	if !body.Valid {
		t.Errorf("want valid=true, diagnostics=%v", body.Diagnostics)
	}
	if len(body.Diagnostics) != 0 {
		t.Errorf("want empty diagnostics, got %v", body.Diagnostics)
	}
}

func TestHandlerValidate835Malformed(t *testing.T) {
	h := NewHandler(nil)
	rec := invoke(t, h.Validate835, "/api/v1/x12/validate/835", echo.MIMETextPlain, "this is not an EDI file")

	if rec.Code != http.StatusOK {
		t.Fatalf("structural failures are still 200 responses, got %d", rec.Code)
	}
	var body struct {
		Valid       bool         `json:"valid"`
		Diagnostics []Diagnostic `json:"diagnostics"`
	}
	decodeResponse(t, rec, &body)
	if body.Valid {
		t.Error("want valid=false")
	}
	if len(body.Diagnostics) == 0 {
		t.Error("want diagnostics explaining the failure")
	}
}

func TestHandlerParse835(t *testing.T) {
	h := NewHandler(nil)
	rec := invoke(t, h.Parse835, "/api/v1/x12/parse/835", echo.MIMETextPlain, minimal835())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var file RemittanceFile
	decodeResponse(t, rec, &file)
	if len(file.Transactions) != 1 {
		t.Fatalf("got %d transactions, want 1", len(file.Transactions))
	}
	if file.Transactions[0].Claims[0].PatientControlNumber != "CLM-1001" {
		t.Errorf("unexpected claim: %+v", file.Transactions[0].Claims[0])
	}
	if file.SegmentCount != 22 {
		t.Errorf("segment count = %d, want 22", file.SegmentCount)
	}
}

func TestHandlerRegisterRoutes(t *testing.T) {
	e := echo.New()
	NewHandler(nil).RegisterRoutes(e.Group("/api/v1"))

	want := map[string]bool{
		"/api/v1/x12/generate/837p": false,
		"/api/v1/x12/generate/270":  false,
		"/api/v1/x12/validate/835":  false,
		"/api/v1/x12/parse/835":     false,
	}
	for _, r := range e.Routes() {
		if _, ok := want[r.Path]; ok && r.Method == http.MethodPost {
			want[r.Path] = true
		}
	}
	for path, seen := range want {
		if !seen {
			t.Errorf("route %s not registered", path)
		}
	}
}
