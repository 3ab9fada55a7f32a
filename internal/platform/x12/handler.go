package x12

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler provides HTTP endpoints for X12 document generation and parsing.
type Handler struct {
	gen *Generator
}

// NewHandler creates a new X12 handler. gen may be nil to use the default
// generator configuration.
func NewHandler(gen *Generator) *Handler {
	if gen == nil {
		gen = &Generator{}
	}
	return &Handler{gen: gen}
}

// RegisterRoutes registers X12 endpoints on the provided route group.
//
//	POST /api/v1/x12/generate/837p  - Generate a professional claim document
//	POST /api/v1/x12/generate/270   - Generate an eligibility inquiry document
//	POST /api/v1/x12/validate/835   - Structurally validate a remittance
//	POST /api/v1/x12/parse/835      - Parse a remittance to JSON
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/x12/generate/837p", h.Generate837P)
	g.POST("/x12/generate/270", h.Generate270)
	g.POST("/x12/validate/835", h.Validate835)
	g.POST("/x12/parse/835", h.Parse835)
}

// dateOnly is the wire format for date fields in generation requests.
const dateOnly = "2006-01-02"

// subscriberRequest mirrors Subscriber with a date-only birth date.
type subscriberRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	MemberID  string  `json:"member_id"`
	BirthDate string  `json:"birth_date"`
	Gender    string  `json:"gender"`
	Address   Address `json:"address"`
}

func (r subscriberRequest) toSubscriber() (Subscriber, error) {
	dob, err := parseDateField(r.BirthDate, "birth_date")
	if err != nil {
		return Subscriber{}, err
	}
	return Subscriber{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		MemberID:  r.MemberID,
		BirthDate: dob,
		Gender:    r.Gender,
		Address:   r.Address,
	}, nil
}

// serviceLineRequest mirrors ServiceLine837 with a date-only service date.
type serviceLineRequest struct {
	ProcedureCode     string   `json:"procedure_code"`
	Modifiers         []string `json:"modifiers,omitempty"`
	Charge            float64  `json:"charge"`
	Units             float64  `json:"units"`
	ServiceDate       string   `json:"service_date"`
	DiagnosisPointers []int    `json:"diagnosis_pointers,omitempty"`
}

// claim837Request is the JSON request body for 837P generation.
type claim837Request struct {
	Submitter            Party                `json:"submitter"`
	Receiver             Party                `json:"receiver"`
	BillingProvider      Provider             `json:"billing_provider"`
	RenderingProvider    *Provider            `json:"rendering_provider,omitempty"`
	Payer                Party                `json:"payer"`
	Subscriber           subscriberRequest    `json:"subscriber"`
	PatientControlNumber string               `json:"patient_control_number"`
	PlaceOfService       string               `json:"place_of_service,omitempty"`
	FrequencyCode        string               `json:"frequency_code,omitempty"`
	DiagnosisCodes       []string             `json:"diagnosis_codes"`
	ServiceLines         []serviceLineRequest `json:"service_lines"`
}

func (r claim837Request) toClaim() (*Claim837, error) {
	sub, err := r.Subscriber.toSubscriber()
	if err != nil {
		return nil, err
	}
	claim := &Claim837{
		Submitter:            r.Submitter,
		Receiver:             r.Receiver,
		BillingProvider:      r.BillingProvider,
		RenderingProvider:    r.RenderingProvider,
		Payer:                r.Payer,
		Subscriber:           sub,
		PatientControlNumber: r.PatientControlNumber,
		PlaceOfService:       r.PlaceOfService,
		FrequencyCode:        r.FrequencyCode,
		DiagnosisCodes:       r.DiagnosisCodes,
	}
	for _, l := range r.ServiceLines {
		dos, err := parseDateField(l.ServiceDate, "service_date")
		if err != nil {
			return nil, err
		}
		claim.ServiceLines = append(claim.ServiceLines, ServiceLine837{
			ProcedureCode:     l.ProcedureCode,
			Modifiers:         l.Modifiers,
			Charge:            l.Charge,
			Units:             l.Units,
			ServiceDate:       dos,
			DiagnosisPointers: l.DiagnosisPointers,
		})
	}
	return claim, nil
}

// eligibility270Request is the JSON request body for 270 generation.
type eligibility270Request struct {
	Payer           Party             `json:"payer"`
	Provider        Provider          `json:"provider"`
	Subscriber      subscriberRequest `json:"subscriber"`
	ServiceDate     string            `json:"service_date"`
	ServiceTypeCode string            `json:"service_type_code,omitempty"`
	TraceNumber     string            `json:"trace_number,omitempty"`
}

func parseDateField(value, field string) (time.Time, error) {
	if value == "" {
		return time.Time{}, &FormatError{Field: field, Reason: "is required"}
	}
	t, err := time.Parse(dateOnly, value)
	if err != nil {
		return time.Time{}, &FormatError{Field: field, Reason: "must be formatted YYYY-MM-DD"}
	}
	return t, nil
}

// Generate837P handles POST /api/v1/x12/generate/837p. It accepts a JSON
// claim and returns the generated document as text/plain.
func (h *Handler) Generate837P(c echo.Context) error {
	var req claim837Request
	if err := decodeJSONBody(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body: " + err.Error(),
		})
	}

	claim, err := req.toClaim()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	doc, err := h.gen.Generate837P(claim)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}
	return c.Blob(http.StatusOK, "text/plain", []byte(doc))
}

// Generate270 handles POST /api/v1/x12/generate/270.
func (h *Handler) Generate270(c echo.Context) error {
	var req eligibility270Request
	if err := decodeJSONBody(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body: " + err.Error(),
		})
	}

	sub, err := req.Subscriber.toSubscriber()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	svcDate, err := parseDateField(req.ServiceDate, "service_date")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	doc, err := h.gen.Generate270(&Eligibility270{
		Payer:           req.Payer,
		Provider:        req.Provider,
		Subscriber:      sub,
		ServiceDate:     svcDate,
		ServiceTypeCode: req.ServiceTypeCode,
		TraceNumber:     req.TraceNumber,
	})
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}
	return c.Blob(http.StatusOK, "text/plain", []byte(doc))
}

// Validate835 handles POST /api/v1/x12/validate/835. It reads a raw 835
// from the request body and returns the structural diagnostics.
func (h *Handler) Validate835(c echo.Context) error {
	raw, err := readRawBody(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	diags := Validate835(raw)
	if diags == nil {
		diags = []Diagnostic{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"valid":       !HasFatal(diags),
		"diagnostics": diags,
	})
}

// Parse835 handles POST /api/v1/x12/parse/835. It reads a raw 835 from the
// request body and returns the parsed document tree with diagnostics.
func (h *Handler) Parse835(c echo.Context) error {
	raw, err := readRawBody(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, Parse835(raw))
}

func readRawBody(c echo.Context) (string, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return "", fmt.Errorf("failed to read request body: %w", err)
	}
	return string(body), nil
}

// decodeJSONBody decodes the request body into v, rejecting unknown fields.
func decodeJSONBody(c echo.Context, v interface{}) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
