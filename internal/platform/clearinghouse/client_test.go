package clearinghouse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestSubmitClaim(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(SubmissionResult{
			SubmissionID: "sub-789",
			Status:       "accepted",
		})
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", zerolog.Nop())
	result, err := client.SubmitClaim(context.Background(), "CLM-1001", "ISA*00*...~IEA*1*000000905~")
	if err != nil {
		t.Fatalf("SubmitClaim() error: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
	if gotPath != "/claims" {
		t.Errorf("expected path /claims, got %q", gotPath)
	}
	if gotBody["claimNumber"] != "CLM-1001" {
		t.Errorf("expected claimNumber CLM-1001, got %q", gotBody["claimNumber"])
	}
	if gotBody["transactionType"] != "837P" {
		t.Errorf("expected transactionType 837P, got %q", gotBody["transactionType"])
	}

	if result.SubmissionID != "sub-789" {
		t.Errorf("expected submission ID sub-789, got %q", result.SubmissionID)
	}
	if result.Status != "accepted" {
		t.Errorf("expected status accepted, got %q", result.Status)
	}
}

func TestSubmitClaim_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", zerolog.Nop())
	_, err := client.SubmitClaim(context.Background(), "CLM-1001", "ISA*...~")
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestCheckEligibility(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/eligibility" {
			t.Errorf("expected path /eligibility, got %q", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["traceNumber"] != "TRACE0001" {
			t.Errorf("expected traceNumber TRACE0001, got %q", body["traceNumber"])
		}
		json.NewEncoder(w).Encode(EligibilityResult{
			InquiryID: "inq-42",
			Status:    "pending",
		})
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", zerolog.Nop())
	result, err := client.CheckEligibility(context.Background(), "TRACE0001", "ISA*...~")
	if err != nil {
		t.Fatalf("CheckEligibility() error: %v", err)
	}

	if result.InquiryID != "inq-42" {
		t.Errorf("expected inquiry ID inq-42, got %q", result.InquiryID)
	}
}

func TestSubmitClaim_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SubmissionResult{})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := New(srv.URL, "test-key", zerolog.Nop())
	_, err := client.SubmitClaim(ctx, "CLM-1001", "ISA*...~")
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
