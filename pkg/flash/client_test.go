package flash

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, catalogStatus int, catalog catalogResponse) (*httptest.Server, *int) {
	t.Helper()
	tokenCalls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		if r.Method != http.MethodPost {
			t.Errorf("token request method = %s, want POST", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse token form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "client_credentials" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("client_id") != "test-id" || r.PostForm.Get("client_secret") != "test-secret" {
			t.Error("credentials not forwarded")
		}
		json.NewEncoder(w).Encode(tokenResponse{AccessToken: "tok-123", TokenType: "Bearer", ExpiresIn: 3600})
	})
	mux.HandleFunc("/v2/catalog/products", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q, want the issued token", got)
		}
		w.WriteHeader(catalogStatus)
		json.NewEncoder(w).Encode(catalog)
	})
	mux.HandleFunc("/v2/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(healthResponse{Status: "UP"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &tokenCalls
}

func testClient(srv *httptest.Server) *Client {
	return NewClient(Config{
		BaseURL:      srv.URL,
		ClientID:     "test-id",
		ClientSecret: "test-secret",
	})
}

func TestGetCatalog(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, catalogResponse{
		Status: "OK",
		Products: []Product{
			{
				ProductCode:    "MTN-AIR-OPEN",
				ProductName:    "MTN Airtime",
				Vendor:         "MTN",
				VendorCategory: "Mobile Network",
				AmountType:     "RANGE",
				MinimumAmount:  500,
				MaximumAmount:  100000,
				CommissionRate: 3.25,
			},
		},
	})

	products, err := testClient(srv).GetCatalog(context.Background(), "AIRTIME")
	if err != nil {
		t.Fatalf("GetCatalog() error = %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("got %d products, want 1", len(products))
	}
	p := products[0]
	if p.ProductCode != "MTN-AIR-OPEN" || p.AmountType != "RANGE" {
		t.Errorf("unexpected product mapping: %+v", p)
	}
	if p.MinimumAmount != 500 || p.MaximumAmount != 100000 {
		t.Errorf("amounts = %d..%d", p.MinimumAmount, p.MaximumAmount)
	}
}

func TestGetCatalogErrorStatus(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, catalogResponse{Status: "ERROR", Message: "category disabled"})

	if _, err := testClient(srv).GetCatalog(context.Background(), "VOUCHER"); err == nil {
		t.Fatal("non-OK payload status must be an error")
	}
}

func TestTokenIsCachedAcrossCalls(t *testing.T) {
	srv, tokenCalls := newTestServer(t, http.StatusOK, catalogResponse{Status: "OK"})
	client := testClient(srv)

	for i := 0; i < 3; i++ {
		if _, err := client.GetCatalog(context.Background(), "DATA"); err != nil {
			t.Fatalf("GetCatalog() error = %v", err)
		}
	}
	if *tokenCalls != 1 {
		t.Errorf("token endpoint hit %d times, want 1", *tokenCalls)
	}
}

func TestPing(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, catalogResponse{Status: "OK"})

	if err := testClient(srv).Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
