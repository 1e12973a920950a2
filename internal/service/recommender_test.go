package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/set-night/jewelbot/internal/domain"
)

func newTestRecommender(t *testing.T, h http.HandlerFunc) *RecommenderService {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewRecommenderService(srv.URL+"/", 5*time.Second)
}

func TestRecommenderUpload(t *testing.T) {
	s := newTestRecommender(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/upload" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		files := r.MultipartForm.File["files"]
		if len(files) != 2 {
			t.Errorf("got %d files, want 2", len(files))
		} else {
			if files[0].Filename != "a.jpg" || files[1].Filename != "b.png" {
				t.Errorf("filenames = %q, %q", files[0].Filename, files[1].Filename)
			}
			f, _ := files[1].Open()
			data, _ := io.ReadAll(f)
			f.Close()
			if string(data) != "bbb" {
				t.Errorf("second file content = %q", data)
			}
		}
		if got := r.FormValue("client_name"); got != "studio" {
			t.Errorf("client_name = %q", got)
		}
		if got := r.FormValue("notes"); got != "uploaded from UI" {
			t.Errorf("notes = %q", got)
		}
		w.Write([]byte(`{"upload_id":"u1","message":"Upload received."}`))
	})

	res, err := s.Upload(context.Background(), []domain.FileHandle{
		domain.NewMemoryFile("a.jpg", "image/jpeg", []byte("aaa")),
		domain.NewMemoryFile("b.png", "image/png", []byte("bbb")),
	}, "studio", "uploaded from UI")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if res.UploadID != "u1" {
		t.Errorf("UploadID = %q, want u1", res.UploadID)
	}
}

func TestRecommenderRecommend(t *testing.T) {
	tests := []struct {
		name     string
		uploadID string
		wantPath string
	}{
		{"with upload", "u1", "/recommend/u1"},
		{"text only", "", "/recommend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestRecommender(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != tt.wantPath {
					t.Errorf("path = %q, want %q", r.URL.Path, tt.wantPath)
				}
				if got := r.FormValue("refine_text"); got != "gold hoops" {
					t.Errorf("refine_text = %q", got)
				}
				w.Write([]byte(`{"recommendations":[
					{"id":"p1","name":"Floral Silver Ring","desc":"<p>Elegant <b>floral</b> engraving</p>","price":59.0,"image_url":"/samples/ring.jpg"},
					{"id":"p3","name":"Minimal Band","desc":"Matte finish","price":null,"image_url":""}
				],"message":"Recommendations ready."}`))
			})

			rec, err := s.Recommend(context.Background(), tt.uploadID, "gold hoops")
			if err != nil {
				t.Fatalf("Recommend failed: %v", err)
			}
			if len(rec.Products) != 2 {
				t.Fatalf("got %d products, want 2", len(rec.Products))
			}
			p := rec.Products[0]
			if p.Description != "Elegant floral engraving" {
				t.Errorf("Description = %q", p.Description)
			}
			if !p.Price.Valid || p.Price.Decimal.String() != "59" {
				t.Errorf("Price = %+v", p.Price)
			}
			if rec.Products[1].Price.Valid {
				t.Error("null price decoded as valid")
			}
			if p.ImageLocator != "/samples/ring.jpg" {
				t.Errorf("ImageLocator = %q", p.ImageLocator)
			}
		})
	}
}

func TestRecommenderTransportErrors(t *testing.T) {
	s := newTestRecommender(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := s.Recommend(context.Background(), "u1", "")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
	if te.Op != "recommend" || te.StatusCode != http.StatusInternalServerError {
		t.Errorf("TransportError = %+v", te)
	}

	dead := NewRecommenderService("http://127.0.0.1:1", time.Second)
	if _, err := dead.Upload(context.Background(), nil, "", ""); !IsTransport(err) {
		t.Errorf("network failure err = %v, want transport error", err)
	}
}

func TestRecommenderSelectCartHealth(t *testing.T) {
	s := newTestRecommender(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/select":
			var req struct {
				ProductID string `json:"product_id"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			if req.ProductID != "p2" {
				t.Errorf("product_id = %q", req.ProductID)
			}
			w.Write([]byte(`{"ok":true,"message":"Added Cubic Charm Bracelet to selection."}`))
		case "/cart":
			w.Write([]byte(`[{"id":"p2","name":"Cubic Charm Bracelet","desc":"Set with zirconia stones","price":79.0}]`))
		case "/health":
			w.Write([]byte(`{"ok":true}`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	sel, err := s.Select(ctx, "p2")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if !sel.OK {
		t.Errorf("Select result = %+v", sel)
	}

	cart, err := s.Cart(ctx)
	if err != nil {
		t.Fatalf("Cart failed: %v", err)
	}
	if len(cart) != 1 || cart[0].Name != "Cubic Charm Bracelet" {
		t.Errorf("Cart = %+v", cart)
	}

	if err := s.Health(ctx); err != nil {
		t.Errorf("Health failed: %v", err)
	}
}

func TestResolveImage(t *testing.T) {
	tests := []struct {
		base    string
		locator string
		want    string
	}{
		{"http://localhost:8000", "/samples/ring.jpg", "http://localhost:8000/samples/ring.jpg"},
		{"http://localhost:8000/", "samples/ring.jpg", "http://localhost:8000/samples/ring.jpg"},
		{"https://api.example.com/v1", "/samples/a.webp", "https://api.example.com/v1/samples/a.webp"},
		{"http://localhost:8000", "https://cdn.example.com/x.jpg", "https://cdn.example.com/x.jpg"},
		{"http://localhost:8000", "", ""},
	}
	for _, tt := range tests {
		s := NewRecommenderService(tt.base, time.Second)
		if got := s.ResolveImage(tt.locator); got != tt.want {
			t.Errorf("ResolveImage(%q) with base %q = %q, want %q", tt.locator, tt.base, got, tt.want)
		}
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Matte sterling silver finish ", "Matte sterling silver finish"},
		{"<div>Delicate <i>silver</i>\n heart</div>", "Delicate silver heart"},
		{"Gold &amp; pearl", "Gold & pearl"},
	}
	for _, tt := range tests {
		if got := plainText(tt.in); got != tt.want {
			t.Errorf("plainText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
