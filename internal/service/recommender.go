package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/set-night/jewelbot/internal/domain"
	"github.com/shopspring/decimal"
)

// TransportError reports a failed call to the recommendation service,
// either a network failure or a non-success status.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err came from the recommendation transport.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

const cartCacheTTL = 30 * time.Second

type RecommenderService struct {
	baseURL    string
	httpClient *http.Client
	cart       *CartCache
}

func NewRecommenderService(baseURL string, timeout time.Duration) *RecommenderService {
	return &RecommenderService{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cart:       NewCartCache(cartCacheTTL),
	}
}

func (s *RecommenderService) BaseURL() string { return s.baseURL }

type productJSON struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"desc"`
	Price       decimal.NullDecimal `json:"price"`
	ImageURL    string              `json:"image_url"`
}

func (p productJSON) toDomain() domain.Product {
	return domain.Product{
		ID:           p.ID,
		Name:         p.Name,
		Description:  plainText(p.Description),
		ImageLocator: p.ImageURL,
		Price:        p.Price,
	}
}

// Upload sends reference images and returns the upload id the service
// assigned to them.
func (s *RecommenderService) Upload(ctx context.Context, files []domain.FileHandle, clientName, notes string) (*domain.UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		if err := writeFilePart(mw, f); err != nil {
			return nil, err
		}
	}
	mw.WriteField("client_name", clientName)
	mw.WriteField("notes", notes)
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	var result struct {
		UploadID string `json:"upload_id"`
		Message  string `json:"message"`
	}
	if err := s.do(ctx, "upload", http.MethodPost, "/upload", mw.FormDataContentType(), &body, &result); err != nil {
		return nil, err
	}
	return &domain.UploadResult{UploadID: result.UploadID, Message: result.Message}, nil
}

func writeFilePart(mw *multipart.Writer, f domain.FileHandle) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %q: %w", f.Name(), err)
	}
	defer src.Close()

	part, err := mw.CreateFormFile("files", f.Name())
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copy %q: %w", f.Name(), err)
	}
	return nil
}

// Recommend asks for products matching an upload, refined by free text.
// An empty uploadID requests text-only recommendations.
func (s *RecommenderService) Recommend(ctx context.Context, uploadID, refineText string) (*domain.Recommendation, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("refine_text", refineText)
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	endpoint := "/recommend"
	if uploadID != "" {
		endpoint += "/" + url.PathEscape(uploadID)
	}

	var result struct {
		Recommendations []productJSON `json:"recommendations"`
		Message         string        `json:"message"`
	}
	if err := s.do(ctx, "recommend", http.MethodPost, endpoint, mw.FormDataContentType(), &body, &result); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(result.Recommendations))
	for _, p := range result.Recommendations {
		products = append(products, p.toDomain())
	}
	return &domain.Recommendation{Products: products, Message: result.Message}, nil
}

// Select records a product choice in the service's own cart.
func (s *RecommenderService) Select(ctx context.Context, productID string) (*domain.SelectResult, error) {
	payload, err := json.Marshal(map[string]string{"product_id": productID})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var result struct {
		OK      bool   `json:"ok"`
		Message string `json:"message"`
	}
	if err := s.do(ctx, "select", http.MethodPost, "/select", "application/json", bytes.NewReader(payload), &result); err != nil {
		return nil, err
	}
	s.cart.Invalidate()
	return &domain.SelectResult{OK: result.OK, Message: result.Message}, nil
}

// Cart returns the service-side cart mirror. Listings are cached briefly;
// Select through this client drops the cache.
func (s *RecommenderService) Cart(ctx context.Context) ([]domain.Product, error) {
	if cached := s.cart.Get(); cached != nil {
		return cached, nil
	}

	var result []productJSON
	if err := s.do(ctx, "cart", http.MethodGet, "/cart", "", nil, &result); err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(result))
	for _, p := range result {
		products = append(products, p.toDomain())
	}
	s.cart.Set(products)
	return products, nil
}

func (s *RecommenderService) Health(ctx context.Context) error {
	var result struct {
		OK bool `json:"ok"`
	}
	if err := s.do(ctx, "health", http.MethodGet, "/health", "", nil, &result); err != nil {
		return err
	}
	if !result.OK {
		return &TransportError{Op: "health", Err: errors.New("service reported not ok")}
	}
	return nil
}

func (s *RecommenderService) do(ctx context.Context, op, method, endpoint, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &TransportError{Op: op, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("parse response: %w", err)}
	}
	return nil
}

// ResolveImage turns a product image locator into an absolute URL.
// Relative locators are resolved against the service base URL.
func (s *RecommenderService) ResolveImage(locator string) string {
	if locator == "" {
		return ""
	}
	rel, err := url.Parse(locator)
	if err != nil {
		return ""
	}
	if rel.Scheme != "" && rel.Host != "" {
		return locator
	}
	base, err := url.Parse(s.baseURL)
	if err != nil {
		return ""
	}
	joined := &url.URL{
		Scheme:   base.Scheme,
		User:     base.User,
		Host:     base.Host,
		Path:     path.Join("/", base.Path, rel.Path),
		RawQuery: rel.RawQuery,
	}
	return joined.String()
}

// plainText strips markup from a product description.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
