// Package apiclient is the typed HTTP client for the shop backend. Public
// catalog endpoints need no credentials; customer endpoints carry a bearer
// token obtained from Login.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Product is a catalog entry. Image is resolved from the backend's
// comma-separated image_urls column when not set directly.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
	ImageURLs   string  `json:"image_urls,omitempty"`
	Material    string  `json:"material,omitempty"`
	Color       string  `json:"color,omitempty"`
	Size        string  `json:"size,omitempty"`
	IsActive    bool    `json:"is_active,omitempty"`
}

// Category groups catalog entries.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// User is the authenticated customer profile.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// AuthResponse is the login envelope.
type AuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user,omitempty"`
}

// OrderItem is one purchased line inside an order.
type OrderItem struct {
	ID        string  `json:"id,omitempty"`
	OrderID   string  `json:"order_id,omitempty"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price,omitempty"`
}

// Order is a placed order as returned by the customer endpoints.
type Order struct {
	ID              string      `json:"id"`
	CustomerID      string      `json:"customer_id"`
	TotalAmount     float64     `json:"total_amount"`
	Status          string      `json:"status"`
	OrderDate       string      `json:"order_date"`
	ShippingAddress string      `json:"shipping_address,omitempty"`
	BillingAddress  string      `json:"billing_address,omitempty"`
	Note            string      `json:"note,omitempty"`
	Items           []OrderItem `json:"order_items,omitempty"`
}

// NewOrderItem is one line of an order submission.
type NewOrderItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// NewOrder is the order submission payload.
type NewOrder struct {
	Items           []NewOrderItem `json:"items"`
	ShippingAddress string         `json:"shipping_address"`
	BillingAddress  string         `json:"billing_address,omitempty"`
	Note            string         `json:"note,omitempty"`
}

// APIError carries the backend's error envelope alongside the HTTP status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("api: request failed (status %d)", e.StatusCode)
}

// Client talks to one shop backend.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New constructs a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option customizes Client construction.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// Products lists the full catalog.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var envelope struct {
		Products []Product `json:"products"`
	}
	if err := c.get(ctx, "/api/public/products?limit=1000", "", &envelope); err != nil {
		return nil, err
	}
	return resolveImages(envelope.Products), nil
}

// SearchProducts queries the catalog by free text, optionally narrowed to a
// category.
func (c *Client) SearchProducts(ctx context.Context, query, categoryID string) ([]Product, error) {
	path := "/api/public/products/search?q=" + url.QueryEscape(query)
	if categoryID != "" {
		path += "&category_id=" + url.QueryEscape(categoryID)
	}
	var envelope struct {
		Products []Product `json:"products"`
	}
	if err := c.get(ctx, path, "", &envelope); err != nil {
		return nil, err
	}
	return resolveImages(envelope.Products), nil
}

// ProductByID fetches one catalog entry.
func (c *Client) ProductByID(ctx context.Context, id string) (Product, error) {
	var envelope struct {
		Product Product `json:"product"`
	}
	if err := c.get(ctx, "/api/public/products/"+url.PathEscape(id), "", &envelope); err != nil {
		return Product{}, err
	}
	p := envelope.Product
	if p.Image == "" {
		p.Image = FirstImageURL(p.ImageURLs)
	}
	return p, nil
}

// ProductsByCategory lists the catalog entries in one category.
func (c *Client) ProductsByCategory(ctx context.Context, categoryID string) ([]Product, error) {
	var envelope struct {
		Products []Product `json:"products"`
	}
	path := "/api/public/products?category_id=" + url.QueryEscape(categoryID)
	if err := c.get(ctx, path, "", &envelope); err != nil {
		return nil, err
	}
	return resolveImages(envelope.Products), nil
}

// Categories lists all catalog categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var envelope struct {
		Categories []Category `json:"categories"`
	}
	if err := c.get(ctx, "/api/public/categories", "", &envelope); err != nil {
		return nil, err
	}
	return envelope.Categories, nil
}

// Login authenticates a customer and returns the session token envelope.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResponse
	if err := c.post(ctx, "/api/auth/login", "", body, &out); err != nil {
		return AuthResponse{}, err
	}
	return out, nil
}

// Register creates a customer account.
func (c *Client) Register(ctx context.Context, fullName, email, password, phone string) (AuthResponse, error) {
	body := map[string]string{"full_name": fullName, "email": email, "password": password}
	if phone != "" {
		body["phone"] = phone
	}
	var out AuthResponse
	if err := c.post(ctx, "/api/auth/register", "", body, &out); err != nil {
		return AuthResponse{}, err
	}
	return out, nil
}

// Profile fetches the authenticated customer profile.
func (c *Client) Profile(ctx context.Context, token string) (User, error) {
	var envelope struct {
		User User `json:"user"`
	}
	if err := c.get(ctx, "/api/customer/profile", token, &envelope); err != nil {
		return User{}, err
	}
	return envelope.User, nil
}

// Orders lists the authenticated customer's orders.
func (c *Client) Orders(ctx context.Context, token string) ([]Order, error) {
	var envelope struct {
		Orders []Order `json:"orders"`
	}
	if err := c.get(ctx, "/api/customer/orders", token, &envelope); err != nil {
		return nil, err
	}
	return envelope.Orders, nil
}

// CreateOrder submits an order for the authenticated customer.
func (c *Client) CreateOrder(ctx context.Context, token string, order NewOrder) (Order, error) {
	var envelope struct {
		Order Order `json:"order"`
	}
	if err := c.post(ctx, "/api/orders", token, order, &envelope); err != nil {
		return Order{}, err
	}
	return envelope.Order, nil
}

func (c *Client) get(ctx context.Context, path, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, token, out)
}

func (c *Client) post(ctx context.Context, path, token string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, token, out)
}

func (c *Client) do(req *http.Request, token string, out any) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.Unmarshal(data, &envelope)
		msg := envelope.Message
		if msg == "" {
			msg = envelope.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// FirstImageURL picks the first entry of the backend's comma-separated
// image_urls column. Inline data URIs contain commas and are passed through
// whole.
func FirstImageURL(imageURLs string) string {
	if imageURLs == "" {
		return ""
	}
	if strings.HasPrefix(imageURLs, "data:image") {
		return imageURLs
	}
	first, _, _ := strings.Cut(imageURLs, ",")
	return strings.TrimSpace(first)
}

func resolveImages(products []Product) []Product {
	for i := range products {
		if products[i].Image == "" {
			products[i].Image = FirstImageURL(products[i].ImageURLs)
		}
	}
	return products
}
