// Package client is a Go client for the storefront gRPC service.
//
//	c, err := client.New("localhost:50302")
//	resp, err := c.CreateSession(ctx, "")
//	shopper := c.WithSession(resp.SessionID)
//	state, err := shopper.AddToCart(ctx, "1", 2)
package client

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"storefront/api"
	"storefront/catalog"
	"storefront/kit"
	"storefront/logic"
)

// formatEndpoint converts an endpoint to gRPC target format. Paths
// starting with '/' or './' are Unix domain sockets.
func formatEndpoint(endpoint string) string {
	if strings.HasPrefix(endpoint, "/") || strings.HasPrefix(endpoint, "./") {
		return "unix://" + endpoint
	}
	return endpoint
}

// Client calls the storefront service. A client bound to a session with
// WithSession carries the session id on every call.
type Client struct {
	conn    grpc.ClientConnInterface
	closer  func() error
	session string
}

// New connects to a storefront server at endpoint.
func New(endpoint string) (*Client, error) {
	conn, err := grpc.NewClient(formatEndpoint(endpoint), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, TransportError(err)
	}
	return &Client{conn: conn, closer: conn.Close}, nil
}

// FromEnv connects using an environment variable with fallback.
func FromEnv(envVar, defaultEndpoint string) (*Client, error) {
	endpoint := os.Getenv(envVar)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return New(endpoint)
}

// FromConn creates a client over an existing connection. Close leaves the
// connection open.
func FromConn(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// WithSession returns a client bound to a session, sharing c's connection.
func (c *Client) WithSession(sessionID string) *Client {
	return &Client{conn: c.conn, session: sessionID}
}

// SessionID returns the bound session id, or "".
func (c *Client) SessionID() string { return c.session }

// Close closes a connection opened by New.
func (c *Client) Close() error {
	if c.closer != nil {
		return c.closer()
	}
	return nil
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	if c.session != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, api.SessionKey, c.session)
	}
	if err := c.conn.Invoke(ctx, api.FullMethod(method), req, resp, grpc.CallContentSubtype(kit.CodecName)); err != nil {
		return GRPCError(err)
	}
	return nil
}

func (c *Client) requireSession() error {
	if c.session == "" {
		return &ClientError{Kind: ErrNoSession, Message: "client is not bound to a session"}
	}
	return nil
}

// CreateSession opens the session for clientKey, or a fresh one when
// clientKey is empty.
func (c *Client) CreateSession(ctx context.Context, clientKey string) (*api.CreateSessionResponse, error) {
	resp := &api.CreateSessionResponse{}
	if err := c.invoke(ctx, api.MethodCreateSession, &api.CreateSessionRequest{ClientKey: clientKey}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) State(ctx context.Context) (*api.StateResponse, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	resp := &api.StateResponse{}
	if err := c.invoke(ctx, api.MethodGetState, &api.GetStateRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Dispatch sends a named command. payload is marshalled as the command
// body and may be nil.
func (c *Client) Dispatch(ctx context.Context, commandType string, payload any) (*api.StateResponse, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	req := &api.DispatchRequest{Type: commandType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, InvalidArgumentError(err.Error())
		}
		req.Payload = raw
	}
	resp := &api.StateResponse{}
	if err := c.invoke(ctx, api.MethodDispatch, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

type productPayload struct {
	ProductID string `json:"productId"`
}

func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (*api.StateResponse, error) {
	return c.Dispatch(ctx, logic.TypeAddToCart, map[string]any{"productId": productID, "quantity": quantity})
}

func (c *Client) RemoveFromCart(ctx context.Context, productID string) (*api.StateResponse, error) {
	return c.Dispatch(ctx, logic.TypeRemoveFromCart, productPayload{productID})
}

func (c *Client) UpdateCartQuantity(ctx context.Context, productID string, quantity int) (*api.StateResponse, error) {
	return c.Dispatch(ctx, logic.TypeUpdateCartQuantity, map[string]any{"productId": productID, "quantity": quantity})
}

func (c *Client) ClearCart(ctx context.Context) (*api.StateResponse, error) {
	return c.Dispatch(ctx, logic.TypeClearCart, nil)
}

func (c *Client) ToggleWishlist(ctx context.Context, productID string) (*api.StateResponse, error) {
	return c.Dispatch(ctx, logic.TypeToggleWishlist, productPayload{productID})
}

func (c *Client) AddSearchHistory(ctx context.Context, term string) (*api.StateResponse, error) {
	return c.Dispatch(ctx, logic.TypeAddSearchHistory, map[string]string{"term": term})
}

func (c *Client) UpdateFilters(ctx context.Context, filters catalog.Filters) (*api.StateResponse, error) {
	return c.Dispatch(ctx, logic.TypeUpdateFilters, map[string]any{"filters": filters})
}

// RemoveFilters drops the named filter keys, leaving the others in place.
func (c *Client) RemoveFilters(ctx context.Context, keys ...string) (*api.StateResponse, error) {
	patch := make(map[string]any, len(keys))
	for _, key := range keys {
		patch[key] = nil
	}
	return c.Dispatch(ctx, logic.TypeUpdateFilters, map[string]any{"filters": patch})
}

func (c *Client) SetTheme(ctx context.Context, theme logic.Theme) (*api.StateResponse, error) {
	return c.Dispatch(ctx, logic.TypeSetTheme, map[string]any{"theme": theme})
}

func (c *Client) ListProducts(ctx context.Context, req *api.ListProductsRequest) ([]catalog.Product, error) {
	resp := &api.ListProductsResponse{}
	if err := c.invoke(ctx, api.MethodListProducts, req, resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// Product fetches a product. On a session-bound client the response also
// reports the cart quantity and wishlist membership, and recordView adds
// the product to the recently-viewed list.
func (c *Client) Product(ctx context.Context, productID string, recordView bool) (*api.GetProductResponse, error) {
	if recordView {
		if err := c.requireSession(); err != nil {
			return nil, err
		}
	}
	resp := &api.GetProductResponse{}
	req := &api.GetProductRequest{ProductID: productID, RecordView: recordView}
	if err := c.invoke(ctx, api.MethodGetProduct, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) RelatedProducts(ctx context.Context, productID string, limit int) ([]catalog.Product, error) {
	resp := &api.ListProductsResponse{}
	req := &api.GetRelatedProductsRequest{ProductID: productID, Limit: limit}
	if err := c.invoke(ctx, api.MethodGetRelatedProducts, req, resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) Categories(ctx context.Context) ([]catalog.Category, error) {
	resp := &api.ListCategoriesResponse{}
	if err := c.invoke(ctx, api.MethodListCategories, &api.ListCategoriesRequest{}, resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (c *Client) Tags(ctx context.Context) (*api.ListTagsResponse, error) {
	resp := &api.ListTagsResponse{}
	if err := c.invoke(ctx, api.MethodListTags, &api.ListTagsRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) checkout(ctx context.Context, method string, req any) (*api.CheckoutResponse, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	resp := &api.CheckoutResponse{}
	if err := c.invoke(ctx, method, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) StartCheckout(ctx context.Context) (*api.CheckoutResponse, error) {
	return c.checkout(ctx, api.MethodStartCheckout, &api.CheckoutRequest{})
}

func (c *Client) SetCheckoutField(ctx context.Context, field, value string) (*api.CheckoutResponse, error) {
	return c.checkout(ctx, api.MethodSetCheckoutField, &api.SetCheckoutFieldRequest{Field: field, Value: value})
}

// SetCheckoutFields sets several fields in map order and returns the
// last snapshot. It stops at the first rejected field.
func (c *Client) SetCheckoutFields(ctx context.Context, fields map[string]string) (*api.CheckoutResponse, error) {
	resp, err := c.Checkout(ctx)
	if err != nil {
		return nil, err
	}
	for field, value := range fields {
		if resp, err = c.SetCheckoutField(ctx, field, value); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (c *Client) CheckoutNext(ctx context.Context) (*api.CheckoutResponse, error) {
	return c.checkout(ctx, api.MethodCheckoutNext, &api.CheckoutRequest{})
}

func (c *Client) CheckoutBack(ctx context.Context) (*api.CheckoutResponse, error) {
	return c.checkout(ctx, api.MethodCheckoutBack, &api.CheckoutRequest{})
}

// SubmitOrder places the order. With wait the call returns after the
// charge; otherwise it returns the processing snapshot at once.
func (c *Client) SubmitOrder(ctx context.Context, wait bool) (*api.CheckoutResponse, error) {
	return c.checkout(ctx, api.MethodSubmitOrder, &api.SubmitOrderRequest{Wait: wait})
}

func (c *Client) Checkout(ctx context.Context) (*api.CheckoutResponse, error) {
	return c.checkout(ctx, api.MethodGetCheckout, &api.CheckoutRequest{})
}

func (c *Client) CloseCheckout(ctx context.Context) (*api.CheckoutResponse, error) {
	return c.checkout(ctx, api.MethodCloseCheckout, &api.CheckoutRequest{})
}

func (c *Client) DrainNotifications(ctx context.Context) (*api.DrainNotificationsResponse, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	resp := &api.DrainNotificationsResponse{}
	if err := c.invoke(ctx, api.MethodDrainNotifications, &api.DrainNotificationsRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
