// Package api defines the wire messages of the storefront.v1.Storefront
// gRPC service. Messages travel as JSON through the codec registered by
// package kit.
package api

import (
	"encoding/json"

	"storefront/catalog"
	"storefront/checkout"
	"storefront/logic"
	"storefront/pricing"
	"storefront/store"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "storefront.v1.Storefront"

// SessionKey is the metadata key carrying the session id. HTTP clients
// send it as the X-Session-Id header.
const (
	SessionKey    = "x-session-id"
	SessionHeader = "X-Session-Id"
)

// Method names.
const (
	MethodCreateSession      = "CreateSession"
	MethodGetState           = "GetState"
	MethodDispatch           = "Dispatch"
	MethodListProducts       = "ListProducts"
	MethodGetProduct         = "GetProduct"
	MethodGetRelatedProducts = "GetRelatedProducts"
	MethodListCategories     = "ListCategories"
	MethodListTags           = "ListTags"
	MethodStartCheckout      = "StartCheckout"
	MethodSetCheckoutField   = "SetCheckoutField"
	MethodCheckoutNext       = "CheckoutNext"
	MethodCheckoutBack       = "CheckoutBack"
	MethodSubmitOrder        = "SubmitOrder"
	MethodGetCheckout        = "GetCheckout"
	MethodCloseCheckout      = "CloseCheckout"
	MethodDrainNotifications = "DrainNotifications"
)

// FullMethod returns the gRPC method path for a method name.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type CreateSessionRequest struct {
	// ClientKey identifies a returning client. The same key always
	// resumes the same session. Empty starts a fresh one.
	ClientKey string `json:"clientKey,omitempty"`
}

type CreateSessionResponse struct {
	SessionID string        `json:"sessionId"`
	State     StateResponse `json:"state"`
}

type GetStateRequest struct{}

// StateResponse is the session state with derived cart pricing.
type StateResponse struct {
	State   logic.AppState `json:"state"`
	Summary store.Summary  `json:"summary"`
	Version uint64         `json:"version"`
}

// DispatchRequest applies one named command. Payload is the command body,
// for example {"productId":"1","quantity":2} for ADD_TO_CART.
type DispatchRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ListProductsRequest struct {
	Filters catalog.Filters `json:"filters"`
	Sort    catalog.SortKey `json:"sort,omitempty"`
	// Query adds a case-insensitive search over name, description and
	// tags on top of Filters.
	Query string `json:"query,omitempty"`
}

type ListProductsResponse struct {
	Products []catalog.Product `json:"products"`
}

type GetProductRequest struct {
	ProductID string `json:"productId"`
	// RecordView adds the product to the session's recently-viewed list.
	RecordView bool `json:"recordView,omitempty"`
}

type GetProductResponse struct {
	Product    catalog.Product `json:"product"`
	InCart     int             `json:"inCart"`
	InWishlist bool            `json:"inWishlist"`
}

type GetRelatedProductsRequest struct {
	ProductID string `json:"productId"`
	Limit     int    `json:"limit,omitempty"`
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []catalog.Category `json:"categories"`
}

type ListTagsRequest struct{}

type ListTagsResponse struct {
	Tags     []string      `json:"tags"`
	MinPrice pricing.Cents `json:"minPrice"`
	MaxPrice pricing.Cents `json:"maxPrice"`
}

type CheckoutRequest struct{}

type CheckoutResponse struct {
	Checkout checkout.Snapshot `json:"checkout"`
}

type SetCheckoutFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type SubmitOrderRequest struct {
	// Wait blocks until the charge completes. Otherwise the response
	// reports processing and the outcome arrives as a notification.
	Wait bool `json:"wait,omitempty"`
}

type DrainNotificationsRequest struct{}

type DrainNotificationsResponse struct {
	Notifications []checkout.Notification `json:"notifications"`
}
