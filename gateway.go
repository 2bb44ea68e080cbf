package main

import (
	"errors"
	"io"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront/api"
	"storefront/catalog"
	"storefront/checkout"
	"storefront/kit"
	"storefront/pricing"
)

// requestBuilder fills a gRPC request from an HTTP request.
type requestBuilder[Req any] func(r *http.Request, params map[string]string, req *Req) error

// gateway serves the storefront service as HTTP/JSON by forwarding each
// route to the gRPC server over conn.
type gateway struct {
	conn   grpc.ClientConnInterface
	mux    *runtime.ServeMux
	codec  runtime.JSONBuiltin
	logger *zap.Logger
}

var sessionHeader = textproto.CanonicalMIMEHeaderKey(api.SessionHeader)

// matchHeader forwards X-Session-Id as the session metadata key and
// leaves every other header to the default matcher.
func matchHeader(key string) (string, bool) {
	if textproto.CanonicalMIMEHeaderKey(key) == sessionHeader {
		return api.SessionKey, true
	}
	return runtime.DefaultHeaderMatcher(key)
}

// NewGateway builds the HTTP handler for the storefront service.
func NewGateway(conn grpc.ClientConnInterface, logger *zap.Logger) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &gateway{
		conn:   conn,
		mux:    runtime.NewServeMux(runtime.WithIncomingHeaderMatcher(matchHeader)),
		logger: logger,
	}

	routes := []error{
		route[api.CreateSessionRequest, api.CreateSessionResponse](g, http.MethodPost, "/v1/sessions", api.MethodCreateSession, bodyOnly[api.CreateSessionRequest]),
		route[api.GetStateRequest, api.StateResponse](g, http.MethodGet, "/v1/state", api.MethodGetState, nil),
		route[api.DispatchRequest, api.StateResponse](g, http.MethodPost, "/v1/dispatch", api.MethodDispatch, bodyOnly[api.DispatchRequest]),

		route[api.ListProductsRequest, api.ListProductsResponse](g, http.MethodGet, "/v1/products", api.MethodListProducts, productQuery),
		route[api.ListProductsRequest, api.ListProductsResponse](g, http.MethodPost, "/v1/products/search", api.MethodListProducts, bodyOnly[api.ListProductsRequest]),
		route[api.GetProductRequest, api.GetProductResponse](g, http.MethodGet, "/v1/products/{id}", api.MethodGetProduct, productRequest),
		route[api.GetRelatedProductsRequest, api.ListProductsResponse](g, http.MethodGet, "/v1/products/{id}/related", api.MethodGetRelatedProducts, relatedRequest),
		route[api.ListCategoriesRequest, api.ListCategoriesResponse](g, http.MethodGet, "/v1/categories", api.MethodListCategories, nil),
		route[api.ListTagsRequest, api.ListTagsResponse](g, http.MethodGet, "/v1/tags", api.MethodListTags, nil),

		route[api.CheckoutRequest, api.CheckoutResponse](g, http.MethodPost, "/v1/checkout", api.MethodStartCheckout, nil),
		route[api.CheckoutRequest, api.CheckoutResponse](g, http.MethodGet, "/v1/checkout", api.MethodGetCheckout, nil),
		route[api.CheckoutRequest, api.CheckoutResponse](g, http.MethodDelete, "/v1/checkout", api.MethodCloseCheckout, nil),
		route[api.SetCheckoutFieldRequest, api.CheckoutResponse](g, http.MethodPut, "/v1/checkout/fields/{field}", api.MethodSetCheckoutField, fieldRequest),
		route[api.CheckoutRequest, api.CheckoutResponse](g, http.MethodPost, "/v1/checkout/next", api.MethodCheckoutNext, nil),
		route[api.CheckoutRequest, api.CheckoutResponse](g, http.MethodPost, "/v1/checkout/back", api.MethodCheckoutBack, nil),
		route[api.SubmitOrderRequest, api.CheckoutResponse](g, http.MethodPost, "/v1/checkout/submit", api.MethodSubmitOrder, bodyOnly[api.SubmitOrderRequest]),
		route[api.DrainNotificationsRequest, api.DrainNotificationsResponse](g, http.MethodPost, "/v1/notifications/drain", api.MethodDrainNotifications, nil),
	}
	if err := errors.Join(routes...); err != nil {
		return nil, err
	}
	return g.mux, nil
}

// route registers one HTTP route forwarding to a unary method. A nil
// build sends the zero request.
func route[Req, Resp any](g *gateway, method, pattern, rpc string, build requestBuilder[Req]) error {
	fullMethod := api.FullMethod(rpc)
	return g.mux.HandlePath(method, pattern, func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		ctx, err := runtime.AnnotateContext(r.Context(), g.mux, r, fullMethod)
		if err != nil {
			g.fail(w, r, err)
			return
		}
		req := new(Req)
		if build != nil {
			if err := build(r, params, req); err != nil {
				g.fail(w, r, status.Error(codes.InvalidArgument, err.Error()))
				return
			}
		}
		resp := new(Resp)
		if err := g.conn.Invoke(ctx, fullMethod, req, resp, grpc.CallContentSubtype(kit.CodecName)); err != nil {
			g.fail(w, r, err)
			return
		}
		body, err := g.codec.Marshal(resp)
		if err != nil {
			g.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", g.codec.ContentType(resp))
		if _, err := w.Write(body); err != nil {
			g.logger.Debug("failed to write response", zap.String("method", fullMethod), zap.Error(err))
		}
	})
}

// fail writes err as a google.rpc.Status document with the matching
// HTTP status code.
func (g *gateway) fail(w http.ResponseWriter, r *http.Request, err error) {
	runtime.HTTPError(r.Context(), g.mux, &runtime.JSONPb{}, w, r, err)
}

// decodeBody reads a JSON request body into req. An empty body leaves
// req unchanged.
func decodeBody(r *http.Request, req any) error {
	if r.Body == nil {
		return nil
	}
	err := (&runtime.JSONBuiltin{}).NewDecoder(r.Body).Decode(req)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func bodyOnly[Req any](r *http.Request, _ map[string]string, req *Req) error {
	return decodeBody(r, req)
}

func productQuery(r *http.Request, _ map[string]string, req *api.ListProductsRequest) error {
	q := r.URL.Query()
	req.Query = q.Get("q")
	req.Sort = catalog.SortKey(q.Get("sort"))
	req.Filters = catalog.Filters{
		Category:    q.Get("category"),
		Subcategory: q.Get("subcategory"),
		Tags:        q["tag"],
	}
	var err error
	if req.Filters.MinPrice, err = priceParam(q.Get("minPrice")); err != nil {
		return err
	}
	if req.Filters.MaxPrice, err = priceParam(q.Get("maxPrice")); err != nil {
		return err
	}
	if req.Filters.InStock, err = boolParam(q.Get("inStock")); err != nil {
		return err
	}
	if req.Filters.Featured, err = boolParam(q.Get("featured")); err != nil {
		return err
	}
	return nil
}

func productRequest(r *http.Request, params map[string]string, req *api.GetProductRequest) error {
	req.ProductID = params["id"]
	view, err := boolParam(r.URL.Query().Get("recordView"))
	if err != nil {
		return err
	}
	req.RecordView = view != nil && *view
	return nil
}

func relatedRequest(r *http.Request, params map[string]string, req *api.GetRelatedProductsRequest) error {
	req.ProductID = params["id"]
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return errors.New("limit must be an integer")
		}
		req.Limit = limit
	}
	return nil
}

func fieldRequest(r *http.Request, params map[string]string, req *api.SetCheckoutFieldRequest) error {
	if err := decodeBody(r, req); err != nil {
		return err
	}
	req.Field = params["field"]
	return nil
}

// priceParam parses a dollar amount such as "19.99".
func priceParam(raw string) (*pricing.Cents, error) {
	if raw == "" {
		return nil, nil
	}
	dollars, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New("price must be a decimal amount")
	}
	c := pricing.FromDollars(dollars)
	return &c, nil
}

func boolParam(raw string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errors.New(checkout.ErrMsgInvalidBool)
	}
	return &v, nil
}
