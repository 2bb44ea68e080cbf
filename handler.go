package main

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"storefront/api"
	"storefront/catalog"
	"storefront/kit"
	"storefront/store"
)

// Error message constants for the service boundary.
const (
	ErrMsgSessionRequired = "Session id is required"
	ErrMsgInvalidSession  = "Session id is invalid"
)

// StorefrontServer is the storefront.v1.Storefront service.
type StorefrontServer interface {
	CreateSession(context.Context, *api.CreateSessionRequest) (*api.CreateSessionResponse, error)
	GetState(context.Context, *api.GetStateRequest) (*api.StateResponse, error)
	Dispatch(context.Context, *api.DispatchRequest) (*api.StateResponse, error)
	ListProducts(context.Context, *api.ListProductsRequest) (*api.ListProductsResponse, error)
	GetProduct(context.Context, *api.GetProductRequest) (*api.GetProductResponse, error)
	GetRelatedProducts(context.Context, *api.GetRelatedProductsRequest) (*api.ListProductsResponse, error)
	ListCategories(context.Context, *api.ListCategoriesRequest) (*api.ListCategoriesResponse, error)
	ListTags(context.Context, *api.ListTagsRequest) (*api.ListTagsResponse, error)
	StartCheckout(context.Context, *api.CheckoutRequest) (*api.CheckoutResponse, error)
	SetCheckoutField(context.Context, *api.SetCheckoutFieldRequest) (*api.CheckoutResponse, error)
	CheckoutNext(context.Context, *api.CheckoutRequest) (*api.CheckoutResponse, error)
	CheckoutBack(context.Context, *api.CheckoutRequest) (*api.CheckoutResponse, error)
	SubmitOrder(context.Context, *api.SubmitOrderRequest) (*api.CheckoutResponse, error)
	GetCheckout(context.Context, *api.CheckoutRequest) (*api.CheckoutResponse, error)
	CloseCheckout(context.Context, *api.CheckoutRequest) (*api.CheckoutResponse, error)
	DrainNotifications(context.Context, *api.DrainNotificationsRequest) (*api.DrainNotificationsResponse, error)
}

// unary builds the method descriptor for one StorefrontServer method.
func unary[Req, Resp any](name string, call func(StorefrontServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(StorefrontServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: api.FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var storefrontServiceDesc = grpc.ServiceDesc{
	ServiceName: api.ServiceName,
	HandlerType: (*StorefrontServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(api.MethodCreateSession, StorefrontServer.CreateSession),
		unary(api.MethodGetState, StorefrontServer.GetState),
		unary(api.MethodDispatch, StorefrontServer.Dispatch),
		unary(api.MethodListProducts, StorefrontServer.ListProducts),
		unary(api.MethodGetProduct, StorefrontServer.GetProduct),
		unary(api.MethodGetRelatedProducts, StorefrontServer.GetRelatedProducts),
		unary(api.MethodListCategories, StorefrontServer.ListCategories),
		unary(api.MethodListTags, StorefrontServer.ListTags),
		unary(api.MethodStartCheckout, StorefrontServer.StartCheckout),
		unary(api.MethodSetCheckoutField, StorefrontServer.SetCheckoutField),
		unary(api.MethodCheckoutNext, StorefrontServer.CheckoutNext),
		unary(api.MethodCheckoutBack, StorefrontServer.CheckoutBack),
		unary(api.MethodSubmitOrder, StorefrontServer.SubmitOrder),
		unary(api.MethodGetCheckout, StorefrontServer.GetCheckout),
		unary(api.MethodCloseCheckout, StorefrontServer.CloseCheckout),
		unary(api.MethodDrainNotifications, StorefrontServer.DrainNotifications),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/v1/storefront",
}

// RegisterStorefrontServer registers srv on s.
func RegisterStorefrontServer(s grpc.ServiceRegistrar, srv StorefrontServer) {
	s.RegisterService(&storefrontServiceDesc, srv)
}

type service struct {
	catalog  *catalog.Catalog
	sessions *Sessions
	logger   *zap.Logger
}

func newService(c *catalog.Catalog, sessions *Sessions, logger *zap.Logger) *service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{catalog: c, sessions: sessions, logger: logger}
}

// session resolves the caller's session from the x-session-id metadata.
func (s *service) session(ctx context.Context) (*Session, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get(api.SessionKey)
	if len(values) == 0 || values[0] == "" {
		return nil, kit.NewInvalidArgument(ErrMsgSessionRequired)
	}
	id, err := kit.ParseSessionID(values[0])
	if err != nil {
		return nil, kit.NewInvalidArgument(ErrMsgInvalidSession)
	}
	return s.sessions.Resume(ctx, id)
}

func stateResponse(st *store.Store) *api.StateResponse {
	state := st.State()
	return &api.StateResponse{
		State:   state,
		Summary: store.Summarize(state.Cart),
		Version: st.Version(),
	}
}

func (s *service) CreateSession(ctx context.Context, req *api.CreateSessionRequest) (*api.CreateSessionResponse, error) {
	sess, err := s.sessions.Open(ctx, req.ClientKey)
	if err != nil {
		return nil, err
	}
	return &api.CreateSessionResponse{
		SessionID: sess.ID.String(),
		State:     *stateResponse(sess.Store),
	}, nil
}

func (s *service) GetState(ctx context.Context, _ *api.GetStateRequest) (*api.StateResponse, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return stateResponse(sess.Store), nil
}

func (s *service) Dispatch(ctx context.Context, req *api.DispatchRequest) (*api.StateResponse, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	action, err := decodeAction(s.catalog, req.Type, req.Payload)
	if err != nil {
		return nil, err
	}
	if _, err := sess.Store.Dispatch(action); err != nil {
		return nil, err
	}
	return stateResponse(sess.Store), nil
}

func (s *service) ListProducts(_ context.Context, req *api.ListProductsRequest) (*api.ListProductsResponse, error) {
	filters := req.Filters
	if req.Query != "" {
		filters.Search = req.Query
	}
	products := s.catalog.Products(filters)
	if req.Sort != "" {
		products = catalog.Sort(products, req.Sort)
	}
	return &api.ListProductsResponse{Products: products}, nil
}

func (s *service) GetProduct(ctx context.Context, req *api.GetProductRequest) (*api.GetProductResponse, error) {
	if err := kit.RequireNotBlank(req.ProductID, catalog.ErrMsgProductIDRequired); err != nil {
		return nil, err
	}
	product, ok := s.catalog.ProductByID(req.ProductID)
	if !ok {
		return nil, kit.NewNotFound(catalog.ErrMsgProductNotFound)
	}
	resp := &api.GetProductResponse{Product: product}

	md, _ := metadata.FromIncomingContext(ctx)
	if !req.RecordView && len(md.Get(api.SessionKey)) == 0 {
		return resp, nil
	}
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	if req.RecordView {
		if err := sess.Store.AddRecentlyViewed(product.ID); err != nil {
			return nil, err
		}
	}
	resp.InCart = sess.Store.CartItemQuantity(product.ID)
	resp.InWishlist = sess.Store.IsInWishlist(product.ID)
	return resp, nil
}

func (s *service) GetRelatedProducts(_ context.Context, req *api.GetRelatedProductsRequest) (*api.ListProductsResponse, error) {
	if _, ok := s.catalog.ProductByID(req.ProductID); !ok {
		return nil, kit.NewNotFound(catalog.ErrMsgProductNotFound)
	}
	return &api.ListProductsResponse{Products: s.catalog.Related(req.ProductID, req.Limit)}, nil
}

func (s *service) ListCategories(context.Context, *api.ListCategoriesRequest) (*api.ListCategoriesResponse, error) {
	return &api.ListCategoriesResponse{Categories: s.catalog.Categories()}, nil
}

func (s *service) ListTags(context.Context, *api.ListTagsRequest) (*api.ListTagsResponse, error) {
	low, high := s.catalog.PriceRange()
	return &api.ListTagsResponse{Tags: s.catalog.Tags(), MinPrice: low, MaxPrice: high}, nil
}

func (s *service) StartCheckout(ctx context.Context, _ *api.CheckoutRequest) (*api.CheckoutResponse, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := sess.Flow.Start()
	if err != nil {
		return nil, err
	}
	return &api.CheckoutResponse{Checkout: snap}, nil
}

func (s *service) SetCheckoutField(ctx context.Context, req *api.SetCheckoutFieldRequest) (*api.CheckoutResponse, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := sess.Flow.SetField(req.Field, req.Value)
	if err != nil {
		return nil, err
	}
	return &api.CheckoutResponse{Checkout: snap}, nil
}

func (s *service) CheckoutNext(ctx context.Context, _ *api.CheckoutRequest) (*api.CheckoutResponse, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := sess.Flow.Next()
	if err != nil {
		return nil, err
	}
	return &api.CheckoutResponse{Checkout: snap}, nil
}

func (s *service) CheckoutBack(ctx context.Context, _ *api.CheckoutRequest) (*api.CheckoutResponse, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := sess.Flow.Back()
	if err != nil {
		return nil, err
	}
	return &api.CheckoutResponse{Checkout: snap}, nil
}

func (s *service) SubmitOrder(ctx context.Context, req *api.SubmitOrderRequest) (*api.CheckoutResponse, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("submitting order",
		zap.String("session_id", sess.ID.String()),
		zap.Bool("wait", req.Wait))
	if req.Wait {
		snap, err := sess.Flow.Submit(ctx)
		if err != nil {
			return nil, err
		}
		return &api.CheckoutResponse{Checkout: snap}, nil
	}

	// The charge outlives this call.
	snap, err := sess.Flow.SubmitAsync(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}
	return &api.CheckoutResponse{Checkout: snap}, nil
}

func (s *service) GetCheckout(ctx context.Context, _ *api.CheckoutRequest) (*api.CheckoutResponse, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return &api.CheckoutResponse{Checkout: sess.Flow.Snapshot()}, nil
}

func (s *service) CloseCheckout(ctx context.Context, _ *api.CheckoutRequest) (*api.CheckoutResponse, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return &api.CheckoutResponse{Checkout: sess.Flow.Close()}, nil
}

func (s *service) DrainNotifications(ctx context.Context, _ *api.DrainNotificationsRequest) (*api.DrainNotificationsResponse, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return &api.DrainNotificationsResponse{Notifications: sess.Inbox.Drain()}, nil
}
