// Package rpc is the wire contract between the movieshelf client and the
// RemoteStore service: message types, a JSON codec and the gRPC service
// descriptor.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "movieshelf.RemoteStore"

const (
	MethodPing           = "Ping"
	MethodCreateIdentity = "CreateIdentity"
	MethodCreateSession  = "CreateSession"
	MethodDeleteSession  = "DeleteSession"
	MethodGetSession     = "GetSession"
	MethodListDocuments  = "ListDocuments"
	MethodCreateDocument = "CreateDocument"
	MethodUpdateDocument = "UpdateDocument"
	MethodDeleteDocument = "DeleteDocument"
)

// FullMethod returns the "/service/method" name gRPC uses on the wire.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// PublicMethods can be called without a session token.
var PublicMethods = map[string]bool{
	FullMethod(MethodPing):           true,
	FullMethod(MethodCreateIdentity): true,
	FullMethod(MethodCreateSession):  true,
}

type RemoteStoreServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	CreateIdentity(context.Context, *CreateIdentityRequest) (*IdentityResponse, error)
	CreateSession(context.Context, *CreateSessionRequest) (*CreateSessionResponse, error)
	DeleteSession(context.Context, *DeleteSessionRequest) (*DeleteSessionResponse, error)
	GetSession(context.Context, *GetSessionRequest) (*IdentityResponse, error)
	ListDocuments(context.Context, *ListDocumentsRequest) (*ListDocumentsResponse, error)
	CreateDocument(context.Context, *CreateDocumentRequest) (*DocumentResponse, error)
	UpdateDocument(context.Context, *UpdateDocumentRequest) (*DocumentResponse, error)
	DeleteDocument(context.Context, *DeleteDocumentRequest) (*DeleteDocumentResponse, error)
}

// UnimplementedRemoteStoreServer can be embedded to satisfy RemoteStoreServer
// with methods that answer codes.Unimplemented.
type UnimplementedRemoteStoreServer struct{}

func (UnimplementedRemoteStoreServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedRemoteStoreServer) CreateIdentity(context.Context, *CreateIdentityRequest) (*IdentityResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateIdentity not implemented")
}
func (UnimplementedRemoteStoreServer) CreateSession(context.Context, *CreateSessionRequest) (*CreateSessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateSession not implemented")
}
func (UnimplementedRemoteStoreServer) DeleteSession(context.Context, *DeleteSessionRequest) (*DeleteSessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteSession not implemented")
}
func (UnimplementedRemoteStoreServer) GetSession(context.Context, *GetSessionRequest) (*IdentityResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSession not implemented")
}
func (UnimplementedRemoteStoreServer) ListDocuments(context.Context, *ListDocumentsRequest) (*ListDocumentsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListDocuments not implemented")
}
func (UnimplementedRemoteStoreServer) CreateDocument(context.Context, *CreateDocumentRequest) (*DocumentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateDocument not implemented")
}
func (UnimplementedRemoteStoreServer) UpdateDocument(context.Context, *UpdateDocumentRequest) (*DocumentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateDocument not implemented")
}
func (UnimplementedRemoteStoreServer) DeleteDocument(context.Context, *DeleteDocumentRequest) (*DeleteDocumentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteDocument not implemented")
}

func RegisterRemoteStoreServer(s grpc.ServiceRegistrar, srv RemoteStoreServer) {
	s.RegisterService(&RemoteStore_ServiceDesc, srv)
}

// unary builds the method handler gRPC dispatches to: decode the request,
// then run the call through the interceptor chain.
func unary[Req, Resp any](method string, call func(RemoteStoreServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	full := FullMethod(method)
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RemoteStoreServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RemoteStoreServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var RemoteStore_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RemoteStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodPing, Handler: unary(MethodPing, RemoteStoreServer.Ping)},
		{MethodName: MethodCreateIdentity, Handler: unary(MethodCreateIdentity, RemoteStoreServer.CreateIdentity)},
		{MethodName: MethodCreateSession, Handler: unary(MethodCreateSession, RemoteStoreServer.CreateSession)},
		{MethodName: MethodDeleteSession, Handler: unary(MethodDeleteSession, RemoteStoreServer.DeleteSession)},
		{MethodName: MethodGetSession, Handler: unary(MethodGetSession, RemoteStoreServer.GetSession)},
		{MethodName: MethodListDocuments, Handler: unary(MethodListDocuments, RemoteStoreServer.ListDocuments)},
		{MethodName: MethodCreateDocument, Handler: unary(MethodCreateDocument, RemoteStoreServer.CreateDocument)},
		{MethodName: MethodUpdateDocument, Handler: unary(MethodUpdateDocument, RemoteStoreServer.UpdateDocument)},
		{MethodName: MethodDeleteDocument, Handler: unary(MethodDeleteDocument, RemoteStoreServer.DeleteDocument)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "movieshelf/remote_store",
}

type RemoteStoreClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	CreateIdentity(ctx context.Context, in *CreateIdentityRequest, opts ...grpc.CallOption) (*IdentityResponse, error)
	CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*CreateSessionResponse, error)
	DeleteSession(ctx context.Context, in *DeleteSessionRequest, opts ...grpc.CallOption) (*DeleteSessionResponse, error)
	GetSession(ctx context.Context, in *GetSessionRequest, opts ...grpc.CallOption) (*IdentityResponse, error)
	ListDocuments(ctx context.Context, in *ListDocumentsRequest, opts ...grpc.CallOption) (*ListDocumentsResponse, error)
	CreateDocument(ctx context.Context, in *CreateDocumentRequest, opts ...grpc.CallOption) (*DocumentResponse, error)
	UpdateDocument(ctx context.Context, in *UpdateDocumentRequest, opts ...grpc.CallOption) (*DocumentResponse, error)
	DeleteDocument(ctx context.Context, in *DeleteDocumentRequest, opts ...grpc.CallOption) (*DeleteDocumentResponse, error)
}

type remoteStoreClient struct {
	cc grpc.ClientConnInterface
}

// NewRemoteStoreClient returns a client whose calls are always encoded with
// the JSON codec.
func NewRemoteStoreClient(cc grpc.ClientConnInterface) RemoteStoreClient {
	return &remoteStoreClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *remoteStoreClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *remoteStoreClient) CreateIdentity(ctx context.Context, in *CreateIdentityRequest, opts ...grpc.CallOption) (*IdentityResponse, error) {
	return invoke[IdentityResponse](ctx, c.cc, MethodCreateIdentity, in, opts)
}

func (c *remoteStoreClient) CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*CreateSessionResponse, error) {
	return invoke[CreateSessionResponse](ctx, c.cc, MethodCreateSession, in, opts)
}

func (c *remoteStoreClient) DeleteSession(ctx context.Context, in *DeleteSessionRequest, opts ...grpc.CallOption) (*DeleteSessionResponse, error) {
	return invoke[DeleteSessionResponse](ctx, c.cc, MethodDeleteSession, in, opts)
}

func (c *remoteStoreClient) GetSession(ctx context.Context, in *GetSessionRequest, opts ...grpc.CallOption) (*IdentityResponse, error) {
	return invoke[IdentityResponse](ctx, c.cc, MethodGetSession, in, opts)
}

func (c *remoteStoreClient) ListDocuments(ctx context.Context, in *ListDocumentsRequest, opts ...grpc.CallOption) (*ListDocumentsResponse, error) {
	return invoke[ListDocumentsResponse](ctx, c.cc, MethodListDocuments, in, opts)
}

func (c *remoteStoreClient) CreateDocument(ctx context.Context, in *CreateDocumentRequest, opts ...grpc.CallOption) (*DocumentResponse, error) {
	return invoke[DocumentResponse](ctx, c.cc, MethodCreateDocument, in, opts)
}

func (c *remoteStoreClient) UpdateDocument(ctx context.Context, in *UpdateDocumentRequest, opts ...grpc.CallOption) (*DocumentResponse, error) {
	return invoke[DocumentResponse](ctx, c.cc, MethodUpdateDocument, in, opts)
}

func (c *remoteStoreClient) DeleteDocument(ctx context.Context, in *DeleteDocumentRequest, opts ...grpc.CallOption) (*DeleteDocumentResponse, error) {
	return invoke[DeleteDocumentResponse](ctx, c.cc, MethodDeleteDocument, in, opts)
}
