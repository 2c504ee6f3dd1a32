package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/movieshelf/internal/client/models"
	"github.com/dmitrijs2005/movieshelf/internal/common"
	"github.com/dmitrijs2005/movieshelf/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// DefaultRequestTimeout bounds each call when no timeout is configured.
const DefaultRequestTimeout = 10 * time.Second

// GRPCClient implements Client over a gRPC connection. It is safe for
// concurrent use.
type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      rpc.RemoteStoreClient

	mu    sync.RWMutex
	token string
}

func withBearer(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AuthorizationHeaderName)
	if token != "" {
		md.Set(common.AuthorizationHeaderName, common.AuthScheme+" "+token)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

// authInterceptor bounds the call with the request timeout and attaches
// the current session token.
func (s *GRPCClient) authInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return invoker(withBearer(ctx, s.Token()), method, req, reply, cc, opts...)
}

// NewRemoteStoreClient connects to the RemoteStore endpoint. A timeout <= 0
// falls back to DefaultRequestTimeout.
func NewRemoteStoreClient(endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}
	if err := c.initGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient(extra ...grpc.DialOption) error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.authInterceptor),
	}, extra...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewRemoteStoreClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *GRPCClient) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &rpc.PingRequest{})
	if err != nil {
		return mapError(err)
	}
	if resp.Status != "OK" {
		return fmt.Errorf("%w: ping status %q", ErrNetwork, resp.Status)
	}
	return nil
}

func (s *GRPCClient) CreateIdentity(ctx context.Context, email, password, name string) (*models.Identity, error) {
	resp, err := s.client.CreateIdentity(ctx, &rpc.CreateIdentityRequest{Email: email, Password: password, Name: name})
	if err != nil {
		return nil, mapError(err)
	}
	id := identityFromRPC(resp.Identity)
	return &id, nil
}

func (s *GRPCClient) CreateSession(ctx context.Context, email, password string) (*models.Session, error) {
	req := &rpc.CreateSessionRequest{Email: email, Password: password, Previous: s.Token()}

	resp, err := s.client.CreateSession(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	s.SetToken(resp.Token)

	return &models.Session{
		Token:     resp.Token,
		Identity:  identityFromRPC(resp.Identity),
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

func (s *GRPCClient) DeleteSession(ctx context.Context) error {
	if s.Token() == "" {
		return fmt.Errorf("%w: no session", ErrUnauthorized)
	}
	_, err := s.client.DeleteSession(ctx, &rpc.DeleteSessionRequest{})
	err = mapError(err)
	// a token the server no longer accepts is as good as deleted; on any
	// other failure it is kept so the next sign-in can still revoke it
	if err == nil || errors.Is(err, ErrUnauthorized) {
		s.SetToken("")
	}
	return err
}

func (s *GRPCClient) GetSession(ctx context.Context) (*models.Identity, error) {
	if s.Token() == "" {
		return nil, nil
	}
	resp, err := s.client.GetSession(ctx, &rpc.GetSessionRequest{})
	if err != nil {
		err = mapError(err)
		if errors.Is(err, ErrUnauthorized) {
			return nil, nil
		}
		return nil, err
	}
	id := identityFromRPC(resp.Identity)
	return &id, nil
}

func (s *GRPCClient) List(ctx context.Context, collection string, q models.Query) ([]*models.Document, error) {
	req := &rpc.ListDocumentsRequest{Collection: collection, Limit: q.Limit, Offset: q.Offset}
	for _, f := range q.Filters {
		req.Filters = append(req.Filters, rpc.Filter{Field: f.Field, Value: f.Value})
	}
	if q.OrderBy != "" {
		req.OrderBy = &rpc.Order{Field: q.OrderBy, Desc: q.Desc}
	}

	resp, err := s.client.ListDocuments(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	docs := make([]*models.Document, 0, len(resp.Documents))
	for _, d := range resp.Documents {
		docs = append(docs, documentFromRPC(d))
	}
	return docs, nil
}

func (s *GRPCClient) Create(ctx context.Context, collection string, fields map[string]any) (*models.Document, error) {
	resp, err := s.client.CreateDocument(ctx, &rpc.CreateDocumentRequest{Collection: collection, Fields: fields})
	if err != nil {
		return nil, mapError(err)
	}
	return documentFromRPC(resp.Document), nil
}

func (s *GRPCClient) Update(ctx context.Context, collection, id string, fields map[string]any, expectedRevision int64) (*models.Document, error) {
	req := &rpc.UpdateDocumentRequest{Collection: collection, ID: id, Fields: fields, ExpectedRevision: expectedRevision}
	resp, err := s.client.UpdateDocument(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}
	return documentFromRPC(resp.Document), nil
}

func (s *GRPCClient) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.DeleteDocument(ctx, &rpc.DeleteDocumentRequest{Collection: collection, ID: id})
	return mapError(err)
}

func identityFromRPC(i rpc.Identity) models.Identity {
	return models.Identity{ID: i.ID, Email: i.Email, Name: i.Name}
}

func documentFromRPC(d *rpc.Document) *models.Document {
	if d == nil {
		return nil
	}
	return &models.Document{
		ID:         d.ID,
		Collection: d.Collection,
		Revision:   d.Revision,
		Fields:     d.Fields,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// mapError turns a gRPC status into one of the package error kinds, keeping
// the server message for display.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: %v", ErrNetwork, err)
		}
		return fmt.Errorf("%w: %v", ErrUnknown, err)
	}

	var kind error
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		kind = ErrUnauthorized
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		kind = ErrValidation
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled, codes.ResourceExhausted:
		kind = ErrNetwork
	case codes.NotFound:
		kind = ErrNotFound
	case codes.AlreadyExists, codes.Aborted:
		kind = ErrConflict
	default:
		kind = ErrUnknown
	}
	return fmt.Errorf("%w: %s", kind, st.Message())
}
