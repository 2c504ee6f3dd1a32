package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/movieshelf/internal/common"
	"github.com/dmitrijs2005/movieshelf/internal/logging"
	"github.com/dmitrijs2005/movieshelf/internal/rpc"
	"github.com/dmitrijs2005/movieshelf/internal/server/models"
	"github.com/dmitrijs2005/movieshelf/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors to gRPC status codes. Unexpected errors are
// logged and reported as Internal without details.
func toStatus(ctx context.Context, l logging.Logger, err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, common.ErrorValidation):
		code = codes.InvalidArgument
	case errors.Is(err, common.ErrorNotFound):
		code = codes.NotFound
	case errors.Is(err, common.ErrorAlreadyExists):
		code = codes.AlreadyExists
	case errors.Is(err, common.ErrVersionConflict):
		code = codes.Aborted
	case errors.Is(err, common.ErrorForbidden):
		code = codes.PermissionDenied
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrSessionExpired):
		code = codes.Unauthenticated
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	default:
		l.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}

func (s *GRPCServer) caller(ctx context.Context) (*services.Caller, error) {
	c, ok := CallerFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "no session")
	}
	return c, nil
}

func identityToRPC(u *models.User) rpc.Identity {
	return rpc.Identity{ID: u.ID, Email: u.Email, Name: u.Name}
}

func documentToRPC(d *models.Document) *rpc.Document {
	return &rpc.Document{
		ID:         d.ID,
		Collection: d.Collection,
		Revision:   d.Revision,
		Fields:     d.Data,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (s *GRPCServer) Ping(ctx context.Context, _ *rpc.PingRequest) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) CreateIdentity(ctx context.Context, req *rpc.CreateIdentityRequest) (*rpc.IdentityResponse, error) {
	u, err := s.accounts.CreateIdentity(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}

	s.logger.Info(ctx, "Registered", "user_id", u.ID)
	return &rpc.IdentityResponse{Identity: identityToRPC(u)}, nil
}

func (s *GRPCServer) CreateSession(ctx context.Context, req *rpc.CreateSessionRequest) (*rpc.CreateSessionResponse, error) {
	signed, err := s.accounts.CreateSession(ctx, req.Email, req.Password, req.Previous)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}

	return &rpc.CreateSessionResponse{
		Token:     signed.Token,
		Identity:  identityToRPC(signed.User),
		ExpiresAt: signed.Session.ExpiresAt,
	}, nil
}

func (s *GRPCServer) DeleteSession(ctx context.Context, _ *rpc.DeleteSessionRequest) (*rpc.DeleteSessionResponse, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.DeleteSession(ctx, c.Session.ID); err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &rpc.DeleteSessionResponse{}, nil
}

func (s *GRPCServer) GetSession(ctx context.Context, _ *rpc.GetSessionRequest) (*rpc.IdentityResponse, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	return &rpc.IdentityResponse{Identity: identityToRPC(c.User)}, nil
}

func (s *GRPCServer) ListDocuments(ctx context.Context, req *rpc.ListDocumentsRequest) (*rpc.ListDocumentsResponse, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	q := models.DocumentQuery{Collection: req.Collection, Limit: req.Limit, Offset: req.Offset}
	for _, f := range req.Filters {
		if f.Field == "" {
			return nil, status.Error(codes.InvalidArgument, "filter field is required")
		}
		q.Filters = append(q.Filters, models.Filter{Field: f.Field, Value: f.Value})
	}
	if req.OrderBy != nil && req.OrderBy.Field != "" {
		q.OrderBy = req.OrderBy.Field
		q.Desc = req.OrderBy.Desc
	}

	docs, err := s.documents.List(ctx, c.User.ID, q)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}

	out := make([]*rpc.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentToRPC(d))
	}
	return &rpc.ListDocumentsResponse{Documents: out}, nil
}

func (s *GRPCServer) CreateDocument(ctx context.Context, req *rpc.CreateDocumentRequest) (*rpc.DocumentResponse, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	d, err := s.documents.Create(ctx, c.User.ID, req.Collection, req.Fields)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &rpc.DocumentResponse{Document: documentToRPC(d)}, nil
}

func (s *GRPCServer) UpdateDocument(ctx context.Context, req *rpc.UpdateDocumentRequest) (*rpc.DocumentResponse, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	d, err := s.documents.Update(ctx, c.User.ID, req.Collection, req.ID, req.Fields, req.ExpectedRevision)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &rpc.DocumentResponse{Document: documentToRPC(d)}, nil
}

func (s *GRPCServer) DeleteDocument(ctx context.Context, req *rpc.DeleteDocumentRequest) (*rpc.DeleteDocumentResponse, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.documents.Delete(ctx, c.User.ID, req.Collection, req.ID); err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &rpc.DeleteDocumentResponse{}, nil
}
