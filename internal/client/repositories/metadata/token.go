package metadata

import "context"

const sessionTokenKey = "session_token"

// TokenStore keeps the session token between client runs.
type TokenStore struct {
	repo Repository
}

func NewTokenStore(repo Repository) *TokenStore {
	return &TokenStore{repo: repo}
}

// Load returns "" when no token was saved.
func (s *TokenStore) Load(ctx context.Context) (string, error) {
	v, _, err := s.repo.Get(ctx, sessionTokenKey)
	return v, err
}

func (s *TokenStore) Save(ctx context.Context, token string) error {
	return s.repo.Set(ctx, sessionTokenKey, token)
}

func (s *TokenStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, sessionTokenKey)
}
