package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/movieshelf/internal/client/client"
	"github.com/dmitrijs2005/movieshelf/internal/client/models"
	"github.com/dmitrijs2005/movieshelf/internal/logging"
)

// fakeRemote is an in-memory client.Client with server-like semantics:
// unique keys per collection, revisions and sessions keyed by token.
type fakeRemote struct {
	mu sync.Mutex

	token    string
	users    map[string]fakeUser // by email
	sessions map[string]string   // token -> email
	seq      int

	docs map[string]map[string]*models.Document // collection -> id -> doc

	// injected failures, keyed by method name
	errs map[string]error
	// beforeUpdate runs (unlocked) ahead of every Update; used to race writers
	beforeUpdate func()
	// staleLists makes the next n List calls see an empty collection
	staleLists int

	calls map[string]int
}

type fakeUser struct {
	password string
	identity models.Identity
}

var uniqueKeys = map[string][]string{
	"metrics":      {"search_term"},
	"saved_movies": {"user_id", "movie_id"},
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		users:    map[string]fakeUser{},
		sessions: map[string]string{},
		docs:     map[string]map[string]*models.Document{},
		errs:     map[string]error{},
		calls:    map[string]int{},
	}
}

func (f *fakeRemote) fail(method string) error {
	f.calls[method]++
	return f.errs[method]
}

func (f *fakeRemote) Close() error { return nil }

func (f *fakeRemote) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail("Ping")
}

func (f *fakeRemote) SetToken(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func (f *fakeRemote) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeRemote) CreateIdentity(ctx context.Context, email, password, name string) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreateIdentity"); err != nil {
		return nil, err
	}
	if _, ok := f.users[email]; ok {
		return nil, fmt.Errorf("%w: email taken", client.ErrConflict)
	}
	f.seq++
	id := models.Identity{ID: fmt.Sprintf("user-%d", f.seq), Email: email, Name: name}
	f.users[email] = fakeUser{password: password, identity: id}
	return &id, nil
}

func (f *fakeRemote) CreateSession(ctx context.Context, email, password string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreateSession"); err != nil {
		return nil, err
	}
	u, ok := f.users[email]
	if !ok || u.password != password {
		return nil, fmt.Errorf("%w: invalid credentials", client.ErrUnauthorized)
	}
	delete(f.sessions, f.token)
	f.seq++
	f.token = fmt.Sprintf("token-%d", f.seq)
	f.sessions[f.token] = email
	return &models.Session{Token: f.token, Identity: u.identity}, nil
}

func (f *fakeRemote) DeleteSession(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("DeleteSession"); err != nil {
		return err
	}
	if _, ok := f.sessions[f.token]; !ok {
		f.token = ""
		return fmt.Errorf("%w: no session", client.ErrUnauthorized)
	}
	delete(f.sessions, f.token)
	f.token = ""
	return nil
}

func (f *fakeRemote) GetSession(ctx context.Context) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("GetSession"); err != nil {
		return nil, err
	}
	email, ok := f.sessions[f.token]
	if !ok {
		return nil, nil
	}
	id := f.users[email].identity
	return &id, nil
}

func (f *fakeRemote) activeSessions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func (f *fakeRemote) List(ctx context.Context, collection string, q models.Query) ([]*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("List"); err != nil {
		return nil, err
	}
	if f.staleLists > 0 {
		f.staleLists--
		return nil, nil
	}

	var out []*models.Document
	for _, d := range f.docs[collection] {
		match := true
		for _, flt := range q.Filters {
			if fmt.Sprint(d.Fields[flt.Field]) != fmt.Sprint(flt.Value) {
				match = false
			}
		}
		if match {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if q.OrderBy != "" {
			a, b := toFloat(out[i].Fields[q.OrderBy]), toFloat(out[j].Fields[q.OrderBy])
			if a != b {
				return a > b
			}
		}
		return out[i].ID < out[j].ID
	})
	out = out[min(q.Offset, len(out)):]
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func (f *fakeRemote) Create(ctx context.Context, collection string, fields map[string]any) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Create"); err != nil {
		return nil, err
	}
	if f.docs[collection] == nil {
		f.docs[collection] = map[string]*models.Document{}
	}
	for _, d := range f.docs[collection] {
		if sameKey(collection, d.Fields, fields) {
			return nil, fmt.Errorf("%w: duplicate", client.ErrConflict)
		}
	}
	f.seq++
	d := &models.Document{ID: fmt.Sprintf("doc-%03d", f.seq), Collection: collection, Revision: 1, Fields: fields}
	f.docs[collection][d.ID] = d
	cp := *d
	return &cp, nil
}

func sameKey(collection string, a, b map[string]any) bool {
	keys := uniqueKeys[collection]
	if len(keys) == 0 {
		return false
	}
	for _, k := range keys {
		if fmt.Sprint(a[k]) != fmt.Sprint(b[k]) {
			return false
		}
	}
	return true
}

func (f *fakeRemote) Update(ctx context.Context, collection, id string, fields map[string]any, expectedRevision int64) (*models.Document, error) {
	if f.beforeUpdate != nil {
		f.beforeUpdate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Update"); err != nil {
		return nil, err
	}
	d, ok := f.docs[collection][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", client.ErrNotFound, id)
	}
	if expectedRevision > 0 && d.Revision != expectedRevision {
		return nil, fmt.Errorf("%w: revision mismatch", client.ErrConflict)
	}
	merged := map[string]any{}
	for k, v := range d.Fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	d.Fields = merged
	d.Revision++
	cp := *d
	return &cp, nil
}

func (f *fakeRemote) Delete(ctx context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Delete"); err != nil {
		return err
	}
	if _, ok := f.docs[collection][id]; !ok {
		return fmt.Errorf("%w: %s", client.ErrNotFound, id)
	}
	delete(f.docs[collection], id)
	return nil
}

// bump increments a field and the revision behind the caller's back.
func (f *fakeRemote) bump(collection, field string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.docs[collection] {
		d.Fields[field] = toFloat(d.Fields[field]) + 1
		d.Revision++
	}
}

func (f *fakeRemote) count(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs[collection])
}

// memTokens is an in-memory TokenStore.
type memTokens struct {
	token   string
	loadErr error
	saves   int
}

func (m *memTokens) Load(context.Context) (string, error) { return m.token, m.loadErr }
func (m *memTokens) Save(_ context.Context, t string) error {
	m.saves++
	m.token = t
	return nil
}
func (m *memTokens) Clear(context.Context) error {
	m.token = ""
	return nil
}

// loggedIn is an IdentitySource stub.
type loggedIn struct {
	id  models.Identity
	err error
}

func (l loggedIn) RequireIdentity() (models.Identity, error) { return l.id, l.err }

func nopLogger() logging.Logger { return logging.NewNopLogger() }
