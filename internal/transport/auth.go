package transport

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"net/http"
	"sort"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type clientKey struct{}

// ClientResolver resolves a client name from a bearer token.
type ClientResolver interface {
	ResolveClient(ctx context.Context, token string) (string, error)
}

// ClientFromContext returns the client name from context, if present.
func ClientFromContext(ctx context.Context) (string, bool) {
	client, ok := ctx.Value(clientKey{}).(string)
	return client, ok
}

// StaticTokens resolves bearer tokens against a fixed client to token table.
type StaticTokens struct {
	clients []string
	hashes  [][sha256.Size]byte
}

// NewStaticTokens builds a resolver from client name to token pairs.
// Entries with an empty token are ignored.
func NewStaticTokens(tokens map[string]string) *StaticTokens {
	s := &StaticTokens{}
	clients := make([]string, 0, len(tokens))
	for client := range tokens {
		clients = append(clients, client)
	}
	sort.Strings(clients)
	for _, client := range clients {
		if tokens[client] == "" {
			continue
		}
		s.clients = append(s.clients, client)
		s.hashes = append(s.hashes, sha256.Sum256([]byte(tokens[client])))
	}
	return s
}

// ResolveClient returns the client owning token.
func (s *StaticTokens) ResolveClient(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	sum := sha256.Sum256([]byte(token))
	for i, h := range s.hashes {
		if subtle.ConstantTimeCompare(sum[:], h[:]) == 1 {
			return s.clients[i], nil
		}
	}
	return "", ErrUnauthorized
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver ClientResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			client, err := resolver.ResolveClient(r.Context(), token)
			if err != nil || client == "" {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), clientKey{}, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
