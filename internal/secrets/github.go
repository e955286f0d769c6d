// internal/secrets/github.go
package secrets

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v58/github"

	"github.com/xkilldash9x/clawlogin/internal/config"
	"github.com/xkilldash9x/clawlogin/internal/network"
)

// PublicKey identifies the key a secret must be sealed with.
type PublicKey struct {
	ID  string
	Key string
}

// Store is the remote secret store.
type Store interface {
	PublicKey(ctx context.Context) (PublicKey, error)
	PutSecret(ctx context.Context, name, keyID, encryptedValue string) error
}

// GitHubStore stores secrets as GitHub Actions repository secrets.
type GitHubStore struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHubStore creates a store for cfg.Repository authenticated with cfg.Token.
// cfg.BaseURL points the client at a GitHub Enterprise or test server.
func NewGitHubStore(cfg config.SecretsConfig) (*GitHubStore, error) {
	owner, repo, err := cfg.OwnerRepo()
	if err != nil {
		return nil, err
	}

	httpClient := network.NewClient(network.NewDefaultClientConfig(cfg.Timeout, nil))
	client := github.NewClient(httpClient).WithAuthToken(cfg.Token)
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid secrets.base_url: %w", err)
		}
		client.BaseURL = u
	}

	return &GitHubStore{client: client, owner: owner, repo: repo}, nil
}

// PublicKey fetches the repository's Actions public key.
func (s *GitHubStore) PublicKey(ctx context.Context) (PublicKey, error) {
	key, _, err := s.client.Actions.GetRepoPublicKey(ctx, s.owner, s.repo)
	if err != nil {
		return PublicKey{}, fmt.Errorf("failed to fetch public key for %s/%s: %w", s.owner, s.repo, err)
	}
	return PublicKey{ID: key.GetKeyID(), Key: key.GetKey()}, nil
}

// PutSecret creates or replaces a repository secret.
func (s *GitHubStore) PutSecret(ctx context.Context, name, keyID, encryptedValue string) error {
	_, err := s.client.Actions.CreateOrUpdateRepoSecret(ctx, s.owner, s.repo, &github.EncryptedSecret{
		Name:           name,
		KeyID:          keyID,
		EncryptedValue: encryptedValue,
	})
	if err != nil {
		return fmt.Errorf("failed to update secret %s on %s/%s: %w", name, s.owner, s.repo, err)
	}
	return nil
}
