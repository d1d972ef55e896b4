package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/quillstore/quillstore/core"
	"github.com/quillstore/quillstore/storage"
)

// Proof is the bearer-style identity proof presented by a caller.
// Exactly one of Token or APIKey is expected to be set.
type Proof struct {
	// Token is a signed JWT carrying team and member claims.
	Token string

	// APIKey is a long-lived key registered out of band.
	APIKey string
}

// Authorizer resolves a caller's identity and verifies it holds the required
// capability on the target dataset.
//
// Error kinds: ErrUnauthorized for an invalid or expired proof, ErrForbidden
// for a resolved identity without the capability, and storage.ErrNotFound
// when the dataset does not exist.
type Authorizer interface {
	Authorize(ctx context.Context, proof Proof, datasetID string, capability core.Capability) (*core.CallerIdentity, error)
}

// Claims are the JWT claims carried by quillstore tokens.
type Claims struct {
	TeamId   string `json:"tid"`
	MemberId string `json:"mid"`
	jwt.RegisteredClaims
}

// KeyIdentity binds a registered API key to a team member.
type KeyIdentity struct {
	TeamId   string
	MemberId string
}

// TokenAuthorizer implements Authorizer for HS256 JWTs and registered API keys.
type TokenAuthorizer struct {
	datasets storage.DatasetRepository
	secret   []byte
	keys     map[string]KeyIdentity // blake2b digest -> identity
	logger   *slog.Logger
}

var _ Authorizer = (*TokenAuthorizer)(nil)

// Option configures a TokenAuthorizer.
type Option func(*TokenAuthorizer)

// WithAPIKey registers an API key for the given identity.
// Only the key's digest is retained.
func WithAPIKey(key string, identity KeyIdentity) Option {
	return func(a *TokenAuthorizer) {
		a.keys[core.DigestFromContent([]byte(key))] = identity
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *TokenAuthorizer) {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
	}
}

// NewTokenAuthorizer creates an Authorizer validating proofs against the
// given HMAC secret and resolving datasets from the repository.
func NewTokenAuthorizer(datasets storage.DatasetRepository, secret []byte, opts ...Option) (*TokenAuthorizer, error) {
	if datasets == nil {
		return nil, ErrDatasetRepositoryRequired
	}
	if len(secret) == 0 {
		return nil, ErrSecretRequired
	}

	a := &TokenAuthorizer{
		datasets: datasets,
		secret:   secret,
		keys:     make(map[string]KeyIdentity),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Authorize resolves the caller identity and checks the required capability.
func (a *TokenAuthorizer) Authorize(ctx context.Context, proof Proof, datasetID string, capability core.Capability) (*core.CallerIdentity, error) {
	teamID, memberID, err := a.resolve(proof)
	if err != nil {
		return nil, err
	}

	dataset, err := a.datasets.GetDataset(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	if dataset.TeamId != teamID {
		a.logger.Debug("caller team does not own dataset", "dataset", datasetID, "team", teamID)
		return nil, ErrForbidden
	}

	role := dataset.RoleOf(memberID)
	if !role.Allows(capability) {
		a.logger.Debug("capability denied", "dataset", datasetID, "member", memberID, "role", int(role))
		return nil, ErrForbidden
	}

	return &core.CallerIdentity{
		TeamId:   teamID,
		MemberId: memberID,
		Dataset:  dataset,
	}, nil
}

// resolve extracts the team and member from the proof without touching storage.
func (a *TokenAuthorizer) resolve(proof Proof) (teamID, memberID string, err error) {
	switch {
	case proof.Token != "":
		return a.resolveToken(proof.Token)
	case proof.APIKey != "":
		return a.resolveAPIKey(proof.APIKey)
	default:
		return "", "", fmt.Errorf("%w: no proof supplied", ErrUnauthorized)
	}
}

func (a *TokenAuthorizer) resolveToken(tokenString string) (string, string, error) {
	tokenString = strings.TrimSpace(tokenString)

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	if claims.TeamId == "" || claims.MemberId == "" {
		return "", "", fmt.Errorf("%w: token missing identity claims", ErrUnauthorized)
	}

	return claims.TeamId, claims.MemberId, nil
}

func (a *TokenAuthorizer) resolveAPIKey(key string) (string, string, error) {
	identity, ok := a.keys[core.DigestFromContent([]byte(key))]
	if !ok {
		return "", "", fmt.Errorf("%w: unknown api key", ErrUnauthorized)
	}
	return identity.TeamId, identity.MemberId, nil
}

// MintToken signs a JWT for the given identity, valid for ttl.
func MintToken(secret []byte, teamID, memberID string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrSecretRequired
	}

	now := time.Now().UTC()
	claims := &Claims{
		TeamId:   teamID,
		MemberId: memberID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
