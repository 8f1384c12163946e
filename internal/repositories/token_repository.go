package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// TokenRepository tracks revoked access tokens by their id until they expire.
type TokenRepository interface {
	RevokeToken(executor SQLExecutor, tokenID string, expiresAt time.Time) error
	IsRevoked(tokenID string) (bool, error)
	DeleteExpired(now time.Time) (int64, error)
}

type tokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new instance of TokenRepository.
func NewTokenRepository(db *sql.DB) TokenRepository {
	return &tokenRepository{db: db}
}

// RevokeToken blacklists tokenID. Revoking twice is a no-op.
func (r *tokenRepository) RevokeToken(executor SQLExecutor, tokenID string, expiresAt time.Time) error {
	_, err := executor.Exec(`INSERT INTO token_blacklist (token_id, expires_at, created_at) VALUES ($1, $2, $3)
	                         ON CONFLICT (token_id) DO NOTHING`, tokenID, expiresAt, time.Now())
	if err != nil {
		return wrapWriteError(err, "revoking token")
	}
	return nil
}

// IsRevoked reports whether tokenID is blacklisted.
func (r *tokenRepository) IsRevoked(tokenID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM token_blacklist WHERE token_id = $1)`, tokenID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: checking token blacklist: %v", ErrDatabaseError, err)
	}
	return exists, nil
}

// DeleteExpired purges rows whose token has expired by now.
func (r *tokenRepository) DeleteExpired(now time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM token_blacklist WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("%w: purging token blacklist: %v", ErrDatabaseError, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for purging token blacklist: %v", ErrDatabaseError, err)
	}
	return n, nil
}
