package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
)

// Credential is the durable access/refresh token record.
// ExpiryDate is epoch milliseconds; the credential is usable only while
// ExpiryDate is strictly in the future.
type Credential struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
	ExpiryDate   int64  `json:"expiry_date"`
}

// Expired reports whether the credential must be refreshed before use.
// An expiry equal to now counts as expired.
func (c *Credential) Expired(now time.Time) bool {
	return c.ExpiryDate <= now.UnixMilli()
}

// Token converts the credential into an oauth2 token.
func (c *Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       time.UnixMilli(c.ExpiryDate),
	}
}

// credentialFromToken maps an oauth2 token onto the durable record shape.
func credentialFromToken(t *oauth2.Token) *Credential {
	cred := &Credential{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		ExpiryDate:   t.Expiry.UnixMilli(),
	}
	if scope, ok := t.Extra("scope").(string); ok {
		cred.Scope = scope
	}
	return cred
}

// ErrNoCredential is returned by Store.Load when no credential has been saved.
var ErrNoCredential = errors.New("no stored credential")

// Store is the durable home of a single credential record.
//
// The record has an implicit single-writer assumption: two processes
// refreshing concurrently can race and leave a stale refresh token behind.
// Callers must not share one store between concurrently refreshing processes.
type Store interface {
	Load() (*Credential, error)
	Save(*Credential) error
}

// FileStore persists the credential as a JSON file, created 0600 in a
// 0700 directory.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file the store persists to.
func (s *FileStore) Path() string { return s.path }

// Load reads the stored credential. Returns ErrNoCredential if the file
// does not exist.
func (s *FileStore) Load() (*Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCredential
		}
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("failed to parse credential file: %w", err)
	}
	return &cred, nil
}

// Save writes the credential, replacing any previous record.
func (s *FileStore) Save(cred *Credential) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	return nil
}
