// ABOUTME: Error values shared by the session manager and the synchronizer.
// ABOUTME: Validation failures never reach the network.

package models

import "errors"

var (
	// ErrValidation wraps every local presence-check failure.
	ErrValidation = errors.New("validation failed")

	// ErrNotAuthenticated is returned for note operations while logged out.
	ErrNotAuthenticated = errors.New("not logged in")
)
