// Package auth issues and validates bearer tokens and hashes passwords.
package auth
