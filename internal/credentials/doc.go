// Package credentials resolves provider tokens. Environment-supplied
// defaults captured at startup take precedence over tokens persisted in a
// key-value store by the user.
package credentials
