// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the signed-in user session: the Google OAuth
// sign-in flow, the backend token exchange, the on-disk token cache and
// the auth error banner.
//
// # Lifecycle
//
// The Manager starts Uninitialized, restores a persisted token during
// Initialize, and moves between Authenticated and Unauthenticated as
// tokens are acquired, expire or are cleared. SignIn runs the browser
// OAuth round trip, then exchanges the Google id-token for a backend
// access token.
//
// # Key Types
//
//   - Manager: session state machine and token exchange
//   - OAuthFlow: loopback-redirect Google sign-in
//   - TokenCache: 0600 JSON token persistence
//   - AuthError: provider error code with a user-facing message
package session
