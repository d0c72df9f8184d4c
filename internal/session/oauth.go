// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/model"
)

// googleEndpoint is declared inline so the flow has no dependency on
// provider SDK packages.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// redirectWait bounds how long the loopback server waits for the
// browser to come back.
const redirectWait = 3 * time.Minute

// RedirectValues carries what the provider sent back to the loopback
// listener: either an authorization code or an error code, plus the
// state echo.
type RedirectValues struct {
	Code      string
	State     string
	AuthError string
}

// SignInResult is the outcome of a completed provider flow.
type SignInResult struct {
	IDToken string
	Profile model.UserProfile
}

// OAuthFlow runs the Google sign-in with a loopback redirect: start a
// listener on a random localhost port, open the consent page in the
// browser, and capture the redirect.
type OAuthFlow struct {
	clientID     string
	clientSecret string
	openURL      func(string) error
	log          *logrus.Entry
}

// NewGoogleFlow creates the sign-in flow for the given OAuth client.
func NewGoogleFlow(clientID, clientSecret string) *OAuthFlow {
	return &OAuthFlow{
		clientID:     clientID,
		clientSecret: clientSecret,
		openURL:      openBrowser,
		log:          logrus.WithField("component", "oauth"),
	}
}

// SignIn runs the full provider flow and returns the id token with its
// parsed profile claims. State mismatches surface as the invalid_state
// auth error code.
func (f *OAuthFlow) SignIn(ctx context.Context) (*SignInResult, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("start loopback listener: %w", err)
	}
	defer listener.Close()

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	conf := &oauth2.Config{
		ClientID:     f.clientID,
		ClientSecret: f.clientSecret,
		Endpoint:     googleEndpoint,
		RedirectURL:  "http://" + listener.Addr().String() + "/callback",
		Scopes:       []string{"openid", "email", "profile"},
	}

	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "select_account"))

	if err := f.openURL(authURL); err != nil {
		f.log.WithError(err).Warn("could not open browser")
		fmt.Println("Open this URL in your browser to sign in:")
		fmt.Println("  " + authURL)
	}

	values, err := f.waitForRedirect(ctx, listener)
	if err != nil {
		return nil, err
	}
	if values.AuthError != "" {
		return nil, &AuthError{Code: values.AuthError}
	}
	if values.State != state {
		return nil, &AuthError{Code: "invalid_state"}
	}

	tok, err := conf.Exchange(ctx, values.Code)
	if err != nil {
		return nil, fmt.Errorf("provider exchange: %w", err)
	}

	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return nil, &AuthError{Code: "oauth_failed"}
	}

	profile, err := profileFromIDToken(idToken)
	if err != nil {
		return nil, err
	}

	return &SignInResult{IDToken: idToken, Profile: profile}, nil
}

// waitForRedirect serves the loopback callback until the provider
// redirects back, the context ends, or the wait times out.
func (f *OAuthFlow) waitForRedirect(ctx context.Context, listener net.Listener) (RedirectValues, error) {
	done := make(chan RedirectValues, 1)

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			values := RedirectValues{
				Code:      q.Get("code"),
				State:     q.Get("state"),
				AuthError: q.Get("error"),
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			if values.AuthError != "" || values.Code == "" {
				fmt.Fprint(w, "<html><body><h2>Sign-in failed</h2><p>You can close this tab.</p></body></html>")
			} else {
				fmt.Fprint(w, "<html><body><h2>Signed in</h2><p>You can close this tab and return to the terminal.</p></body></html>")
			}
			select {
			case done <- values:
			default:
			}
		}),
	}
	go server.Serve(listener)
	defer server.Close()

	select {
	case values := <-done:
		return values, nil
	case <-ctx.Done():
		return RedirectValues{}, ctx.Err()
	case <-time.After(redirectWait):
		return RedirectValues{}, fmt.Errorf("timed out waiting for sign-in redirect")
	}
}

// profileFromIDToken reads the identity claims without verifying the
// signature; verification happens server side during the backend
// exchange.
func profileFromIDToken(idToken string) (model.UserProfile, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return model.UserProfile{}, fmt.Errorf("parse id token: %w", err)
	}

	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}
	return model.UserProfile{
		ID:      str("sub"),
		Name:    str("name"),
		Email:   str("email"),
		Picture: str("picture"),
	}, nil
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
