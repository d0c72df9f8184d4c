// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/api"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/cache"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/config"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/markdown"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/model"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/session"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/store"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/util"
)

// Env bundles the pieces every command needs. main builds one from the
// loaded config.
type Env struct {
	Config   *config.Config
	Sessions *session.Manager
	Service  *api.Service
}

// NewEnv wires the session manager, API client and service from config.
func NewEnv(cfg *config.Config) (*Env, error) {
	tokenPath, err := session.DefaultTokenPath()
	if err != nil {
		return nil, fmt.Errorf("resolving token path: %w", err)
	}

	flow := session.NewGoogleFlow(cfg.OAuth.ClientID, cfg.OAuth.ClientSecret)
	sessions := session.NewManager(cfg.Backend.BaseURL, flow, session.NewTokenCache(tokenPath), nil)

	client := api.NewClient(cfg.Backend.BaseURL, sessions).
		WithMaxRetries(cfg.Backend.MaxRetries)
	svc := api.NewService(client, cache.New(cfg.CacheTTL()))

	return &Env{Config: cfg, Sessions: sessions, Service: svc}, nil
}

func (e *Env) timeout() time.Duration {
	return e.Config.RequestTimeout()
}

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

// HandleLogin runs the browser sign-in flow from the terminal.
func HandleLogin(env *Env, args *ArgParser) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if env.Sessions.Initialize(ctx) == session.StateAuthenticated {
		fmt.Println("Already signed in.")
		return
	}

	fmt.Println("Opening your browser to sign in with Google...")
	if err := env.Sessions.SignIn(ctx); err != nil {
		if banner := env.Sessions.Banner(); banner != "" {
			fail("login", false, fmt.Errorf("%s", banner))
		}
		fail("login", false, err)
	}

	if p := env.Sessions.Profile(); p != nil {
		fmt.Printf("Signed in as %s <%s>\n", p.Name, p.Email)
	} else {
		fmt.Println("Signed in.")
	}
}

// HandleLogout clears the stored session.
func HandleLogout(env *Env, args *ArgParser) {
	ctx, cancel := context.WithTimeout(context.Background(), env.timeout())
	defer cancel()

	if err := env.Sessions.SignOut(ctx); err != nil {
		fail("logout", false, err)
	}
	fmt.Println("Signed out.")
}

// =============================================================================
// ASK
// =============================================================================

// HandleAsk sends a one-shot message and streams the reply to stdout.
// Without --conversation it starts a fresh conversation.
func HandleAsk(env *Env, args *ArgParser) {
	jsonMode := args.BoolFlag("json")

	question := args.Positional(0)
	if _, ok := util.TrimmedOrEmpty(question); !ok {
		fail("ask", jsonMode, fmt.Errorf("usage: ask \"question\" [--conversation ID] [--blog] [--html]"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var conv *model.Conversation
	var err error
	if id := args.Flag("conversation"); id != "" {
		conv, err = env.Service.Conversation(ctx, id)
	} else {
		conv, err = env.Service.Create(ctx, "")
	}
	if err != nil {
		fail("ask", jsonMode, err)
	}

	ev := api.SendEvents{}
	if !jsonMode {
		// Stream states replace each other, so only the final render is
		// printed; a dot per state shows liveness meanwhile.
		ev.Content = func(messageID, text string) {
			fmt.Fprint(os.Stderr, ".")
		}
	}

	send := env.Service.SendMessage
	if args.BoolFlag("blog") {
		send = env.Service.GenerateBlog
	}
	if err := send(ctx, conv, question, ev); err != nil {
		fail("ask", jsonMode, err)
	}

	last := conv.LastMessage()
	if last == nil {
		fail("ask", jsonMode, fmt.Errorf("no response received"))
	}

	if jsonMode {
		NewJSONResponse("ask", map[string]string{
			"conversationId": conv.ID,
			"messageId":      last.ID,
			"content":        last.Content,
		}).Print()
		return
	}

	fmt.Fprintln(os.Stderr)
	fmt.Println(renderReply(last.Content, args.BoolFlag("html")))
}

// renderReply formats a finished assistant reply for stdout. HTML mode
// is pipe-friendly output for embedding the reply in a page; the
// sanitizer strips anything the model should not inject.
func renderReply(content string, html bool) string {
	r := markdown.NewRenderer()
	if html {
		return r.RenderHTML(content, false)
	}
	return r.RenderTerminal(content, false, 100)
}

// =============================================================================
// LIST / SYNC
// =============================================================================

// HandleList prints the conversation list. --offline reads the local
// snapshot; otherwise a network failure falls back to it.
func HandleList(env *Env, args *ArgParser) {
	jsonMode := args.BoolFlag("json")

	var conversations []*model.Conversation
	var source string

	if args.BoolFlag("offline") {
		list, err := loadSnapshot()
		if err != nil {
			fail("list", jsonMode, err)
		}
		conversations, source = list, "snapshot"
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), env.timeout())
		defer cancel()

		list, err := env.Service.Conversations(ctx, false)
		if err != nil {
			if snap, snapErr := loadSnapshot(); snapErr == nil && len(snap) > 0 {
				fmt.Fprintln(os.Stderr, "Backend unreachable; showing offline snapshot.")
				conversations, source = snap, "snapshot"
			} else {
				fail("list", jsonMode, err)
			}
		} else {
			conversations, source = list, "server"
		}
	}

	if jsonMode {
		NewJSONResponse("list", map[string]interface{}{
			"source":        source,
			"conversations": conversations,
		}).Print()
		return
	}

	if len(conversations) == 0 {
		fmt.Println("No conversations.")
		return
	}
	for _, conv := range conversations {
		fmt.Printf("%-36s  %-40s  %3d msgs  %s\n",
			conv.ID, conv.Preview(), conv.MessageCount, util.RelativeTime(conv.UpdatedAt))
	}
}

// HandleSync refreshes the offline snapshot from the server.
func HandleSync(env *Env, args *ArgParser) {
	jsonMode := args.BoolFlag("json")

	ctx, cancel := context.WithTimeout(context.Background(), env.timeout())
	defer cancel()

	list, err := env.Service.Conversations(ctx, true)
	if err != nil {
		fail("sync", jsonMode, err)
	}

	s, err := openSnapshot()
	if err != nil {
		fail("sync", jsonMode, err)
	}
	defer s.Close()

	if err := s.Replace(list, time.Now()); err != nil {
		fail("sync", jsonMode, err)
	}

	if jsonMode {
		NewJSONResponse("sync", map[string]int{"conversations": len(list)}).Print()
		return
	}
	fmt.Printf("Synced %d conversations to the offline snapshot.\n", len(list))
}

func openSnapshot() (*store.Store, error) {
	path, err := store.DefaultPath()
	if err != nil {
		return nil, err
	}
	return store.Open(path)
}

func loadSnapshot() ([]*model.Conversation, error) {
	s, err := openSnapshot()
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.List()
}

// =============================================================================
// STATUS
// =============================================================================

// HandleStatus reports session and backend state.
func HandleStatus(env *Env, args *ArgParser) {
	jsonMode := args.BoolFlag("json")

	ctx, cancel := context.WithTimeout(context.Background(), env.timeout())
	defer cancel()

	state := env.Sessions.Initialize(ctx)

	var syncedAt string
	snapCount := 0
	if s, err := openSnapshot(); err == nil {
		if t, err := s.SyncedAt(); err == nil && !t.IsZero() {
			syncedAt = t.UTC().Format(time.RFC3339)
		}
		if n, err := s.Count(); err == nil {
			snapCount = n
		}
		s.Close()
	}

	if jsonMode {
		data := map[string]interface{}{
			"session":       state.String(),
			"backend":       env.Config.Backend.BaseURL,
			"syncedAt":      syncedAt,
			"conversations": snapCount,
		}
		if p := env.Sessions.Profile(); p != nil {
			data["email"] = p.Email
		}
		NewJSONResponse("status", data).Print()
		return
	}

	fmt.Printf("Session:  %s\n", state)
	if p := env.Sessions.Profile(); p != nil {
		fmt.Printf("Account:  %s <%s>\n", p.Name, p.Email)
	}
	fmt.Printf("Backend:  %s\n", env.Config.Backend.BaseURL)
	if syncedAt != "" {
		fmt.Printf("Snapshot: %d conversations, synced %s\n", snapCount, syncedAt)
	} else {
		fmt.Println("Snapshot: never synced (run `ai-reddit-tui sync`)")
	}
}
