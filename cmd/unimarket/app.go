package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"unimarket/internal/app/dto"
	"unimarket/internal/domain/session"
	"unimarket/internal/infra/api"
	"unimarket/internal/infra/config"
)

// app holds the client's long-lived pieces. The session is the only shared
// mutable state; it is replaced or cleared as a whole, never field by field.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	api      *api.Client
	sessions session.Store
	reader   *bufio.Reader

	mu      sync.RWMutex
	current *session.Session
}

// token is the api.TokenSource: it always reflects the live session.
func (a *app) token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.current == nil {
		return ""
	}
	return a.current.Token
}

func (a *app) loggedIn() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current != nil
}

func (a *app) currentUser() dto.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.current == nil {
		return dto.User{}
	}
	return a.current.User
}

func (a *app) setSession(sess *session.Session) {
	a.mu.Lock()
	a.current = sess
	a.mu.Unlock()
}

// logout clears memory and storage together.
func (a *app) logout() {
	a.mu.Lock()
	a.current = nil
	a.mu.Unlock()
	if err := a.sessions.Clear(); err != nil {
		a.logger.Warn("session clear failed", "error", err)
	}
}

func (a *app) run(ctx context.Context) {
	for ctx.Err() == nil {
		if !a.loggedIn() {
			if done := a.authMenu(ctx); done {
				return
			}
			continue
		}
		if done := a.mainMenu(ctx); done {
			return
		}
	}
}

func (a *app) authMenu(ctx context.Context) bool {
	fmt.Println("\n=== unimarket ===")
	fmt.Println("1. Login")
	fmt.Println("2. Sign up")
	fmt.Println("3. Exit")

	switch a.prompt("> ") {
	case "1":
		a.handleLogin(ctx)
	case "2":
		a.handleSignup(ctx)
	case "3":
		return true
	default:
		fmt.Println("Invalid choice")
	}
	return false
}

func (a *app) mainMenu(ctx context.Context) bool {
	unread, err := a.api.TotalUnread(ctx)
	if err != nil {
		a.checkAuth(err)
		unread = 0
	}
	fmt.Printf("\n=== %s ===\n", a.currentUser().Name)
	fmt.Println("1. Browse listings")
	if unread > 0 {
		fmt.Printf("2. Inbox (%d unread)\n", unread)
	} else {
		fmt.Println("2. Inbox")
	}
	fmt.Println("3. My listings")
	fmt.Println("4. Saved listings")
	fmt.Println("5. New listing")
	fmt.Println("6. Logout")
	fmt.Println("7. Exit")

	switch a.prompt("> ") {
	case "1":
		a.browseView(ctx)
	case "2":
		a.inboxView(ctx)
	case "3":
		a.myListingsView(ctx)
	case "4":
		a.savedView(ctx)
	case "5":
		a.createListingView(ctx)
	case "6":
		a.logout()
		fmt.Println("Logged out")
	case "7":
		return true
	default:
		fmt.Println("Invalid choice")
	}
	return false
}

func (a *app) handleLogin(ctx context.Context) {
	email := a.prompt("Email: ")
	password := a.prompt("Password: ")
	resp, err := a.api.Login(ctx, email, password)
	if err != nil {
		fmt.Println(friendly(err))
		return
	}
	a.adoptAuth(resp)
}

func (a *app) handleSignup(ctx context.Context) {
	email := a.prompt("Email: ")
	name := a.prompt("Name: ")
	password := a.prompt("Password: ")
	confirm := a.prompt("Confirm password: ")
	if password != confirm {
		fmt.Println("Passwords do not match.")
		return
	}
	resp, err := a.api.Signup(ctx, dto.SignupRequest{Email: email, Name: name, Password: password})
	if err != nil {
		fmt.Println(friendly(err))
		return
	}
	a.adoptAuth(resp)
}

// adoptAuth installs and persists a fresh session atomically.
func (a *app) adoptAuth(resp dto.AuthResponse) {
	sess, err := session.New(resp.User, resp.Token, false)
	if err != nil {
		fmt.Println("Login response was incomplete; please try again.")
		return
	}
	if err := a.sessions.Save(sess); err != nil {
		a.logger.Warn("session persist failed", "error", err)
	}
	a.setSession(sess)
	fmt.Printf("Hello, %s!\n", sess.User.Name)
}

// checkAuth drops the session when the server says the token is no longer
// good; the next loop lands on the login menu.
func (a *app) checkAuth(err error) {
	if api.IsUnauthorized(err) {
		fmt.Println("Your session has expired. Please log in again.")
		a.logout()
	}
}

func (a *app) prompt(label string) string {
	fmt.Print(label)
	input, err := a.reader.ReadString('\n')
	if err != nil {
		os.Exit(0)
	}
	return strings.TrimSpace(input)
}

// friendly renders an error the way the web client's toasts would: the
// server's own message when it sent one, a generic line otherwise.
func friendly(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Could not reach the server. Please try again."
}
