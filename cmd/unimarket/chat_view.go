package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"unimarket/internal/app/chatsync"
	"unimarket/internal/app/dto"
)

// terminalViewport satisfies chatsync.Viewport for a terminal that always
// tails output: the reader is permanently "at the bottom" and scrolling is
// the terminal's own business.
type terminalViewport struct{}

func (terminalViewport) NearBottom(int) bool { return true }
func (terminalViewport) ScrollToBottom()     {}

func (a *app) inboxView(ctx context.Context) {
	conversations, err := a.api.Conversations(ctx)
	if err != nil {
		a.checkAuth(err)
		fmt.Println(friendly(err))
		return
	}
	if len(conversations) == 0 {
		fmt.Println("No conversations yet. Message a seller from a listing to start one.")
		return
	}
	fmt.Println("\n--- Inbox ---")
	for i, conv := range conversations {
		marker := " "
		if conv.UnreadCount > 0 {
			marker = fmt.Sprintf("(%d)", conv.UnreadCount)
		}
		fmt.Printf("%d. %s — %q %s\n", i+1, conv.OtherParticipant.Name, conv.Listing.Title, marker)
		if conv.LastMessage != "" {
			fmt.Printf("   %s\n", truncate(conv.LastMessage, 60))
		}
	}
	choice := a.prompt("Open conversation (number, empty to go back): ")
	if choice == "" {
		return
	}
	index, err := strconv.Atoi(choice)
	if err != nil || index < 1 || index > len(conversations) {
		fmt.Println("Invalid choice")
		return
	}
	a.chatView(ctx, conversations[index-1])
}

// chatView mounts the polling synchronizer on one conversation. Leaving the
// view cancels the poll context, which is the unmount: the ticker stops and
// in-flight results are discarded.
func (a *app) chatView(ctx context.Context, conv dto.Conversation) {
	fmt.Printf("\n--- %s · %q ---\n", conv.OtherParticipant.Name, conv.Listing.Title)
	fmt.Println("Type a message, or /exit to leave.")

	syncer := chatsync.New(a.api, terminalViewport{}, chatsync.Config{
		PollInterval: a.cfg.ChatPollInterval,
		NearBottomPx: a.cfg.NearBottomPx,
	}, a.logger)
	syncer.OnUpdate(renderChat)
	syncer.SwitchConversation(conv.ID)

	viewCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go syncer.Run(viewCtx)

	for {
		line := a.prompt("")
		if line == "/exit" {
			return
		}
		if line == "" {
			continue
		}
		if err := syncer.Send(ctx, line); err != nil {
			switch {
			case errors.Is(err, chatsync.ErrSendInFlight):
				fmt.Println("Still sending your previous message…")
			case errors.Is(err, chatsync.ErrEmptyMessage):
				// Blank input, nothing to do.
			default:
				a.checkAuth(err)
				fmt.Println(friendly(err))
			}
		}
	}
}

// renderChat paints committed snapshots. Only the appended tail is printed
// after the first load, so polls that change nothing stay silent.
func renderChat(snap chatsync.Snapshot) {
	if snap.FirstLoad && len(snap.Messages) == 0 {
		fmt.Println("No messages yet. Say hi!")
		return
	}
	tail := snap.Messages
	if !snap.FirstLoad {
		if snap.Appended <= 0 {
			// Metadata-only change (read receipts); nothing new to print.
			return
		}
		tail = snap.Messages[len(snap.Messages)-snap.Appended:]
	}
	for _, msg := range tail {
		name := msg.Sender.Name
		if msg.IsOwnMessage {
			name = "You"
		}
		fmt.Printf("[%s] %s: %s\n", msg.CreatedAt.Local().Format("15:04"), name, msg.Content)
	}
}

func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-1]) + "…"
}
