package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"unimarket/internal/app/discovery"
	"unimarket/internal/app/dto"
	"unimarket/internal/domain/catalog"
)

// browseView drives the discovery browser from the prompt. Free text edits
// the search (debounced, page-0 replace); slash commands adjust filters and
// paging the way the web client's sidebar and filter bar do.
func (a *app) browseView(ctx context.Context) {
	viewCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	browser := discovery.New(viewCtx, a.api, discovery.Config{
		Debounce: a.cfg.SearchDebounce,
		PageSize: a.cfg.PageSize,
	}, a.logger)
	browser.OnUpdate(renderResults)

	fmt.Println("\n--- Browse ---")
	fmt.Println("Type to search. Commands: /cat <name|all>, /cond <grade|all>,")
	fmt.Println("/min <price>, /max <price>, /more, /open <n>, /back")
	browser.Refresh()

	filters := discovery.Filters{}
	for {
		line := a.prompt("search> ")
		switch {
		case line == "/back":
			return
		case line == "/more":
			browser.LoadMore()
		case strings.HasPrefix(line, "/cat "):
			category, err := catalog.ParseCategory(strings.TrimPrefix(line, "/cat "))
			if err != nil {
				fmt.Println("Unknown category. One of:", categoryNames())
				continue
			}
			browser.SetCategory(category)
		case strings.HasPrefix(line, "/cond "):
			condition, err := catalog.ParseCondition(strings.TrimPrefix(line, "/cond "))
			if err != nil {
				fmt.Println("Unknown condition. One of:", conditionNames())
				continue
			}
			filters.Condition = condition
			browser.SetFilters(filters)
		case strings.HasPrefix(line, "/min "):
			filters.MinPrice = strings.TrimPrefix(line, "/min ")
			browser.SetFilters(filters)
		case strings.HasPrefix(line, "/max "):
			filters.MaxPrice = strings.TrimPrefix(line, "/max ")
			browser.SetFilters(filters)
		case strings.HasPrefix(line, "/open "):
			index, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "/open ")))
			state := browser.State()
			if err != nil || index < 1 || index > len(state.Listings) {
				fmt.Println("Invalid listing number")
				continue
			}
			a.listingView(ctx, state.Listings[index-1])
		default:
			browser.SetSearch(line)
		}
	}
}

func renderResults(state discovery.State) {
	switch {
	case state.Loading:
		fmt.Println("Searching…")
	case state.LoadingMore:
		fmt.Println("Loading more…")
	case len(state.Listings) == 0:
		fmt.Println("No items found. Try adjusting your filters or search query.")
	default:
		fmt.Println()
		for i, item := range state.Listings {
			fmt.Printf("%2d. $%.2f  %-40s %s · %s\n",
				i+1, item.Price, truncate(item.Title, 40), item.CategoryDisplayName, item.ConditionDisplayName)
		}
		if state.LastPage {
			fmt.Printf("%d items (end of results)\n", len(state.Listings))
		} else {
			fmt.Printf("%d items — /more for the next page\n", len(state.Listings))
		}
	}
}

func (a *app) listingView(ctx context.Context, summary dto.Listing) {
	item, err := a.api.ListingBySlug(ctx, summary.Slug)
	if err != nil {
		a.checkAuth(err)
		fmt.Println(friendly(err))
		return
	}
	fmt.Printf("\n--- %s ---\n", item.Title)
	fmt.Printf("$%.2f · %s · %s · %s\n", item.Price, item.CategoryDisplayName, item.ConditionDisplayName, item.Status)
	fmt.Printf("Seller: %s (member since %s)\n", item.Seller.Name, item.Seller.MemberSince.Format("Jan 2006"))
	if item.Description != "" {
		fmt.Println(item.Description)
	}

	own := item.Seller.ID == a.currentUser().ID
	for {
		if own {
			fmt.Println("(s)old, (d)elete, (b)ump, (q) back")
		} else if item.IsSaved {
			fmt.Println("(u)nsave, (c)hat with seller, (r)eport, (q) back")
		} else {
			fmt.Println("(v) save, (c)hat with seller, (r)eport, (q) back")
		}
		switch a.prompt("> ") {
		case "q":
			return
		case "v":
			if own {
				continue
			}
			if err := a.api.SaveListing(ctx, item.ID); err != nil {
				fmt.Println(friendly(err))
				continue
			}
			item.IsSaved = true
			fmt.Println("Saved.")
		case "u":
			if err := a.api.UnsaveListing(ctx, item.ID); err != nil {
				fmt.Println(friendly(err))
				continue
			}
			item.IsSaved = false
			fmt.Println("Removed from saved.")
		case "c":
			if own {
				continue
			}
			conv, err := a.api.StartConversation(ctx, item.ID)
			if err != nil {
				fmt.Println(friendly(err))
				continue
			}
			a.chatView(ctx, conv)
		case "r":
			reason := a.prompt("Reason: ")
			if reason == "" {
				continue
			}
			details := a.prompt("Details (optional): ")
			if err := a.api.SubmitReport(ctx, dto.ReportRequest{
				ListingID:   item.ID,
				Reason:      reason,
				Description: details,
			}); err != nil {
				fmt.Println(friendly(err))
				continue
			}
			fmt.Println("Report submitted. Thank you.")
		case "s":
			if !own {
				continue
			}
			if err := a.api.MarkListingSold(ctx, item.ID); err != nil {
				fmt.Println(friendly(err))
				continue
			}
			fmt.Println("Marked sold.")
			return
		case "d":
			if !own {
				continue
			}
			if a.prompt("Delete this listing? (yes/no): ") != "yes" {
				continue
			}
			if err := a.api.DeleteListing(ctx, item.ID); err != nil {
				fmt.Println(friendly(err))
				continue
			}
			fmt.Println("Deleted.")
			return
		case "b":
			if !own {
				continue
			}
			if err := a.api.BumpListing(ctx, item.ID); err != nil {
				fmt.Println(friendly(err))
				continue
			}
			fmt.Println("Bumped to the top.")
		}
	}
}

func (a *app) myListingsView(ctx context.Context) {
	listings, err := a.api.UserListings(ctx, a.currentUser().ID)
	if err != nil {
		a.checkAuth(err)
		fmt.Println(friendly(err))
		return
	}
	if len(listings) == 0 {
		fmt.Println("You have no listings yet.")
		return
	}
	fmt.Println("\n--- My listings ---")
	for i, item := range listings {
		fmt.Printf("%d. [%s] $%.2f %s\n", i+1, item.Status, item.Price, item.Title)
	}
	choice := a.prompt("Open listing (number, empty to go back): ")
	if choice == "" {
		return
	}
	index, err := strconv.Atoi(choice)
	if err != nil || index < 1 || index > len(listings) {
		fmt.Println("Invalid choice")
		return
	}
	a.listingView(ctx, listings[index-1])
}

func (a *app) savedView(ctx context.Context) {
	items, err := a.api.SavedListings(ctx)
	if err != nil {
		a.checkAuth(err)
		fmt.Println(friendly(err))
		return
	}
	if len(items) == 0 {
		fmt.Println("Nothing saved yet.")
		return
	}
	fmt.Println("\n--- Saved ---")
	for i, item := range items {
		fmt.Printf("%d. $%.2f %s\n", i+1, item.Listing.Price, item.Listing.Title)
	}
	choice := a.prompt("Open listing (number, empty to go back): ")
	if choice == "" {
		return
	}
	index, err := strconv.Atoi(choice)
	if err != nil || index < 1 || index > len(items) {
		fmt.Println("Invalid choice")
		return
	}
	a.listingView(ctx, items[index-1].Listing)
}

func (a *app) createListingView(ctx context.Context) {
	title := a.prompt("Title: ")
	if title == "" {
		fmt.Println("A title is required.")
		return
	}
	description := a.prompt("Description: ")
	price, err := strconv.ParseFloat(a.prompt("Price: "), 64)
	if err != nil || price < 0 {
		fmt.Println("Price must be a non-negative number.")
		return
	}
	fmt.Println("Categories:", categoryNames())
	category, err := catalog.ParseCategory(a.prompt("Category: "))
	if err != nil || category.Any() {
		fmt.Println("Pick one of the listed categories.")
		return
	}
	fmt.Println("Conditions:", conditionNames())
	condition, err := catalog.ParseCondition(a.prompt("Condition: "))
	if err != nil || condition.Any() {
		fmt.Println("Pick one of the listed conditions.")
		return
	}
	created, err := a.api.CreateListing(ctx, dto.ListingRequest{
		Title:       title,
		Description: description,
		Price:       price,
		Category:    category.String(),
		Condition:   condition.String(),
	})
	if err != nil {
		a.checkAuth(err)
		fmt.Println(friendly(err))
		return
	}
	fmt.Printf("Listed %q for $%.2f.\n", created.Title, created.Price)
}

func categoryNames() string {
	names := make([]string, 0, len(catalog.Categories()))
	for _, category := range catalog.Categories() {
		names = append(names, category.String())
	}
	return strings.Join(names, ", ")
}

func conditionNames() string {
	names := make([]string, 0, len(catalog.Conditions()))
	for _, condition := range catalog.Conditions() {
		names = append(names, condition.String())
	}
	return strings.Join(names, ", ")
}
