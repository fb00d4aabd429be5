// cmd/atm/main.go

// Command atm runs an interactive console session against the bank
// core. It is presentation glue only: every effect goes through the
// BankService, and all state is lost when the process exits.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	app "minibank/internal"
	"minibank/internal/domain"
	"minibank/internal/service"
)

type session struct {
	svc service.BankService
	in  *bufio.Scanner
}

func main() {
	ctx := context.Background()

	application := app.NewApplication()
	if err := application.Initialize(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	s := &session{
		svc: application.BankService,
		in:  bufio.NewScanner(os.Stdin),
	}

	// Seed a demo customer so the session has someone to log in as,
	// mirroring a bank that already holds accounts.
	user, _, err := s.svc.CreateUser(ctx, "John", "Doe", "1234")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed demo user: %v\n", err)
		os.Exit(1)
	}
	if _, err := s.svc.OpenAccount(ctx, user.ID, "Checking"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to open demo account: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Demo user %s %s created with ID %s (PIN 1234).\n", user.FirstName, user.LastName, user.ID)

	for {
		current := s.loginPrompt(ctx, application.Config.BankName)
		s.userMenu(ctx, current)
	}
}

// loginPrompt loops until a user id / PIN pair authenticates.
func (s *session) loginPrompt(ctx context.Context, bankName string) *domain.User {
	for {
		fmt.Printf("\n\nWelcome to %s\n\n", bankName)
		userID := s.readLine("Enter user ID: ")
		pin := s.readLine("Enter PIN: ")

		user, err := s.svc.Login(ctx, userID, pin)
		if err != nil {
			fmt.Println("Incorrect user ID/PIN combination. Please try again.")
			continue
		}
		return user
	}
}

// userMenu shows the account summary and processes menu choices until
// the user quits.
func (s *session) userMenu(ctx context.Context, user *domain.User) {
	for {
		lines, err := s.svc.AccountsSummary(ctx, user.ID)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		fmt.Printf("\n%s's accounts summary\n", user.FirstName)
		for i, line := range lines {
			fmt.Printf("    %d) %s\n", i+1, line)
		}

		fmt.Printf("\nWelcome %s, what would you like to do?\n", user.FirstName)
		fmt.Println("    1) Show account transaction history")
		fmt.Println("    2) Withdraw")
		fmt.Println("    3) Deposit")
		fmt.Println("    4) Transfer")
		fmt.Println("    5) Quit")

		switch s.readLine("Enter choice: ") {
		case "1":
			s.showHistory(ctx, user)
		case "2":
			s.withdraw(ctx, user)
		case "3":
			s.deposit(ctx, user)
		case "4":
			s.transfer(ctx, user)
		case "5":
			return
		default:
			fmt.Println("Invalid choice. Please choose 1-5.")
		}
	}
}

func (s *session) showHistory(ctx context.Context, user *domain.User) {
	index := s.readAccountIndex(ctx, user, "show history for")
	entries, err := s.svc.History(ctx, user.ID, index)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Println("\nTransaction history:")
	for _, entry := range entries {
		fmt.Printf("    %s : $%s : %s\n",
			entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Amount.StringFixed(2), entry.Memo)
	}
}

func (s *session) deposit(ctx context.Context, user *domain.User) {
	index := s.readAccountIndex(ctx, user, "deposit to")
	amount := s.readAmount("Enter the amount to deposit: $")
	memo := s.readLine("Enter a memo: ")

	if _, balance, err := s.svc.Deposit(ctx, user.ID, index, amount, memo); err != nil {
		fmt.Printf("Deposit failed: %v\n", err)
	} else {
		fmt.Printf("New balance: $%s\n", balance.StringFixed(2))
	}
}

func (s *session) withdraw(ctx context.Context, user *domain.User) {
	index := s.readAccountIndex(ctx, user, "withdraw from")
	amount := s.readAmount("Enter the amount to withdraw: $")
	memo := s.readLine("Enter a memo: ")

	if _, balance, err := s.svc.Withdraw(ctx, user.ID, index, amount, memo); err != nil {
		fmt.Printf("Withdrawal failed: %v\n", err)
	} else {
		fmt.Printf("New balance: $%s\n", balance.StringFixed(2))
	}
}

func (s *session) transfer(ctx context.Context, user *domain.User) {
	from := s.readAccountIndex(ctx, user, "transfer from")
	to := s.readAccountIndex(ctx, user, "transfer to")
	amount := s.readAmount("Enter the amount to transfer: $")

	if _, _, err := s.svc.Transfer(ctx, user.ID, from, to, amount); err != nil {
		fmt.Printf("Transfer failed: %v\n", err)
	} else {
		fmt.Println("Transfer complete.")
	}
}

// readAccountIndex prompts for a 1-based account number and returns the
// core's 0-based index.
func (s *session) readAccountIndex(ctx context.Context, user *domain.User, action string) int {
	n, err := s.svc.NumAccounts(ctx, user.ID)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return 0
	}
	for {
		raw := s.readLine(fmt.Sprintf("Enter the number (1-%d) of the account to %s: ", n, action))
		idx, err := strconv.Atoi(raw)
		if err != nil || idx < 1 || idx > n {
			fmt.Println("Invalid account. Please try again.")
			continue
		}
		return idx - 1
	}
}

func (s *session) readAmount(prompt string) decimal.Decimal {
	for {
		raw := s.readLine(prompt)
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			fmt.Println("Invalid amount. Please try again.")
			continue
		}
		return amount
	}
}

func (s *session) readLine(prompt string) string {
	fmt.Print(prompt)
	if !s.in.Scan() {
		fmt.Println()
		os.Exit(0)
	}
	return strings.TrimSpace(s.in.Text())
}
