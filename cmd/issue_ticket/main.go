// This script stands in for the launcher's hand-off step: it verifies an
// account's credentials, derives the login token chain, and stashes the
// ticket in redis so the account can log in to the server.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/slipgate-emu/slipgate/internal/core"
	"github.com/slipgate-emu/slipgate/internal/core/auth"
	"github.com/slipgate-emu/slipgate/internal/core/data"
	"github.com/slipgate-emu/slipgate/internal/core/ticket"
)

var configFlag = flag.String("config", "./", "Path to the directory containing the server config file")

func main() {
	flag.Parse()

	config := core.LoadConfig(*configFlag)

	db, err := data.Initialize(config.DatabaseURL(), config.Debugging.DatabaseLoggingEnabled)
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
	defer func() { _ = data.Shutdown(db) }()

	tickets, err := ticket.New(config.Redis.URL, 30*time.Minute)
	if err != nil {
		fmt.Println("failed to connect to redis:", err)
		os.Exit(1)
	}
	defer func() { _ = tickets.Close() }()

	scanner := bufio.NewScanner(os.Stdin)

	fmt.Printf("Username: ")
	scanner.Scan()
	username := scanner.Text()

	fmt.Printf("Password: ")
	scanner.Scan()
	password := scanner.Text()

	account, err := auth.VerifyAccount(db, username, password)
	if err != nil {
		fmt.Println("verification failed:", err)
		os.Exit(1)
	}

	datetime := time.Now().Format("2006-01-02 15:04:05")
	token := auth.DeriveLoginToken(account.Username, account.Password, datetime)

	if err := tickets.Put(context.Background(), account.ID, token); err != nil {
		fmt.Println("failed to store ticket:", err)
		os.Exit(1)
	}

	fmt.Println("account id: ", account.ID)
	fmt.Println("datetime:   ", datetime)
	fmt.Println("auth token: ", token)
	fmt.Println("second token:", auth.DeriveSecondaryToken(account.Username, account.Password, datetime))
}
