// This script is a small convenience tool for creating user accounts in the
// configured server database.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/slipgate-emu/slipgate/internal/core"
	"github.com/slipgate-emu/slipgate/internal/core/auth"
	"github.com/slipgate-emu/slipgate/internal/core/data"
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

	if err := data.Migrate(db); err != nil {
		fmt.Println("failed to run migrations:", err)
		os.Exit(1)
	}

	scanner := bufio.NewScanner(os.Stdin)

	fmt.Printf("Username: ")
	scanner.Scan()
	username := scanner.Text()

	fmt.Printf("Password: ")
	scanner.Scan()
	password := scanner.Text()

	account, err := auth.CreateAccount(db, username, password)
	if err == nil {
		fmt.Println("created account with ID", account.ID)
	} else {
		fmt.Println("failed to create account:", err)
	}
}
