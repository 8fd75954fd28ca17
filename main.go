// Command sitechat chats with the websites you ingest. Crawled pages
// are chunked, embedded and stored locally; questions are answered by
// the completion model grounded in retrieved chunks.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/sitechat-io/sitechat-cli/internal/adapters/driving/cli"
)

// version is stamped at link time: -ldflags "-X main.version=v1.2.3".
var version string

func main() {
	os.Exit(run())
}

func run() int {
	// A .env file is a development convenience; absence is normal.
	_ = godotenv.Load()

	services, cleanup, err := cli.Build("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "sitechat: %v\n", err)
		return 1
	}
	defer cleanup()

	cli.SetServices(services)
	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		// Cobra already printed the error.
		return 1
	}
	return 0
}
