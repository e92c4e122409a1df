// Command demoserver starts a local fixture site for trying the classifier end to end.
// Usage: go run ./cmd/demoserver [port]
// Default port: 9999
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/raysh454/phishguard/internal/demoserver"
)

func main() {
	cfg := demoserver.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	fmt.Println("===========================================")
	fmt.Println("   PhishGuard Fixture Site")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Pages start clean (v1). Switch a page to v2 in the")
	fmt.Println("control panel to serve its phishing variant, then run")
	fmt.Printf("  phishguard http://localhost:%d/login\n", cfg.Port)
	fmt.Println()
	fmt.Println("Fixtures:")
	fmt.Println("  - /login         sign-in form, v2 impersonates a brand")
	fmt.Println("  - /article       plain page, v2 is a frame-based lure")
	fmt.Println("  - /popup         popup window and blocked context menu")
	fmt.Println("  - /redirect      two-hop redirect chain to /login")
	fmt.Println("  - /download.bin  non-HTML response")
	fmt.Println()

	server := demoserver.NewDemoServer(cfg)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
