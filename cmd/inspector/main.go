package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/SolYield/yieldgate/internal/identity"
)

// Operator scratch tool: dumps gateway state for one identity without
// going through a frontend. With -key it signs requests the same way a
// real client would, so it doubles as a signature smoke test.
func main() {
	base := flag.String("base", "http://localhost:8080", "gateway base URL")
	owner := flag.String("owner", "", "identity to inspect")
	key := flag.String("key", "", "hex private key; derives the identity and signs requests")
	flag.Parse()

	caller := *owner
	if *key != "" {
		addr, err := identity.AddressOf(*key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad private key: %v\n", err)
			os.Exit(1)
		}
		caller = addr
	}

	client := &http.Client{Timeout: 5 * time.Second}

	fmt.Println("--- Registry ---")
	dump(client, *base+"/v1/registry", caller, *key)

	if caller != "" {
		fmt.Println("\n--- Ledger ---")
		dump(client, *base+"/v1/vault/ledger", caller, *key)

		fmt.Println("\n--- Projection ---")
		dump(client, *base+"/v1/vault/projection", caller, *key)
	}
}

func dump(client *http.Client, url, caller, key string) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "request build failed: %v\n", err)
		return
	}
	if caller != "" {
		req.Header.Set("X-Vault-Identity", caller)
	}
	if key != "" {
		// GET bodies are empty; the signature covers the empty payload.
		sig, err := identity.Sign(nil, key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "signing failed: %v\n", err)
			return
		}
		req.Header.Set("X-Vault-Signature", sig)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("HTTP %d\n%s\n", resp.StatusCode, body)
}
