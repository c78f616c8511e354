// Command token issues a bearer token for the report API using the configured
// CREDITLENS_AUTH_JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"creditlens/internal/config"
	"creditlens/internal/service"
)

func main() {
	subject := flag.String("subject", "dashboard", "token subject (caller name)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if !cfg.Auth.Enabled() {
		log.Fatal("CREDITLENS_AUTH_JWT_SECRET is not set")
	}

	token, expiresAt, err := service.NewTokenService(&cfg.Auth).Issue(*subject)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}

	fmt.Println(token)
	log.Printf("token for %q expires %s", *subject, expiresAt.Format(time.RFC3339))
}
