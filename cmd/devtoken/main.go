// Command devtoken mints an access token so the API can be exercised locally
// without the identity service.
//
//	go run ./cmd/devtoken -role sponsor
//	go run ./cmd/devtoken -role student -user 6b1f...
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/scholarbee/scholarbee-api/internal/config"
	"github.com/scholarbee/scholarbee-api/internal/domain/user"
	"github.com/scholarbee/scholarbee-api/internal/pkg/jwt"
)

func main() {
	role := flag.String("role", "student", "student, sponsor or admin")
	userID := flag.String("user", "", "user id (random when empty)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.Load()
	if cfg.IsProduction() {
		log.Fatal("devtoken refuses to run with ENV=production")
	}

	if !user.IsValidRole(*role) {
		log.Fatalf("unknown role %q", *role)
	}

	id := uuid.New()
	if *userID != "" {
		parsed, err := uuid.Parse(*userID)
		if err != nil {
			log.Fatalf("invalid user id: %v", err)
		}
		id = parsed
	}

	token, err := jwt.NewService(cfg.JWTSecret, *ttl).GenerateAccessToken(id, *role)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Fprintf(os.Stderr, "user_id=%s role=%s expires_in=%s\n", id, *role, *ttl)
	fmt.Println(token)
}
