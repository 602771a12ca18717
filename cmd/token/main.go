// Command token mints HS256 bearer tokens for local development against
// a server running with auth mode "hmac".
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lostfound/internal/auth"
)

const envSecret = "LOSTFOUND_AUTH_SECRET"

func main() {
	var (
		secret  = flag.String("secret", "", "HMAC signing secret (defaults to "+envSecret+")")
		subject = flag.String("sub", "", "Actor id (random when empty)")
		role    = flag.String("role", string(auth.RoleResident), "Actor role: resident or admin")
		ttl     = flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	)
	flag.Parse()

	if *secret == "" {
		*secret = os.Getenv(envSecret)
	}
	if len(*secret) < 32 {
		log.Fatal("secret must be at least 32 bytes")
	}

	id := uuid.New()
	if *subject != "" {
		parsed, err := uuid.Parse(*subject)
		if err != nil {
			log.Fatalf("invalid -sub: %v", err)
		}
		id = parsed
	}

	r := auth.Role(*role)
	if r != auth.RoleResident && r != auth.RoleAdmin {
		log.Fatalf("unknown role %q", *role)
	}

	token, err := auth.IssueToken(*secret, auth.Actor{ID: id, Role: r}, *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	fmt.Fprintf(os.Stderr, "actor %s (%s)\n", id, r)
	fmt.Println(token)
}
