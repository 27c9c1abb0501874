package main

import (
	"crypto/rand"
	"log"
	"os"

	"github.com/sceptre-labs/sceptre/src/stubserver"
)

func main() {
	secret := []byte(os.Getenv("SCEPTRE_STUB_JWT_SECRET"))
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			log.Fatalf("jwt secret: %v", err)
		}
	}

	addr := os.Getenv("SCEPTRE_STUB_ADDR")
	if addr == "" {
		addr = ":10000"
	}

	srv := stubserver.New(secret)
	log.Printf("sceptre stub listening on %s", addr)
	if err := srv.Router().Run(addr); err != nil {
		log.Fatalf("stub server: %v", err)
	}
}
