// Command mktoken mints a local identity token for development, matching the
// claim shape the office SSO provider issues in production.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	jwtutil "booklend/util/jwt"

	"github.com/joho/godotenv"
)

func main() {
	uid := flag.Int64("uid", 1, "user id (sub claim)")
	name := flag.String("name", "Dev User", "display name")
	avatar := flag.String("avatar", "", "avatar URL")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "local_dev_secret"
	}

	tok, err := jwtutil.Issue(secret, *uid, *name, *avatar, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mktoken:", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
