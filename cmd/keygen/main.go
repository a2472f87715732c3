// Command keygen writes an Ed25519 key pair for signing access, refresh and
// password-reset tokens.
//
// Usage:
//
//	keygen -out ./keys
//	keygen -env   # print JWT_PRIVATE_KEY_PEM / JWT_PUBLIC_KEY_PEM lines
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/creatorhub/marketplace-api/internal/infrastructure/token"
	"github.com/creatorhub/marketplace-api/pkg/logger"
)

func main() {
	out := flag.String("out", ".", "directory for jwt_private.pem and jwt_public.pem")
	env := flag.Bool("env", false, "print the keys as single-line environment variables instead")
	flag.Parse()

	log := logger.Init(logger.Options{Pretty: true})

	privPEM, pubPEM, err := token.GenerateKeyPair()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to generate key pair")
	}

	if *env {
		fmt.Printf("JWT_PRIVATE_KEY_PEM=\"%s\"\n", escape(privPEM))
		fmt.Printf("JWT_PUBLIC_KEY_PEM=\"%s\"\n", escape(pubPEM))
		return
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create output directory")
	}
	files := map[string]struct {
		data []byte
		mode os.FileMode
	}{
		"jwt_private.pem": {privPEM, 0o600},
		"jwt_public.pem":  {pubPEM, 0o644},
	}
	for name, f := range files {
		path := filepath.Join(*out, name)
		if err := os.WriteFile(path, f.data, f.mode); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to write key")
		}
		log.Info().Str("path", path).Msg("key written")
	}
}

// escape folds a PEM block onto one line with literal \n separators.
func escape(b []byte) string {
	return strings.ReplaceAll(strings.TrimSpace(string(b)), "\n", `\n`)
}
