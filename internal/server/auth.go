package server

import (
	"bytes"
	"fmt"
	"os"

	"github.com/charmbracelet/ssh"
	gossh "golang.org/x/crypto/ssh"

	"github.com/renato0307/sqldesk/internal/logging"
)

// loadAuthorizedKeys parses an OpenSSH authorized_keys file.
// Unparseable lines are skipped; comments and blank lines are ignored by the parser.
func loadAuthorizedKeys(path string) ([]gossh.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read authorized keys: %w", err)
	}

	var keys []gossh.PublicKey
	rest := data
	for len(bytes.TrimSpace(rest)) > 0 {
		key, _, _, next, err := gossh.ParseAuthorizedKey(rest)
		if err != nil {
			// ParseAuthorizedKey fails only once no valid line is left
			logging.Logger.Debug("No more parseable authorized keys", "path", path, "error", err)
			break
		}
		keys = append(keys, key)
		rest = next
	}
	return keys, nil
}

// isKeyAuthorized reports whether the client key is listed in authorized_keys
func isKeyAuthorized(clientKey ssh.PublicKey, authorizedKeysPath string) bool {
	keys, err := loadAuthorizedKeys(authorizedKeysPath)
	if err != nil {
		logging.Logger.Warn("Authorized keys unavailable", "error", err, "path", authorizedKeysPath)
		return false
	}

	for _, key := range keys {
		if bytes.Equal(clientKey.Marshal(), key.Marshal()) {
			return true
		}
	}
	return false
}

// publicKeyHandler checks keys against authorized_keys on every attempt,
// so edits to the file apply without a restart
func publicKeyHandler(authorizedKeysPath string) ssh.PublicKeyHandler {
	return func(ctx ssh.Context, key ssh.PublicKey) bool {
		fingerprint := gossh.FingerprintSHA256(key)
		authorized := isKeyAuthorized(key, authorizedKeysPath)

		if authorized {
			logging.Logger.Info("SSH key authenticated",
				"user", ctx.User(),
				"fingerprint", fingerprint,
				"key_type", key.Type())
		} else {
			logging.Logger.Warn("Unauthorized SSH key",
				"user", ctx.User(),
				"remote_addr", ctx.RemoteAddr().String(),
				"fingerprint", fingerprint,
				"key_type", key.Type())
		}
		return authorized
	}
}
