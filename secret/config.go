package secret

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigPath is the per-user config file holding the (possibly
// encrypted) audit DSN, grounded on the teacher's convention of a
// dotfile under the user's home directory for hub-level settings.
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("secret: locating home directory: %w", err)
	}
	return filepath.Join(home, ".hygge", "config"), nil
}

// StoreDSN writes dsn to the config file, encrypted under passphrase if
// one is given, or in the clear (a "plain:" prefixed line) otherwise --
// mirroring DumpStore's own fallback to plaintext when no password is
// supplied.
func StoreDSN(passphrase, dsn string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("secret: creating config directory: %w", err)
	}
	var line string
	if passphrase == "" {
		line = "plain:" + dsn
	} else {
		sealed, err := Seal(passphrase, dsn)
		if err != nil {
			return err
		}
		line = "sealed:" + sealed
	}
	return os.WriteFile(path, []byte(line+"\n"), 0600)
}

// LoadDSN reads back whatever StoreDSN wrote, decrypting with
// passphrase if the line was sealed. A missing config file is not an
// error: callers fall back to the default or environment-supplied DSN.
func LoadDSN(passphrase string) (string, bool, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", false, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("secret: opening config: %w", err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return "", false, nil
	}
	line := scanner.Text()
	switch {
	case strings.HasPrefix(line, "plain:"):
		return strings.TrimPrefix(line, "plain:"), true, nil
	case strings.HasPrefix(line, "sealed:"):
		plain, err := Open(passphrase, strings.TrimPrefix(line, "sealed:"))
		if err != nil {
			return "", false, err
		}
		return plain, true, nil
	default:
		return "", false, fmt.Errorf("secret: unrecognized config line %q", line)
	}
}
