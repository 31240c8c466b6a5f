package validate

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ValidationError represents a single validation error with context.
type ValidationError struct {
	Path    string // e.g., "client.base_url"
	Message string // e.g., "must be an absolute URL"
	Hint    string // e.g., "expected http(s)://host[:port]/path"
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s; %s", e.Path, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ExpandHome expands a leading ~ and environment variables in path.
func ExpandHome(path string) (string, error) {
	expanded := os.ExpandEnv(path)
	if strings.HasPrefix(expanded, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %v", err)
		}
		expanded = filepath.Join(home, expanded[1:])
	}
	return expanded, nil
}

// ValidateDataDir validates that a directory exists and is writable, or
// that its parent does so it can be created.
func ValidateDataDir(path string) error {
	if path == "" {
		return fmt.Errorf("must not be empty")
	}

	expandedPath, err := ExpandHome(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(expandedPath)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("path exists but is not a directory")
		}
		return ValidateDirWritable(expandedPath)
	case os.IsNotExist(err):
		parent := filepath.Dir(expandedPath)
		info, err := os.Stat(parent)
		if err != nil {
			if os.IsNotExist(err) {
				// Created at runtime.
				return nil
			}
			return fmt.Errorf("parent directory not accessible: %v", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("parent path is not a directory")
		}
		if err := ValidateDirWritable(parent); err != nil {
			return fmt.Errorf("parent directory not writable: %v", err)
		}
		return nil
	default:
		return fmt.Errorf("cannot access path: %v", err)
	}
}

// ValidateDirWritable validates that a directory exists and is writable.
func ValidateDirWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access directory: %v", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory")
	}

	testFile := filepath.Join(path, ".write_test")
	if err := os.WriteFile(testFile, []byte(""), 0644); err != nil {
		return fmt.Errorf("directory not writable: %v", err)
	}
	os.Remove(testFile)

	return nil
}

// ValidateHostPort validates a host:port address. IPv6 hosts must be
// bracketed.
func ValidateHostPort(hostPort string) error {
	host, port, err := net.SplitHostPort(hostPort)
	if err != nil {
		return fmt.Errorf("expected host:port: %v", err)
	}
	if host == "" {
		return fmt.Errorf("host must not be empty")
	}
	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535; got %q", port)
	}
	return nil
}

// ValidateHTTPURL validates an absolute http or https URL.
func ValidateHTTPURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https; got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	return nil
}
