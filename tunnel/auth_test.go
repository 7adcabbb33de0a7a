package tunnel

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/ssh"
)

// TestBuildAuthMethods_ExplicitKey verifies that a key file is loaded.
func TestBuildAuthMethods_ExplicitKey(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	keyPath := writeKey(t, priv)

	cfg := &SSHConfig{KeyPath: keyPath}
	methods, err := BuildAuthMethods(cfg)
	if err != nil {
		t.Fatalf("BuildAuthMethods: %v", err)
	}
	if len(methods) == 0 {
		t.Fatal("expected at least one auth method")
	}
}

// TestBuildAuthMethods_NoMethods verifies a clear error message.
func TestBuildAuthMethods_NoMethods(t *testing.T) {
	// Remove SSH_AUTH_SOCK so agent fails, and supply no key.
	t.Setenv("SSH_AUTH_SOCK", "")

	cfg := &SSHConfig{KeyPath: "/nonexistent/key"}
	_, err := BuildAuthMethods(cfg)
	if err == nil {
		t.Fatal("expected error for missing key")
	}
}

// TestBuildAuthMethods_EncryptedKeyNoTTY verifies an encrypted key
// fails cleanly when there is no terminal to prompt on.
func TestBuildAuthMethods_EncryptedKeyNoTTY(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	block, err := ssh.MarshalPrivateKeyWithPassphrase(priv, "", []byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	keyPath := filepath.Join(t.TempDir(), "id_enc")
	if err := os.WriteFile(keyPath, pem.EncodeToMemory(block), 0600); err != nil {
		t.Fatal(err)
	}

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()
	oldStdin := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = oldStdin }()

	_, err = BuildAuthMethods(&SSHConfig{KeyPath: keyPath})
	if !errors.Is(err, errNoTTY) {
		t.Errorf("want errNoTTY, got %v", err)
	}
}

// TestHostKeyCallback_KnownHostsMissing verifies strict mode reports a
// missing known_hosts file.
func TestHostKeyCallback_KnownHostsMissing(t *testing.T) {
	cfg := &SSHConfig{StrictHostKey: true, KnownHosts: filepath.Join(t.TempDir(), "nope")}
	if _, err := hostKeyCallback(cfg); err == nil {
		t.Fatal("expected error for missing known_hosts")
	}
}

// TestHostKeyCallback_Insecure verifies that InsecureIgnoreHostKey is used
// when StrictHostKey is false.
func TestHostKeyCallback_Insecure(t *testing.T) {
	cfg := &SSHConfig{StrictHostKey: false}
	cb, err := hostKeyCallback(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if cb == nil {
		t.Fatal("callback should not be nil")
	}
}
