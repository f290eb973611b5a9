package vault

import (
	"testing"
)

func TestEncryptDecrypt(t *testing.T) {
	key := []byte("thisis32byteslongsecretkey123456") // 32 bytes for AES-256
	plaintext := "Hello, taskdock!"

	ciphertext, err := Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}

	if ciphertext == plaintext {
		t.Fatal("Ciphertext should not be equal to plaintext")
	}

	decrypted, err := Decrypt(ciphertext, key)
	if err != nil {
		t.Fatalf("Decryption failed: %v", err)
	}

	if decrypted != plaintext {
		t.Errorf("Expected %s, got %s", plaintext, decrypted)
	}
}

func TestEncryptProducesUniqueCiphertexts(t *testing.T) {
	key := []byte("thisis32byteslongsecretkey123456")

	a, err := Encrypt("same input", key)
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}
	b, err := Encrypt("same input", key)
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}
	if a == b {
		t.Fatal("Two encryptions of the same input must differ (fresh nonce)")
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	key1 := []byte("thisis32byteslongsecretkey123456")
	key2 := []byte("another32byteslongsecretkey65432")

	ciphertext, err := Encrypt("secret message", key1)
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}

	if _, err := Decrypt(ciphertext, key2); err == nil {
		t.Fatal("Decryption should have failed with wrong key")
	}
}

func TestInvalidKeySize(t *testing.T) {
	invalidKey := []byte("shortkey")

	if _, err := Encrypt("test", invalidKey); err == nil {
		t.Fatal("Encryption should fail with invalid key size")
	}
	if _, err := Decrypt("0123456789abcdef", invalidKey); err == nil {
		t.Fatal("Decryption should fail with invalid key size")
	}
}

func TestDecryptMalformedInput(t *testing.T) {
	key := []byte("thisis32byteslongsecretkey123456")

	if _, err := Decrypt("not-hex", key); err == nil {
		t.Fatal("Decryption should fail with malformed hex")
	}
	// Shorter than the GCM nonce.
	if _, err := Decrypt("abcdef", key); err == nil {
		t.Fatal("Decryption should fail with too short ciphertext")
	}
}

func TestGenerateSelfSignedCert(t *testing.T) {
	cert, err := GenerateSelfSignedCert()
	if err != nil {
		t.Fatalf("Failed to generate self-signed cert: %v", err)
	}

	if len(cert.Certificate) == 0 {
		t.Fatal("Generated certificate is empty")
	}
	if cert.PrivateKey == nil {
		t.Fatal("Generated private key is nil")
	}
}
