package util

import (
	"bytes"
	"testing"
)

func testParams() Argon2idParams {
	return Argon2idParams{Time: 1, MemoryKiB: 8 * 1024, Parallelism: 1, KeyLen: 32}
}

func TestArgon2id(t *testing.T) {
	params := testParams()
	password := []byte("correct horse battery staple")
	salt := []byte("random salt 1234")

	key, err := DeriveArgon2idKey(password, salt, params)
	if err != nil {
		t.Fatalf("DeriveArgon2idKey failed: %v", err)
	}

	if len(key) != 32 {
		t.Errorf("expected key length 32, got %d", len(key))
	}

	match, err := CompareArgon2idKey(password, salt, params, key)
	if err != nil {
		t.Fatalf("CompareArgon2idKey failed: %v", err)
	}
	if !match {
		t.Error("expected CompareArgon2idKey to return true")
	}

	match, _ = CompareArgon2idKey([]byte("wrong password"), salt, params, key)
	if match {
		t.Error("expected CompareArgon2idKey to return false for wrong password")
	}
}

func TestDefaultArgon2idParams_MeetsOWASPMinimums(t *testing.T) {
	p := DefaultArgon2idParams()
	if p.Time < 3 {
		t.Errorf("default Time=%d is below OWASP recommended minimum of 3", p.Time)
	}
	if p.MemoryKiB < 64*1024 {
		t.Errorf("default MemoryKiB=%d is below 64 MiB", p.MemoryKiB)
	}
	if err := ValidateArgon2idParams(p); err != nil {
		t.Errorf("default params invalid: %v", err)
	}
}

func TestValidateArgon2idParams(t *testing.T) {
	bad := []Argon2idParams{
		{Time: 0, MemoryKiB: 8192, Parallelism: 1, KeyLen: 32},
		{Time: 1, MemoryKiB: 4, Parallelism: 1, KeyLen: 32},
		{Time: 1, MemoryKiB: 8192, Parallelism: 0, KeyLen: 32},
		{Time: 1, MemoryKiB: 8192, Parallelism: 1, KeyLen: 8},
	}
	for i, p := range bad {
		if err := ValidateArgon2idParams(p); err == nil {
			t.Errorf("case %d: expected error for %+v", i, p)
		}
	}
}

func TestBytes(t *testing.T) {
	a := []byte{0x01, 0x02, 0x03}
	copied := CopyBytes(a)
	if !bytes.Equal(copied, a) {
		t.Error("CopyBytes failed")
	}
	copied[0] = 0xFF
	if a[0] == 0xFF {
		t.Error("CopyBytes should return a new slice")
	}

	WipeBytes(copied)
	if !bytes.Equal(copied, make([]byte, 3)) {
		t.Errorf("WipeBytes left %v", copied)
	}
}

func TestEncoding(t *testing.T) {
	s := "test string"
	encoded := HexEncode([]byte(s))
	decoded, err := HexDecode(encoded)
	if err != nil {
		t.Fatalf("HexDecode failed: %v", err)
	}
	if string(decoded) != s {
		t.Errorf("expected %s, got %s", s, string(decoded))
	}

	if got := Normalize("café"); got != "café" {
		t.Errorf("Normalize failed, got %q", got)
	}

	if got := NormalizeEmail("  Kim@Example.COM "); got != "kim@example.com" {
		t.Errorf("NormalizeEmail failed, got %q", got)
	}
	// Fullwidth characters fold to ASCII under NFKC.
	if got := NormalizeEmail("ａ@x.com"); got != "a@x.com" {
		t.Errorf("NormalizeEmail fullwidth failed, got %q", got)
	}
}

func TestRandom(t *testing.T) {
	b1, err := RandomBytes(32)
	if err != nil {
		t.Fatalf("RandomBytes failed: %v", err)
	}
	b2, err := RandomBytes(32)
	if err != nil {
		t.Fatalf("RandomBytes failed: %v", err)
	}
	if len(b1) != 32 {
		t.Errorf("expected 32 bytes, got %d", len(b1))
	}
	if bytes.Equal(b1, b2) {
		t.Error("RandomBytes should produce different outputs")
	}
}
