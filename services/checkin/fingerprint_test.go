package checkin

import "testing"

func TestFingerprintDeterministic(t *testing.T) {
	h := NewFingerprintHasher([]byte("secret"))
	chars := map[string]string{
		"device_id":   "abc-123",
		"user_id":     "user-1",
		"device_type": "ios",
	}

	first := h.Hash(chars)
	second := h.Hash(chars)
	if first != second {
		t.Errorf("hash not deterministic: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(first))
	}
}

func TestFingerprintOrderIndependent(t *testing.T) {
	h := NewFingerprintHasher([]byte("secret"))

	a := h.Hash(map[string]string{"a": "1", "b": "2", "c": "3"})
	b := h.Hash(map[string]string{"c": "3", "a": "1", "b": "2"})
	if a != b {
		t.Errorf("hash depends on map order: %s vs %s", a, b)
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	h := NewFingerprintHasher([]byte("secret"))
	base := h.Hash(map[string]string{"device_id": "abc", "user_id": "u1"})

	if h.Hash(map[string]string{"device_id": "abd", "user_id": "u1"}) == base {
		t.Error("value change did not change the hash")
	}
	if h.Hash(map[string]string{"device_id": "abc", "user_id": "u2"}) == base {
		t.Error("user change did not change the hash")
	}

	other := NewFingerprintHasher([]byte("different-secret"))
	if other.Hash(map[string]string{"device_id": "abc", "user_id": "u1"}) == base {
		t.Error("secret change did not change the hash")
	}
}
