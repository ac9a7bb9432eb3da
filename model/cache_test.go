package model

import "testing"

func TestDnsCacheFirstWriterWins(t *testing.T) {
	c := NewDnsCache()
	c.Insert("1.2.3.4", "first.example.com")
	c.Insert("1.2.3.4", "second.example.com")

	name, ok := c.Lookup("1.2.3.4")
	if !ok || name != "first.example.com" {
		t.Errorf("Lookup() = (%q, %v), want (%q, true)", name, ok, "first.example.com")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestDnsCacheIgnoresEmptyInserts(t *testing.T) {
	c := NewDnsCache()
	c.Insert("", "name")
	c.Insert("1.2.3.4", "")
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after empty-key/empty-value inserts", c.Len())
	}
}

func TestDnsCacheMiss(t *testing.T) {
	c := NewDnsCache()
	if _, ok := c.Lookup("9.9.9.9"); ok {
		t.Error("Lookup() on empty cache returned ok=true")
	}
}

func TestPidCacheOverwrites(t *testing.T) {
	c := NewPidCache()
	c.Insert(100, "first.exe")
	c.Insert(100, "second.exe")

	name, ok := c.Lookup(100)
	if !ok || name != "second.exe" {
		t.Errorf("Lookup() = (%q, %v), want (%q, true) — PidCache overwrites on re-insert", name, ok, "second.exe")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}
