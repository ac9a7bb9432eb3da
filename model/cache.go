package model

// DnsCache maps a remote IP to its resolved hostname. Only positive results
// are ever inserted; the cache grows monotonically within a session and is
// never evicted at the scale this program targets.
type DnsCache struct {
	m map[string]string
}

func NewDnsCache() *DnsCache {
	return &DnsCache{m: make(map[string]string)}
}

// Lookup returns the cached hostname for ip, if any.
func (c *DnsCache) Lookup(ip string) (string, bool) {
	name, ok := c.m[ip]
	return name, ok
}

// Insert records ip -> name, first-writer-wins: a later observation for an
// IP already present never overwrites the earlier one.
func (c *DnsCache) Insert(ip, name string) {
	if ip == "" || name == "" {
		return
	}
	if _, exists := c.m[ip]; exists {
		return
	}
	c.m[ip] = name
}

func (c *DnsCache) Len() int { return len(c.m) }

// PidCache maps a PID to its resolved process name. Failures are never
// cached, so an unresolved PID is retried on the next tick.
type PidCache struct {
	m map[int]string
}

func NewPidCache() *PidCache {
	return &PidCache{m: make(map[int]string)}
}

func (c *PidCache) Lookup(pid int) (string, bool) {
	name, ok := c.m[pid]
	return name, ok
}

func (c *PidCache) Insert(pid int, name string) {
	c.m[pid] = name
}

func (c *PidCache) Len() int { return len(c.m) }
