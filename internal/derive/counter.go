package derive

import "sort"

// Count is one key of a Counter with its tally.
type Count struct {
	Key   string `json:"name"`
	Value int    `json:"value"`
}

// Counter tallies keys and remembers the order in which each key was first
// seen, so rankings with equal counts stay in source order.
type Counter struct {
	index map[string]int
	items []Count
}

func NewCounter() *Counter {
	return &Counter{index: make(map[string]int)}
}

func (c *Counter) Add(key string) {
	c.AddN(key, 1)
}

func (c *Counter) AddN(key string, n int) {
	if i, ok := c.index[key]; ok {
		c.items[i].Value += n
		return
	}
	c.index[key] = len(c.items)
	c.items = append(c.items, Count{Key: key, Value: n})
}

func (c *Counter) Get(key string) int {
	if i, ok := c.index[key]; ok {
		return c.items[i].Value
	}
	return 0
}

func (c *Counter) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}

func (c *Counter) Len() int {
	return len(c.items)
}

// Entries returns the counts in first-seen order.
func (c *Counter) Entries() []Count {
	out := make([]Count, len(c.items))
	copy(out, c.items)
	return out
}

// Top returns at most n counts, highest first. n <= 0 returns all of them.
func (c *Counter) Top(n int) []Count {
	out := c.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value > out[j].Value
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
