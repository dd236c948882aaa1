package typedtree

// DefaultMaxDepth bounds the nesting of selection sets and fragment spreads
// followed by the builder.
const DefaultMaxDepth = 64

// Cache memoizes named fragment subtrees and input object shapes for one
// document. A Cache is not safe for concurrent use; give each document
// being built its own.
type Cache struct {
	MaxDepth int

	fragments map[string]*Node
	inputs    map[string]*inputShape
}

func NewCache() *Cache {
	return &Cache{
		MaxDepth:  DefaultMaxDepth,
		fragments: make(map[string]*Node),
		inputs:    make(map[string]*inputShape),
	}
}

// Fragment returns the memoized subtree of a named fragment, if built.
func (c *Cache) Fragment(name string) (*Node, bool) {
	n, ok := c.fragments[name]
	return n, ok
}

func (c *Cache) maxDepth() int {
	if c.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}
