package bufds

var (
	_ List    = (*DynamicList)(nil)
	_ List    = (*StaticList)(nil)
	_ Bounded = (*StaticList)(nil)
)

// step walks n nodes from it, following Next for positive n and Prev for
// negative n. Stepping over the list end wraps around through the sentinel.
func step(it Iterator, n int) Iterator {
	for ; n > 0; n-- {
		it = it.Next()
	}
	for ; n < 0; n++ {
		it = it.Prev()
	}
	return it
}
