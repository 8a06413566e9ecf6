package bufds

var (
	_ Queue   = (*DynamicQueue)(nil)
	_ Queue   = (*StaticQueue)(nil)
	_ Bounded = (*StaticQueue)(nil)
)
