package bufds

var (
	_ Stack   = (*DynamicStack)(nil)
	_ Stack   = (*StaticStack)(nil)
	_ Bounded = (*StaticStack)(nil)
)
