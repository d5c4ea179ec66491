package depot

type factory struct{}

var Factory factory

func (f factory) NewStore(opts Options) (*Store, error) {
	return newStore(opts)
}

func FactoryNewCache[T any](cap int) Cache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: cap,
	}
}
