// Profiling:
// go build ./profile
// go tool pprof -http=":8000" -nodefraction=0.001 ./profile mem.pprof

package main

import (
	"github.com/TheBitDrifter/depot"
	"github.com/pkg/profile"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

func main() {
	rounds := 50
	iters := 1000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	if err := run(rounds, iters, entities); err != nil {
		panic(err)
	}
	p.Stop()
}

func run(rounds, iters, numEntities int) error {
	for range rounds {
		opts := depot.DefaultOptions()
		opts.EntityCapacity = numEntities
		opts.ListCapacity = numEntities
		store, err := depot.Factory.NewStore(opts)
		if err != nil {
			return err
		}
		c1, err := depot.Register[comp1](store)
		if err != nil {
			return err
		}
		c2, err := depot.Register[comp2](store)
		if err != nil {
			return err
		}

		for range iters {
			entities := store.AddEntities(numEntities)
			for _, e := range entities {
				c1.Add(e, comp1{V: 1})
				c2.Add(e, comp2{V: 2, W: 3})
			}

			list := c1.ListMut()
			for e, v := range list.All() {
				if other, ok := c2.Read(e); ok {
					v.V += other.V
					v.W += other.W
				}
			}
			list.Release()

			store.RemoveEntities(entities...)
		}
	}
	return nil
}
