package join

import (
	"github.com/hupe1980/zspatial/decompose"
	"github.com/hupe1980/zspatial/space"
	"github.com/hupe1980/zspatial/store"
)

// objectInput is a single literal object presented as an input.
type objectInput struct {
	space      *space.Space
	store      *store.ArrayStore
	singleCell bool
}

// ObjectInput decomposes obj and returns it as a join input, so that an
// index can be joined against one query object. maxZ is used when
// obj.MaxZ() is not positive.
func ObjectInput(s *space.Space, obj space.Object, maxZ int) (Input, error) {
	budget := obj.MaxZ()
	if budget < 1 {
		budget = maxZ
	}
	zs, err := decompose.New(s).Decompose(obj, budget)
	if err != nil {
		return nil, err
	}

	recs := make([]store.Record, len(zs))
	for i, z := range zs {
		recs[i] = store.Record{Key: store.Key{Z: z, ID: obj.ID()}, Object: obj}
	}
	st, err := store.NewArrayStoreFrom(recs)
	if err != nil {
		return nil, err
	}

	return &objectInput{
		space:      s,
		store:      st,
		singleCell: len(zs) == 1 && zs[0].Length() == s.TotalBits(),
	}, nil
}

func (in *objectInput) Space() *space.Space { return in.space }

func (in *objectInput) Cursor() (store.Cursor, error) { return in.store.Cursor() }

func (in *objectInput) SingleCell() bool { return in.singleCell }

func (in *objectInput) Stable() bool { return true }
