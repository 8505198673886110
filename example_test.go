package zspatial_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/zspatial"
	"github.com/hupe1980/zspatial/blobstore"
	"github.com/hupe1980/zspatial/geom"
	"github.com/hupe1980/zspatial/join"
	"github.com/hupe1980/zspatial/space"
)

func newGridSpace() *space.Space {
	return space.MustNew([]int{10, 10}, func(o *space.Options) {
		o.Lo = []float64{0, 0}
		o.Hi = []float64{1000, 1000}
	})
}

// Example demonstrates a window query over a regular grid of points.
func Example() {
	ctx := context.Background()

	idx, err := zspatial.New(newGridSpace())
	if err != nil {
		log.Fatal(err)
	}
	defer idx.Close()

	id := int64(0)
	for x := 0; x < 1000; x += 10 {
		for y := 0; y < 1000; y += 10 {
			if err := idx.Add(ctx, geom.NewPoint(id, float64(x), float64(y))); err != nil {
				log.Fatal(err)
			}
			id++
		}
	}

	query := geom.NewBox(-1, []float64{250, 250}, []float64{750, 750})
	hits, err := idx.Search(ctx, query, func(o *join.Options) {
		o.Filter = geom.Intersecting
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("points:", idx.Len())
	fmt.Println("in window:", len(hits))
	// Output:
	// points: 10000
	// in window: 2601
}

// Example_join demonstrates joining two indexes.
func Example_join() {
	ctx := context.Background()
	s := newGridSpace()

	parcels, _ := zspatial.New(s)
	_ = parcels.Add(ctx, geom.NewBox(1, []float64{0, 0}, []float64{100, 100}))
	_ = parcels.Add(ctx, geom.NewBox(2, []float64{500, 500}, []float64{600, 600}))

	wells, _ := zspatial.New(s)
	_ = wells.Add(ctx, geom.NewPoint(10, 50, 50))
	_ = wells.Add(ctx, geom.NewPoint(11, 550, 520))
	_ = wells.Add(ctx, geom.NewPoint(12, 900, 900))

	pairs, err := parcels.Join(ctx, wells, func(o *join.Options) {
		o.Filter = geom.Intersecting
	})
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range pairs {
		fmt.Printf("parcel %d contains well %d\n", p.Left.ID(), p.Right.ID())
	}
	// Output:
	// parcel 1 contains well 10
	// parcel 2 contains well 11
}

// Example_snapshot demonstrates saving and loading an index.
func Example_snapshot() {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	idx, _ := zspatial.New(newGridSpace(), zspatial.WithCompression("lz4"))
	_ = idx.Add(ctx, geom.NewBox(1, []float64{10, 10}, []float64{20, 30}))
	_ = idx.Add(ctx, geom.NewPoint(2, 500, 500))

	if _, err := idx.Save(ctx, bs, "demo.zsp"); err != nil {
		log.Fatal(err)
	}

	loaded, err := zspatial.Load(ctx, bs, "demo.zsp")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("objects:", loaded.Len())
	fmt.Println("same records:", loaded.RecordCount() == idx.RecordCount())
	// Output:
	// objects: 2
	// same records: true
}
