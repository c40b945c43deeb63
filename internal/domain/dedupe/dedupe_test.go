package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/ratecards/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When a document is recorded for the first time", func() {
			seen := d.SeenAndRecord(ctx, "acme_2023")

			Convey("Then it was not seen before", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the same document stem comes up twice", func() {
			d.SeenAndRecord(ctx, "acme_2023")
			seen := d.SeenAndRecord(ctx, "acme_2023")

			Convey("Then the second is reported as seen", func() {
				So(seen, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When documents are recorded", func() {
			for _, id := range []string{"zeta_1", "acme_1", "beta_1"} {
				d.SeenAndRecord(ctx, id)
			}

			Convey("Then Seen keeps first-recorded order", func() {
				So(d.Seen(), ShouldResemble, []string{"zeta_1", "acme_1", "beta_1"})
			})

			Convey("And unrecording one frees it for another attempt", func() {
				d.Unrecord(ctx, "acme_1")
				So(d.Size(), ShouldEqual, 2)
				So(d.Seen(), ShouldResemble, []string{"zeta_1", "beta_1"})
				So(d.SeenAndRecord(ctx, "acme_1"), ShouldBeFalse)
			})

			Convey("And unrecording an unknown id changes nothing", func() {
				d.Unrecord(ctx, "missing")
				So(d.Size(), ShouldEqual, 3)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))

		d.SeenAndRecord(ctx, "a_1")
		d.SeenAndRecord(ctx, "b_1")
		d.SeenAndRecord(ctx, "c_1")

		Convey("Then the oldest id is evicted", func() {
			So(d.Size(), ShouldEqual, 2)
			So(d.Seen(), ShouldResemble, []string{"b_1", "c_1"})
			So(d.SeenAndRecord(ctx, "a_1"), ShouldBeFalse)
		})
	})

	Convey("Given concurrent workers", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var wg sync.WaitGroup
		var mu sync.Mutex
		fresh := 0

		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					if !d.SeenAndRecord(ctx, fmt.Sprintf("doc_%d", i)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then every id is claimed exactly once", func() {
			So(fresh, ShouldEqual, 50)
			So(d.Size(), ShouldEqual, 50)
		})
	})
}
