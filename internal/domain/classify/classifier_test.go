package classify_test

import (
	"errors"
	"testing"

	"github.com/okian/ratecards/internal/domain/classify"
	"github.com/okian/ratecards/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func rateCardTable(index int) model.RawTable {
	return model.RawTable{
		DocumentID: "acme_rates",
		Index:      index,
		Columns:    []string{"Unnamed: 0", "Strategy and\rarchitecture", "Business change"},
		Rows: [][]string{
			{"A. Follow", "£300", "£310"},
			{"B. Assist", "£400", "£410"},
		},
	}
}

func coverTable(index int) model.RawTable {
	return model.RawTable{
		DocumentID: "acme_rates",
		Index:      index,
		Columns:    []string{"Service", "Description"},
		Rows:       [][]string{{"Cloud support", "We follow ITIL"}},
	}
}

func TestSignatureMatches(t *testing.T) {
	Convey("Given the default tabula signature", t, func() {
		sig := classify.TabulaSFIA()

		Convey("When the table has the fingerprint columns and a Follow level", func() {
			table := rateCardTable(0)
			So(classify.IsRateCardTable(sig, &table), ShouldBeTrue)
		})

		Convey("When the marker only differs in case", func() {
			table := rateCardTable(0)
			table.Rows[0][0] = "A. FOLLOW"
			So(classify.IsRateCardTable(sig, &table), ShouldBeTrue)
		})

		Convey("When the first price header was cleaned by the engine", func() {
			table := rateCardTable(0)
			table.Columns[1] = "Strategy and architecture"
			So(classify.IsRateCardTable(sig, &table), ShouldBeFalse)
		})

		Convey("When the level column has a missing cell", func() {
			table := rateCardTable(0)
			table.Rows = append(table.Rows, []string{"nan", "£500", "£510"})
			So(classify.IsRateCardTable(sig, &table), ShouldBeFalse)
		})

		Convey("When a short row leaves the level cell empty", func() {
			table := rateCardTable(0)
			table.Rows = append(table.Rows, []string{})
			So(classify.IsRateCardTable(sig, &table), ShouldBeFalse)
		})

		Convey("When no level contains the marker", func() {
			table := rateCardTable(0)
			table.Rows = table.Rows[1:]
			So(classify.IsRateCardTable(sig, &table), ShouldBeFalse)
		})

		Convey("When the table has no rows", func() {
			table := rateCardTable(0)
			table.Rows = nil
			So(classify.IsRateCardTable(sig, &table), ShouldBeFalse)
		})
	})
}

func TestFilter(t *testing.T) {
	Convey("Given a mix of cover and rate card tables", t, func() {
		tables := []model.RawTable{coverTable(0), rateCardTable(1), coverTable(2), rateCardTable(3)}

		kept, rejected := classify.Filter(classify.TabulaSFIA(), tables)

		Convey("Then rate cards are kept in order and the rest rejected", func() {
			So(len(kept), ShouldEqual, 2)
			So(kept[0].Index, ShouldEqual, 1)
			So(kept[1].Index, ShouldEqual, 3)
			So(len(rejected), ShouldEqual, 2)
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given a registry", t, func() {
		Convey("When created without signatures", func() {
			reg, err := classify.NewRegistry()
			So(err, ShouldBeNil)

			sig, ok := reg.Lookup(classify.DefaultSignatureName)
			So(ok, ShouldBeTrue)
			So(sig.Version, ShouldEqual, 1)
		})

		Convey("When a newer version is registered", func() {
			reg, err := classify.NewRegistry()
			So(err, ShouldBeNil)
			v2 := classify.TabulaSFIA()
			v2.Version = 2
			v2.RequiredColumns = []string{"Strategy and architecture"}
			So(reg.Register(v2), ShouldBeNil)

			sig, ok := reg.Lookup(classify.DefaultSignatureName)
			So(ok, ShouldBeTrue)
			So(sig.Version, ShouldEqual, 2)
		})

		Convey("When the same version is registered twice", func() {
			reg, err := classify.NewRegistry()
			So(err, ShouldBeNil)
			err = reg.Register(classify.TabulaSFIA())
			So(errors.Is(err, classify.ErrDuplicateSignature), ShouldBeTrue)
		})

		Convey("When a signature has no marker", func() {
			bad := classify.TabulaSFIA()
			bad.Marker = " "
			_, err := classify.NewRegistry(bad)
			So(errors.Is(err, classify.ErrInvalidSignature), ShouldBeTrue)
		})
	})
}

func TestClassifier(t *testing.T) {
	Convey("Given a classifier over the default registry", t, func() {
		reg, err := classify.NewRegistry()
		So(err, ShouldBeNil)
		c, err := classify.New(reg)
		So(err, ShouldBeNil)

		Convey("When a document holds two rate cards and a cover table", func() {
			out, err := c.Classify("acme_rates", []model.RawTable{coverTable(0), rateCardTable(1), rateCardTable(2)})

			Convey("Then both rate cards are promoted with their signature", func() {
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, 2)
				So(out[0].Signature, ShouldEqual, classify.DefaultSignatureName)
				So(out[1].Index, ShouldEqual, 2)
			})
		})

		Convey("When a document holds only narrative tables", func() {
			out, err := c.Classify("acme_rates", []model.RawTable{coverTable(0)})
			So(err, ShouldBeNil)
			So(out, ShouldBeEmpty)
		})

		Convey("When a level table matches no signature", func() {
			table := rateCardTable(4)
			table.Columns = []string{"Level", "Strategy", "Change"}

			_, err := c.Classify("acme_rates", []model.RawTable{coverTable(0), table})

			Convey("Then the layout is reported", func() {
				So(errors.Is(err, model.ErrUnrecognizedLayout), ShouldBeTrue)
				var layoutErr *model.UnrecognizedLayoutError
				So(errors.As(err, &layoutErr), ShouldBeTrue)
				So(layoutErr.Table, ShouldEqual, 4)
			})
		})

		Convey("When strict layouts are disabled", func() {
			lenient, err := classify.New(reg, classify.WithStrictLayouts(false))
			So(err, ShouldBeNil)
			table := rateCardTable(0)
			table.Columns = []string{"Level", "Strategy", "Change"}

			out, err := lenient.Classify("acme_rates", []model.RawTable{table})
			So(err, ShouldBeNil)
			So(out, ShouldBeEmpty)
		})

		Convey("When an unknown signature is activated", func() {
			_, err := classify.New(reg, classify.WithActive("pdfplumber-v9"))
			So(errors.Is(err, classify.ErrUnknownSignature), ShouldBeTrue)
		})
	})
}
