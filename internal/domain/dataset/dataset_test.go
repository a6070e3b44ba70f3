package dataset_test

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	dataset "github.com/okian/valora/internal/domain/dataset"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRead(t *testing.T) {
	Convey("Given a CSV source", t, func() {
		Convey("When reading a well-formed file", func() {
			src := "CustomerID, Quantity ,UnitPrice,InvoiceDate\n1,2,3.5,1/2/2011 08:26\n2,1,0.5,1/3/2011 09:00\n"
			table, err := dataset.Read(strings.NewReader(src))

			So(err, ShouldBeNil)

			Convey("Then headers are normalized for matching", func() {
				So(table.Columns, ShouldResemble, []string{"customerid", "quantity", "unitprice", "invoicedate"})
			})

			Convey("Then all rows are read in order", func() {
				So(len(table.Rows), ShouldEqual, 2)
				So(table.Rows[0][0], ShouldEqual, "1")
				So(table.Rows[1][3], ShouldEqual, "1/3/2011 09:00")
			})
		})

		Convey("When reading a file with ragged rows", func() {
			src := "customerid,recency,frequency,monetary\n1,10,3\n2,95,1,50\n"
			table, err := dataset.Read(strings.NewReader(src))

			So(err, ShouldBeNil)
			So(len(table.Rows), ShouldEqual, 2)

			Convey("Then missing trailing cells read back empty", func() {
				So(table.Cell(0, 3), ShouldEqual, "")
				So(table.Cell(1, 3), ShouldEqual, "50")
			})
		})

		Convey("When reading an empty source", func() {
			_, err := dataset.Read(strings.NewReader(""))

			Convey("Then it fails with the empty dataset kind", func() {
				So(errors.Is(err, dataset.ErrEmptyDataset), ShouldBeTrue)
			})
		})
	})
}

func TestParseFloat(t *testing.T) {
	Convey("Given numeric cell values", t, func() {
		So(dataset.ParseFloat("3.5"), ShouldEqual, 3.5)
		So(dataset.ParseFloat(" -7 "), ShouldEqual, -7)

		Convey("Then malformed input is recovered as NaN, never an error", func() {
			So(math.IsNaN(dataset.ParseFloat("")), ShouldBeTrue)
			So(math.IsNaN(dataset.ParseFloat("n/a?")), ShouldBeTrue)
			So(math.IsNaN(dataset.ParseFloat("NA")), ShouldBeTrue)
			So(math.IsNaN(dataset.ParseFloat("NaN")), ShouldBeTrue)
			So(math.IsNaN(dataset.ParseFloat("null")), ShouldBeTrue)
		})
	})
}

func TestParseTime(t *testing.T) {
	Convey("Given timestamp cell values", t, func() {
		Convey("When parsing supported layouts", func() {
			ts, ok := dataset.ParseTime("12/1/2010 8:26")
			So(ok, ShouldBeTrue)
			So(ts.Year(), ShouldEqual, 2010)
			So(ts.Month(), ShouldEqual, time.December)

			ts, ok = dataset.ParseTime("2011-06-15 13:00:00")
			So(ok, ShouldBeTrue)
			So(ts.Day(), ShouldEqual, 15)

			ts, ok = dataset.ParseTime("2011-06-15")
			So(ok, ShouldBeTrue)
			So(ts.Month(), ShouldEqual, time.June)
		})

		Convey("When parsing garbage", func() {
			_, ok := dataset.ParseTime("not a date")
			So(ok, ShouldBeFalse)

			_, ok = dataset.ParseTime("")
			So(ok, ShouldBeFalse)
		})
	})
}
