package scale_test

import (
	"encoding/json"
	"errors"
	"testing"

	scale "github.com/okian/valora/internal/domain/scale"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFitTransform(t *testing.T) {
	Convey("Given a matrix with symmetric columns", t, func() {
		x := [][]float64{
			{1, 10, 100},
			{3, 30, 300},
		}

		s := scale.New()
		out, err := s.FitTransform(x)

		Convey("Then each column is standardized to ±1", func() {
			So(err, ShouldBeNil)
			for j := 0; j < 3; j++ {
				So(out[0][j], ShouldAlmostEqual, -1, 1e-12)
				So(out[1][j], ShouldAlmostEqual, 1, 1e-12)
			}
		})

		Convey("Then the input matrix is untouched", func() {
			So(x[0][0], ShouldEqual, 1)
			So(x[1][2], ShouldEqual, 300)
		})
	})

	Convey("Given a matrix with a constant column", t, func() {
		x := [][]float64{
			{5, 1, 2},
			{5, 3, 4},
		}

		s := scale.New()
		out, err := s.FitTransform(x)

		Convey("Then the zero-variance column maps to zero", func() {
			So(err, ShouldBeNil)
			So(out[0][0], ShouldEqual, 0)
			So(out[1][0], ShouldEqual, 0)
		})
	})
}

func TestScalerErrors(t *testing.T) {
	Convey("Given an unfitted scaler", t, func() {
		s := scale.New()

		Convey("Then Transform fails with ErrNotFitted", func() {
			_, err := s.Transform([][]float64{{1, 2, 3}})
			So(errors.Is(err, scale.ErrNotFitted), ShouldBeTrue)
		})

		Convey("Then Fit on an empty matrix fails with ErrEmptyFit", func() {
			So(errors.Is(s.Fit(nil), scale.ErrEmptyFit), ShouldBeTrue)
		})
	})

	Convey("Given a scaler fitted on three columns", t, func() {
		s := scale.New()
		So(s.Fit([][]float64{{1, 2, 3}, {4, 5, 6}}), ShouldBeNil)

		Convey("Then a two-column matrix fails with ErrDimension", func() {
			_, err := s.Transform([][]float64{{1, 2}})
			So(errors.Is(err, scale.ErrDimension), ShouldBeTrue)
		})
	})
}

func TestScalerRoundTrip(t *testing.T) {
	Convey("Given a fitted scaler persisted as JSON", t, func() {
		s := scale.New()
		So(s.Fit([][]float64{{1, 2, 3}, {7, 8, 9}, {4, 5, 6}}), ShouldBeNil)

		raw, err := json.Marshal(s)
		So(err, ShouldBeNil)

		var restored scale.StandardScaler
		So(json.Unmarshal(raw, &restored), ShouldBeNil)

		Convey("Then the restored scaler replays the transform exactly", func() {
			x := [][]float64{{2, 4, 8}}
			want, err := s.Transform(x)
			So(err, ShouldBeNil)
			got, err := restored.Transform(x)
			So(err, ShouldBeNil)
			So(got[0][0], ShouldEqual, want[0][0])
			So(got[0][1], ShouldEqual, want[0][1])
			So(got[0][2], ShouldEqual, want[0][2])
		})
	})
}

func TestScalerStability(t *testing.T) {
	Convey("Given a fitted scaler applied twice to the same matrix", t, func() {
		s := scale.New()
		So(s.Fit([][]float64{{1, 2, 3}, {4, 5, 6}}), ShouldBeNil)

		x := [][]float64{{1, 2, 3}, {4, 5, 6}}
		a, err := s.Transform(x)
		So(err, ShouldBeNil)
		b, err := s.Transform(x)
		So(err, ShouldBeNil)

		Convey("Then both transforms are identical", func() {
			So(a, ShouldResemble, b)
		})
	})
}
