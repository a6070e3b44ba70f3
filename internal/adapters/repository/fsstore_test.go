package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	repository "github.com/okian/valora/internal/adapters/repository"
	estimator "github.com/okian/valora/internal/domain/estimator"
	scale "github.com/okian/valora/internal/domain/scale"
	. "github.com/smartystreets/goconvey/convey"
)

func trainedSet(version string) *repository.ArtifactSet {
	s := scale.New()
	_ = s.Fit([][]float64{{1, 2, 3}, {4, 5, 6}})

	value := estimator.NewLinear(0.05, 100)
	_ = value.Fit([][]float64{{1, 2, 3}, {4, 5, 6}}, []float64{1, 2})

	churn := estimator.NewLogistic(0.5, 100)
	_ = churn.Fit([][]float64{{-1, -1, -1}, {1, 1, 1}}, []float64{0, 1})

	return &repository.ArtifactSet{
		Version:   version,
		TrainedAt: time.Now().UTC(),
		Scaler:    s,
		Value:     value,
		Churn:     churn,
	}
}

func TestFSStoreSaveLoad(t *testing.T) {
	Convey("Given an empty filesystem store", t, func() {
		dir := t.TempDir()
		store, err := repository.NewFSStore(dir)
		So(err, ShouldBeNil)

		Convey("Then Load fails with ErrNotFound", func() {
			_, err := store.Load(context.Background())
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(store.Exists(context.Background()), ShouldBeFalse)
		})

		Convey("When a trained set is saved", func() {
			set := trainedSet("v1")
			So(store.Save(context.Background(), set), ShouldBeNil)

			Convey("Then Load returns the same set", func() {
				got, err := store.Load(context.Background())
				So(err, ShouldBeNil)
				So(got.Version, ShouldEqual, "v1")
				So(got.Scaler.Mean, ShouldResemble, set.Scaler.Mean)
				So(got.Value.Weights, ShouldResemble, set.Value.Weights)
				So(got.Churn.Weights, ShouldResemble, set.Churn.Weights)
				So(store.Exists(context.Background()), ShouldBeTrue)
			})

			Convey("Then a fresh store over the same directory recovers it", func() {
				reopened, err := repository.NewFSStore(dir)
				So(err, ShouldBeNil)

				got, err := reopened.Load(context.Background())
				So(err, ShouldBeNil)
				So(got.Version, ShouldEqual, "v1")

				Convey("And its predictions replay exactly", func() {
					x := [][]float64{{2, 3, 4}}
					scaled, err := got.Scaler.Transform(x)
					So(err, ShouldBeNil)
					want, err := set.Value.Predict(scaled)
					So(err, ShouldBeNil)
					have, err := got.Value.Predict(scaled)
					So(err, ShouldBeNil)
					So(have, ShouldResemble, want)
				})
			})
		})
	})
}

func TestFSStoreSwap(t *testing.T) {
	Convey("Given a store with a saved set", t, func() {
		dir := t.TempDir()
		store, err := repository.NewFSStore(dir)
		So(err, ShouldBeNil)
		So(store.Save(context.Background(), trainedSet("v1")), ShouldBeNil)

		Convey("When a newer set is saved", func() {
			So(store.Save(context.Background(), trainedSet("v2")), ShouldBeNil)

			Convey("Then Load returns the newer version", func() {
				got, err := store.Load(context.Background())
				So(err, ShouldBeNil)
				So(got.Version, ShouldEqual, "v2")
			})

			Convey("Then both set directories remain on disk", func() {
				_, err := os.Stat(filepath.Join(dir, "sets", "v1"))
				So(err, ShouldBeNil)
				_, err = os.Stat(filepath.Join(dir, "sets", "v2"))
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestFSStorePruning(t *testing.T) {
	Convey("Given a store bounded to two historical sets", t, func() {
		dir := t.TempDir()
		store, err := repository.NewFSStore(dir, repository.WithKeepSets(2))
		So(err, ShouldBeNil)

		for _, v := range []string{"v1", "v2", "v3"} {
			So(store.Save(context.Background(), trainedSet(v)), ShouldBeNil)
			// Distinct modification times for deterministic pruning order.
			time.Sleep(10 * time.Millisecond)
		}

		Convey("Then only the latest two sets survive", func() {
			_, err := os.Stat(filepath.Join(dir, "sets", "v1"))
			So(os.IsNotExist(err), ShouldBeTrue)
			_, err = os.Stat(filepath.Join(dir, "sets", "v3"))
			So(err, ShouldBeNil)

			got, err := store.Load(context.Background())
			So(err, ShouldBeNil)
			So(got.Version, ShouldEqual, "v3")
		})
	})
}

func TestFSStoreInvalidSet(t *testing.T) {
	Convey("Given a store and an incomplete artifact set", t, func() {
		store, err := repository.NewFSStore(t.TempDir())
		So(err, ShouldBeNil)

		set := trainedSet("v1")
		set.Churn = nil

		Convey("Then Save rejects it", func() {
			err := store.Save(context.Background(), set)
			So(errors.Is(err, repository.ErrInvalidSet), ShouldBeTrue)
			So(store.Exists(context.Background()), ShouldBeFalse)
		})
	})
}
