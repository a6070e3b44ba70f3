package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	service "github.com/okian/valora/internal/app"
	"github.com/okian/valora/internal/domain/model"
	"github.com/okian/valora/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

const transactionCSV = `CustomerID,Quantity,UnitPrice,InvoiceDate
1,5,10.0,9/1/2011 10:00
1,3,20.0,11/30/2011 14:30
2,1,4.5,3/15/2011 9:00
3,2,,12/1/2011 8:00
`

func waitForArtifacts(ctx context.Context, svc *service.Service) bool {
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-deadline:
			return false
		case <-time.After(50 * time.Millisecond):
			if svc.HasArtifacts(ctx) {
				return true
			}
		}
	}
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service with full integration", t, func() {
		svc := newTestService(t,
			service.WithWorkerCount(1),
			service.WithQueueSize(4),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When a training job is submitted asynchronously", func() {
			table := rfmTable(
				[4]string{"1", "10", "5", "200"},
				[4]string{"2", "120", "1", "50"},
				[4]string{"3", "30", "3", "150"},
			)

			So(svc.SeenAndRecord(ctx, "job-1"), ShouldBeFalse)
			So(svc.SubmitTraining(ctx, model.TrainingJob{ID: "job-1", Table: table}), ShouldBeTrue)

			Convey("Then the worker trains and publishes artifacts", func() {
				So(waitForArtifacts(ctx, svc), ShouldBeTrue)

				preds, err := svc.Predict(ctx, types.ModelValue, table)
				So(err, ShouldBeNil)
				So(len(preds), ShouldEqual, 3)
			})

			Convey("And a duplicate submission is caught by the job cache", func() {
				So(svc.SeenAndRecord(ctx, "job-1"), ShouldBeTrue)
			})
		})

		Convey("When training from a transaction log on disk", func() {
			path := filepath.Join(t.TempDir(), "transactions.csv")
			So(os.WriteFile(path, []byte(transactionCSV), 0o644), ShouldBeNil)

			report, trained, err := svc.TrainFromPath(ctx, path)

			Convey("Then the pipeline runs end to end", func() {
				So(err, ShouldBeNil)
				So(trained, ShouldBeTrue)
				So(report.Variant, ShouldEqual, "transaction_log")
				// Customer 1 has two transactions, so dedupe keeps both
				// distinct rows; the blank unit price is imputed.
				So(report.Rows, ShouldEqual, 4)
				So(report.CellsFilled, ShouldEqual, 1)
			})

			Convey("And churn predictions reflect the recency labels", func() {
				So(err, ShouldBeNil)

				preds, err := svc.Predict(ctx, types.ModelChurn, rfmTable(
					[4]string{"9", "5", "6", "300"},
					[4]string{"10", "260", "1", "10"},
				))
				So(err, ShouldBeNil)
				So(len(preds), ShouldEqual, 2)
			})
		})

		Convey("When training from a missing dataset path", func() {
			_, trained, err := svc.TrainFromPath(ctx, filepath.Join(t.TempDir(), "absent.csv"))

			Convey("Then the run is skipped without error", func() {
				So(err, ShouldBeNil)
				So(trained, ShouldBeFalse)
			})
		})
	})
}
