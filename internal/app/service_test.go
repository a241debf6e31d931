package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/fieldpulse/internal/adapters/cache"
	service "github.com/okian/fieldpulse/internal/app"
	"github.com/okian/fieldpulse/internal/domain/model"
	"github.com/okian/fieldpulse/internal/domain/performance"
	"github.com/okian/fieldpulse/internal/domain/pipeline"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func amount(v float64) *float64 { return &v }

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it starts empty with a store and cache", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Store(), ShouldNotBeNil)
			stats := svc.GetStats(context.Background())
			So(stats["projects"], ShouldEqual, 0)
			So(stats["revision"], ShouldEqual, uint64(0))
			So(stats["cacheSize"], ShouldEqual, int64(0))
		})
	})
}

func TestService_PipelineCache(t *testing.T) {
	Convey("Given a service with a fixed clock", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithClock(func() time.Time { return fixedNow }))
		_, err := svc.PutProject(ctx, model.Project{
			ID: "p1", Status: model.StatusQuoted, Date: fixedNow.AddDate(0, 0, -20),
			Quote: model.Quote{Total: amount(1000)},
		})
		So(err, ShouldBeNil)

		Convey("When the pipeline is forecast twice", func() {
			first := svc.PipelineForecast(ctx, service.PipelineRequest{})
			second := svc.PipelineForecast(ctx, service.PipelineRequest{})

			Convey("Then the cached result equals the computed one", func() {
				So(second, ShouldResemble, first)
				So(svc.GetStats(ctx)["cacheSize"], ShouldEqual, int64(1))
				So(first, ShouldResemble, pipeline.Forecast(svc.Projects(ctx), fixedNow))
			})
		})

		Convey("When a record is written between runs", func() {
			before := svc.PipelineForecast(ctx, service.PipelineRequest{})
			_, err := svc.PutProject(ctx, model.Project{
				ID: "p2", Status: model.StatusApproved, Date: fixedNow, Quote: model.Quote{Total: amount(500)},
			})
			So(err, ShouldBeNil)
			after := svc.PipelineForecast(ctx, service.PipelineRequest{})

			Convey("Then the new revision is computed afresh", func() {
				So(before.TotalPipelineValue, ShouldEqual, 1000)
				So(after.TotalPipelineValue, ShouldEqual, 1500)
			})
		})

		Convey("When a shorter stale threshold is requested", func() {
			def := svc.PipelineForecast(ctx, service.PipelineRequest{StaleDaysThreshold: 30})
			short := svc.PipelineForecast(ctx, service.PipelineRequest{StaleDaysThreshold: 7})

			Convey("Then the parameter takes part in the result", func() {
				So(def.StaleQuotes, ShouldBeEmpty)
				So(len(short.StaleQuotes), ShouldEqual, 1)
			})
		})

		Convey("When caching is disabled", func() {
			off := service.New(service.WithCache(cache.NewResultCache(cache.WithMaxEntries(0))))
			res := off.PipelineForecast(ctx, service.PipelineRequest{Now: fixedNow})

			Convey("Then results are still produced", func() {
				So(len(res.Stages), ShouldEqual, 4)
				So(off.GetStats(ctx)["cacheSize"], ShouldEqual, int64(0))
			})
		})
	})
}

func TestService_GoalProgress(t *testing.T) {
	Convey("Given a service with a monthly revenue goal", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithClock(func() time.Time { return fixedNow }))
		_, err := svc.PutGoal(ctx, model.BusinessGoal{
			ID: "g1", GoalType: model.GoalRevenue, PeriodType: model.PeriodMonthly,
			TargetValue: 10000, Year: 2025, Month: 6,
		})
		So(err, ShouldBeNil)
		_, err = svc.PutProject(ctx, model.Project{
			ID: "p1", Status: model.StatusCompleted, Date: fixedNow.AddDate(0, 0, -3),
			Quote: model.Quote{Total: amount(4000)},
		})
		So(err, ShouldBeNil)

		Convey("When progress is requested for the current period", func() {
			got, err := svc.GoalProgress(ctx, service.GoalRequest{
				GoalType: model.GoalRevenue, PeriodType: model.PeriodMonthly,
			})

			Convey("Then the period defaults to the month of now", func() {
				So(err, ShouldBeNil)
				So(got.Goal.ID, ShouldEqual, "g1")
				So(got.CurrentValue, ShouldEqual, 4000)
				So(got.Progress, ShouldEqual, 40)
			})
		})

		Convey("When the same instant is asked for in another zone", func() {
			req := service.GoalRequest{GoalType: model.GoalRevenue, PeriodType: model.PeriodMonthly}
			utc, err := svc.GoalProgress(ctx, req)
			So(err, ShouldBeNil)
			req.Now = fixedNow.In(time.FixedZone("+13", 13*3600))
			east, err := svc.GoalProgress(ctx, req)
			So(err, ShouldBeNil)
			fresh, err := service.New(
				service.WithStore(svc.Store()),
				service.WithCache(cache.NewResultCache(cache.WithMaxEntries(0))),
			).GoalProgress(ctx, req)
			So(err, ShouldBeNil)

			Convey("Then the period boundaries follow that zone", func() {
				So(utc.DaysRemaining, ShouldEqual, 15)
				So(east.DaysRemaining, ShouldEqual, 14)
				So(east, ShouldResemble, fresh)
			})
		})

		Convey("When no goal matches", func() {
			got, err := svc.GoalProgress(ctx, service.GoalRequest{
				GoalType: model.GoalNewClients, PeriodType: model.PeriodMonthly,
			})

			Convey("Then ErrGoalNotFound is returned", func() {
				So(got, ShouldBeNil)
				So(errors.Is(err, service.ErrGoalNotFound), ShouldBeTrue)
			})

			Convey("And asking again still misses", func() {
				_, err := svc.GoalProgress(ctx, service.GoalRequest{
					GoalType: model.GoalNewClients, PeriodType: model.PeriodMonthly,
				})
				So(errors.Is(err, service.ErrGoalNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_CachedResultsAreOwned(t *testing.T) {
	Convey("Given a service with one technician and cached views", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithClock(func() time.Time { return fixedNow }))
		_, err := svc.PutTechnician(ctx, model.Technician{ID: "t1", Name: "Sam", Role: model.RoleLead, Active: true})
		So(err, ShouldBeNil)
		_, err = svc.PutProject(ctx, model.Project{
			ID: "p1", Status: model.StatusCompleted, Date: fixedNow.AddDate(0, 0, -5),
			Quote: model.Quote{Total: amount(800)}, AssignedTechnicianID: "t1", ActualHours: amount(4),
		})
		So(err, ShouldBeNil)

		Convey("When the first caller edits its team view", func() {
			first := svc.TeamPerformance(ctx, service.TeamRequest{})
			So(first.Technicians[0].Quadrant, ShouldEqual, performance.QuadrantStar)
			So(first.Technicians[0].Badges, ShouldNotBeEmpty)
			want := first.Technicians[0].Badges[0]
			first.Technicians[0].Quadrant = performance.QuadrantDeveloping
			first.Technicians[0].Badges[0] = "edited"
			first.TopPerformer.Name = "edited"
			second := svc.TeamPerformance(ctx, service.TeamRequest{})

			Convey("Then the next caller still gets the computed view", func() {
				So(second.Technicians[0].Quadrant, ShouldEqual, performance.QuadrantStar)
				So(second.Technicians[0].Badges[0], ShouldEqual, want)
				So(second.TopPerformer.Name, ShouldEqual, "Sam")
				So(svc.GetStats(ctx)["cacheSize"], ShouldEqual, int64(1))
			})
		})

		Convey("When the first caller edits its pipeline view", func() {
			first := svc.PipelineForecast(ctx, service.PipelineRequest{})
			first.Stages[0].Count = 99
			second := svc.PipelineForecast(ctx, service.PipelineRequest{})

			Convey("Then the cached stages are untouched", func() {
				So(second.Stages[0].Count, ShouldEqual, 0)
			})
		})
	})
}

func TestService_Records(t *testing.T) {
	Convey("Given an empty service", t, func() {
		ctx := context.Background()
		svc := service.New()

		Convey("When an invalid technician is stored", func() {
			_, err := svc.PutTechnician(ctx, model.Technician{Role: model.RoleLead})

			Convey("Then it is rejected", func() {
				So(err, ShouldNotBeNil)
				So(svc.Technicians(ctx), ShouldBeEmpty)
			})
		})

		Convey("When valid records are stored", func() {
			tech, err := svc.PutTechnician(ctx, model.Technician{Name: "Dana", Role: model.RoleTechnician, Active: true})
			So(err, ShouldBeNil)

			Convey("Then they are listed with generated ids", func() {
				So(tech.ID, ShouldNotBeEmpty)
				So(len(svc.Technicians(ctx)), ShouldEqual, 1)
				So(svc.GetStats(ctx)["technicians"], ShouldEqual, 1)
			})
		})
	})
}
