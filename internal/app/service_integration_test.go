package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	repository "github.com/okian/fieldpulse/internal/adapters/repository"
	service "github.com/okian/fieldpulse/internal/app"
	"github.com/okian/fieldpulse/internal/domain/cashflow"
	"github.com/okian/fieldpulse/internal/domain/model"
	"github.com/okian/fieldpulse/internal/domain/performance"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleSnapshot() repository.Snapshot {
	day := func(n int) time.Time { return fixedNow.AddDate(0, 0, n) }
	hours := func(v float64) *float64 { return &v }
	issued, due := day(-40), day(-10)
	return repository.Snapshot{
		Technicians: []model.Technician{
			{ID: "t-alice", Name: "Alice", Role: model.RoleLead, Active: true},
			{ID: "t-bob", Name: "Bob", Role: model.RoleTechnician, Active: true},
		},
		Projects: []model.Project{
			{ID: "p1", Status: model.StatusCompleted, Date: day(-45), AssignedTechnicianID: "t-alice",
				Quote: model.Quote{Total: amount(3000)}, ActualHours: hours(3), ClientEmail: "a@example.com",
				Invoice: &model.Invoice{Number: "INV-1", Amount: 3000, IssuedDate: issued, DueDate: &due}},
			{ID: "p2", Status: model.StatusCompleted, Date: day(-12), AssignedTechnicianID: "t-bob",
				Quote: model.Quote{Total: amount(1200)}, ActualHours: hours(6), Callbacks: 1},
			{ID: "p3", Status: model.StatusScheduled, Date: day(-2), AssignedTechnicianID: "t-bob",
				Quote: model.Quote{Total: amount(800)}},
			{ID: "p4", Status: model.StatusQuoted, Date: day(-30), Quote: model.Quote{Total: amount(2500)}},
			{ID: "p5", Status: model.StatusCompleted, Date: day(-5), AssignedTechnicianID: "t-ghost-123456789",
				Quote: model.Quote{Total: amount(400)}},
		},
		Goals: []model.BusinessGoal{
			{ID: "g1", GoalType: model.GoalProjectsCompleted, PeriodType: model.PeriodQuarterly, TargetValue: 6, Year: 2025, Quarter: 2},
		},
	}
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service loaded with a snapshot", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithClock(func() time.Time { return fixedNow }),
			service.WithCashFlowDefaults(60, 500, 1000, 30),
		)
		snap := sampleSnapshot()
		So(svc.Load(ctx, snap), ShouldBeNil)

		Convey("Then every record is stored", func() {
			stats := svc.GetStats(ctx)
			So(stats["projects"], ShouldEqual, 5)
			So(stats["technicians"], ShouldEqual, 2)
			So(stats["goals"], ShouldEqual, 1)
		})

		Convey("When the team is evaluated", func() {
			res := svc.TeamPerformance(ctx, service.TeamRequest{})

			Convey("Then it matches a direct evaluation and includes the unrostered technician", func() {
				So(res, ShouldResemble, performance.Evaluate(snap.Projects, snap.Technicians, fixedNow))
				So(len(res.Technicians), ShouldEqual, 3)
				names := []string{}
				for _, tech := range res.Technicians {
					names = append(names, tech.Name)
				}
				So(names, ShouldContain, model.PlaceholderName("t-ghost-123456789"))
			})
		})

		Convey("When cash flow is forecast", func() {
			res := svc.CashFlow(ctx, service.CashFlowRequest{})

			Convey("Then the configured defaults are applied", func() {
				want := cashflow.Forecast(snap.Projects, fixedNow,
					cashflow.WithHorizon(60), cashflow.WithWeeklyOutflow(500),
					cashflow.WithOpeningBalance(1000), cashflow.WithDefaultTerms(30))
				So(res, ShouldResemble, want)
				So(res.Horizon, ShouldEqual, 60)
				So(res.TotalOutstandingAR, ShouldEqual, 3000)
			})

			Convey("And a requested horizon snaps to a supported one", func() {
				So(svc.CashFlow(ctx, service.CashFlowRequest{Horizon: 80}).Horizon, ShouldEqual, 90)
			})
		})

		Convey("When quarterly progress is requested", func() {
			got, err := svc.GoalProgress(ctx, service.GoalRequest{
				GoalType: model.GoalProjectsCompleted, PeriodType: model.PeriodQuarterly,
			})

			Convey("Then completed projects inside the quarter are counted", func() {
				So(err, ShouldBeNil)
				So(got.CurrentValue, ShouldEqual, 3)
				So(got.Progress, ShouldEqual, 50)
			})
		})

		Convey("When calculators run concurrently with writes", func() {
			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(3)
				go func() {
					defer wg.Done()
					_ = svc.PipelineForecast(ctx, service.PipelineRequest{})
				}()
				go func() {
					defer wg.Done()
					_ = svc.TeamPerformance(ctx, service.TeamRequest{})
				}()
				go func(i int) {
					defer wg.Done()
					_, _ = svc.PutProject(ctx, model.Project{Status: model.StatusDraft, Date: fixedNow.AddDate(0, 0, -i)})
				}(i)
			}
			wg.Wait()

			Convey("Then the final forecast reflects every write", func() {
				res := svc.PipelineForecast(ctx, service.PipelineRequest{})
				So(res.Stages[0].Count, ShouldEqual, 10)
			})
		})
	})
}
