package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	repository "github.com/okian/fieldpulse/internal/adapters/repository"
	"github.com/okian/fieldpulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestMemoryStore_Projects(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore(repository.WithIDGenerator(sequence()))

		Convey("Then it starts at revision zero", func() {
			So(s.Revision(), ShouldEqual, 0)
			So(s.Count(ctx), ShouldResemble, repository.Counts{})
		})

		Convey("When storing a project without an id", func() {
			total := 1200.0
			p, err := s.PutProject(ctx, model.Project{Name: "Boiler", Status: model.StatusQuoted, Quote: model.Quote{Total: &total}})

			Convey("Then an id is assigned and the revision moves", func() {
				So(err, ShouldBeNil)
				So(p.ID, ShouldEqual, "id-1")
				So(s.Revision(), ShouldEqual, 1)
				So(s.Count(ctx).Projects, ShouldEqual, 1)
			})

			Convey("And the stored copy is detached from the caller", func() {
				total = 99
				got, err := s.Project(ctx, "id-1")
				So(err, ShouldBeNil)
				So(*got.Quote.Total, ShouldEqual, 1200)
			})

			Convey("And replacing it keeps the insertion order", func() {
				_, _ = s.PutProject(ctx, model.Project{ID: "b", Status: model.StatusDraft})
				_, _ = s.PutProject(ctx, model.Project{ID: "id-1", Status: model.StatusApproved})
				snap := s.Snapshot(ctx)
				So(len(snap.Projects), ShouldEqual, 2)
				So(snap.Projects[0].ID, ShouldEqual, "id-1")
				So(snap.Projects[0].Status, ShouldEqual, model.StatusApproved)
				So(snap.Revision, ShouldEqual, 3)
			})

			Convey("And deleting it removes it", func() {
				So(s.DeleteProject(ctx, "id-1"), ShouldBeNil)
				_, err := s.Project(ctx, "id-1")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When storing an invalid project", func() {
			_, err := s.PutProject(ctx, model.Project{Status: "lost"})

			Convey("Then it is rejected without a write", func() {
				So(errors.Is(err, repository.ErrInvalidRecord), ShouldBeTrue)
				So(errors.Is(err, model.ErrInvalid), ShouldBeTrue)
				So(s.Revision(), ShouldEqual, 0)
			})
		})

		Convey("When deleting an unknown project", func() {
			err := s.DeleteProject(ctx, "nope")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestMemoryStore_TechniciansAndGoals(t *testing.T) {
	Convey("Given a store with a technician and a goal", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()
		tech, err := s.PutTechnician(ctx, model.Technician{Name: "Alice", Role: model.RoleLead, Active: true})
		So(err, ShouldBeNil)
		goal, err := s.PutGoal(ctx, model.BusinessGoal{
			GoalType: model.GoalRevenue, PeriodType: model.PeriodMonthly, TargetValue: 5000, Year: 2025, Month: 6,
		})
		So(err, ShouldBeNil)

		Convey("Then both get generated ids", func() {
			So(tech.ID, ShouldNotBeEmpty)
			So(goal.ID, ShouldNotBeEmpty)
			So(s.Count(ctx), ShouldResemble, repository.Counts{Technicians: 1, Goals: 1})
		})

		Convey("When the technician is deleted", func() {
			_, _ = s.PutProject(ctx, model.Project{ID: "p1", Status: model.StatusCompleted, AssignedTechnicianID: tech.ID})
			So(s.DeleteTechnician(ctx, tech.ID), ShouldBeNil)

			Convey("Then projects keep their weak reference", func() {
				p, err := s.Project(ctx, "p1")
				So(err, ShouldBeNil)
				So(p.AssignedTechnicianID, ShouldEqual, tech.ID)
				So(s.Snapshot(ctx).Technicians, ShouldBeEmpty)
			})
		})

		Convey("When a technician with an expiring certification is stored", func() {
			expires := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
			in := model.Technician{
				ID: "t9", Name: "Bea", Role: model.RoleTechnician,
				Skills:         []string{"hvac"},
				Certifications: []model.Certification{{Name: "EPA 608", ExpiresAt: &expires}},
			}
			_, err := s.PutTechnician(ctx, in)
			So(err, ShouldBeNil)
			expires = expires.AddDate(5, 0, 0)
			in.Skills[0] = "edited"

			Convey("Then the stored copy keeps its own expiry and skills", func() {
				var got model.Technician
				for _, t := range s.Snapshot(ctx).Technicians {
					if t.ID == "t9" {
						got = t
					}
				}
				So(got.Skills, ShouldResemble, []string{"hvac"})
				So(*got.Certifications[0].ExpiresAt, ShouldEqual, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
			})
		})

		Convey("When a goal has no month", func() {
			_, err := s.PutGoal(ctx, model.BusinessGoal{GoalType: model.GoalRevenue, PeriodType: model.PeriodMonthly, Year: 2025})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, repository.ErrInvalidRecord), ShouldBeTrue)
			})
		})
	})
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	Convey("Given concurrent writers and readers", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				_, _ = s.PutProject(ctx, model.Project{ID: fmt.Sprintf("p-%d", i), Status: model.StatusDraft, Date: time.Now()})
			}(i)
			go func() {
				defer wg.Done()
				_ = s.Snapshot(ctx)
			}()
		}
		wg.Wait()

		Convey("Then every write is visible", func() {
			So(s.Count(ctx).Projects, ShouldEqual, 20)
			So(s.Revision(), ShouldEqual, 20)
		})
	})
}
