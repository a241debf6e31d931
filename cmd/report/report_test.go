package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/okian/fieldpulse/internal/domain/goals"
	"github.com/okian/fieldpulse/internal/domain/pipeline"
	. "github.com/smartystreets/goconvey/convey"
)

const snapshotYAML = `
projects:
  - id: p1
    status: quoted
    date: 2025-05-01T00:00:00Z
    quote:
      total: 1000
  - id: p2
    status: completed
    date: 2025-06-05T00:00:00Z
    assignedTechnicianId: t1
    quote:
      total: 2500
technicians:
  - id: t1
    name: Alice
    role: lead
    active: true
goals:
  - id: g1
    goalType: revenue
    periodType: monthly
    targetValue: 5000
    year: 2025
    month: 6
`

func execute(args ...string) (string, error) {
	cmd := newReportCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReportCommand(t *testing.T) {
	Convey("Given a YAML snapshot", t, func() {
		path := filepath.Join(t.TempDir(), "snap.yaml")
		So(os.WriteFile(path, []byte(snapshotYAML), 0o600), ShouldBeNil)
		now := "--now=2025-06-15T12:00:00Z"

		Convey("When only the pipeline is requested", func() {
			out, err := execute("--snapshot", path, now, "--calculator", "pipeline")

			Convey("Then the pipeline view is printed", func() {
				So(err, ShouldBeNil)
				var res pipeline.Result
				So(json.Unmarshal([]byte(out), &res), ShouldBeNil)
				So(res.TotalPipelineValue, ShouldEqual, 1000)
				So(len(res.StaleQuotes), ShouldEqual, 1)
				So(res.StaleQuotes[0].DaysOld, ShouldEqual, 45)
			})
		})

		Convey("When goals are requested", func() {
			out, err := execute("--snapshot", path, now, "--calculator", "goals")

			Convey("Then every stored goal is reported", func() {
				So(err, ShouldBeNil)
				var res []goals.Progress
				So(json.Unmarshal([]byte(out), &res), ShouldBeNil)
				So(len(res), ShouldEqual, 1)
				So(res[0].CurrentValue, ShouldEqual, 2500)
				So(res[0].Progress, ShouldEqual, 50)
			})
		})

		Convey("When every view is requested", func() {
			out, err := execute("--snapshot", path, now)

			Convey("Then all four calculators are keyed in the output", func() {
				So(err, ShouldBeNil)
				var res map[string]json.RawMessage
				So(json.Unmarshal([]byte(out), &res), ShouldBeNil)
				So(res, ShouldContainKey, "pipeline")
				So(res, ShouldContainKey, "team")
				So(res, ShouldContainKey, "cashflow")
				So(res, ShouldContainKey, "goals")
			})
		})

		Convey("When the calculator is unknown", func() {
			_, err := execute("--snapshot", path, "--calculator", "profit")
			So(err, ShouldNotBeNil)
		})

		Convey("When the reference time is malformed", func() {
			_, err := execute("--snapshot", path, "--now", "tomorrow")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given two stored goals for the same period", t, func() {
		path := filepath.Join(t.TempDir(), "snap.yaml")
		dup := snapshotYAML + `  - id: g2
    goalType: revenue
    periodType: monthly
    targetValue: 10000
    year: 2025
    month: 6
`
		So(os.WriteFile(path, []byte(dup), 0o600), ShouldBeNil)

		Convey("When goals are requested", func() {
			out, err := execute("--snapshot", path, "--now=2025-06-15T12:00:00Z", "--calculator", "goals")

			Convey("Then each goal is reported against its own target", func() {
				So(err, ShouldBeNil)
				var res []goals.Progress
				So(json.Unmarshal([]byte(out), &res), ShouldBeNil)
				So(len(res), ShouldEqual, 2)
				So(res[0].Goal.ID, ShouldEqual, "g1")
				So(res[0].Progress, ShouldEqual, 50)
				So(res[1].Goal.ID, ShouldEqual, "g2")
				So(res[1].Progress, ShouldEqual, 25)
			})
		})
	})

	Convey("Given no snapshot flag", t, func() {
		_, err := execute()
		So(err, ShouldNotBeNil)
	})
}
