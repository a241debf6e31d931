package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf), WithFormat("json")), ShouldBeNil)
		defer func() { _ = Sync() }()

		Convey("When logging at info", func() {
			Get().Info(context.Background(), "forecast computed", String("calculator", "pipeline"), Int("projects", 3))

			Convey("Then the fields and caller are written", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, `"msg":"forecast computed"`)
				So(out, ShouldContainSubstring, `"calculator":"pipeline"`)
				So(out, ShouldContainSubstring, `"projects":3`)
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When debug is below the level", func() {
			Get().Debug(context.Background(), "hidden")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the level is lowered", func() {
			So(SetLevelString("debug"), ShouldBeNil)
			Named("store").Debug(context.Background(), "visible")

			Convey("Then debug lines appear under the group", func() {
				So(strings.Contains(buf.String(), "visible"), ShouldBeTrue)
			})
		})
	})

	Convey("Given an unknown format", t, func() {
		So(Init(WithFormat("xml")), ShouldNotBeNil)
	})

	Convey("Given an unknown level", t, func() {
		So(SetLevelString("loud"), ShouldNotBeNil)
	})
}

func TestNop(t *testing.T) {
	Convey("Given a no-op logger", t, func() {
		l := Nop()

		Convey("Then every call is safe", func() {
			So(func() {
				l.Error(context.Background(), "ignored", Error(nil))
				l.Named("x").Info(context.Background(), "ignored")
			}, ShouldNotPanic)
		})
	})
}
