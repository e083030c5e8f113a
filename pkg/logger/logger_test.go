package logger_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/jkc55555/betsup-engine/pkg/logger"
)

func TestLogger(t *testing.T) {
	Convey("Given the logger package", t, func() {
		Convey("When the global logger is fetched before Init", func() {
			l := logger.Get()

			Convey("Then it is a usable discard logger", func() {
				So(l, ShouldNotBeNil)
				So(func() {
					l.Info(context.Background(), "msg", logger.String("k", "v"))
				}, ShouldNotPanic)
			})
		})

		Convey("When the logger is initialized", func() {
			So(logger.Init(), ShouldBeNil)
			l := logger.Get().Named("test")

			Convey("Then all levels log without panicking", func() {
				ctx := context.Background()
				So(func() {
					l.Debug(ctx, "debug", logger.Int("n", 1))
					l.Info(ctx, "info", logger.Bool("ok", true))
					l.Warn(ctx, "warn", logger.Uint64("gen", 7), logger.Int64("offset", -3))
					l.Error(ctx, "error", logger.Error(nil))
				}, ShouldNotPanic)
			})
		})

		Convey("When log levels are parsed", func() {
			Convey("Then known levels are accepted", func() {
				So(logger.SetLevelString("debug"), ShouldBeNil)
				So(logger.SetLevelString("WARNING"), ShouldBeNil)
				So(logger.SetLevelString(""), ShouldBeNil)
			})

			Convey("And unknown levels are rejected", func() {
				So(logger.SetLevelString("loud"), ShouldNotBeNil)
			})
		})
	})
}
