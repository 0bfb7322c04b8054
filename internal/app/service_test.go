package service_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/okian/avatarpaint/internal/adapters/scene"
	service "github.com/okian/avatarpaint/internal/app"
	"github.com/okian/avatarpaint/internal/config"
	"github.com/okian/avatarpaint/internal/domain/model"
	"github.com/okian/avatarpaint/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func paintConfig() config.Paint {
	p := config.New(context.Background()).Paint
	p.Volumes.PaintTriggers = []string{"red-pool"}
	p.Volumes.PaintColors = []string{"#ff0000"}
	p.Volumes.RandomTrigger = "random-pool"
	p.Volumes.CleanserTrigger = "shower"
	p.Buttons.PaintButtons = []string{"blue-button"}
	p.Buttons.PaintPrompts = []string{"Paint blue"}
	p.Buttons.PaintColors = []string{"#0000ff"}
	p.Buttons.CleanserButton = "cleanser-button"
	return p
}

func avatar(handle string) scene.AvatarSpec {
	return scene.AvatarSpec{
		Handle: handle,
		Materials: []scene.MaterialSpec{
			{Name: "skin", Props: model.MaterialProps{Tint: model.Opaque(0.9, 0.7, 0.5), EmissiveIntensity: 0}},
			{Name: "hair", Props: model.MaterialProps{Tint: model.Opaque(0.1, 0.1, 0.1), EmissiveIntensity: 2}},
		},
	}
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		svc := service.New(service.WithQueueSize(16), service.WithPaint(paintConfig()))

		Convey("When it has not been started", func() {
			_, err := svc.Join(ctx, avatar("alice"))

			Convey("Then scene operations are refused", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, false)
				So(svc.Stop(ctx), ShouldBeNil)
			})
		})

		Convey("When starting the service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			defer func() { _ = svc.Stop(ctx) }()

			Convey("Then both components are armed", func() {
				comps := svc.Components()
				So(comps, ShouldHaveLength, 2)
				So(comps[0].Name, ShouldEqual, service.VolumesComponent)
				So(comps[0].State, ShouldEqual, "armed")
				So(comps[1].Name, ShouldEqual, service.ButtonsComponent)
				So(comps[1].State, ShouldEqual, "armed")
				So(svc.GetStats()["started"], ShouldEqual, true)
			})

			Convey("And then stopping it", func() {
				So(svc.Stop(ctx), ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Paint(t *testing.T) {
	Convey("Given a started service with a joined avatar", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		svc := service.New(service.WithPaint(paintConfig()))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		id, err := svc.Join(ctx, avatar("alice"))
		So(err, ShouldBeNil)
		So(svc.Flush(ctx), ShouldBeNil)

		Convey("Then its original materials are cached", func() {
			snap, ok := svc.Snapshot(ctx, id)
			So(ok, ShouldBeTrue)
			So(snap.Len(), ShouldEqual, 2)
		})

		Convey("When it walks into the paint trigger", func() {
			So(svc.Enter(ctx, id, "red-pool"), ShouldBeNil)
			So(svc.Flush(ctx), ShouldBeNil)

			Convey("Then every material is red and emissive", func() {
				v, ok := svc.Avatar(id)
				So(ok, ShouldBeTrue)
				for _, m := range v.Materials {
					So(m.Tint, ShouldEqual, "#ff0000")
					So(m.Emissive, ShouldEqual, 32)
				}
			})

			Convey("And clicks the cleanser button", func() {
				So(svc.Click(ctx, id, "cleanser-button"), ShouldBeNil)
				So(svc.Flush(ctx), ShouldBeNil)

				Convey("Then the originals are back", func() {
					v, _ := svc.Avatar(id)
					So(v.Materials[0].Tint, ShouldEqual, model.Opaque(0.9, 0.7, 0.5).Hex())
					So(v.Materials[1].Emissive, ShouldEqual, 2)
					So(v.Materials[1].Transition.Duration, ShouldEqual, "250ms")
				})
			})
		})

		Convey("When it is hidden and clicks the paint button", func() {
			So(svc.SetVisibility(ctx, id, false), ShouldBeNil)
			So(svc.Click(ctx, id, "blue-button"), ShouldBeNil)
			So(svc.Flush(ctx), ShouldBeNil)

			Convey("Then nothing changes and the miss is counted", func() {
				v, _ := svc.Avatar(id)
				So(v.Materials[0].Tint, ShouldNotEqual, "#0000ff")
				So(svc.Outcomes()["hidden"], ShouldEqual, 1)
			})
		})

		Convey("When it leaves", func() {
			So(svc.Leave(ctx, id), ShouldBeNil)
			So(svc.Flush(ctx), ShouldBeNil)

			Convey("Then the cache and scene forget it", func() {
				_, ok := svc.Snapshot(ctx, id)
				So(ok, ShouldBeFalse)
				_, ok = svc.Avatar(id)
				So(ok, ShouldBeFalse)
				So(svc.GetStats()["cachedAvatars"], ShouldEqual, int64(0))
			})
		})

		Convey("When an unknown avatar is moved", func() {
			err := svc.Enter(ctx, model.NewAvatarID(), "red-pool")
			So(errors.Is(err, scene.ErrUnknownAvatar), ShouldBeTrue)
		})
	})
}

func TestService_Misconfigured(t *testing.T) {
	Convey("Given paint triggers without matching colors", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		p := paintConfig()
		p.Volumes.PaintTriggers = []string{"a", "b", "c"}
		p.Volumes.PaintColors = []string{"#ff0000", "#00ff00"}
		p.Volumes.Cleanse.Curve = "wobbly"
		svc := service.New(service.WithPaint(p))

		Convey("When the service starts", func() {
			So(svc.Start(ctx), ShouldBeNil)
			defer func() { _ = svc.Stop(ctx) }()

			Convey("Then only the volume component is disabled", func() {
				comps := svc.Components()
				So(comps[0].State, ShouldEqual, "disabled")
				So(comps[0].Bound, ShouldEqual, 0)
				So(comps[1].State, ShouldEqual, "armed")
			})
		})
	})

	Convey("Given no paint configuration", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithPaint(config.Paint{}))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("Then no components are reported", func() {
			So(svc.Components(), ShouldBeEmpty)
		})
	})
}
