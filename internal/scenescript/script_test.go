package scenescript_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/avatarpaint/internal/scenescript"
	"github.com/smartystreets/goconvey/convey"
)

const paintScene = `
avatars:
  - name: alice
    id: 6f1c2b9e-3d4a-4c5b-9e8f-0a1b2c3d4e5f
    materials:
      - {name: skin, tint: "#e6b380", emissive: 0}
      - {name: hair, tint: "#1a1a1a", emissive: 2}
  - name: bob
    handle: Bobby
    materials:
      - {name: skin, tint: "#804020"}
steps:
  - {action: join, avatar: alice}
  - {action: join, avatar: bob}
  - {action: Enter, avatar: alice, handle: red-pool}
  - {action: flush, wait: 10ms}
  - {action: click, avatar: bob, handle: blue-button}
  - {action: hide, avatar: bob}
  - {action: leave, avatar: alice}
`

func TestParse(t *testing.T) {
	convey.Convey("Given a paint scene", t, func() {
		convey.Convey("When it is parsed", func() {
			s, err := scenescript.Parse(strings.NewReader(paintScene))

			convey.Convey("Then the cast and steps are decoded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(s.Avatars, convey.ShouldHaveLength, 2)
				convey.So(s.Avatars[0].Materials[1].Emissive, convey.ShouldEqual, 2)
				convey.So(s.Avatars[1].Handle, convey.ShouldEqual, "Bobby")
				convey.So(s.Steps, convey.ShouldHaveLength, 7)
				convey.So(s.Steps[2].Action, convey.ShouldEqual, scenescript.ActionEnter)
				convey.So(s.Steps[3].Wait, convey.ShouldEqual, 10*time.Millisecond)
			})
		})

		convey.Convey("When it is loaded from a file", func() {
			path := filepath.Join(t.TempDir(), "scene.yaml")
			convey.So(os.WriteFile(path, []byte(paintScene), 0o600), convey.ShouldBeNil)
			s, err := scenescript.Load(path)

			convey.So(err, convey.ShouldBeNil)
			convey.So(s.Steps, convey.ShouldHaveLength, 7)
		})

		convey.Convey("When the file is missing", func() {
			_, err := scenescript.Load(filepath.Join(t.TempDir(), "nope.yaml"))
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the document is empty", func() {
			s, err := scenescript.Parse(strings.NewReader(""))
			convey.So(err, convey.ShouldBeNil)
			convey.So(s.Steps, convey.ShouldBeEmpty)
		})
	})
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"unknown key":        "avatars: []\nactors: []\n",
		"nameless avatar":    "avatars:\n  - handle: x\n",
		"duplicate avatar":   "avatars:\n  - name: a\n  - name: a\n",
		"bad tint":           "avatars:\n  - name: a\n    materials: [{tint: pink}]\n",
		"bad id":             "avatars:\n  - name: a\n    id: nope\n",
		"unknown avatar":     "steps:\n  - {action: join, avatar: ghost}\n",
		"joined twice":       "avatars: [{name: a}]\nsteps:\n  - {action: join, avatar: a}\n  - {action: join, avatar: a}\n",
		"not joined":         "avatars: [{name: a}]\nsteps:\n  - {action: enter, avatar: a, handle: pool}\n",
		"acts after leave":   "avatars: [{name: a}]\nsteps:\n  - {action: join, avatar: a}\n  - {action: leave, avatar: a}\n  - {action: show, avatar: a}\n",
		"missing handle":     "avatars: [{name: a}]\nsteps:\n  - {action: join, avatar: a}\n  - {action: click, avatar: a}\n",
		"unknown action":     "avatars: [{name: a}]\nsteps:\n  - {action: join, avatar: a}\n  - {action: dance, avatar: a}\n",
		"negative wait":      "steps:\n  - {action: flush, wait: -1s}\n",
		"malformed duration": "steps:\n  - {action: flush, wait: soon}\n",
	}

	convey.Convey("Given invalid scripts", t, func() {
		for name, doc := range cases {
			convey.Convey("When the script has "+name, func() {
				_, err := scenescript.Parse(strings.NewReader(doc))
				convey.So(errors.Is(err, scenescript.ErrInvalidScript), convey.ShouldBeTrue)
			})
		}
	})

	convey.Convey("Given an avatar that rejoins after leaving", t, func() {
		doc := "avatars: [{name: a}]\nsteps:\n  - {action: join, avatar: a}\n  - {action: leave, avatar: a}\n  - {action: join, avatar: a}\n"
		_, err := scenescript.Parse(strings.NewReader(doc))
		convey.So(err, convey.ShouldBeNil)
	})
}
