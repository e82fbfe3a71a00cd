package clips_test

import (
	"fmt"

	"github.com/kikiluvv/lazyclip/internal/clips"
	"github.com/kikiluvv/lazyclip/internal/frame"
)

func clock(duration float64) *clips.Clip {
	c, err := clips.FromFunc(func(t float64) (frame.Frame, error) {
		return frame.Solid(1, 1, t, t, t), nil
	}, duration)
	if err != nil {
		panic(err)
	}
	return c
}

func ExampleClip_Slice() {
	c := clock(4)

	rev, _ := c.Slice("::-1")
	pick, _ := c.Slice("0:1, 2:3.2")

	f, _ := rev.GetFrame(0.5)
	fmt.Printf("reversed: %.1fs, frame at 0.5 shows %.1f\n", rev.Duration(), f.Pix[0])

	f, _ = pick.GetFrame(1.1)
	fmt.Printf("picked: %.1fs, frame at 1.1 shows %.1f\n", pick.Duration(), f.Pix[0])
	// Output:
	// reversed: 4.0s, frame at 0.5 shows 3.5
	// picked: 2.2s, frame at 1.1 shows 2.1
}

func ExampleClip_Mul() {
	c, _ := clock(3).Subclip(0, 1)

	slow, _ := c.Mul(2.5)
	looped, _ := c.Loop(2.5)

	a, _ := slow.GetFrame(1.1)
	b, _ := looped.GetFrame(1.1)
	fmt.Printf("scaled %.2f, looped %.2f\n", a.Pix[0], b.Pix[0])
	// Output:
	// scaled 0.44, looped 0.10
}
