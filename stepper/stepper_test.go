package stepper_test

import (
	"bytes"
	"math"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarelg/Computational-Physics/internal/physics"
	"github.com/sarelg/Computational-Physics/stepper"
	"gonum.org/v1/gonum/spatial/r3"
)

func grid(n int, fill float64) []float64 {
	s := make([]float64, n*n)
	for i := range s {
		s[i] = fill
	}
	return s
}

func maxOf(s []float64) float64 {
	m := math.Inf(-1)
	for _, v := range s {
		m = math.Max(m, v)
	}
	return m
}

// figureEight is the Chenciner-Montgomery choreography with G = m = 1.
func figureEight() []float64 {
	return []float64{
		0.97000436, -0.24308753, 0,
		-0.97000436, 0.24308753, 0,
		0, 0, 0,
		0.466203685, 0.43236573, 0,
		0.466203685, 0.43236573, 0,
		-0.93240737, -0.86473146, 0,
	}
}

var _ = Describe("Diffusion", func() {
	params := []float64{1, 1, 1, 5, 5}

	Context("with a hot centre on a cold 5x5 grid", func() {
		var in, out []float64

		BeforeEach(func() {
			in = grid(5, 0)
			in[2*5+2] = 100

			var err error
			out, err = stepper.NextDiffusion(in, 0.01, params)
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps the state length", func() {
			Expect(out).To(HaveLen(len(in)))
		})

		It("cools the centre", func() {
			Expect(out[12]).To(BeNumerically("<", 100))
			Expect(out[12]).To(BeNumerically(">", 90))
		})

		It("warms the four neighbours symmetrically", func() {
			n := out[1*5+2]
			Expect(n).To(BeNumerically(">", 0))
			Expect(n).To(BeNumerically("<", out[12]))
			for _, idx := range []int{3*5 + 2, 2*5 + 1, 2*5 + 3} {
				Expect(out[idx]).To(BeNumerically("~", n, 1e-9))
			}
		})

		It("does not raise the maximum", func() {
			Expect(maxOf(out)).To(BeNumerically("<=", maxOf(in)))
		})

		It("leaves the boundary untouched", func() {
			for i := 0; i < 5; i++ {
				for j := 0; j < 5; j++ {
					if i == 0 || j == 0 || i == 4 || j == 4 {
						Expect(out[i*5+j]).To(Equal(in[i*5+j]))
					}
				}
			}
		})

		It("does not modify the input", func() {
			Expect(in[12]).To(Equal(100.0))
		})
	})

	It("preserves heat-bath edges over long steps", func() {
		n := 12
		in := grid(n, 0)
		for i := 0; i < n; i++ {
			in[i*n] = 100
			in[i*n+n-1] = -100
			in[i] = 200
			in[(n-1)*n+i] = -200
		}
		p := []float64{2, 1, 1, float64(n), float64(n)}

		out := in
		var err error
		for frame := 0; frame < 5; frame++ {
			out, err = stepper.NextDiffusion(out, 0.5, p)
			Expect(err).NotTo(HaveOccurred())
		}

		d, _ := physics.NewDiffusion(p)
		Expect(d.Boundary(out)).To(Equal(d.Boundary(in)))
		for _, v := range out {
			Expect(v).To(BeNumerically(">=", -200-1e-6))
			Expect(v).To(BeNumerically("<=", 200+1e-6))
		}
	})

	It("returns a uniform field unchanged", func() {
		in := grid(6, 42.5)
		out, err := stepper.NextDiffusion(in, 3, []float64{2, 1, 1, 6, 6})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(in))
	})

	It("returns a uniform field unchanged over a very long step", func() {
		in := grid(5, 42.5)
		out, err := stepper.NextDiffusion(in, 1e6, []float64{1, 1, 1, 5, 5})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(in))
	})

	It("supports rectangular grids", func() {
		in := make([]float64, 3*7)
		in[1*7+3] = 1
		out, err := stepper.NextDiffusion(in, 0.05, []float64{1, 1, 1, 3, 7})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveLen(21))
		Expect(out[1*7+2]).To(BeNumerically(">", 0))
		Expect(out[0*7+3]).To(Equal(0.0))
	})

	DescribeTable("rejects bad input",
		func(state []float64, dt float64, p []float64, want error) {
			_, err := stepper.NextDiffusion(state, dt, p)
			Expect(err).To(MatchError(want))
		},
		Entry("zero dt", grid(5, 1), 0.0, []float64{1, 1, 1, 5, 5}, stepper.ErrInvalidArgument),
		Entry("negative dt", grid(5, 1), -0.1, []float64{1, 1, 1, 5, 5}, stepper.ErrInvalidArgument),
		Entry("NaN dt", grid(5, 1), math.NaN(), []float64{1, 1, 1, 5, 5}, stepper.ErrInvalidArgument),
		Entry("wrong length", grid(4, 1), 0.1, []float64{1, 1, 1, 5, 5}, stepper.ErrInvalidShape),
		Entry("missing params", grid(5, 1), 0.1, []float64{1, 1, 1, 5}, stepper.ErrInvalidArgument),
		Entry("extra params", grid(5, 1), 0.1, []float64{1, 1, 1, 5, 5, 9}, stepper.ErrInvalidArgument),
		Entry("fractional size", grid(5, 1), 0.1, []float64{1, 1, 1, 5.5, 5}, stepper.ErrInvalidArgument),
		Entry("NaN in state", append(grid(5, 1)[:24], math.NaN()), 0.1, []float64{1, 1, 1, 5, 5}, stepper.ErrInvalidArgument),
	)
})

var _ = Describe("Gravity", func() {
	unit := []float64{1, 1, 1, 1}

	It("conserves energy and momentum along the figure eight", func() {
		tb, _ := physics.NewThreeBody(unit)
		in := figureEight()

		out, err := stepper.NextGravity(in, 0.5, unit)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveLen(18))

		e0, e1 := tb.Energy(in), tb.Energy(out)
		Expect(math.Abs((e1 - e0) / e0)).To(BeNumerically("<", 1e-7))

		dp := r3.Sub(tb.Momentum(out), tb.Momentum(in))
		Expect(r3.Norm(dp)).To(BeNumerically("<", 1e-10))

		dl := r3.Sub(tb.AngularMomentum(out), tb.AngularMomentum(in))
		Expect(r3.Norm(dl)).To(BeNumerically("<", 1e-7))
	})

	It("advances the sun, earth and moon by one day", func() {
		p := []float64{6.67430e-11, 1.9884e30, 5.9723e24, 7.349e22}
		tb, _ := physics.NewThreeBody(p)
		in := []float64{
			0, 0, 0,
			1.4960e11, 0, 0,
			1.4960e11, 3.850e8, 0,
			0, 0, 0,
			0, 29780, 0,
			-1022, 29780, 0,
		}

		out, err := stepper.NextGravity(in, 86400, p)
		Expect(err).NotTo(HaveOccurred())

		// Earth travels roughly v*dt along +y.
		Expect(out[4]).To(BeNumerically("~", 29780*86400, 0.01*29780*86400))

		e0, e1 := tb.Energy(in), tb.Energy(out)
		Expect(math.Abs((e1 - e0) / e0)).To(BeNumerically("<", 1e-6))
	})

	It("is a fixed point at rest without gravity", func() {
		in := figureEight()
		for i := 9; i < 18; i++ {
			in[i] = 0
		}
		out, err := stepper.NextGravity(in, 10, []float64{0, 1, 1, 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(in))
	})

	It("moves bodies in straight lines without gravity", func() {
		in := figureEight()
		out, err := stepper.NextGravity(in, 2, []float64{0, 1, 1, 1})
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < 9; i++ {
			Expect(out[i]).To(BeNumerically("~", in[i]+2*in[9+i], 1e-9))
			Expect(out[9+i]).To(Equal(in[9+i]))
		}
	})

	It("fails on coincident bodies", func() {
		in := figureEight()
		copy(in[3:6], in[0:3])
		_, err := stepper.NextGravity(in, 0.1, unit)
		Expect(err).To(MatchError(stepper.ErrSingularity))
	})

	DescribeTable("rejects bad input",
		func(state []float64, dt float64, p []float64, want error) {
			_, err := stepper.NextGravity(state, dt, p)
			Expect(err).To(MatchError(want))
		},
		Entry("zero dt", figureEight(), 0.0, []float64{1, 1, 1, 1}, stepper.ErrInvalidArgument),
		Entry("negative dt", figureEight(), -1.0, []float64{1, 1, 1, 1}, stepper.ErrInvalidArgument),
		Entry("short state", figureEight()[:17], 0.1, []float64{1, 1, 1, 1}, stepper.ErrInvalidShape),
		Entry("trailing params", figureEight(), 0.1, []float64{1, 1, 1, 1, 1.5e11}, stepper.ErrInvalidArgument),
		Entry("negative mass", figureEight(), 0.1, []float64{1, 1, -1, 1}, stepper.ErrInvalidArgument),
	)

	It("is deterministic across concurrent callers", func() {
		want, err := stepper.NextGravity(figureEight(), 0.3, unit)
		Expect(err).NotTo(HaveOccurred())

		results := make([][]float64, 8)
		var wg sync.WaitGroup
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], _ = stepper.NextGravity(figureEight(), 0.3, unit)
			}(i)
		}
		wg.Wait()

		for _, got := range results {
			Expect(got).To(Equal(want))
		}
	})
})

var _ = Describe("Driver", func() {
	It("rejects unknown models", func() {
		_, err := stepper.New().Next("plasma", []float64{1}, 1, nil)
		Expect(err).To(MatchError(stepper.ErrInvalidArgument))
	})

	It("lists registered models", func() {
		Expect(stepper.Models()).To(Equal([]string{stepper.Diffusion, stepper.Gravity}))
	})

	It("logs integrator work at debug level", func() {
		var buf bytes.Buffer
		logger := level.NewFilter(log.NewLogfmtLogger(&buf), level.AllowDebug())
		d := stepper.New(stepper.WithLogger(logger))

		_, err := d.Next(stepper.Gravity, figureEight(), 0.1, []float64{1, 1, 1, 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("model=gravity"))
		Expect(buf.String()).To(ContainSubstring("msg=\"advanced state\""))
		Expect(d.LastStats().Accepted).To(BeNumerically(">", 0))
	})

	It("applies tolerance overrides", func() {
		in := figureEight()
		loose := stepper.New(stepper.WithTolerance(stepper.Gravity, stepper.Tolerance{Rtol: 1e-3, Atol: 1e-3}))
		strict := stepper.New()

		_, err := loose.Next(stepper.Gravity, in, 1, []float64{1, 1, 1, 1})
		Expect(err).NotTo(HaveOccurred())
		_, err = strict.Next(stepper.Gravity, in, 1, []float64{1, 1, 1, 1})
		Expect(err).NotTo(HaveOccurred())

		Expect(loose.LastStats().Evaluations).To(BeNumerically("<", strict.LastStats().Evaluations))
	})
})
