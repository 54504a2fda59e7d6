package spline

import (
	"sort"

	"github.com/chewxy/math32"
)

const (
	// maxAngleSteps bounds the curvature-inversion walk per direction.
	maxAngleSteps = 64
	// maxCandidates is the degenerate-input guard: beyond this the sampler
	// falls back to fixed stepping instead of looping on pathological
	// curvature/sag combinations.
	maxCandidates = 4096
)

// Options control tessellation density.
type Options struct {
	// TessDist is the maximum chord length along the spline.
	TessDist float32
	// CurveSag is the maximum chord-to-curve error, which also serves as the
	// angular step when sampling the vertical profile.
	CurveSag float32
}

func (o Options) tessDist() float32 {
	if o.TessDist <= 0 {
		return 10
	}
	return o.TessDist
}

func (o Options) curveSag() float32 {
	if o.CurveSag <= 0 {
		return 0.1
	}
	return o.CurveSag
}

// SampleDistances returns the adaptive sample distances for a definition:
// merged vertical-profile and planar-arc candidates, welded by an adaptive
// merge distance, with the first and last sample pinned to 0 and the length
// exactly. A zero-length definition yields no samples.
func SampleDistances(def Def, opts Options) []float32 {
	return NewEvaluator(def).sampleDistances(opts)
}

func (e *Evaluator) sampleDistances(opts Options) []float32 {
	l := e.def.Length
	if l <= 0 {
		return nil
	}
	tess := opts.tessDist()
	sag := opts.curveSag()

	// Fixed increment sized to divide the length into whole segments.
	dx := l / math32.Ceil(l/tess)

	vert := e.verticalCandidates(sag, l)
	base, baseStep := e.arcCandidates(l, dx, tess, sag)

	if len(vert)+len(base) > maxCandidates {
		return fixedStep(l, dx)
	}

	cands := append(base, vert...)
	sort.Slice(cands, func(i, j int) bool { return cands[i] < cands[j] })

	mergeDist := math32.Min(math32.Min(tess, baseStep), 0.9*l)
	if len(vert) > 0 {
		mergeDist = math32.Min(mergeDist, l/float32(len(vert)))
	}

	out := weld(cands, mergeDist)
	if len(out) < 2 {
		return []float32{0, l}
	}
	// Pin the ends exactly: a welded cluster within the merge distance of an
	// end snaps onto it, anything farther keeps its place and the end is
	// inserted, so pinning never stretches an interior chord.
	if out[0] <= mergeDist {
		out[0] = 0
	} else {
		out = append(out, 0)
		copy(out[1:], out)
		out[0] = 0
	}
	if last := len(out) - 1; l-out[last] <= mergeDist {
		out[last] = l
	} else {
		out = append(out, l)
	}
	return out
}

// arcCandidates emits equal-angle samples along the planar arc, or fixed
// steps on a straight. The second return is the arc-implied merge bound:
// half the sample spacing, so float rounding of equally spaced samples can
// never weld neighbours into an over-long chord.
func (e *Evaluator) arcCandidates(l, dx, tess, sag float32) ([]float32, float32) {
	if e.def.Radius == 0 {
		return fixedStep(l, dx), 0.5 * dx
	}

	rho := math32.Abs(e.def.Radius)
	revs := math32.Min(l/rho, 2*math32.Pi)
	// Angular step from the chord-length bound and from the sag bound,
	// the latter clamped to keep acos well conditioned.
	drA := tess / rho
	drB := 2 * math32.Acos(1-clamp(sag/rho, 0.001, 0.294))
	dr := math32.Min(drA, drB)
	dr = revs / math32.Ceil(revs/dr)

	n := int(math32.Round(revs / dr))
	out := make([]float32, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, float32(i)*dr*rho)
	}
	return out, 0.5 * dr * rho
}

// verticalCandidates inverts the height curve's slope at fixed angular
// steps: for each step away from the start slope it solves slope(s) = tan
// theta in closed form, keeping roots inside (0, length). A negative
// discriminant only skips that root.
func (e *Evaluator) verticalCandidates(sag, l float32) []float32 {
	if e.c2 == 0 && e.c3 == 0 {
		return nil
	}

	theta0 := math32.Atan(e.Slope(0))
	var out []float32
	for k := 1; k <= maxAngleSteps; k++ {
		found := false
		for _, sign := range [2]float32{1, -1} {
			theta := theta0 + sign*float32(k)*sag
			if theta <= -math32.Pi/2 || theta >= math32.Pi/2 {
				continue
			}
			for _, s := range e.solveSlope(math32.Tan(theta)) {
				if s > 0 && s < l {
					out = append(out, s)
					found = true
				}
			}
		}
		if !found {
			break
		}
	}
	return out
}

// solveSlope returns the distances where the height slope equals m.
func (e *Evaluator) solveSlope(m float32) []float32 {
	if e.c3 != 0 {
		a := 3 * e.c3
		b := 2 * e.c2
		c := e.c1 - m
		disc := b*b - 4*a*c
		if disc < 0 {
			return nil
		}
		sq := math32.Sqrt(disc)
		return []float32{(-b - sq) / (2 * a), (-b + sq) / (2 * a)}
	}
	if e.c2 != 0 {
		return []float32{(m - e.c1) / (2 * e.c2)}
	}
	return nil
}

// weld collapses sorted samples closer than mergeDist into their running
// weighted average.
func weld(sorted []float32, mergeDist float32) []float32 {
	if len(sorted) == 0 {
		return nil
	}
	out := make([]float32, 0, len(sorted))
	avg := sorted[0]
	n := float32(1)
	for _, s := range sorted[1:] {
		if s-avg < mergeDist {
			avg = (avg*n + s) / (n + 1)
			n++
			continue
		}
		out = append(out, avg)
		avg = s
		n = 1
	}
	return append(out, avg)
}

func fixedStep(l, dx float32) []float32 {
	n := int(math32.Round(l / dx))
	out := make([]float32, 0, n+1)
	for i := 0; i < n; i++ {
		out = append(out, float32(i)*dx)
	}
	return append(out, l)
}

func clamp(x, lo, hi float32) float32 {
	return math32.Max(math32.Min(x, hi), lo)
}
