// eldist: a tool for estimating evolutionary distances between unaligned sequences.
// Copyright (c) 2019-2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/eldist/blob/master/LICENSE.txt>.

package estimator

import "math"

const (
	goldenRatio   = 0.3819660112501051
	brentEpsilon  = 1e-10
	maxIterations = 200
)

// minimizeScalar finds a minimum of f on [lo, hi] with Brent's method,
// alternating golden section steps with parabolic interpolation. The
// search starts at seed, which must lie inside the interval, and stops
// once the position is known to accuracy tol.
func minimizeScalar(f func(float64) float64, lo, hi, seed, tol float64) (float64, float64) {
	a, b := lo, hi
	x := math.Min(math.Max(seed, a), b)
	w, v := x, x
	fx := f(x)
	fw, fv := fx, fx
	var d, e float64
	for iteration := 0; iteration < maxIterations; iteration++ {
		mid := 0.5 * (a + b)
		tol1 := tol*math.Abs(x) + brentEpsilon
		tol2 := 2 * tol1
		if math.Abs(x-mid) <= tol2-0.5*(b-a) {
			break
		}
		golden := true
		if math.Abs(e) > tol1 {
			// parabola through (v,fv), (w,fw), (x,fx)
			r := (x - w) * (fx - fv)
			q := (x - v) * (fx - fw)
			p := (x-v)*q - (x-w)*r
			q = 2 * (q - r)
			if q > 0 {
				p = -p
			}
			q = math.Abs(q)
			previous := e
			e = d
			if math.Abs(p) < math.Abs(0.5*q*previous) && p > q*(a-x) && p < q*(b-x) {
				d = p / q
				u := x + d
				if u-a < tol2 || b-u < tol2 {
					d = math.Copysign(tol1, mid-x)
				}
				golden = false
			}
		}
		if golden {
			if x >= mid {
				e = a - x
			} else {
				e = b - x
			}
			d = goldenRatio * e
		}
		var u float64
		if math.Abs(d) >= tol1 {
			u = x + d
		} else {
			u = x + math.Copysign(tol1, d)
		}
		fu := f(u)
		if fu <= fx {
			if u >= x {
				a = x
			} else {
				b = x
			}
			v, fv = w, fw
			w, fw = x, fx
			x, fx = u, fu
		} else {
			if u < x {
				a = u
			} else {
				b = u
			}
			if fu <= fw || w == x {
				v, fv = w, fw
				w, fw = u, fu
			} else if fu <= fv || v == x || v == w {
				v, fv = u, fu
			}
		}
	}
	return x, fx
}
