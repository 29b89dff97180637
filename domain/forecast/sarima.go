package forecast

import (
	"context"
	"math"

	"gonum.org/v1/gonum/optimize"

	"rekpi/domain/core"
)

// Order holds the non-seasonal ARIMA order (p, d, q).
type Order struct {
	P, D, Q int
}

// Seasonal holds the seasonal order (P, D, Q) and the season length.
type Seasonal struct {
	P, D, Q int
	Period  int
}

// sarima is a fitted multiplicative seasonal ARIMA model. Estimation is
// by conditional sum of squares: pre-sample values and shocks are taken
// as zero and the squared one-step residuals are minimized with
// Nelder-Mead, which keeps the fit deterministic for a given series.
type sarima struct {
	order    Order
	seasonal Seasonal

	stages [][]float64 // differencing chain, stages[0] is the input
	lags   []int       // lag removed at each differencing step
	w      []float64   // fully differenced series

	arPoly []float64 // expanded AR polynomial, arPoly[0] == 1
	maPoly []float64 // expanded MA polynomial, maPoly[0] == 1
	eps    []float64 // in-sample residuals under the fitted parameters
}

func (m *sarima) nparams() int {
	return m.order.P + m.order.Q + m.seasonal.P + m.seasonal.Q
}

func (m *sarima) maxLag() int {
	s := m.seasonal.Period
	ar := m.order.P + m.seasonal.P*s
	ma := m.order.Q + m.seasonal.Q*s
	if ar > ma {
		return ar
	}
	return ma
}

// fitSARIMA estimates a model on a cleaned series. It returns an error
// instead of a model when the series cannot support the requested
// order, the optimizer fails, or the context expires; the caller
// decides the fallback.
func fitSARIMA(ctx context.Context, values []float64, order Order, seasonal Seasonal) (*sarima, error) {
	m := &sarima{order: order, seasonal: seasonal}

	if seasonal.Period < 1 {
		m.seasonal.Period = 1
	}

	m.stages = [][]float64{values}
	cur := values
	for i := 0; i < order.D; i++ {
		cur = difference(cur, 1)
		m.stages = append(m.stages, cur)
		m.lags = append(m.lags, 1)
	}
	for i := 0; i < seasonal.D; i++ {
		cur = difference(cur, m.seasonal.Period)
		m.stages = append(m.stages, cur)
		m.lags = append(m.lags, m.seasonal.Period)
	}
	m.w = cur

	if len(m.w) <= m.maxLag()+m.nparams()+1 {
		return nil, core.ErrInsufficientData
	}

	params, err := m.estimate(ctx)
	if err != nil {
		return nil, err
	}

	m.arPoly, m.maPoly = m.expandParams(params)
	m.eps = residuals(m.w, m.arPoly, m.maPoly)
	return m, nil
}

// estimate minimizes the conditional sum of squares over the compact
// parameter vector [phi..., theta..., Phi..., Theta...].
func (m *sarima) estimate(ctx context.Context) ([]float64, error) {
	n := m.nparams()
	if n == 0 {
		return nil, nil
	}

	objective := func(x []float64) float64 {
		for _, v := range x {
			if math.Abs(v) > 50 {
				return math.Inf(1)
			}
		}
		ar, ma := m.expandParams(x)
		sse := 0.0
		for _, e := range residuals(m.w, ar, ma) {
			sse += e * e
		}
		if math.IsNaN(sse) {
			return math.Inf(1)
		}
		return sse
	}

	type fitResult struct {
		x   []float64
		err error
	}
	done := make(chan fitResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fitResult{err: core.ErrFitDiverged}
			}
		}()
		problem := optimize.Problem{Func: objective}
		settings := &optimize.Settings{
			MajorIterations: 500,
			FuncEvaluations: 4000,
		}
		x0 := make([]float64, n)
		res, _ := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
		// An iteration-limit status still carries a usable minimizer;
		// only a missing or non-finite solution counts as divergence.
		if res == nil || !allFinite(res.X) || math.IsInf(res.F, 0) || math.IsNaN(res.F) {
			done <- fitResult{err: core.ErrFitDiverged}
			return
		}
		done <- fitResult{x: res.X}
	}()

	select {
	case <-ctx.Done():
		// The optimizer goroutine finishes on its own; the result is
		// simply discarded.
		return nil, core.ErrFitTimeout
	case r := <-done:
		return r.x, r.err
	}
}

// expandParams multiplies the non-seasonal and seasonal lag polynomials
// into the full AR and MA coefficient arrays used by the residual
// recursion, following the statsmodels sign convention: the AR side is
// (1 - phi B)(1 - Phi B^s), the MA side (1 + theta B)(1 + Theta B^s).
func (m *sarima) expandParams(x []float64) (arPoly, maPoly []float64) {
	p, q := m.order.P, m.order.Q
	sp, sq := m.seasonal.P, m.seasonal.Q
	s := m.seasonal.Period

	phi := x[:p]
	theta := x[p : p+q]
	sphi := x[p+q : p+q+sp]
	stheta := x[p+q+sp:]

	ar := make([]float64, p+1)
	ar[0] = 1
	for i, v := range phi {
		ar[i+1] = -v
	}
	sar := make([]float64, sp*s+1)
	sar[0] = 1
	for i, v := range sphi {
		sar[(i+1)*s] = -v
	}

	ma := make([]float64, q+1)
	ma[0] = 1
	for i, v := range theta {
		ma[i+1] = v
	}
	sma := make([]float64, sq*s+1)
	sma[0] = 1
	for i, v := range stheta {
		sma[(i+1)*s] = v
	}

	return convolve(ar, sar), convolve(ma, sma)
}

// predict produces point forecasts for the differenced series and then
// integrates the differencing chain back to the original level.
func (m *sarima) predict(horizon int) []float64 {
	wExt := append([]float64(nil), m.w...)
	epsExt := append([]float64(nil), m.eps...)

	for h := 0; h < horizon; h++ {
		t := len(wExt)
		var v float64
		for k := 1; k < len(m.arPoly); k++ {
			if t-k >= 0 {
				v -= m.arPoly[k] * wExt[t-k]
			}
		}
		for j := 1; j < len(m.maPoly); j++ {
			if t-j >= 0 && t-j < len(m.eps) {
				v += m.maPoly[j] * epsExt[t-j]
			}
		}
		wExt = append(wExt, v)
		epsExt = append(epsExt, 0)
	}

	fc := wExt[len(m.w):]
	for i := len(m.stages) - 1; i >= 1; i-- {
		fc = integrate(m.stages[i-1], fc, m.lags[i-1])
	}
	return fc
}

// difference returns x[t] - x[t-lag] for t >= lag.
func difference(x []float64, lag int) []float64 {
	if len(x) <= lag {
		return nil
	}
	out := make([]float64, len(x)-lag)
	for i := range out {
		out[i] = x[i+lag] - x[i]
	}
	return out
}

// integrate reverses one differencing step: each forecast of the
// differenced series is added onto the reconstructed level lag steps
// back, seeded with the historical tail.
func integrate(hist []float64, fc []float64, lag int) []float64 {
	n := len(hist)
	ext := make([]float64, n+len(fc))
	copy(ext, hist)
	for i := range fc {
		prev := 0.0
		if n+i-lag >= 0 {
			prev = ext[n+i-lag]
		}
		ext[n+i] = fc[i] + prev
	}
	return ext[n:]
}

// residuals runs the one-step prediction error recursion with zero
// pre-sample values (the conditional in conditional sum of squares).
func residuals(w, arPoly, maPoly []float64) []float64 {
	eps := make([]float64, len(w))
	for t := range w {
		v := w[t]
		for k := 1; k < len(arPoly); k++ {
			if t-k >= 0 {
				v += arPoly[k] * w[t-k]
			}
		}
		for j := 1; j < len(maPoly); j++ {
			if t-j >= 0 {
				v -= maPoly[j] * eps[t-j]
			}
		}
		eps[t] = v
	}
	return eps
}

// convolve multiplies two lag polynomials.
func convolve(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, av := range a {
		for j, bv := range b {
			out[i+j] += av * bv
		}
	}
	return out
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
