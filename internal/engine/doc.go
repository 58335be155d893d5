// Package engine implements the climatology regression: min-max scaling,
// cyclical and autoregressive feature construction, an ordinary-least-squares
// fit via the normal equation, and a generative 366-day rollout of the
// fitted model.
//
// # Model
//
// Each training sample is a 10-element feature row
//
//	[1, sin θ, cos θ, lag1 .. lag7]    θ = 2π·doy/365.25
//
// where the lags are the seven preceding scaled temperatures. The weight
// vector solves w = (XᵗX)⁻¹Xᵗy. The forecast then walks day-of-year 1..366,
// feeding each prediction back in as the next step's most recent lag, so
// errors compound across the rollout by design: the output is a smooth
// synthetic curve, not a replay of observations.
//
// # Degraded mode
//
// When the normal matrix is singular (constant input, too few effective
// samples) the trainer substitutes weights that always predict the scaled
// midpoint and flags the result, so callers can tell a real fit from the
// degenerate one. Precipitation never goes through the model; it is a plain
// per-day-of-year average of history.
package engine
