package kernels

// lookback computes the number of leading undefined indices for a kernel
// given its resolved parameters, matching TA-Lib's own warm-up lengths
// (spec.md §4.1: "the implementation must preserve TA-Lib's warm-up
// lengths ... exactly"). go-talib's pure-Go port does not surface
// outBegIdx the way the TA-Lib C FFI does (see
// original_source/.../talib_bindings/ffi.rs) — it zero-fills the warm-up
// region instead — so these formulas are computed independently here,
// using the well-known TA-Lib lookback definitions for each function.
func lookback(name string, p map[string]any) int {
	switch name {
	case "SMA", "WMA", "TRIMA", "BBANDS", "CCI", "WILLR", "STDDEV":
		period, _ := IntParam(p, "period")
		return period - 1
	case "EMA":
		period, _ := IntParam(p, "period")
		return period - 1
	case "DEMA":
		period, _ := IntParam(p, "period")
		return 2 * (period - 1)
	case "TEMA":
		period, _ := IntParam(p, "period")
		return 3 * (period - 1)
	case "KAMA":
		period, _ := IntParam(p, "period")
		return period
	case "RSI", "ATR", "NATR", "MFI", "MOM", "ROC":
		period, _ := IntParam(p, "period")
		return period
	case "ADX":
		period, _ := IntParam(p, "period")
		return 2*period - 1
	case "MACD":
		slow, _ := IntParam(p, "slow_period")
		signal, _ := IntParam(p, "signal_period")
		return (slow - 1) + (signal - 1)
	case "PPO":
		slow, _ := IntParam(p, "slow_period")
		return slow - 1
	case "STOCH":
		k, _ := IntParam(p, "k_period")
		slowing, _ := IntParam(p, "slowing")
		d, _ := IntParam(p, "d_period")
		return (k - 1) + (slowing - 1) + (d - 1)
	case "STOCHRSI":
		// TA_STOCHRSI_Lookback = TA_RSI_Lookback(period) + TA_STOCHF_Lookback(k,d),
		// and RSI's lookback is the plain period (see the RSI case above), not
		// period-1.
		period, _ := IntParam(p, "period")
		k, _ := IntParam(p, "k_period")
		d, _ := IntParam(p, "d_period")
		return period + (k - 1) + (d - 1)
	case "ADOSC":
		slow, _ := IntParam(p, "slow_period")
		return slow - 1
	case "SAR":
		return 1
	case "OBV", "AD":
		return 0
	case "TRANGE", "PVT":
		return 1
	default:
		return 0
	}
}
